package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// MaxNumberAttempts es el número de intentos antes de reportar conflicto por colisión de número.
const MaxNumberAttempts = 5

var numberSpace = big.NewInt(1000000)

// GenerateOrderNumber genera un número legible ORD-YYYYMMDD-NNNNNN.
func GenerateOrderNumber(now time.Time) string {
	n, err := rand.Int(rand.Reader, numberSpace)
	if err != nil {
		n = big.NewInt(now.UnixNano() % 1000000)
	}
	return fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), n.Int64())
}
