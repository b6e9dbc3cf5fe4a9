package inventory

import "github.com/jhoicas/stock-orders-api/internal/domain/entity"

// IsValidMovementType indica si el tipo pertenece al catálogo de movimientos.
func IsValidMovementType(t string) bool {
	for _, mt := range entity.MovementTypes {
		if mt == t {
			return true
		}
	}
	return false
}

// IsIncreasing indica si un movimiento de ese tipo suma stock (IN, PURCHASE, RETURN, TRANSFER_IN).
// ADJUSTMENT no tiene dirección propia: la aporta el delta del llamador.
func IsIncreasing(movementType string) bool {
	switch movementType {
	case entity.MovementTypeIN, entity.MovementTypePURCHASE, entity.MovementTypeRETURN, entity.MovementTypeTRANSFERIN:
		return true
	}
	return false
}

// SignedDelta convierte una magnitud (> 0) en el delta con signo que se aplica al registro.
// No admite ADJUSTMENT: ese tipo siempre llega con delta explícito.
func SignedDelta(movementType string, quantity int64) int64 {
	if IsIncreasing(movementType) {
		return quantity
	}
	return -quantity
}

// Apply suma el delta a la cantidad actual. ok=false si el resultado quedaría negativo.
func Apply(current, delta int64) (next int64, ok bool) {
	next = current + delta
	if next < 0 {
		return current, false
	}
	return next, true
}

// Abs devuelve la magnitud de un delta.
func Abs(delta int64) int64 {
	if delta < 0 {
		return -delta
	}
	return delta
}
