package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-orders-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == "23505"
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == "23503"
}

// isSerializationFailure verifica si la transacción fue abortada por deadlock (40P01)
// o por fallo de serialización (40001).
func isSerializationFailure(err error) bool {
	code := pgCode(err)
	return code == "40P01" || code == "40001"
}

// conflictOr convierte un aborto por concurrencia en ErrConflict; cualquier otro error pasa igual.
func conflictOr(err error) error {
	if err != nil && isSerializationFailure(err) {
		return fmt.Errorf("%w: transacción abortada por concurrencia (%s): %v", domain.ErrConflict, pgCode(err), err)
	}
	return err
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
