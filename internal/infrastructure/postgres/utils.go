package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/api-inventario/internal/domain"
)

// Querier abstrae *pgxpool.Pool y pgx.Tx para que los repos funcionen dentro o fuera de una transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Códigos SQLSTATE usados por los adaptadores.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool { return pgCode(err) == codeUniqueViolation }

// isFKViolation verifica si un error es una violación de llave foránea (23503).
func isFKViolation(err error) bool { return pgCode(err) == codeForeignKeyViolation }

func isCheckViolation(err error) bool { return pgCode(err) == codeCheckViolation }

// isOutOfRange valor numérico fuera de la precisión de la columna (22003).
func isOutOfRange(err error) bool { return pgCode(err) == codeNumericOutOfRange }

// mapTxError traduce contención y timeouts de PostgreSQL a errores de dominio reintentables.
// Deadlock y fallo de serialización -> domain.ErrTxConflict (el caso de uso reintenta);
// lock_timeout, statement cancelado o plazo vencido -> domain.ErrTransient;
// importes fuera de NUMERIC(12,2) -> *domain.ValidationError.
func mapTxError(err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codeDeadlockDetected, codeSerializationFailure:
		return domain.ErrTxConflict
	case codeLockNotAvailable, codeQueryCanceled:
		return domain.ErrTransient
	case codeNumericOutOfRange:
		return domain.NewValidationError("items", "el importe de la orden excede el máximo permitido")
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.ErrTransient
	}
	return err
}
