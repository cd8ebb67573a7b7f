package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	// ErrTransient: contención o timeout de almacenamiento; el cliente puede reintentar.
	ErrTransient = errors.New("operación no completada, reintente")
	// ErrTxConflict: deadlock o fallo de serialización. Envuelve ErrTransient.
	ErrTxConflict = fmt.Errorf("%w: conflicto de concurrencia", ErrTransient)
)

// ValidationError agrupa errores por campo. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError crea un ValidationError con un único campo.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// StockError identifica el producto sin stock suficiente. errors.Is(err, ErrInsufficientStock) es true.
type StockError struct {
	ProductID   int64
	ProductName string
	Requested   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s", e.ProductName)
}

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

// ProductNotFoundError identifica el producto inexistente de una orden. errors.Is(err, ErrNotFound) es true.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto con ID %d no encontrado", e.ProductID)
}

func (e *ProductNotFoundError) Is(target error) bool { return target == ErrNotFound }
