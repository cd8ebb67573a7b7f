package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// Order cabecera de una orden. Se persiste junto con sus líneas en una sola transacción.
type Order struct {
	ID        int64
	UserID    int64
	Total     decimal.Decimal // suma de subtotales de las líneas
	Status    string
	CreatedAt time.Time
	Lines     []*OrderLine
}

// OrderLine línea de una orden. UnitPrice y Subtotal se capturan al crear la orden
// y no cambian si luego cambia el precio del producto.
type OrderLine struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	// Product resumen del producto referenciado (solo lectura, cargado por join).
	Product *ProductSummary
}

// ProductSummary proyección del producto dentro de una línea.
type ProductSummary struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal // precio actual del producto
}
