// Package ordering contiene las reglas puras de una orden: validación de ítems
// y cálculo de subtotales y total (servicio de dominio, sin IO).
package ordering

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/api-inventario/internal/domain"
	"github.com/jhoicas/api-inventario/internal/domain/entity"
)

// ItemRequest un ítem solicitado: producto y cantidad. Los duplicados no se fusionan.
type ItemRequest struct {
	ProductID int64
	Quantity  int
}

// MaxAmount mayor importe representable en NUMERIC(12,2) (subtotal y total).
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ValidateItems valida la forma de la lista antes de cualquier mutación.
// Falla con *domain.ValidationError si la lista está vacía o algún ítem tiene
// productId <= 0 o quantity fuera de 1..entity.MaxQuantity; reporta todos los campos inválidos.
func ValidateItems(items []ItemRequest) error {
	if len(items) == 0 {
		return domain.NewValidationError("items", "debe incluir al menos un producto")
	}
	fields := make(map[string]string)
	for i, it := range items {
		if it.ProductID <= 0 {
			fields[fmt.Sprintf("items[%d].productId", i)] = "debe ser un entero mayor que 0"
		}
		switch {
		case it.Quantity <= 0:
			fields[fmt.Sprintf("items[%d].quantity", i)] = "debe ser un entero mayor que 0"
		case it.Quantity > entity.MaxQuantity:
			fields[fmt.Sprintf("items[%d].quantity", i)] = fmt.Sprintf("no puede ser mayor que %d", entity.MaxQuantity)
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Quote acumula las líneas valoradas y el total de una orden en construcción.
type Quote struct {
	Lines []*entity.OrderLine
	Total decimal.Decimal
}

// NewQuote crea un Quote vacío con capacidad para n líneas.
func NewQuote(n int) *Quote {
	return &Quote{Lines: make([]*entity.OrderLine, 0, n), Total: decimal.Zero}
}

// Add valora una línea con el precio del producto en este instante:
// subtotal = unitPrice × quantity, y lo acumula en Total.
func (q *Quote) Add(product *entity.Product, quantity int) *entity.OrderLine {
	subtotal := product.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	line := &entity.OrderLine{
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.UnitPrice,
		Subtotal:  subtotal,
		Product: &entity.ProductSummary{
			ID:        product.ID,
			Name:      product.Name,
			UnitPrice: product.UnitPrice,
		},
	}
	q.Lines = append(q.Lines, line)
	q.Total = q.Total.Add(subtotal)
	return line
}

// CheckLimits falla con *domain.ValidationError si el total no cabe en NUMERIC(12,2).
// Los subtotales no son negativos, así que ninguno supera al total.
func (q *Quote) CheckLimits() error {
	if q.Total.GreaterThan(MaxAmount) {
		return domain.NewValidationError("items", "el importe de la orden excede el máximo permitido")
	}
	return nil
}
