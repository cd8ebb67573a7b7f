package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity mayor cantidad representable en las columnas INTEGER (available_quantity, quantity).
const MaxQuantity = math.MaxInt32

// MaxUnitPrice mayor precio representable en NUMERIC(10,2).
var MaxUnitPrice = decimal.RequireFromString("99999999.99")

// Product representa un lote de producto del inventario.
// AvailableQuantity nunca es negativo (CHECK en la tabla y reserva condicional).
type Product struct {
	ID                int64
	BatchNumber       string
	Name              string
	UnitPrice         decimal.Decimal // precio de venta, >= 0
	AvailableQuantity int
	IntakeDate        time.Time // fecha de ingreso (solo fecha)
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ProductPatch cambios parciales de un producto. Los campos nil conservan el valor
// almacenado en el momento de la escritura, no el de una lectura previa.
type ProductPatch struct {
	BatchNumber       *string
	Name              *string
	UnitPrice         *decimal.Decimal
	AvailableQuantity *int
	IntakeDate        *time.Time
}
