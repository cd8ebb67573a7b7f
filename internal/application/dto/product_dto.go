package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout formato de fechas solo-día (intakeDate).
const DateLayout = "2006-01-02"

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	BatchNumber       string          `json:"batchNumber" validate:"required,max=100"`
	Name              string          `json:"name" validate:"required,max=200"`
	UnitPrice         decimal.Decimal `json:"unitPrice" validate:"gte=0,lte=99999999.99"`
	AvailableQuantity int             `json:"availableQuantity" validate:"gte=0,max=2147483647"`
	IntakeDate        string          `json:"intakeDate" validate:"required,datetime=2006-01-02"`
}

// UpdateProductRequest entrada para actualizar un producto; solo se aplican los campos presentes.
// AvailableQuantity permite el ajuste directo de stock por un administrador.
type UpdateProductRequest struct {
	BatchNumber       *string          `json:"batchNumber" validate:"omitempty,min=1,max=100"`
	Name              *string          `json:"name" validate:"omitempty,min=1,max=200"`
	UnitPrice         *decimal.Decimal `json:"unitPrice" validate:"omitempty,gte=0,lte=99999999.99"`
	AvailableQuantity *int             `json:"availableQuantity" validate:"omitempty,gte=0,max=2147483647"`
	IntakeDate        *string          `json:"intakeDate" validate:"omitempty,datetime=2006-01-02"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                int64           `json:"id"`
	BatchNumber       string          `json:"batchNumber"`
	Name              string          `json:"name"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	AvailableQuantity int             `json:"availableQuantity"`
	IntakeDate        string          `json:"intakeDate"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
