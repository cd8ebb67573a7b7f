package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest un ítem del cuerpo de POST /orders.
type OrderItemRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0,max=2147483647"`
}

// CreateOrderRequest cuerpo de POST /orders.
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ProductSummaryResponse resumen del producto dentro de una línea.
type ProductSummaryResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// OrderLineResponse línea de una orden.
type OrderLineResponse struct {
	ID        int64                   `json:"id"`
	ProductID int64                   `json:"productId"`
	Quantity  int                     `json:"quantity"`
	UnitPrice decimal.Decimal         `json:"unitPrice"`
	Subtotal  decimal.Decimal         `json:"subtotal"`
	Product   *ProductSummaryResponse `json:"product,omitempty"`
}

// OrderResponse orden con sus líneas.
type OrderResponse struct {
	ID        int64               `json:"id"`
	UserID    int64               `json:"userId"`
	Total     decimal.Decimal     `json:"total"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	Lines     []OrderLineResponse `json:"lines"`
}
