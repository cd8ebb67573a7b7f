package repository

import (
	"context"

	"github.com/jhoicas/api-inventario/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order y sus líneas.
// Las lecturas devuelven la orden con Lines y el resumen del producto de cada línea.
type OrderRepository interface {
	// Create inserta la cabecera y todas sus líneas; asigna IDs y CreatedAt.
	// Debe ejecutarse dentro de la misma transacción que las reservas de stock.
	Create(ctx context.Context, order *entity.Order) error
	// GetByID retorna (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	// ListByUser órdenes del usuario, más recientes primero.
	ListByUser(ctx context.Context, userID int64) ([]*entity.Order, error)
	// ListAll todas las órdenes, más recientes primero.
	ListAll(ctx context.Context) ([]*entity.Order, error)
}
