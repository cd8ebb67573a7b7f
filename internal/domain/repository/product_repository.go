package repository

import (
	"context"

	"github.com/jhoicas/api-inventario/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID retorna (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// Update aplica patch en una sola sentencia sobre la fila actual y devuelve el producto
	// resultante. Retorna domain.ErrNotFound si el producto no existe.
	Update(ctx context.Context, id int64, patch entity.ProductPatch) (*entity.Product, error)
	// Delete retorna domain.ErrNotFound si no existe y domain.ErrConflict si hay líneas de orden que lo referencian.
	Delete(ctx context.Context, id int64) error
	// TryReserve descuenta quantity de la cantidad disponible con una actualización condicional
	// atómica y devuelve el producto ya descontado (precio vigente incluido).
	// Errores: *domain.ProductNotFoundError (Is ErrNotFound), *domain.StockError (Is ErrInsufficientStock).
	// Es el único punto de mutación del stock usado por la creación de órdenes.
	TryReserve(ctx context.Context, id int64, quantity int) (*entity.Product, error)
}
