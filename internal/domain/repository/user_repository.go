package repository

import (
	"context"

	"github.com/jhoicas/api-inventario/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Las lecturas retornan (nil, nil) si no existe.
type UserRepository interface {
	// Create retorna domain.ErrEmailAlreadyExists si el email ya existe.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
