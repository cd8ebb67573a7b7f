package orders

import (
	"context"
	"time"

	"github.com/jhoicas/api-inventario/internal/domain/entity"
	"github.com/jhoicas/api-inventario/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
// Si fn retorna error se hace rollback de todo (reservas de stock incluidas).
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// ReceiptPDFGenerator genera el comprobante PDF de una orden.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, order *entity.Order, customer *entity.User) ([]byte, error)
}

// Options parámetros de la transacción de creación de órdenes.
type Options struct {
	TxTimeout   time.Duration // plazo máximo de cada intento
	MaxAttempts int           // intentos ante deadlock / fallo de serialización
}

func (o Options) withDefaults() Options {
	if o.TxTimeout <= 0 {
		o.TxTimeout = 5 * time.Second
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	}
	return o
}
