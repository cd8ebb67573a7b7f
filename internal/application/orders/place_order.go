package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/api-inventario/internal/application/dto"
	"github.com/jhoicas/api-inventario/internal/domain"
	"github.com/jhoicas/api-inventario/internal/domain/entity"
	"github.com/jhoicas/api-inventario/internal/domain/ordering"
	"github.com/jhoicas/api-inventario/internal/domain/repository"
	"github.com/jhoicas/api-inventario/pkg/logger"
)

// PlaceOrderUseCase crea una orden y descuenta el stock en una sola transacción.
type PlaceOrderUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
	opts     Options
}

// NewPlaceOrderUseCase construye el caso de uso.
func NewPlaceOrderUseCase(txRunner TxRunner, log *logger.Logger, opts Options) *PlaceOrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PlaceOrderUseCase{
		txRunner: txRunner,
		log:      log.Component("orders"),
		opts:     opts.withDefaults(),
	}
}

// PlaceOrderFromRequest adapta el cuerpo de POST /orders al caso de uso.
func (uc *PlaceOrderUseCase) PlaceOrderFromRequest(ctx context.Context, userID int64, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	items := make([]ordering.ItemRequest, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, ordering.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	order, err := uc.PlaceOrder(ctx, userID, items)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(order), nil
}

// PlaceOrder valida los ítems y, en una transacción, reserva y valora cada línea en
// orden de entrada (falla en el primer ítem inválido), inserta la orden PENDING con
// sus líneas y confirma. Cualquier error deja stock y órdenes sin cambios.
//
// Errores:
//   - *domain.ValidationError      lista vacía, cantidades/IDs fuera de rango o total no representable.
//   - *domain.ProductNotFoundError un producto no existe.
//   - *domain.StockError           stock insuficiente para un producto.
//   - domain.ErrTransient          contención o timeout; se puede reintentar.
func (uc *PlaceOrderUseCase) PlaceOrder(ctx context.Context, userID int64, items []ordering.ItemRequest) (*entity.Order, error) {
	if userID <= 0 {
		return nil, domain.ErrUnauthorized
	}
	if err := ordering.ValidateItems(items); err != nil {
		return nil, err
	}

	var (
		order *entity.Order
		err   error
	)
	for attempt := 1; attempt <= uc.opts.MaxAttempts; attempt++ {
		order, err = uc.placeOnce(ctx, userID, items)
		if err == nil || !errors.Is(err, domain.ErrTxConflict) || attempt == uc.opts.MaxAttempts {
			break
		}
		uc.log.Warn().Int64("user_id", userID).Int("attempt", attempt).Msg("conflicto de concurrencia al crear orden, reintentando")
		if werr := backoff(ctx, attempt); werr != nil {
			err = werr
			break
		}
	}
	if err != nil {
		uc.logFailure(userID, err)
		return nil, err
	}

	uc.log.Info().
		Int64("order_id", order.ID).
		Int64("user_id", userID).
		Int("lines", len(order.Lines)).
		Str("total", order.Total.StringFixed(2)).
		Msg("orden creada")
	return order, nil
}

func (uc *PlaceOrderUseCase) placeOnce(ctx context.Context, userID int64, items []ordering.ItemRequest) (*entity.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, uc.opts.TxTimeout)
	defer cancel()

	var order *entity.Order
	err := uc.txRunner.RunOrder(txCtx, func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		quote := ordering.NewQuote(len(items))
		for _, it := range items {
			product, err := productRepo.TryReserve(txCtx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			quote.Add(product, it.Quantity)
		}
		if err := quote.CheckLimits(); err != nil {
			return err
		}

		o := &entity.Order{
			UserID: userID,
			Total:  quote.Total,
			Status: entity.OrderStatusPending,
			Lines:  quote.Lines,
		}
		if err := orderRepo.Create(txCtx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domain.ErrTransient
		}
		return nil, err
	}
	return order, nil
}

func (uc *PlaceOrderUseCase) logFailure(userID int64, err error) {
	var stockErr *domain.StockError
	var notFound *domain.ProductNotFoundError
	switch {
	case errors.As(err, &stockErr):
		uc.log.Warn().
			Int64("user_id", userID).
			Int64("product_id", stockErr.ProductID).
			Int("requested", stockErr.Requested).
			Msg("stock insuficiente, orden rechazada")
	case errors.As(err, &notFound):
		uc.log.Warn().Int64("user_id", userID).Int64("product_id", notFound.ProductID).Msg("producto inexistente, orden rechazada")
	case errors.Is(err, domain.ErrTransient):
		uc.log.Warn().Int64("user_id", userID).Err(err).Msg("orden no completada por contención o timeout")
	case errors.Is(err, domain.ErrInvalidInput):
	default:
		uc.log.Error().Int64("user_id", userID).Err(err).Msg("error al crear orden")
	}
}

func backoff(ctx context.Context, attempt int) error {
	t := time.NewTimer(time.Duration(attempt) * 20 * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return domain.ErrTransient
	case <-t.C:
		return nil
	}
}
