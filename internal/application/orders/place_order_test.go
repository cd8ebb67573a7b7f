package orders_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/api-inventario/internal/application/dto"
	"github.com/jhoicas/api-inventario/internal/application/orders"
	"github.com/jhoicas/api-inventario/internal/domain"
	"github.com/jhoicas/api-inventario/internal/domain/entity"
	"github.com/jhoicas/api-inventario/internal/domain/ordering"
	"github.com/jhoicas/api-inventario/internal/domain/repository"
	"github.com/jhoicas/api-inventario/internal/infrastructure/memstore"
	"github.com/jhoicas/api-inventario/pkg/logger"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

func seedProduct(t *testing.T, store *memstore.Store, name, price string, qty int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		BatchNumber:       "L-" + name,
		Name:              name,
		UnitPrice:         decimal.RequireFromString(price),
		AvailableQuantity: qty,
		IntakeDate:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func stockOf(t *testing.T, store *memstore.Store, id int64) int {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.AvailableQuantity
}

func newPlaceUC(runner orders.TxRunner, opts orders.Options) *orders.PlaceOrderUseCase {
	return orders.NewPlaceOrderUseCase(runner, logger.Nop(), opts)
}

// flakyRunner falla con ErrTxConflict las primeras n veces y luego delega.
type flakyRunner struct {
	next     orders.TxRunner
	failures int32
	calls    atomic.Int32
}

func (r *flakyRunner) RunOrder(ctx context.Context, fn func(repository.ProductRepository, repository.OrderRepository) error) error {
	if r.calls.Add(1) <= r.failures {
		return domain.ErrTxConflict
	}
	return r.next.RunOrder(ctx, fn)
}

// blockingRunner espera a que venza el contexto de la transacción.
type blockingRunner struct{}

func (blockingRunner) RunOrder(ctx context.Context, _ func(repository.ProductRepository, repository.OrderRepository) error) error {
	<-ctx.Done()
	return ctx.Err()
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestPlaceOrder_Exito(t *testing.T) {
	store := memstore.New()
	arroz := seedProduct(t, store, "Arroz", "2.35", 10)
	leche := seedProduct(t, store, "Leche", "0.10", 50)
	uc := newPlaceUC(store, orders.Options{})

	order, err := uc.PlaceOrder(context.Background(), 7, []ordering.ItemRequest{
		{ProductID: arroz.ID, Quantity: 3},
		{ProductID: leche.ID, Quantity: 7},
	})
	require.NoError(t, err)

	assert.Positive(t, order.ID)
	assert.Equal(t, int64(7), order.UserID)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.False(t, order.CreatedAt.IsZero())
	require.Len(t, order.Lines, 2)
	assert.True(t, order.Lines[0].Subtotal.Equal(decimal.RequireFromString("7.05")))
	assert.True(t, order.Lines[1].Subtotal.Equal(decimal.RequireFromString("0.70")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("7.75")))

	assert.Equal(t, 7, stockOf(t, store, arroz.ID))
	assert.Equal(t, 43, stockOf(t, store, leche.ID))
}

func TestPlaceOrderFromRequest_MapeaDTO(t *testing.T) {
	store := memstore.New()
	p := seedProduct(t, store, "Café", "12.50", 4)
	uc := newPlaceUC(store, orders.Options{})

	out, err := uc.PlaceOrderFromRequest(context.Background(), 3, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Len(t, out.Lines, 1)
	require.NotNil(t, out.Lines[0].Product)
	assert.Equal(t, "Café", out.Lines[0].Product.Name)
	assert.True(t, out.Total.Equal(decimal.RequireFromString("25.00")))
}

func TestPlaceOrder_ListaVacia(t *testing.T) {
	uc := newPlaceUC(memstore.New(), orders.Options{})
	_, err := uc.PlaceOrder(context.Background(), 1, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPlaceOrder_ProductoInexistente_SinCambios(t *testing.T) {
	store := memstore.New()
	p := seedProduct(t, store, "Azúcar", "1.00", 5)
	uc := newPlaceUC(store, orders.Options{})

	_, err := uc.PlaceOrder(context.Background(), 1, []ordering.ItemRequest{
		{ProductID: p.ID, Quantity: 2},
		{ProductID: 999, Quantity: 1},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	var nf *domain.ProductNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(999), nf.ProductID)

	assert.Equal(t, 5, stockOf(t, store, p.ID), "la reserva del primer ítem se revierte")
	all, err := store.Orders().ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPlaceOrder_StockInsuficiente_TodoONada(t *testing.T) {
	store := memstore.New()
	a := seedProduct(t, store, "A", "3.00", 10)
	b := seedProduct(t, store, "B", "4.00", 1)
	uc := newPlaceUC(store, orders.Options{})

	_, err := uc.PlaceOrder(context.Background(), 1, []ordering.ItemRequest{
		{ProductID: a.ID, Quantity: 4},
		{ProductID: b.ID, Quantity: 2},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var se *domain.StockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, b.ID, se.ProductID)
	assert.Equal(t, "B", se.ProductName)

	assert.Equal(t, 10, stockOf(t, store, a.ID))
	assert.Equal(t, 1, stockOf(t, store, b.ID))
}

func TestPlaceOrder_TotalFueraDeRango_SinCambios(t *testing.T) {
	store := memstore.New()
	p := seedProduct(t, store, "Lingote", "99999999.99", 5000)
	uc := newPlaceUC(store, orders.Options{})

	_, err := uc.PlaceOrder(context.Background(), 1, []ordering.ItemRequest{{ProductID: p.ID, Quantity: 1000}})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items")

	assert.Equal(t, 5000, stockOf(t, store, p.ID))
	all, err := store.Orders().ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPlaceOrder_CantidadMayorQueInt32(t *testing.T) {
	store := memstore.New()
	p := seedProduct(t, store, "Sal", "1.00", 5)
	uc := newPlaceUC(store, orders.Options{})

	_, err := uc.PlaceOrder(context.Background(), 1, []ordering.ItemRequest{{ProductID: p.ID, Quantity: entity.MaxQuantity + 1}})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items[0].quantity")
	assert.Equal(t, 5, stockOf(t, store, p.ID))
}

func TestPlaceOrder_DuplicadosSeReservanPorSeparado(t *testing.T) {
	store := memstore.New()
	p := seedProduct(t, store, "Pan", "1.00", 5)
	uc := newPlaceUC(store, orders.Options{})

	_, err := uc.PlaceOrder(context.Background(), 1, []ordering.ItemRequest{
		{ProductID: p.ID, Quantity: 3},
		{ProductID: p.ID, Quantity: 3},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, stockOf(t, store, p.ID))
}

func TestPlaceOrder_FalloAlInsertarOrden_RestauraStock(t *testing.T) {
	store := memstore.New()
	p := seedProduct(t, store, "Sal", "0.50", 8)
	store.FailOrderCreate = errors.New("conexión perdida")
	uc := newPlaceUC(store, orders.Options{})

	_, err := uc.PlaceOrder(context.Background(), 1, []ordering.ItemRequest{{ProductID: p.ID, Quantity: 3}})
	require.Error(t, err)
	assert.Equal(t, 8, stockOf(t, store, p.ID))
}

func TestPlaceOrder_DosClientesPorElUltimoStock(t *testing.T) {
	store := memstore.New()
	p := seedProduct(t, store, "Aceite", "9.99", 5)
	uc := newPlaceUC(store, orders.Options{})

	var (
		g         errgroup.Group
		successes atomic.Int32
		stockErrs atomic.Int32
	)
	for user := int64(1); user <= 2; user++ {
		g.Go(func() error {
			_, err := uc.PlaceOrder(context.Background(), user, []ordering.ItemRequest{{ProductID: p.ID, Quantity: 3}})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				stockErrs.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(1), stockErrs.Load())
	assert.Equal(t, 2, stockOf(t, store, p.ID))
}

func TestPlaceOrder_ConcurrenciaNuncaNegativo(t *testing.T) {
	store := memstore.New()
	p := seedProduct(t, store, "Harina", "1.20", 17)
	uc := newPlaceUC(store, orders.Options{})

	const workers = 40
	var (
		g  errgroup.Group
		mu sync.Mutex
		ok int
	)
	for i := 0; i < workers; i++ {
		user := int64(i + 1)
		g.Go(func() error {
			_, err := uc.PlaceOrder(context.Background(), user, []ordering.ItemRequest{{ProductID: p.ID, Quantity: 2}})
			if err != nil && !errors.Is(err, domain.ErrInsufficientStock) {
				return err
			}
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 8, ok)
	assert.Equal(t, 1, stockOf(t, store, p.ID))

	all, err := store.Orders().ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, ok)
}

func TestPlaceOrder_ReintentaConflictos(t *testing.T) {
	store := memstore.New()
	p := seedProduct(t, store, "Té", "2.00", 3)
	runner := &flakyRunner{next: store, failures: 2}
	uc := newPlaceUC(runner, orders.Options{MaxAttempts: 3})

	order, err := uc.PlaceOrder(context.Background(), 1, []ordering.ItemRequest{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)
	assert.Positive(t, order.ID)
	assert.Equal(t, int32(3), runner.calls.Load())
	assert.Equal(t, 2, stockOf(t, store, p.ID))
}

func TestPlaceOrder_ConflictoAgotaIntentos(t *testing.T) {
	store := memstore.New()
	p := seedProduct(t, store, "Miel", "6.00", 3)
	runner := &flakyRunner{next: store, failures: 5}
	uc := newPlaceUC(runner, orders.Options{MaxAttempts: 2})

	_, err := uc.PlaceOrder(context.Background(), 1, []ordering.ItemRequest{{ProductID: p.ID, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, int32(2), runner.calls.Load())
	assert.Equal(t, 3, stockOf(t, store, p.ID))
}

func TestPlaceOrder_TimeoutEsTransitorio(t *testing.T) {
	uc := newPlaceUC(blockingRunner{}, orders.Options{TxTimeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := uc.PlaceOrder(context.Background(), 1, []ordering.ItemRequest{{ProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Less(t, time.Since(start), 2*time.Second)
}
