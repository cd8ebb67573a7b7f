package orders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/api-inventario/internal/application/orders"
	"github.com/jhoicas/api-inventario/internal/domain"
	"github.com/jhoicas/api-inventario/internal/domain/entity"
	"github.com/jhoicas/api-inventario/internal/domain/ordering"
	"github.com/jhoicas/api-inventario/internal/infrastructure/memstore"
)

type fakeReceiptGenerator struct {
	order    *entity.Order
	customer *entity.User
}

func (g *fakeReceiptGenerator) GenerateReceiptPDF(_ context.Context, o *entity.Order, c *entity.User) ([]byte, error) {
	g.order, g.customer = o, c
	return []byte("%PDF-1.3 fake"), nil
}

func placeN(t *testing.T, uc *orders.PlaceOrderUseCase, userID, productID int64, n int) []*entity.Order {
	t.Helper()
	out := make([]*entity.Order, 0, n)
	for i := 0; i < n; i++ {
		o, err := uc.PlaceOrder(context.Background(), userID, []ordering.ItemRequest{{ProductID: productID, Quantity: 1}})
		require.NoError(t, err)
		out = append(out, o)
	}
	return out
}

func TestGetOrder_PropietarioYAjeno(t *testing.T) {
	store := memstore.New()
	p := seedProduct(t, store, "Queso", "8.40", 10)
	placed := placeN(t, newPlaceUC(store, orders.Options{}), 1, p.ID, 1)[0]
	q := orders.NewQueryUseCase(store.Orders(), store.Users(), nil)

	got, err := q.GetOrder(context.Background(), placed.ID, orders.Requester{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, placed.ID, got.ID)
	require.Len(t, got.Lines, 1)
	require.NotNil(t, got.Lines[0].Product)
	assert.Equal(t, "Queso", got.Lines[0].Product.Name)

	_, err = q.GetOrder(context.Background(), placed.ID, orders.Requester{UserID: 2})
	assert.ErrorIs(t, err, domain.ErrNotFound, "una orden ajena no se distingue de una inexistente")

	_, err = q.GetOrder(context.Background(), 12345, orders.Requester{UserID: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMyOrders_MasRecientesPrimero(t *testing.T) {
	store := memstore.New()
	p := seedProduct(t, store, "Jugo", "1.10", 20)
	place := newPlaceUC(store, orders.Options{})
	mine := placeN(t, place, 1, p.ID, 3)
	placeN(t, place, 2, p.ID, 2)
	q := orders.NewQueryUseCase(store.Orders(), store.Users(), nil)

	list, err := q.ListMyOrders(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, mine[2].ID, list[0].ID)
	assert.Equal(t, mine[0].ID, list[2].ID)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].CreatedAt.After(list[i].CreatedAt))
	}

	all, err := q.ListAllOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestDownloadReceiptPDF(t *testing.T) {
	store := memstore.New()
	require.NoError(t, store.Users().Create(context.Background(), &entity.User{
		Name: "Ana", Email: "ana@example.com", Role: entity.RoleCliente,
	}))
	p := seedProduct(t, store, "Vino", "15.00", 3)
	placed := placeN(t, newPlaceUC(store, orders.Options{}), 1, p.ID, 1)[0]
	gen := &fakeReceiptGenerator{}
	q := orders.NewQueryUseCase(store.Orders(), store.Users(), gen)

	pdf, filename, err := q.DownloadReceiptPDF(context.Background(), placed.ID, orders.Requester{UserID: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "orden_1.pdf", filename)
	assert.Equal(t, "Ana", gen.customer.Name)

	_, _, err = q.DownloadReceiptPDF(context.Background(), placed.ID, orders.Requester{UserID: 9})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestToOrderResponse_TotalIgualSumaSubtotales(t *testing.T) {
	store := memstore.New()
	a := seedProduct(t, store, "A", "1.25", 10)
	b := seedProduct(t, store, "B", "3.40", 10)
	order, err := newPlaceUC(store, orders.Options{}).PlaceOrder(context.Background(), 1, []ordering.ItemRequest{
		{ProductID: a.ID, Quantity: 3},
		{ProductID: b.ID, Quantity: 2},
	})
	require.NoError(t, err)

	out := orders.ToOrderResponse(order)
	sum := out.Lines[0].Subtotal.Add(out.Lines[1].Subtotal)
	assert.True(t, out.Total.Equal(sum))
	assert.Equal(t, "10.55", out.Total.StringFixed(2))
}
