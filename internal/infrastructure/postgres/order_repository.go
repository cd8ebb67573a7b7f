package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/api-inventario/internal/domain/entity"
	"github.com/jhoicas/api-inventario/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la cabecera y sus líneas. Debe llamarse con la tx de la reserva de stock.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO orders (user_id, total, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		order.UserID, order.Total, order.Status,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return mapTxError(fmt.Errorf("insert order: %w", err))
	}

	for _, line := range order.Lines {
		line.OrderID = order.ID
		err := r.q.QueryRow(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			line.OrderID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal,
		).Scan(&line.ID)
		if err != nil {
			return mapTxError(fmt.Errorf("insert order line: %w", err))
		}
	}
	return nil
}

// selectOrders carga cabeceras, líneas y resumen de producto en una sola consulta.
// Toda orden tiene al menos una línea y los productos referenciados no se pueden borrar,
// por eso los joins son internos.
const selectOrders = `
	SELECT o.id, o.user_id, o.total, o.status, o.created_at,
	       l.id, l.product_id, l.quantity, l.unit_price, l.subtotal,
	       p.name, p.unit_price
	FROM orders o
	JOIN order_lines l ON l.order_id = o.id
	JOIN products p ON p.id = l.product_id`

const orderByNewest = ` ORDER BY o.created_at DESC, o.id DESC, l.id`

// GetByID obtiene la orden con sus líneas.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	list, err := r.query(ctx, selectOrders+` WHERE o.id = $1 ORDER BY l.id`, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListByUser órdenes de un usuario, más recientes primero.
func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.Order, error) {
	list, err := r.query(ctx, selectOrders+` WHERE o.user_id = $1`+orderByNewest, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	return list, nil
}

// ListAll todas las órdenes, más recientes primero.
func (r *OrderRepo) ListAll(ctx context.Context) ([]*entity.Order, error) {
	list, err := r.query(ctx, selectOrders+orderByNewest)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return list, nil
}

// query agrupa las filas (una por línea) en órdenes conservando el orden del resultado.
func (r *OrderRepo) query(ctx context.Context, sql string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*entity.Order, 0)
	var current *entity.Order
	for rows.Next() {
		var (
			o       entity.Order
			l       entity.OrderLine
			summary entity.ProductSummary
		)
		if err := scanOrderRow(rows, &o, &l, &summary); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if current == nil || current.ID != o.ID {
			o.Lines = make([]*entity.OrderLine, 0, 1)
			current = &o
			list = append(list, current)
		}
		l.OrderID = current.ID
		summary.ID = l.ProductID
		l.Product = &summary
		current.Lines = append(current.Lines, &l)
	}
	return list, rows.Err()
}

func scanOrderRow(rows pgx.Rows, o *entity.Order, l *entity.OrderLine, s *entity.ProductSummary) error {
	return rows.Scan(
		&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt,
		&l.ID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Subtotal,
		&s.Name, &s.UnitPrice,
	)
}
