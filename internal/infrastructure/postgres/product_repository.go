package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/api-inventario/internal/domain"
	"github.com/jhoicas/api-inventario/internal/domain/entity"
	"github.com/jhoicas/api-inventario/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, batch_number, name, unit_price, available_quantity, intake_date, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.BatchNumber, &p.Name, &p.UnitPrice, &p.AvailableQuantity,
		&p.IntakeDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto y asigna ID y timestamps.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (batch_number, name, unit_price, available_quantity, intake_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		product.BatchNumber, product.Name, product.UnitPrice, product.AvailableQuantity, product.IntakeDate,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) || isOutOfRange(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List lista productos por ID ascendente con paginación.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update aplica solo los campos presentes del patch. Cada columna ausente conserva su
// valor actual dentro del mismo UPDATE, así una reserva concurrente nunca se pisa.
func (r *ProductRepo) Update(ctx context.Context, id int64, patch entity.ProductPatch) (*entity.Product, error) {
	query := `
		UPDATE products
		SET batch_number       = COALESCE($2, batch_number),
		    name               = COALESCE($3, name),
		    unit_price         = COALESCE($4, unit_price),
		    available_quantity = COALESCE($5, available_quantity),
		    intake_date        = COALESCE($6, intake_date),
		    updated_at         = now()
		WHERE id = $1
		RETURNING ` + productColumns
	p, err := scanProduct(r.q.QueryRow(ctx, query,
		id, patch.BatchNumber, patch.Name, patch.UnitPrice, patch.AvailableQuantity, patch.IntakeDate,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isCheckViolation(err) || isOutOfRange(err) {
			return nil, domain.ErrInvalidInput
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// Delete elimina un producto por ID. Las líneas de orden lo protegen con ON DELETE RESTRICT.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isFKViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TryReserve descuenta quantity con un UPDATE condicional: la comparación y la resta
// ocurren en la misma sentencia bajo el lock de fila, nunca leer-y-luego-escribir.
// Si no se actualiza ninguna fila se consulta el producto para distinguir inexistente de sin stock.
func (r *ProductRepo) TryReserve(ctx context.Context, id int64, quantity int) (*entity.Product, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser un entero mayor que 0")
	}
	query := `
		UPDATE products
		SET available_quantity = available_quantity - $2, updated_at = now()
		WHERE id = $1 AND available_quantity >= $2
		RETURNING ` + productColumns
	p, err := scanProduct(r.q.QueryRow(ctx, query, id, quantity))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapTxError(fmt.Errorf("reserve stock: %w", err))
	}

	var name string
	err = r.q.QueryRow(ctx, `SELECT name FROM products WHERE id = $1`, id).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.ProductNotFoundError{ProductID: id}
		}
		return nil, mapTxError(fmt.Errorf("reserve stock lookup: %w", err))
	}
	return nil, &domain.StockError{ProductID: id, ProductName: name, Requested: quantity}
}
