// Package memstore implementa los puertos de repositorio y el TxRunner en memoria.
// Las transacciones se serializan con un mutex y se revierten restaurando una copia,
// así que ofrece las mismas garantías todo-o-nada que la implementación PostgreSQL.
// Se usa en tests de casos de uso y handlers.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/api-inventario/internal/domain"
	"github.com/jhoicas/api-inventario/internal/domain/entity"
	"github.com/jhoicas/api-inventario/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.OrderRepository   = (*OrderRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
)

// Store estado compartido en memoria.
type Store struct {
	mu       sync.Mutex
	products map[int64]*entity.Product
	orders   map[int64]*entity.Order
	users    map[int64]*entity.User
	seq      counters
	last     time.Time

	// FailOrderCreate, si no es nil, se retorna desde OrderRepo.Create (simula fallo de BD).
	FailOrderCreate error
}

type counters struct {
	product, order, line, user int64
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		products: make(map[int64]*entity.Product),
		orders:   make(map[int64]*entity.Order),
		users:    make(map[int64]*entity.User),
	}
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Orders repositorio de órdenes fuera de transacción.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// RunOrder ejecuta fn con repos atados a una transacción serializada.
// Si fn falla se restaura el estado previo completo.
func (s *Store) RunOrder(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.ErrTransient
	}
	snap := s.snapshot()
	err := fn(&ProductRepo{s: s, tx: true}, &OrderRepo{s: s, tx: true})
	if err == nil && ctx.Err() != nil {
		err = domain.ErrTransient
	}
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	products map[int64]entity.Product
	orders   map[int64]*entity.Order
	seq      counters
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		products: make(map[int64]entity.Product, len(s.products)),
		orders:   make(map[int64]*entity.Order, len(s.orders)),
		seq:      s.seq,
	}
	for id, p := range s.products {
		snap.products[id] = *p
	}
	for id, o := range s.orders {
		snap.orders[id] = o
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.products = make(map[int64]*entity.Product, len(snap.products))
	for id, p := range snap.products {
		cp := p
		s.products[id] = &cp
	}
	s.orders = snap.orders
	s.seq = snap.seq
}

// lock toma el mutex salvo que el repo ya esté dentro de RunOrder.
func (s *Store) lock(tx bool) func() {
	if tx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// now devuelve un instante estrictamente creciente.
func (s *Store) now() time.Time {
	t := time.Now()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// ── Products ──────────────────────────────────────────────────────────────────

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	s  *Store
	tx bool
}

// Create asigna ID y timestamps y guarda una copia.
func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.s.lock(r.tx)()
	r.s.seq.product++
	p.ID = r.s.seq.product
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.s.now()
		p.UpdatedAt = p.CreatedAt
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

// GetByID retorna (nil, nil) si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	defer r.s.lock(r.tx)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// List lista productos por ID ascendente con paginación.
func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	defer r.s.lock(r.tx)()
	ids := make([]int64, 0, len(r.s.products))
	for id := range r.s.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	list := make([]*entity.Product, 0, len(ids))
	for i, id := range ids {
		if i < offset {
			continue
		}
		if limit > 0 && len(list) >= limit {
			break
		}
		cp := *r.s.products[id]
		list = append(list, &cp)
	}
	return list, nil
}

// Update aplica el patch sobre la fila actual bajo el mutex del store.
func (r *ProductRepo) Update(_ context.Context, id int64, patch entity.ProductPatch) (*entity.Product, error) {
	defer r.s.lock(r.tx)()
	cur, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := *cur
	if patch.BatchNumber != nil {
		next.BatchNumber = *patch.BatchNumber
	}
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.UnitPrice != nil {
		next.UnitPrice = *patch.UnitPrice
	}
	if patch.AvailableQuantity != nil {
		next.AvailableQuantity = *patch.AvailableQuantity
	}
	if patch.IntakeDate != nil {
		next.IntakeDate = *patch.IntakeDate
	}
	if next.AvailableQuantity < 0 || next.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	next.UpdatedAt = r.s.now()
	*cur = next
	out := next
	return &out, nil
}

// Delete falla con domain.ErrConflict si alguna orden referencia el producto.
func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.products[id]; !ok {
		return domain.ErrNotFound
	}
	for _, o := range r.s.orders {
		for _, l := range o.Lines {
			if l.ProductID == id {
				return domain.ErrConflict
			}
		}
	}
	delete(r.s.products, id)
	return nil
}

// TryReserve descuenta solo si hay cantidad suficiente (decremento condicional).
func (r *ProductRepo) TryReserve(_ context.Context, id int64, quantity int) (*entity.Product, error) {
	defer r.s.lock(r.tx)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}
	if quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser un entero mayor que 0")
	}
	if p.AvailableQuantity < quantity {
		return nil, &domain.StockError{ProductID: p.ID, ProductName: p.Name, Requested: quantity}
	}
	p.AvailableQuantity -= quantity
	p.UpdatedAt = r.s.now()
	cp := *p
	return &cp, nil
}

// ── Orders ────────────────────────────────────────────────────────────────────

// OrderRepo implementación en memoria de OrderRepository.
type OrderRepo struct {
	s  *Store
	tx bool
}

// Create guarda la orden con sus líneas y asigna IDs y CreatedAt.
func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	defer r.s.lock(r.tx)()
	if r.s.FailOrderCreate != nil {
		return r.s.FailOrderCreate
	}
	r.s.seq.order++
	o.ID = r.s.seq.order
	o.CreatedAt = r.s.now()
	stored := &entity.Order{
		ID: o.ID, UserID: o.UserID, Total: o.Total, Status: o.Status, CreatedAt: o.CreatedAt,
		Lines: make([]*entity.OrderLine, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		r.s.seq.line++
		l.ID = r.s.seq.line
		l.OrderID = o.ID
		cp := *l
		cp.Product = nil
		stored.Lines = append(stored.Lines, &cp)
	}
	r.s.orders[o.ID] = stored
	return nil
}

// GetByID obtiene la orden con sus líneas; (nil, nil) si no existe.
func (r *OrderRepo) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	defer r.s.lock(r.tx)()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return r.hydrate(o), nil
}

// ListByUser órdenes de un usuario, más recientes primero.
func (r *OrderRepo) ListByUser(_ context.Context, userID int64) ([]*entity.Order, error) {
	defer r.s.lock(r.tx)()
	return r.list(func(o *entity.Order) bool { return o.UserID == userID }), nil
}

// ListAll todas las órdenes, más recientes primero.
func (r *OrderRepo) ListAll(_ context.Context) ([]*entity.Order, error) {
	defer r.s.lock(r.tx)()
	return r.list(func(*entity.Order) bool { return true }), nil
}

func (r *OrderRepo) list(keep func(*entity.Order) bool) []*entity.Order {
	out := make([]*entity.Order, 0)
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, r.hydrate(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// hydrate copia la orden y adjunta el resumen actual del producto de cada línea.
func (r *OrderRepo) hydrate(o *entity.Order) *entity.Order {
	cp := *o
	cp.Lines = make([]*entity.OrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lc := *l
		if p, ok := r.s.products[l.ProductID]; ok {
			lc.Product = &entity.ProductSummary{ID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice}
		}
		cp.Lines = append(cp.Lines, &lc)
	}
	return &cp
}

// ── Users ─────────────────────────────────────────────────────────────────────

// UserRepo implementación en memoria de UserRepository.
type UserRepo struct {
	s *Store
}

// Create retorna domain.ErrEmailAlreadyExists si el email ya existe (sin distinguir mayúsculas).
func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	defer r.s.lock(false)()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.seq.user++
	u.ID = r.s.seq.user
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

// GetByID retorna (nil, nil) si no existe.
func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	defer r.s.lock(false)()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// GetByEmail busca sin distinguir mayúsculas; (nil, nil) si no existe.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	defer r.s.lock(false)()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}
