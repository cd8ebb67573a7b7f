package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/api-inventario/internal/application/dto"
	"github.com/jhoicas/api-inventario/internal/domain"
	"github.com/jhoicas/api-inventario/internal/domain/entity"
	"github.com/jhoicas/api-inventario/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock solo cambia por órdenes
// (TryReserve) o por ajuste explícito de un administrador en Update.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	intake, err := parseIntakeDate(in.IntakeDate)
	if err != nil {
		return nil, err
	}
	if err := checkUnitPrice(in.UnitPrice); err != nil {
		return nil, err
	}
	if err := checkQuantity(in.AvailableQuantity); err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		BatchNumber:       strings.TrimSpace(in.BatchNumber),
		Name:              strings.TrimSpace(in.Name),
		UnitPrice:         in.UnitPrice.Round(2),
		AvailableQuantity: in.AvailableQuantity,
		IntakeDate:        intake,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID. Retorna domain.ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(product), nil
}

// Update aplica solo los campos presentes en la entrada. No lee el producto antes de
// escribir: el stock solo cambia si la entrada trae availableQuantity.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var patch entity.ProductPatch
	if in.BatchNumber != nil {
		v := strings.TrimSpace(*in.BatchNumber)
		patch.BatchNumber = &v
	}
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		patch.Name = &v
	}
	if in.UnitPrice != nil {
		if err := checkUnitPrice(*in.UnitPrice); err != nil {
			return nil, err
		}
		v := in.UnitPrice.Round(2)
		patch.UnitPrice = &v
	}
	if in.AvailableQuantity != nil {
		if err := checkQuantity(*in.AvailableQuantity); err != nil {
			return nil, err
		}
		patch.AvailableQuantity = in.AvailableQuantity
	}
	if in.IntakeDate != nil {
		intake, err := parseIntakeDate(*in.IntakeDate)
		if err != nil {
			return nil, err
		}
		patch.IntakeDate = &intake
	}
	product, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un producto por ID. Falla con domain.ErrConflict si alguna orden lo referencia.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	return uc.repo.Delete(ctx, id)
}

func checkUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return domain.NewValidationError("unitPrice", "no puede ser negativo")
	}
	if price.Round(2).GreaterThan(entity.MaxUnitPrice) {
		return domain.NewValidationError("unitPrice", "no puede ser mayor que "+entity.MaxUnitPrice.String())
	}
	return nil
}

func checkQuantity(qty int) error {
	if qty < 0 {
		return domain.NewValidationError("availableQuantity", "no puede ser negativo")
	}
	if qty > entity.MaxQuantity {
		return domain.NewValidationError("availableQuantity", fmt.Sprintf("no puede ser mayor que %d", entity.MaxQuantity))
	}
	return nil
}

func parseIntakeDate(s string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domain.NewValidationError("intakeDate", "debe tener formato YYYY-MM-DD")
	}
	return t, nil
}

// ToProductResponse proyecta la entidad al DTO de salida.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:                p.ID,
		BatchNumber:       p.BatchNumber,
		Name:              p.Name,
		UnitPrice:         p.UnitPrice,
		AvailableQuantity: p.AvailableQuantity,
		IntakeDate:        p.IntakeDate.Format(dto.DateLayout),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
