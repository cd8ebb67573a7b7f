package orders

import (
	"context"
	"fmt"

	"github.com/jhoicas/api-inventario/internal/application/dto"
	"github.com/jhoicas/api-inventario/internal/domain"
	"github.com/jhoicas/api-inventario/internal/domain/entity"
	"github.com/jhoicas/api-inventario/internal/domain/repository"
)

// Requester identidad de quien consulta (tomada del token).
type Requester struct {
	UserID int64
}

// QueryUseCase consultas de órdenes con sus líneas y el resumen de cada producto.
type QueryUseCase struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	generator ReceiptPDFGenerator
}

// NewQueryUseCase construye el caso de uso. generator puede ser nil si no se sirven comprobantes.
func NewQueryUseCase(orderRepo repository.OrderRepository, userRepo repository.UserRepository, generator ReceiptPDFGenerator) *QueryUseCase {
	return &QueryUseCase{orderRepo: orderRepo, userRepo: userRepo, generator: generator}
}

// GetOrder retorna la orden solo si pertenece al solicitante.
// Una orden ajena responde igual que una inexistente (domain.ErrNotFound).
func (uc *QueryUseCase) GetOrder(ctx context.Context, orderID int64, requester Requester) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("obtener orden: %w", err)
	}
	if order == nil || order.UserID != requester.UserID {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// ListMyOrders órdenes del usuario, más recientes primero.
func (uc *QueryUseCase) ListMyOrders(ctx context.Context, userID int64) ([]*entity.Order, error) {
	list, err := uc.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listar órdenes del usuario: %w", err)
	}
	return list, nil
}

// ListAllOrders todas las órdenes, más recientes primero (solo ADMIN; el rol se verifica en HTTP).
func (uc *QueryUseCase) ListAllOrders(ctx context.Context) ([]*entity.Order, error) {
	list, err := uc.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar órdenes: %w", err)
	}
	return list, nil
}

// DownloadReceiptPDF genera el comprobante PDF de una orden propia.
// Retorna (pdfBytes, filename, nil) o domain.ErrNotFound si la orden no existe o es ajena.
func (uc *QueryUseCase) DownloadReceiptPDF(ctx context.Context, orderID int64, requester Requester) ([]byte, string, error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("comprobante: generador no configurado")
	}
	order, err := uc.GetOrder(ctx, orderID, requester)
	if err != nil {
		return nil, "", err
	}
	customer, err := uc.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener cliente: %w", err)
	}
	if customer == nil {
		customer = &entity.User{ID: order.UserID}
	}
	pdfBytes, err := uc.generator.GenerateReceiptPDF(ctx, order, customer)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("orden_%d.pdf", order.ID), nil
}

// ToOrderResponse proyecta la orden al DTO de salida.
func ToOrderResponse(o *entity.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	out := &dto.OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		Lines:     make([]dto.OrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		line := dto.OrderLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		}
		if l.Product != nil {
			line.Product = &dto.ProductSummaryResponse{
				ID:        l.Product.ID,
				Name:      l.Product.Name,
				UnitPrice: l.Product.UnitPrice,
			}
		}
		out.Lines = append(out.Lines, line)
	}
	return out
}

// ToOrderResponses proyecta una lista de órdenes.
func ToOrderResponses(list []*entity.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, *ToOrderResponse(o))
	}
	return out
}
