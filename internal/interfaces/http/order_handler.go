package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/api-inventario/internal/application/dto"
	"github.com/jhoicas/api-inventario/internal/application/orders"
)

// OrderHandler maneja creación y consulta de órdenes.
type OrderHandler struct {
	place *orders.PlaceOrderUseCase
	query *orders.QueryUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(place *orders.PlaceOrderUseCase, query *orders.QueryUseCase) *OrderHandler {
	return &OrderHandler{place: place, query: query}
}

// Create godoc
// @Summary      Crear orden
// @Description  Reserva stock de cada ítem y crea la orden en estado PENDING. Todo o nada.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Ítems (productId, quantity)"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse  "producto inexistente"
// @Failure      409   {object}  dto.ErrorResponse  "stock insuficiente"
// @Failure      503   {object}  dto.ErrorResponse  "contención, reintentar"
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := parseAndValidate(c, &in); err != nil {
		return err
	}
	out, err := h.place.PlaceOrderFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// MyOrders godoc
// @Summary      Mis órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/orders/my-orders [get]
func (h *OrderHandler) MyOrders(c *fiber.Ctx) error {
	list, err := h.query.ListMyOrders(c.UserContext(), GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(orders.ToOrderResponses(list))
}

// ListAll godoc
// @Summary      Listar todas las órdenes (ADMIN)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	list, err := h.query.ListAllOrders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(orders.ToOrderResponses(list))
}

// GetByID godoc
// @Summary      Obtener orden por ID
// @Description  Solo el dueño de la orden puede verla; para otros usuarios responde 404.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.query.GetOrder(c.UserContext(), id, orders.Requester{UserID: GetUserID(c)})
	if err != nil {
		return err
	}
	return c.JSON(orders.ToOrderResponse(order))
}

// Receipt godoc
// @Summary      Comprobante PDF de la orden
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receipt [get]
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	pdfBytes, filename, err := h.query.DownloadReceiptPDF(c.UserContext(), id, orders.Requester{UserID: GetUserID(c)})
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(pdfBytes)
}
