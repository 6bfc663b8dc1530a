package handler

import (
	"evcharge-storefront/internal/cart"
	"evcharge-storefront/internal/dto"
	"evcharge-storefront/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	caller := identity(c)
	if caller.UserID == "" {
		return service.ErrUnauthenticated
	}

	var req dto.CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.orderService.Commit(ctx, service.CommitInput{
		UserID:          caller.UserID,
		UserEmail:       req.UserEmail,
		SessionID:       req.StripeSessionID,
		Cart:            req.Cart,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
	})
	if err != nil {
		return err
	}

	dropped := result.Dropped
	if dropped == nil {
		dropped = []cart.Dropped{}
	}

	return c.JSON(http.StatusOK, &dto.CreateOrderResponse{
		Success:      true,
		OrderNumber:  result.Order.OrderNumber,
		Subtotal:     result.Order.Subtotal,
		Total:        result.Order.Total,
		DroppedLines: dropped,
	})
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	caller := identity(c)
	if caller.UserID == "" {
		return service.ErrUnauthenticated
	}

	orders, err := h.orderService.ListForUser(ctx, caller.UserID)
	if err != nil {
		return err
	}

	resp := dto.OrderListResponse{Orders: make([]dto.Order, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, dto.NewOrder(o))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) OrderBySession(c echo.Context) error {
	ctx := c.Request().Context()

	caller := identity(c)
	if caller.UserID == "" {
		return service.ErrUnauthenticated
	}

	var req dto.SessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.GetBySession(ctx, caller.UserID, req.StripeSessionID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OrderResponse{Order: dto.NewRedactedOrder(order)})
}
