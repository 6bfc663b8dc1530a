package handler

import (
	"evcharge-storefront/internal/dto"
	"evcharge-storefront/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	orderService        service.OrderService
	notificationService service.NotificationService
}

func NewNotificationHandler(orderService service.OrderService, notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		orderService:        orderService,
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) ResendOrderConfirmation(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := h.orderService.ResendConfirmation(ctx, req.StripeSessionID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.SendResponse{Success: true, ID: id})
}

func (h *NotificationHandler) Contact(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := h.notificationService.SendContactMessage(ctx, req.ToModel())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.SendResponse{Success: true, ID: id})
}
