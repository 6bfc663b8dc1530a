package handler

import (
	"evcharge-storefront/internal/service"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

func (h *WebhookHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid webhook payload").SetInternal(err)
	}

	err = h.webhookService.Handle(ctx, body, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusOK)
}
