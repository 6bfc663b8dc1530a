package handler

import (
	"evcharge-storefront/internal/dto"
	"evcharge-storefront/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type ShippingHandler struct {
	shippingService service.ShippingService
}

func NewShippingHandler(shippingService service.ShippingService) *ShippingHandler {
	return &ShippingHandler{
		shippingService: shippingService,
	}
}

func (h *ShippingHandler) Rates(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ShippingRatesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rates, err := h.shippingService.Quote(ctx, req.AddressTo, req.AllParcels())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ShippingRatesResponse{Rates: rates})
}
