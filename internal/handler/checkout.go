package handler

import (
	"evcharge-storefront/internal/dto"
	"evcharge-storefront/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	caller := identity(c)
	sess, err := h.checkoutService.Checkout(ctx, service.CheckoutInput{
		Items:  req.Items,
		UserID: caller.UserID,
		Email:  caller.Email,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sess)
}
