package handler

import (
	"evcharge-storefront/internal/dto"
	"evcharge-storefront/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type PromotionHandler struct {
	promotionService service.PromotionService
}

func NewPromotionHandler(promotionService service.PromotionService) *PromotionHandler {
	return &PromotionHandler{
		promotionService: promotionService,
	}
}

func (h *PromotionHandler) Resolve(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PromotionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	applied, err := h.promotionService.Resolve(ctx, req.Code, req.Subtotal)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.PromotionResponse{
		Code:      applied.Code,
		Reduction: applied.Reduction,
	})
}
