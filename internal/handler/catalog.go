package handler

import (
	"evcharge-storefront/internal/dto"
	"evcharge-storefront/internal/model"
	"evcharge-storefront/internal/service"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	var q model.ProductQuery
	err := echo.QueryParamsBinder(c).
		String("q", &q.Search).
		Int("page", &q.Page).
		Int("pageSize", &q.PageSize).
		String("sort", &q.Sort).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters").SetInternal(err)
	}

	page, err := h.catalogService.ListProducts(ctx, q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ProductListResponse{
		Products:   page.Products,
		Pagination: page.Pagination,
	})
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product id")
	}

	product, err := h.catalogService.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ProductResponse{Product: product})
}
