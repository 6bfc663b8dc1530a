package handler

import (
	"evcharge-storefront/internal/middleware"
	"evcharge-storefront/internal/validation"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	if err := c.Validate(req); err != nil {
		msg := "Invalid request"
		if fields := validation.Fields(err); len(fields) > 0 {
			msg = "Invalid fields: " + strings.Join(fields, ", ")
		}
		return echo.NewHTTPError(http.StatusBadRequest, msg).SetInternal(err)
	}
	return nil
}

// identity returns the caller or the zero Identity for anonymous requests.
func identity(c echo.Context) middleware.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}
