package handlers

import (
	"strconv"

	"github.com/anonto42/bharat-link/backend/internal/middleware"
	apperrors "github.com/anonto42/bharat-link/backend/pkg/errors"
	"github.com/labstack/echo/v4"
)

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": true, "message": message})
}

// caller returns the authenticated principal. Routes that need it are wrapped
// in RequireAuth, so a missing principal means a wiring mistake.
func caller(c echo.Context) (*middleware.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	return p, nil
}

// bindAndValidate decodes the body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperrors.InvalidArg("Invalid request payload")
	}
	return c.Validate(req)
}

func queryLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidField("limit", "must be an integer")
	}
	return n, nil
}
