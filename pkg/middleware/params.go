package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequireUUIDParam parses the path parameter param as a UUID and stores it under key
func RequireUUIDParam(param, key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := uuid.Parse(c.Param(param))
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]interface{}{
					"error":   "invalid_" + param,
					"message": param + " must be a valid UUID",
				})
			}
			c.Set(key, id)
			return next(c)
		}
	}
}
