package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/advisor-calendar-sync/pkg/jwt"
)

const (
	// UserIDKey holds the authenticated advisor's uuid.UUID in the echo context
	UserIDKey = "user_id"
	// ClaimsKey holds the validated *jwt.Claims in the echo context
	ClaimsKey = "claims"
)

// TokenValidator validates CRM access tokens
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*jwt.Claims, error)
}

// EchoAuth returns an Echo middleware that validates the bearer JWT and sets
// "user_id" (uuid.UUID) and "claims" (*jwt.Claims) into the Echo context
func EchoAuth(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(ClaimsKey, claims)
			c.Set(UserIDKey, claims.UserID)

			return next(c)
		}
	}
}

// GetUserID retrieves the authenticated advisor from the echo context
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(UserIDKey).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}

// extractToken reads the Authorization header, falling back to the access_token cookie
func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}
