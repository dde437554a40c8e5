package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/advisor-calendar-sync/pkg/jwt"
)

func TestEchoAuth(t *testing.T) {
	manager := jwt.NewManager("secret", time.Minute, "advisor-crm")
	userID := uuid.New()
	token, err := manager.GenerateAccessToken(userID, "advisor@example.com")
	require.NoError(t, err)

	e := echo.New()
	handler := EchoAuth(manager)(func(c echo.Context) error {
		id, ok := GetUserID(c)
		require.True(t, ok)
		return c.String(http.StatusOK, id.String())
	})

	tests := []struct {
		name   string
		setup  func(req *http.Request)
		status int
	}{
		{name: "bearer header", setup: func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }, status: http.StatusOK},
		{name: "cookie", setup: func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "access_token", Value: token}) }, status: http.StatusOK},
		{name: "missing", setup: func(req *http.Request) {}, status: http.StatusUnauthorized},
		{name: "invalid", setup: func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			err := handler(e.NewContext(req, rec))
			if tt.status == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, userID.String(), rec.Body.String())
				return
			}
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.status, he.Code)
		})
	}
}
