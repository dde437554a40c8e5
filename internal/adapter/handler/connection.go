package handler

import (
	stdErrors "errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/advisor-calendar-sync/errors"
	"github.com/johnquangdev/advisor-calendar-sync/internal/adapter/dto/calendar"
	"github.com/johnquangdev/advisor-calendar-sync/internal/adapter/presenter"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/connection"
)

// Connection handles linking and unlinking a Google calendar
type Connection struct {
	connectService connection.Service
	// successRedirect is where the browser lands after the callback; empty renders JSON
	successRedirect string
	logger          *zap.Logger
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(connectService connection.Service, successRedirect string, logger *zap.Logger) *Connection {
	return &Connection{
		connectService:  connectService,
		successRedirect: successRedirect,
		logger:          logger,
	}
}

// GoogleConnect handles GET /calendar/google/connect
// @Summary      Start Google Calendar connection
// @Description  Returns the Google consent URL. With redirect=true the browser is sent there directly.
// @Tags         Calendar Connection
// @Produce      json
// @Security     BearerAuth
// @Param        redirect  query     bool  false  "Redirect to Google instead of returning the URL"
// @Success      200       {object}  calendar.ConnectURLResponse
// @Success      307       "Redirect to Google"
// @Router       /calendar/google/connect [get]
func (h *Connection) GoogleConnect(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var redirect bool
	if err := echo.QueryParamsBinder(c).Bool("redirect", &redirect).BindError(); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("redirect must be a boolean"))
	}

	connectURL, err := h.connectService.BeginGoogleConnect(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if redirect {
		return c.Redirect(http.StatusTemporaryRedirect, connectURL.URL)
	}
	return HandleSuccess(h.logger, c, calendar.ConnectURLResponse{
		URL:   connectURL.URL,
		State: connectURL.State,
	})
}

// GoogleCallback handles GET /calendar/google/callback
// @Summary      Complete Google Calendar connection
// @Description  OAuth redirect target. The state parameter identifies the user, so no bearer token is needed.
// @Tags         Calendar Connection
// @Produce      json
// @Param        code   query     string  true  "Authorization code"
// @Param        state  query     string  true  "OAuth state"
// @Success      200    {object}  calendar.ConnectionResponse
// @Success      307    "Redirect to the CRM settings page"
// @Failure      400    {object}  map[string]interface{}  "Invalid or expired state"
// @Failure      401    {object}  map[string]interface{}  "Google rejected the authorization"
// @Router       /calendar/google/callback [get]
func (h *Connection) GoogleCallback(c echo.Context) error {
	if reason := c.QueryParam("error"); reason != "" {
		return h.callbackFailed(c, errors.ErrOAuthFailed("google", stdErrors.New(reason)))
	}

	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return h.callbackFailed(c, errors.ErrInvalidArgument("missing code or state parameter"))
	}

	conn, err := h.connectService.CompleteGoogleConnect(c.Request().Context(), state, code)
	if err != nil {
		return h.callbackFailed(c, err)
	}

	if h.logger != nil {
		h.logger.Info("google calendar connected", zap.String("user_id", conn.UserID.String()))
	}

	if h.successRedirect != "" {
		return c.Redirect(http.StatusTemporaryRedirect, withQuery(h.successRedirect, "calendar", "connected"))
	}
	return HandleSuccess(h.logger, c, presenter.ToConnectionResponse(conn))
}

// Disconnect handles DELETE /calendar/google
// @Summary      Disconnect Google Calendar
// @Tags         Calendar Connection
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      412  {object}  map[string]interface{}  "No calendar connection"
// @Router       /calendar/google [delete]
func (h *Connection) Disconnect(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.connectService.Disconnect(c.Request().Context(), userID); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{
		"provider":  "google",
		"connected": false,
	})
}

// callbackFailed sends the browser back to the CRM with an error code when a
// redirect target is configured, and renders the error otherwise
func (h *Connection) callbackFailed(c echo.Context, err error) error {
	if h.successRedirect == "" {
		return HandleError(h.logger, c, err)
	}

	appErr := toAppError(err)
	if h.logger != nil {
		h.logger.Warn("google calendar connection failed",
			zap.String("app_code", appErr.Code.String()),
			zap.Error(err),
		)
	}
	target := withQuery(h.successRedirect, "calendar", "error")
	target = withQuery(target, "reason", appErr.Code.String())
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

func withQuery(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
