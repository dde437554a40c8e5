package handler

import (
	"context"
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/advisor-calendar-sync/errors"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/http/middleware"
	ucErrors "github.com/johnquangdev/advisor-calendar-sync/internal/usecase/errors"
	"github.com/johnquangdev/advisor-calendar-sync/pkg/validator"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Debug("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger.
// Usecase sentinels are translated to AppErrors first.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)
	appErr := toAppError(err)

	if logger != nil {
		level := logger.Warn
		if appErr.HTTPCode >= http.StatusInternalServerError {
			level = logger.Error
		}
		level("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.String("app_code", appErr.Code.String()),
			zap.Error(err),
		)
	}

	info := ""
	if appErr.Raw != nil && appErr.HTTPCode < http.StatusInternalServerError {
		info = appErr.Raw.Error()
	}

	return c.JSON(appErr.HTTPCode, errs{
		Code:    appErr.Code,
		Message: appErr.Message,
		Info:    info,
		Details: appErr.Details,
	})
}

// toAppError maps usecase and domain errors to the HTTP error they render as
func toAppError(err error) errors.AppError {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stdErrors.Is(err, ucErrors.ErrRefreshFailed):
		return errors.ErrCalendarReconnectRequired(err)
	case stdErrors.Is(err, ucErrors.ErrNotConnected):
		return errors.ErrCalendarNotConnected()
	case stdErrors.Is(err, ucErrors.ErrMissingToken):
		return errors.ErrCalendarTokenMissing()
	case stdErrors.Is(err, ucErrors.ErrDecryptionKeyMissing):
		return errors.ErrDecryptionKeyMissing()
	case stdErrors.Is(err, ucErrors.ErrSyncInProgress):
		return errors.ErrCalendarSyncInProgress()
	case stdErrors.Is(err, ucErrors.ErrProviderUnavailable):
		return errors.ErrCalendarProviderUnavailable(err)
	case stdErrors.Is(err, ucErrors.ErrMeetingNotFound):
		return errors.ErrNotFound("Meeting")
	case stdErrors.Is(err, ucErrors.ErrOAuthStateInvalid):
		return errors.ErrOAuthStateInvalid()
	case stdErrors.Is(err, ucErrors.ErrOAuthExchange):
		return errors.ErrOAuthFailed("google", err)
	case stdErrors.Is(err, ucErrors.ErrInvalidCalendarFile):
		return errors.ErrCalendarImportFailed(err)
	case stdErrors.Is(err, ucErrors.ErrInvalidInput):
		return errors.ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, ucErrors.ErrPersistence):
		return errors.ErrDBQueryFailed("meetings", err)
	case stdErrors.Is(err, context.DeadlineExceeded):
		return errors.ErrExternalAPIFailed("calendar", err)
	}

	var httpErr *echo.HTTPError
	if stdErrors.As(err, &httpErr) {
		if httpErr.Code == http.StatusUnauthorized {
			return errors.ErrUnauthenticated()
		}
		return errors.ErrInvalidPayload(err)
	}

	return errors.ErrInternal(err)
}

// bindAndValidate binds the request into req and runs the echo validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.ErrInvalidPayload(err)
	}
	if err := c.Validate(req); err != nil {
		appErr := errors.ErrInvalidArgument("validation failed")
		for field, msg := range validator.FieldErrors(err) {
			appErr = appErr.WithDetail(field, msg)
		}
		return appErr
	}
	return nil
}

// currentUser returns the advisor set by the auth middleware
func currentUser(c echo.Context) (uuid.UUID, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return uuid.Nil, errors.ErrUnauthenticated()
	}
	return userID, nil
}
