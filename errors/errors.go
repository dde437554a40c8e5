package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the error type rendered by the HTTP layer
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

func newAppError(raw error, httpCode int, code ErrorCode, message string) AppError {
	return AppError{
		Raw:       raw,
		HTTPCode:  httpCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// General Errors
func ErrInternal(err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTERNAL, "Internal server error")
}

func ErrInvalidArgument(message string) AppError {
	return newAppError(nil, http.StatusBadRequest, ErrorCode_INVALID_ARGUMENT, message)
}

func ErrInvalidPayload(err error) AppError {
	return newAppError(err, http.StatusBadRequest, ErrorCode_INVALID_PAYLOAD, "Invalid payload")
}

func ErrNotFound(resource string) AppError {
	return newAppError(nil, http.StatusNotFound, ErrorCode_NOT_FOUND, fmt.Sprintf("%s not found", resource))
}

func ErrUnauthenticated() AppError {
	return newAppError(nil, http.StatusUnauthorized, ErrorCode_UNAUTHENTICATED, "Authentication required")
}

// Authentication Errors
func ErrInvalidToken() AppError {
	return newAppError(nil, http.StatusUnauthorized, ErrorCode_AUTH_INVALID_TOKEN, "Invalid authentication token")
}

func ErrTokenExpired() AppError {
	return newAppError(nil, http.StatusUnauthorized, ErrorCode_AUTH_TOKEN_EXPIRED, "Authentication token has expired")
}

func ErrOAuthFailed(provider string, err error) AppError {
	return newAppError(err, http.StatusUnauthorized, ErrorCode_AUTH_OAUTH_FAILED,
		fmt.Sprintf("OAuth authentication failed with %s", provider))
}

func ErrOAuthStateInvalid() AppError {
	return newAppError(nil, http.StatusBadRequest, ErrorCode_AUTH_STATE_INVALID, "OAuth state is invalid or expired")
}

// Calendar Errors
func ErrCalendarNotConnected() AppError {
	return newAppError(nil, http.StatusPreconditionFailed, ErrorCode_CALENDAR_NOT_CONNECTED,
		"No calendar connection found. Please connect your calendar.")
}

func ErrCalendarTokenMissing() AppError {
	return newAppError(nil, http.StatusPreconditionFailed, ErrorCode_CALENDAR_TOKEN_MISSING,
		"Calendar access token is missing. Please reconnect your calendar.")
}

// ErrCalendarReconnectRequired is the actionable error shown when a refresh is rejected
func ErrCalendarReconnectRequired(err error) AppError {
	return newAppError(err, http.StatusUnauthorized, ErrorCode_CALENDAR_RECONNECT_REQUIRED,
		"Calendar token expired and could not be refreshed. Please reconnect your calendar.")
}

func ErrCalendarProviderUnavailable(err error) AppError {
	return newAppError(err, http.StatusBadGateway, ErrorCode_CALENDAR_PROVIDER_UNAVAILABLE,
		"Calendar provider is unavailable")
}

func ErrDecryptionKeyMissing() AppError {
	return newAppError(nil, http.StatusInternalServerError, ErrorCode_CALENDAR_DECRYPTION_KEY_MISSING,
		"Token decryption key is not configured")
}

func ErrCalendarImportFailed(err error) AppError {
	return newAppError(err, http.StatusUnprocessableEntity, ErrorCode_CALENDAR_IMPORT_FAILED,
		"Calendar file could not be imported")
}

func ErrCalendarSyncInProgress() AppError {
	return newAppError(nil, http.StatusConflict, ErrorCode_CALENDAR_SYNC_IN_PROGRESS,
		"A calendar sync is already running. Try again shortly.")
}

// Meeting Errors
func ErrMeetingNotFound(meetingID string) AppError {
	return newAppError(nil, http.StatusNotFound, ErrorCode_MEETING_NOT_FOUND, "Meeting not found").
		WithDetail("meeting_id", meetingID)
}

func ErrMeetingNotDeleted(meetingID string) AppError {
	return newAppError(nil, http.StatusConflict, ErrorCode_MEETING_NOT_DELETED, "Meeting is not deleted").
		WithDetail("meeting_id", meetingID)
}

// Integration Errors
func ErrStorageFailed(operation string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTEGRATION_STORAGE_FAILED,
		fmt.Sprintf("Storage operation failed: %s", operation))
}

func ErrCacheFailed(operation string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTEGRATION_CACHE_FAILED,
		fmt.Sprintf("Cache operation failed: %s", operation))
}

func ErrExternalAPIFailed(service string, err error) AppError {
	return newAppError(err, http.StatusBadGateway, ErrorCode_INTEGRATION_EXTERNAL_API_FAILED,
		fmt.Sprintf("External API call failed: %s", service))
}

// Database Errors
func ErrDBConnectionFailed(err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_DB_CONNECTION_FAILED, "Database connection failed")
}

func ErrDBQueryFailed(query string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_DB_QUERY_FAILED, "Database query failed").
		WithDetail("query", query)
}
