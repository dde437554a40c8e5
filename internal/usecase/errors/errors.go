package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidState  = errors.New("invalid state")
	ErrInternalError = errors.New("internal server error")
)

// Credential errors
var (
	ErrNotConnected         = errors.New("no active calendar connection")
	ErrMissingToken         = errors.New("calendar access token is missing")
	ErrRefreshFailed        = errors.New("calendar token expired and could not be refreshed, please reconnect your calendar")
	ErrDecryptionKeyMissing = errors.New("encryption key required to decrypt tokens")
)

// Provider errors
var (
	ErrProviderUnavailable = errors.New("calendar provider unavailable")
)

// Sync errors
var (
	ErrSyncInProgress = errors.New("calendar sync already running for this user")
)

// Meeting lifecycle errors
var (
	ErrMeetingNotFound   = errors.New("meeting not found")
	ErrMeetingNotDeleted = errors.New("meeting is not deleted")
	ErrPersistence       = errors.New("persistence error")
)

// Connection flow errors
var (
	ErrOAuthStateInvalid = errors.New("oauth state invalid or expired")
	ErrOAuthExchange     = errors.New("oauth code exchange failed")
)

// Import errors
var (
	ErrInvalidCalendarFile = errors.New("invalid calendar file")
)
