package errors

import "strconv"

// ErrorCode is the machine readable code returned to API clients
type ErrorCode int32

const (
	ErrorCode_UNSPECIFIED ErrorCode = 0
	ErrorCode_HTTP_OK     ErrorCode = 200

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1006

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = 2001
	ErrorCode_AUTH_OAUTH_FAILED  ErrorCode = 2002
	ErrorCode_AUTH_STATE_INVALID ErrorCode = 2003

	// Calendar
	ErrorCode_CALENDAR_NOT_CONNECTED          ErrorCode = 3000
	ErrorCode_CALENDAR_TOKEN_MISSING          ErrorCode = 3001
	ErrorCode_CALENDAR_RECONNECT_REQUIRED     ErrorCode = 3002
	ErrorCode_CALENDAR_PROVIDER_UNAVAILABLE   ErrorCode = 3003
	ErrorCode_CALENDAR_DECRYPTION_KEY_MISSING ErrorCode = 3004
	ErrorCode_CALENDAR_IMPORT_FAILED          ErrorCode = 3005
	ErrorCode_CALENDAR_SYNC_IN_PROGRESS       ErrorCode = 3006

	// Meetings
	ErrorCode_MEETING_NOT_FOUND   ErrorCode = 4000
	ErrorCode_MEETING_NOT_DELETED ErrorCode = 4001

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED      ErrorCode = 5000
	ErrorCode_INTEGRATION_CACHE_FAILED        ErrorCode = 5001
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED ErrorCode = 5002

	// Database
	ErrorCode_DB_CONNECTION_FAILED ErrorCode = 6000
	ErrorCode_DB_QUERY_FAILED      ErrorCode = 6001
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNSPECIFIED:                     "UNSPECIFIED",
	ErrorCode_HTTP_OK:                         "HTTP_OK",
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                       "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:                  "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:               "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:                 "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:                 "INVALID_PAYLOAD",
	ErrorCode_AUTH_INVALID_TOKEN:              "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:              "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_OAUTH_FAILED:               "AUTH_OAUTH_FAILED",
	ErrorCode_AUTH_STATE_INVALID:              "AUTH_STATE_INVALID",
	ErrorCode_CALENDAR_NOT_CONNECTED:          "CALENDAR_NOT_CONNECTED",
	ErrorCode_CALENDAR_TOKEN_MISSING:          "CALENDAR_TOKEN_MISSING",
	ErrorCode_CALENDAR_RECONNECT_REQUIRED:     "CALENDAR_RECONNECT_REQUIRED",
	ErrorCode_CALENDAR_PROVIDER_UNAVAILABLE:   "CALENDAR_PROVIDER_UNAVAILABLE",
	ErrorCode_CALENDAR_DECRYPTION_KEY_MISSING: "CALENDAR_DECRYPTION_KEY_MISSING",
	ErrorCode_CALENDAR_IMPORT_FAILED:          "CALENDAR_IMPORT_FAILED",
	ErrorCode_CALENDAR_SYNC_IN_PROGRESS:       "CALENDAR_SYNC_IN_PROGRESS",
	ErrorCode_MEETING_NOT_FOUND:               "MEETING_NOT_FOUND",
	ErrorCode_MEETING_NOT_DELETED:             "MEETING_NOT_DELETED",
	ErrorCode_INTEGRATION_STORAGE_FAILED:      "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:        "INTEGRATION_CACHE_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:            "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:                 "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "ErrorCode(" + strconv.Itoa(int(c)) + ")"
}

// MarshalText renders the code by name in JSON bodies
func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
