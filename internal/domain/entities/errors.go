package entities

import "errors"

// Domain errors
var (
	// Meeting errors
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrInvalidMeetingTitle = errors.New("invalid meeting title")
	ErrInvalidProvider     = errors.New("invalid meeting provider")

	// Client errors
	ErrClientNotFound = errors.New("client not found")

	// Calendar connection errors
	ErrConnectionNotFound = errors.New("calendar connection not found")

	// Provider errors
	ErrProviderEventNotFound = errors.New("provider event not found")
)
