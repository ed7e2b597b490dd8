package integration

import "errors"

var (
	// Provider transport errors
	ErrProviderRequestFailed   = errors.New("integration: provider request failed")
	ErrProviderUnavailable     = errors.New("integration: provider temporarily unavailable")
	ErrProviderAuthFailed      = errors.New("integration: provider authentication failed")
	ErrProviderInvalidResponse = errors.New("integration: invalid provider response")
	ErrProviderNotRegistered   = errors.New("integration: no adapter registered for provider kind")

	// Integration configuration errors
	ErrInvalidName          = errors.New("integration: name is required")
	ErrInvalidProviderKind  = errors.New("integration: invalid provider kind")
	ErrInvalidBaseURL       = errors.New("integration: base URL is required")
	ErrInvalidMappingConfig = errors.New("integration: invalid mapping configuration")

	// Run coordination errors
	ErrSyncAlreadyRunning = errors.New("integration: sync already running for this integration")
)
