package videos

import "errors"

var (
	// ErrProviderUnavailable indicates the metadata provider is not configured.
	ErrProviderUnavailable = errors.New("video metadata provider unavailable")
	// ErrIncompleteMetadata indicates the provider response lacks a required field.
	ErrIncompleteMetadata = errors.New("video metadata incomplete")
)
