package models

import "fmt"

// ConfigurationError reports a missing or invalid setting. It is raised
// at construction time, before any upstream call.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

// NetworkError wraps a transport failure talking to the provider.
type NetworkError struct {
	Dataset string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.Dataset, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError reports a provider reply with a non-success status.
type UpstreamError struct {
	Dataset string
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error from %s (code %d): %s", e.Dataset, e.Code, e.Message)
}

// ValidationError reports a malformed caller parameter.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}
