package autocache

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBackend is wrapped by ConfigurationError for names outside the known set.
	ErrUnknownBackend = errors.New("autocache: unknown backend")
	// ErrBackendUnavailable is wrapped by BackendUnavailableError.
	ErrBackendUnavailable = errors.New("autocache: backend unavailable")
)

// ConfigurationError reports a bad configuration input: an unknown backend
// name or a version source that cannot answer.
type ConfigurationError struct {
	Input string // "backend", "version", ...
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Value != "" && e.Err != nil:
		return fmt.Sprintf("autocache: invalid %s %q: %v", e.Input, e.Value, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("autocache: invalid %s: %v", e.Input, e.Err)
	default:
		return fmt.Sprintf("autocache: invalid %s %q", e.Input, e.Value)
	}
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// BackendUnavailableError is returned when a backend fails its probe at the
// moment its adapter is built.
type BackendUnavailableError struct {
	Backend BackendName
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("autocache: %s requested, but that cache is not available", e.Backend)
}

func (e *BackendUnavailableError) Unwrap() error { return ErrBackendUnavailable }
