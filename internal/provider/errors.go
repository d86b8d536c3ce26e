package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors for common backend failures.
var (
	// ErrBackendUnavailable covers transient failures: 5xx, rate limits,
	// network errors. The loop retries these with backoff.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrContentBlocked is returned when the backend refuses to generate.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrAuthentication is returned for invalid or missing credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrInvalidRequest is returned for requests the backend rejects as
	// malformed. Retrying the same request cannot succeed.
	ErrInvalidRequest = errors.New("invalid request")
)

// BackendError wraps a backend failure with retry classification.
type BackendError struct {
	Kind       error // one of the sentinels above
	Message    string
	Underlying error
	Retryable  bool
}

func (e *BackendError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is match the sentinel kind.
func (e *BackendError) Unwrap() error {
	return e.Kind
}

// IsRetryable reports whether the failure is worth retrying.
func IsRetryable(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Retryable
	}
	return errors.Is(err, ErrBackendUnavailable)
}
