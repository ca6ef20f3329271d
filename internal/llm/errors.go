package llm

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when no API key can be resolved
var ErrMissingCredential = errors.New("API key not set")

// ProviderError wraps any failure of the analysis service.
// Err keeps the cause for logs; callers show a generic message instead.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError reports whether err is or wraps a *ProviderError
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
