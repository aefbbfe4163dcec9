package errs

import "fmt"

// ConfigurationError reports a missing or invalid setting detected before any request is made
type ConfigurationError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s %s: %v", e.Field, e.Reason, e.Cause)
	}
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
