package scenario

import (
	"fmt"
	"strings"
)

// ConfigurationError means that a scenario cannot be run as written, for instance because a
// placeholder refers to a value that nothing provides. It is detected before any request is sent.
type ConfigurationError struct {
	Step string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("configuration error: %s", e.Err)
	}
	return fmt.Sprintf("configuration error in step %q: %s", e.Step, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ExtractionError means that a value a step was supposed to extract was missing from the response.
type ExtractionError struct {
	Name string
	Path string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("missing field: could not extract %q from response body path %q", e.Name, e.Path)
}

// AssertionError holds the descriptions of all expectations that a response did not meet.
type AssertionError struct {
	Failures []string
}

func (e *AssertionError) Error() string {
	return strings.Join(e.Failures, "\n")
}
