// Package scenario runs ordered sequences of dependent HTTP requests against the API under test.
//
// A Scenario is a static template. Each time it runs, it starts from a fresh fixture.Fixture
// whose fields, along with values captured from earlier responses, are substituted into
// "{{name}}" placeholders in later requests and expectations. A step whose placeholders refer
// to a value that an earlier failed step should have produced is skipped; steps that do not
// depend on it still run.
package scenario

import (
	"fmt"
	"strings"
	"time"

	"github.com/launchdarkly/posts-contract-tests/client"
	"github.com/launchdarkly/posts-contract-tests/expect"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Scenario is a named, ordered list of steps.
type Scenario struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// Step is one request, the expectations about its response, and the values to extract from
// the response for use by later steps.
type Step struct {
	Name    string               `json:"name"`
	Request client.RequestSpec   `json:"request"`
	Expect  []expect.Expectation `json:"expect,omitempty"`
	Extract []Extract            `json:"extract,omitempty"`
}

// Extract names a value to take from the response body at Path (see expect.Lookup). If the
// path does not exist, the step fails and any step that refers to Name is skipped.
type Extract struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// ExtractField is shorthand for an Extract.
func ExtractField(name, path string) Extract {
	return Extract{Name: name, Path: path}
}

func (s Step) displayName(index int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("step %d", index+1)
}

// State is the state of a scenario run.
type State string

const (
	StatePending         State = "pending"
	StateRunning         State = "running"
	StatePassed          State = "passed"
	StateFailed          State = "failed"
	StatePartiallyFailed State = "partially failed"
)

// StepStatus is the outcome of a single step.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepResult records what happened in one step.
type StepResult struct {
	Name   string
	Status StepStatus
	// Request is the request after placeholder substitution. It is empty if the step was
	// skipped before substitution.
	Request client.RequestSpec
	// Response is only meaningful if HasResponse is true.
	Response    client.Response
	HasResponse bool
	// Errors holds every problem found in the step: an *AssertionError, an *ExtractionError
	// for each missing value, a *client.TransportError, or a *ConfigurationError.
	Errors     []error
	SkipReason string
	Extracted  map[string]ldvalue.Value
	Duration   time.Duration
}

// Failures returns the messages of all of the step's errors, one line per failure.
func (r StepResult) Failures() []string {
	var ret []string
	for _, err := range r.Errors {
		if ae, ok := err.(*AssertionError); ok {
			ret = append(ret, ae.Failures...)
			continue
		}
		ret = append(ret, err.Error())
	}
	return ret
}

// Result is the outcome of a scenario run.
type Result struct {
	Name  string
	State State
	Steps []StepResult
	// Err is set if the run was stopped early: a *ConfigurationError before any request was
	// sent, a *client.TransportError, or the context's error if it was cancelled.
	Err      error
	Duration time.Duration
}

func (r Result) OK() bool {
	return r.State == StatePassed
}

// Summary describes every step that did not pass, one line each.
func (r Result) Summary() string {
	var lines []string
	if r.Err != nil {
		lines = append(lines, fmt.Sprintf("scenario %q stopped: %s", r.Name, r.Err))
	}
	for _, s := range r.Steps {
		switch s.Status {
		case StepFailed:
			for _, f := range s.Failures() {
				lines = append(lines, fmt.Sprintf("[%s] %s", s.Name, f))
			}
		case StepSkipped:
			lines = append(lines, fmt.Sprintf("[%s] skipped: %s", s.Name, s.SkipReason))
		}
	}
	return strings.Join(lines, "\n")
}
