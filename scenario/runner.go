package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/launchdarkly/posts-contract-tests/client"
	"github.com/launchdarkly/posts-contract-tests/expect"
	"github.com/launchdarkly/posts-contract-tests/fixture"
	"github.com/launchdarkly/posts-contract-tests/framework"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Sender is the part of *client.Client that the Runner uses.
type Sender interface {
	SendWithLogger(ctx context.Context, spec client.RequestSpec, logger framework.Logger) (client.Response, error)
}

// Runner executes scenarios. It holds no per-run state, so one Runner can run any number of
// scenarios concurrently as long as its Sender allows that.
type Runner struct {
	sender Sender
	logger framework.Logger
}

// NewRunner creates a Runner that sends requests with sender and writes progress to logger.
func NewRunner(sender Sender, logger framework.Logger) *Runner {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Runner{sender: sender, logger: logger}
}

// Run executes the steps of sc in order, starting from the values in fx.
func (r *Runner) Run(ctx context.Context, sc Scenario, fx fixture.Fixture) Result {
	return r.RunWithLogger(ctx, sc, fx, r.logger)
}

// RunWithLogger is the same as Run, but writes progress to the specified logger.
//
// The run follows these rules:
//
//   - The whole scenario is checked with Validate first. If it is invalid, nothing is sent and
//     the result has a *ConfigurationError.
//   - A step fails if any expectation is not met or any value it extracts is missing. Every
//     value the failed step was supposed to extract is then unavailable, and each later step
//     that refers to one of them is skipped, which makes its own extracted values unavailable
//     too. Steps that do not refer to them still run.
//   - A transport error fails the step and stops the run; all remaining steps are skipped.
//   - If ctx is cancelled, the step in progress is abandoned and the remaining ones are skipped.
func (r *Runner) RunWithLogger(ctx context.Context, sc Scenario, fx fixture.Fixture, logger framework.Logger) Result {
	if logger == nil {
		logger = framework.NullLogger()
	}
	start := time.Now()
	result := Result{Name: sc.Name, State: StateRunning, Steps: make([]StepResult, len(sc.Steps))}
	for i, step := range sc.Steps {
		result.Steps[i] = StepResult{Name: step.displayName(i), Status: StepPending}
	}
	finish := func() Result {
		result.State = finalState(result)
		result.Duration = time.Since(start)
		logger.Printf("Scenario %q %s", sc.Name, result.State)
		return result
	}

	if err := sc.Validate(fx); err != nil {
		logger.Printf("Scenario %q not run: %s", sc.Name, err)
		result.Err = err
		for i := range result.Steps {
			skipStep(&result.Steps[i], "not run because of a configuration error")
		}
		return finish()
	}

	vals := initialValues(fx)
	unavailable := make(map[string]string)

	for i, step := range sc.Steps {
		sr := &result.Steps[i]
		if result.Err == nil && ctx.Err() != nil {
			result.Err = ctx.Err()
		}
		if result.Err != nil {
			skipStep(sr, abortReason(ctx, result.Err))
			continue
		}

		deps, _ := step.Dependencies()
		if failedDeps := blockedBy(deps, unavailable); len(failedDeps) != 0 {
			skipStep(sr, "dependency failed: "+strings.Join(failedDeps, ", "))
			logger.Printf("Skipping %q: %s", sr.Name, sr.SkipReason)
			markUnavailable(step, sr.Name, vals, unavailable)
			continue
		}

		if err := r.runStep(ctx, step, sr, vals, logger); err != nil {
			result.Err = err
		}
		if sr.Status == StepFailed {
			logger.Printf("Step %q failed", sr.Name)
			markUnavailable(step, sr.Name, vals, unavailable)
		} else {
			logger.Printf("Step %q passed", sr.Name)
		}
	}
	return finish()
}

// runStep executes one step and fills in sr. It returns an error only if the whole run must stop.
func (r *Runner) runStep(
	ctx context.Context,
	step Step,
	sr *StepResult,
	vals values,
	logger framework.Logger,
) error {
	sr.Status = StepFailed

	spec, err := vals.expandRequest(step.Request)
	if err == nil {
		sr.Request = spec
		step.Expect, err = vals.expandExpectations(step.Expect)
	}
	if err == nil {
		step.Extract, err = vals.expandExtracts(step.Extract)
	}
	if err != nil {
		cerr := &ConfigurationError{Step: sr.Name, Err: err}
		sr.Errors = append(sr.Errors, cerr)
		return cerr
	}

	stepStart := time.Now()
	resp, err := r.sender.SendWithLogger(ctx, spec, logger)
	sr.Duration = time.Since(stepStart)

	var statusErr *client.StatusError
	if err != nil && !errors.As(err, &statusErr) {
		sr.Errors = append(sr.Errors, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var transportErr *client.TransportError
		if errors.As(err, &transportErr) {
			return err
		}
		cerr := &ConfigurationError{Step: sr.Name, Err: err}
		sr.Errors[len(sr.Errors)-1] = cerr
		return cerr
	}
	sr.Response, sr.HasResponse = resp, true

	var failures []string
	if statusErr != nil {
		failures = append(failures, statusErr.Error())
	}
	failures = append(failures, expect.Evaluate(step.Expect, resp).Failures...)
	if len(failures) != 0 {
		sr.Errors = append(sr.Errors, &AssertionError{Failures: failures})
	}

	for _, ex := range step.Extract {
		v, ok := extractValue(resp, ex.Path)
		if !ok {
			sr.Errors = append(sr.Errors, &ExtractionError{Name: ex.Name, Path: ex.Path})
			continue
		}
		if sr.Extracted == nil {
			sr.Extracted = make(map[string]ldvalue.Value)
		}
		sr.Extracted[ex.Name] = v
		vals[ex.Name] = v
		logger.Printf("Captured %s = %s", ex.Name, v.JSONString())
	}

	if len(sr.Errors) == 0 {
		sr.Status = StepPassed
	}
	return nil
}

// Validate checks, without sending anything, that every step of the scenario can be run:
// each method is supported, each expectation kind is known, each body can be encoded (as an
// object, for form bodies), each placeholder is well formed, and each name a step refers to is
// either a field of fx or extracted by an earlier step.
func (sc Scenario) Validate(fx fixture.Fixture) error {
	if len(sc.Steps) == 0 {
		return &ConfigurationError{Err: errNoSteps}
	}
	available := make(map[string]bool)
	for name := range initialValues(fx) {
		available[name] = true
	}
	for i, step := range sc.Steps {
		name := step.displayName(i)
		fail := func(format string, args ...interface{}) error {
			return &ConfigurationError{Step: name, Err: fmt.Errorf(format, args...)}
		}
		if !step.Request.Method.Valid() {
			return fail("unsupported request method %q", step.Request.Method)
		}
		for _, e := range step.Expect {
			if !e.Kind.Valid() {
				return fail("unknown expectation kind %q", e.Kind)
			}
		}
		body, hasBody, err := client.BodyValue(step.Request.Body)
		if err != nil {
			return &ConfigurationError{Step: name, Err: err}
		}
		if step.Request.Form && hasBody {
			if t := staticBodyType(body, fx); t != ldvalue.ObjectType {
				return fail("form-encoded body must be an object, got %s", t)
			}
		}
		deps, err := step.Dependencies()
		if err != nil {
			return &ConfigurationError{Step: name, Err: err}
		}
		for _, d := range deps {
			if !available[d] {
				return fail("no value for placeholder {{%s}}: it is not a fixture field or extracted by an earlier step", d)
			}
		}
		for _, ex := range step.Extract {
			if strings.TrimSpace(ex.Name) == "" {
				return fail("extracted value for path %q has no name", ex.Path)
			}
			available[ex.Name] = true
		}
	}
	return nil
}

// initialValues returns the fixture's fields, plus the whole fixture under its own name so that
// "{{user}}" can be used as a request body.
func initialValues(fx fixture.Fixture) values {
	vals := values(fx.Values())
	if name := fx.Name(); name != "" {
		if _, taken := vals[name]; !taken {
			vals[name] = fx.AsValue()
		}
	}
	return vals
}

// staticBodyType returns the JSON type the body will have when it is sent. A body that is one
// placeholder for a fixture value has that value's type. Any other single value placeholder is
// assumed to be an object: extracted values are not known until the run, and unknown names are
// reported by the dependency check.
func staticBodyType(body ldvalue.Value, fx fixture.Fixture) ldvalue.ValueType {
	if body.Type() != ldvalue.StringType {
		return body.Type()
	}
	expr, ok := wholePlaceholder(body.StringValue())
	if !ok {
		return ldvalue.StringType
	}
	ref, err := parseReference(expr)
	if err != nil || !ref.needsValue() {
		return ldvalue.StringType
	}
	if v, found := initialValues(fx)[ref.name]; found {
		return v.Type()
	}
	return ldvalue.ObjectType
}

func extractValue(resp client.Response, path string) (ldvalue.Value, bool) {
	if !resp.HasBody {
		return ldvalue.Null(), false
	}
	return expect.Lookup(resp.Body, path)
}

func blockedBy(deps []string, unavailable map[string]string) []string {
	var ret []string
	for _, d := range deps {
		if step, ok := unavailable[d]; ok {
			ret = append(ret, fmt.Sprintf("%s (from %q)", d, step))
		}
	}
	sort.Strings(ret)
	return ret
}

func markUnavailable(step Step, stepName string, vals values, unavailable map[string]string) {
	for _, ex := range step.Extract {
		unavailable[ex.Name] = stepName
		delete(vals, ex.Name)
	}
}

func skipStep(sr *StepResult, reason string) {
	sr.Status = StepSkipped
	sr.SkipReason = reason
}

func abortReason(ctx context.Context, err error) string {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return "cancelled"
	}
	var cerr *ConfigurationError
	if errors.As(err, &cerr) {
		return "not run because of a configuration error"
	}
	return "scenario aborted after transport error"
}

func finalState(result Result) State {
	if result.Err != nil {
		return StateFailed
	}
	passed := 0
	for _, s := range result.Steps {
		if s.Status == StepPassed {
			passed++
		}
	}
	switch passed {
	case len(result.Steps):
		return StatePassed
	case 0:
		return StateFailed
	}
	return StatePartiallyFailed
}
