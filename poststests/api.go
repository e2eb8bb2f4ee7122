package poststests

import (
	"strings"

	"github.com/launchdarkly/posts-contract-tests/client"
	"github.com/launchdarkly/posts-contract-tests/fixture"
	"github.com/launchdarkly/posts-contract-tests/framework"
	"github.com/launchdarkly/posts-contract-tests/scenario"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// T represents a test or subtest in the posts API test suite.
//
// It implements the same basic functionality as Go's testing.T, so it can be passed to the
// assert and require packages. Its main addition is RunScenario, which runs a request chain
// against the API under test with a freshly built user fixture and reports every failure of
// the chain as a failure of the test.
type T struct {
	context *framework.Context
	env     *environment
}

type environment struct {
	runner   *scenario.Runner
	provider *fixture.Provider
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(&T{context: c, env: t.env})
	})
}

// Skip stops the test and marks it as skipped.
func (t *T) Skip(reason string) {
	t.context.SkipWithReason(reason)
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

func (t *T) DebugLogger() framework.Logger {
	return t.context.DebugLogger()
}

// NewUser builds a new user fixture with a unique email address.
func (t *T) NewUser() fixture.Fixture {
	fx := t.env.provider.Build()
	t.Debug("Using %s fixture with email %s", fx.Name(), fx.String("email"))
	return fx
}

// RunScenario runs the scenario with a new user fixture. Every failed or skipped step is
// reported as an error of the test, but the test continues so that callers can make further
// assertions about the result.
func (t *T) RunScenario(sc scenario.Scenario) scenario.Result {
	return t.RunScenarioWithFixture(sc, t.NewUser())
}

// RunScenarioWithFixture is the same as RunScenario, but uses the specified fixture.
func (t *T) RunScenarioWithFixture(sc scenario.Scenario, fx fixture.Fixture) scenario.Result {
	result := t.env.runner.RunWithLogger(t.context.BaseContext(), sc, fx, t.DebugLogger())
	if !result.OK() {
		for _, line := range strings.Split(result.Summary(), "\n") {
			if line != "" {
				t.Errorf("%s", line)
			}
		}
		if result.Summary() == "" {
			t.Errorf("scenario %q finished in state %q", sc.Name, result.State)
		}
	}
	return result
}

// RequireStep returns the result of the named step, failing the test immediately if there is no
// such step or it did not get a response.
func (t *T) RequireStep(result scenario.Result, name string) scenario.StepResult {
	for _, s := range result.Steps {
		if s.Name == name {
			if !s.HasResponse {
				t.Errorf("step %q got no response", name)
				t.FailNow()
			}
			return s
		}
	}
	t.Errorf("scenario %q has no step %q", result.Name, name)
	t.FailNow()
	return scenario.StepResult{}
}

func request(method client.Method, path string) client.RequestSpec {
	return client.RequestSpec{Method: method, Path: path}
}

func withBody(spec client.RequestSpec, body interface{}) client.RequestSpec {
	spec.Body = body
	return spec
}

func withBearerToken(spec client.RequestSpec, tokenPlaceholder string) client.RequestSpec {
	spec.Headers = map[string]string{"Authorization": "Bearer " + tokenPlaceholder}
	return spec
}

// postBody builds a post payload, leaving out stars if it is undefined.
func postBody(post, comment string, stars ldvalue.OptionalInt) ldvalue.Value {
	b := ldvalue.ObjectBuild().Set("post", ldvalue.String(post)).Set("comment", ldvalue.String(comment))
	if stars.IsDefined() {
		b.Set("stars", stars.AsValue())
	}
	return b.Build()
}
