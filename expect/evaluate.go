package expect

import (
	"errors"
	"strings"

	"github.com/launchdarkly/posts-contract-tests/client"
)

// Result is the outcome of evaluating a set of expectations against one response.
type Result struct {
	Pass     bool
	Failures []string
}

// Evaluate checks every expectation against the response and reports all mismatches, one
// description per failed expectation, in the order the expectations were given. It does not
// stop at the first failure. An empty set of expectations passes.
func Evaluate(expectations []Expectation, resp client.Response) Result {
	result := Result{Pass: true}
	for _, e := range expectations {
		if failure, ok := e.Check(resp); !ok {
			result.Pass = false
			result.Failures = append(result.Failures, failure)
		}
	}
	return result
}

// Err returns nil if the evaluation passed, or an error listing every failure on its own line.
func (r Result) Err() error {
	if r.Pass {
		return nil
	}
	return errors.New(strings.Join(r.Failures, "\n"))
}
