package poststests

import (
	"context"

	"github.com/launchdarkly/posts-contract-tests/client"
	"github.com/launchdarkly/posts-contract-tests/fixture"
	"github.com/launchdarkly/posts-contract-tests/framework"
	"github.com/launchdarkly/posts-contract-tests/scenario"
)

// RunTestSuite runs the built-in contract tests against the API that c points to, followed by
// one test for each of the extra scenarios. Every scenario run gets a new fixture from provider.
func RunTestSuite(
	ctx context.Context,
	c *client.Client,
	provider *fixture.Provider,
	extra []scenario.Scenario,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	return framework.Run(ctx, filter, testLogger, func(fc *framework.Context) {
		t := &T{
			context: fc,
			env: &environment{
				runner:   scenario.NewRunner(c, nil),
				provider: provider,
			},
		}

		t.Run("reading posts", DoReadingTests)
		t.Run("authorization", DoAuthorizationTests)
		t.Run("post entities", DoEntityTests)
		if len(extra) != 0 {
			t.Run("scenario files", func(t *T) {
				for _, sc := range extra {
					sc := sc
					t.Run(sc.Name, func(t *T) { t.RunScenario(sc) })
				}
			})
		}
	})
}
