package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/launchdarkly/posts-contract-tests/client"
	"github.com/launchdarkly/posts-contract-tests/fixture"
	"github.com/launchdarkly/posts-contract-tests/framework"
	"github.com/launchdarkly/posts-contract-tests/mockapi"
	"github.com/launchdarkly/posts-contract-tests/poststests"
	"github.com/launchdarkly/posts-contract-tests/scenario"

	"github.com/fatih/color"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}
	if params.noColor {
		color.NoColor = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, params, os.Stdout))
}

// run executes the whole test run and returns the process exit code.
func run(ctx context.Context, params commandParams, out io.Writer) int {
	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = framework.WriterLogger(out)
	}

	targetURL := params.targetURL
	if params.mock {
		api, err := mockapi.New(
			mockapi.WithSeedPosts(params.mockPosts),
			mockapi.WithLogger(framework.PrefixedLogger(mainDebugLogger, "mock API: ")),
		)
		if err != nil {
			fmt.Fprintf(out, "Mock API error: %s\n", err)
			return 1
		}
		listener, err := mockapi.Listen(api)
		if err != nil {
			fmt.Fprintf(out, "Mock API error: %s\n", err)
			return 1
		}
		defer listener.Close()
		targetURL = listener.URL
		fmt.Fprintf(out, "Started mock posts API at %s with %d posts\n", targetURL, params.mockPosts)
	} else if err := framework.AwaitTarget(ctx, targetURL, params.awaitTimeout, out); err != nil {
		fmt.Fprintf(out, "API under test is not available: %s\n", err)
		return 1
	}

	var static map[string]ldvalue.Value
	if params.fixturePath != "" {
		var err error
		if static, err = fixture.LoadFile(params.fixturePath); err != nil {
			fmt.Fprintln(out, err)
			return 1
		}
	}
	provider := fixture.NewUserProvider(static, nil)

	var extra []scenario.Scenario
	if params.scenarioDir != "" {
		var err error
		if extra, err = scenario.LoadDir(params.scenarioDir); err != nil {
			fmt.Fprintf(out, "Could not load scenarios: %s\n", err)
			return 1
		}
		fmt.Fprintf(out, "Loaded %d scenario(s) from %s\n", len(extra), params.scenarioDir)
	}

	c, err := client.New(targetURL, client.WithTimeout(params.requestTimeout))
	if err != nil {
		fmt.Fprintln(out, err)
		return 1
	}

	fmt.Fprintln(out)
	framework.PrintFilterDescription(out, params.filters)

	fmt.Fprintln(out, "Running test suite")

	testLogger := &ConsoleTestLogger{
		Output:               out,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	results := poststests.RunTestSuite(ctx, c, provider, extra, params.filters.AsFilter, testLogger)

	fmt.Fprintln(out)
	framework.PrintResults(out, results)
	if !results.OK() {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To run only the failed tests again:")
		fmt.Fprintf(out, "  %s\n", params.rerunCommand(results))
		return 1
	}
	return 0
}
