package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/launchdarkly/posts-contract-tests/framework"
	"github.com/launchdarkly/posts-contract-tests/mockapi"

	"github.com/alessio/shellescape"
)

const (
	defaultRequestTimeout = time.Second * 10
	defaultAwaitTimeout   = time.Second * 10
)

type commandParams struct {
	programName    string
	targetURL      string
	fixturePath    string
	scenarioDir    string
	filters        framework.RegexFilters
	requestTimeout time.Duration
	awaitTimeout   time.Duration
	debug          bool
	debugAll       bool
	noColor        bool
	mock           bool
	mockPosts      int
}

func (c *commandParams) Read(args []string) bool {
	c.programName = args[0]
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.StringVar(&c.targetURL, "url", "", "base URL of the posts API under test")
	fs.StringVar(&c.fixturePath, "fixture", "", "YAML or JSON file with static fields of the user fixture")
	fs.StringVar(&c.scenarioDir, "scenarios", "", "directory of extra scenario files to run after the built-in tests")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.DurationVar(&c.requestTimeout, "timeout", defaultRequestTimeout, "timeout for each request")
	fs.DurationVar(&c.awaitTimeout, "await-timeout", defaultAwaitTimeout, "how long to wait for the API to start responding")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	fs.BoolVar(&c.mock, "mock", false, "test against a built-in fake of the posts API instead of -url")
	fs.IntVar(&c.mockPosts, "mock-posts", mockapi.DefaultSeedPosts, "number of posts the fake API starts with")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	if c.targetURL == "" && !c.mock {
		fmt.Fprintln(os.Stderr, "-url is required unless -mock is set")
		fs.Usage()
		return false
	}
	if c.targetURL != "" && c.mock {
		fmt.Fprintln(os.Stderr, "-url and -mock cannot be used together")
		return false
	}
	return true
}

// rerunCommand returns a shell command line that runs only the failed tests again, with the
// same settings as this run.
func (c commandParams) rerunCommand(results framework.Results) string {
	var cmd commandBuilder
	cmd.add(c.programName)
	if c.mock {
		cmd.add("-mock")
		if c.mockPosts != mockapi.DefaultSeedPosts {
			cmd.add("-mock-posts", strconv.Itoa(c.mockPosts))
		}
	} else {
		cmd.add("-url", c.targetURL)
	}
	if c.fixturePath != "" {
		cmd.add("-fixture", c.fixturePath)
	}
	if c.scenarioDir != "" {
		cmd.add("-scenarios", c.scenarioDir)
	}
	if c.requestTimeout != defaultRequestTimeout {
		cmd.add("-timeout", c.requestTimeout.String())
	}
	for _, f := range results.Failures {
		cmd.add("-run", rerunPattern(f.TestID))
	}
	cmd.add("-debug")
	return cmd.String()
}

// rerunPattern returns a regex that matches the test and each of its parents, but no other
// test. Filters apply at every level, so a parent that did not match would hide the test.
func rerunPattern(id framework.TestID) string {
	if len(id.Path) == 0 {
		return "^$"
	}
	pattern := regexp.QuoteMeta(id.Path[len(id.Path)-1])
	for i := len(id.Path) - 2; i >= 0; i-- {
		pattern = regexp.QuoteMeta(id.Path[i]) + "(/" + pattern + ")?"
	}
	return "^" + pattern + "$"
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
