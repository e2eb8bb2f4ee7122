package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/launchdarkly/posts-contract-tests/framework"

	"github.com/fatih/color"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadParams(t *testing.T) {
	var p commandParams
	require.True(t, p.Read([]string{"posts-contract-tests", "-url", "http://localhost:3000", "-run", "posts", "-timeout", "2s"}))
	assert.Equal(t, "http://localhost:3000", p.targetURL)
	assert.Equal(t, []string{"posts"}, p.filters.MustMatch.Patterns())
	assert.Equal(t, "2s", p.requestTimeout.String())

	assert.False(t, (&commandParams{}).Read([]string{"posts-contract-tests"}))
	assert.False(t, (&commandParams{}).Read([]string{"posts-contract-tests", "-mock", "-url", "http://localhost"}))
	assert.False(t, (&commandParams{}).Read([]string{"posts-contract-tests", "-run", "("}))
}

func TestRerunCommandSelectsFailedTests(t *testing.T) {
	p := commandParams{
		programName:    "./posts-contract-tests",
		targetURL:      "http://localhost:3000",
		fixturePath:    "fixtures/my user.yaml",
		requestTimeout: defaultRequestTimeout,
	}
	results := framework.Results{Failures: []framework.TestResult{
		{TestID: framework.TestID{Path: []string{"post entities", "create, update and delete entity post"}}},
		{TestID: framework.TestID{Path: []string{"reading posts", "get posts with id 55 and id 60"}}},
	}}
	assert.Equal(t,
		`./posts-contract-tests -url http://localhost:3000 -fixture 'fixtures/my user.yaml'`+
			` -run '^post entities(/create, update and delete entity post)?$'`+
			` -run '^reading posts(/get posts with id 55 and id 60)?$' -debug`,
		p.rerunCommand(results))
}

func TestRerunCommandForMockRun(t *testing.T) {
	p := commandParams{programName: "pct", mock: true, mockPosts: 20, requestTimeout: defaultRequestTimeout}
	assert.Equal(t, "pct -mock -mock-posts 20 -debug", p.rerunCommand(framework.Results{}))
}

func TestRerunPatternMatchesOnlyTestAndParents(t *testing.T) {
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set(rerunPattern(framework.TestID{Path: []string{"a.b", "c", "d"}})))

	for name, expected := range map[string]bool{
		"a.b":       true,
		"a.b/c":     true,
		"a.b/c/d":   true,
		"a.b/c/d/e": false,
		"a.b/c/x":   false,
		"a.b/x":     false,
		"axb":       false,
	} {
		assert.Equal(t, expected, filters.AsFilter(framework.TestID{Path: strings.Split(name, "/")}), name)
	}
}

func TestConsoleTestLogger(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	logger := &ConsoleTestLogger{Output: &buf}
	id := framework.TestID{Path: []string{"authorization", "create an authorized post"}}

	logger.TestStarted(id)
	logger.TestError(id, errors.New("[register] expected status 201, got 400\n[create] skipped: dependency failed"))
	logger.TestFinished(id, true, nil)
	logger.TestSkipped(framework.TestID{Path: []string{"reading posts"}}, "excluded by filter parameters")

	assert.Equal(t, "[authorization/create an authorized post]\n"+
		"  [register] expected status 201, got 400\n"+
		"  [create] skipped: dependency failed\n"+
		"  FAILED: authorization/create an authorized post\n"+
		"  SKIPPED: reading posts (excluded by filter parameters)\n",
		buf.String())
}

func TestRunAgainstMockAPI(t *testing.T) {
	color.NoColor = true
	var p commandParams
	require.True(t, p.Read([]string{"pct", "-mock", "-scenarios", "scenario/testdata/scenarios", "-mock-posts", "60"}))

	var out bytes.Buffer
	code := run(context.Background(), p, &out)
	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "Loaded 2 scenario(s)")
	assert.Contains(t, out.String(), "Ran 13 tests: 13 passed, 0 failed, 0 skipped")
	assert.Contains(t, out.String(), "All tests passed")
}

func TestRunReportsFailuresWithRerunCommand(t *testing.T) {
	color.NoColor = true
	var p commandParams
	require.True(t, p.Read([]string{"pct", "-mock", "-mock-posts", "5", "-run", "^reading posts"}))

	var out bytes.Buffer
	code := run(context.Background(), p, &out)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FAILED TESTS:")
	assert.Contains(t, out.String(), "pct -mock -mock-posts 5 -run '^reading posts(/get only first 10 posts)?$'")
}
