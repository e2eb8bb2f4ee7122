package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTestLogger struct {
	events []string
}

func (r *recordingTestLogger) TestStarted(id TestID) {
	r.events = append(r.events, "start "+id.String())
}

func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.events = append(r.events, "error "+id.String()+": "+err.Error())
}

func (r *recordingTestLogger) TestFinished(id TestID, failed bool, _ CapturedOutput) {
	if failed {
		r.events = append(r.events, "failed "+id.String())
	} else {
		r.events = append(r.events, "passed "+id.String())
	}
}

func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.events = append(r.events, "skipped "+id.String()+": "+reason)
}

func TestRunRecordsPassesAndFailures(t *testing.T) {
	logger := &recordingTestLogger{}
	results := Run(context.Background(), nil, logger, func(c *Context) {
		c.Run("group", func(c *Context) {
			c.Run("ok", func(c *Context) {})
			c.Run("bad", func(c *Context) {
				assert.Equal(c, 1, 2)
				c.Errorf("second problem")
			})
		})
	})

	require.Len(t, results.Failures, 1)
	assert.Equal(t, "group/bad", results.Failures[0].TestID.String())
	assert.Len(t, results.Failures[0].Errors, 2)
	passed, failed, skipped := results.Counts()
	assert.Equal(t, []int{1, 1, 0}, []int{passed, failed, skipped})
	assert.Equal(t, "start group", logger.events[0])
	assert.Equal(t, "passed group/ok", logger.events[2])
	assert.Equal(t, "passed group", logger.events[len(logger.events)-1])
}

func TestRequireStopsTestButNotSiblings(t *testing.T) {
	var reachedAfterRequire, ranSibling bool
	results := Run(context.Background(), nil, nil, func(c *Context) {
		c.Run("stops", func(c *Context) {
			require.True(c, false)
			reachedAfterRequire = true
		})
		c.Run("sibling", func(c *Context) { ranSibling = true })
	})

	assert.False(t, reachedAfterRequire)
	assert.True(t, ranSibling)
	assert.Len(t, results.Failures, 1)
}

func TestPanicIsReportedAsFailure(t *testing.T) {
	results := Run(context.Background(), nil, nil, func(c *Context) {
		c.Run("panics", func(c *Context) { panic(errors.New("boom")) })
	})
	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "unexpected panic in test: boom")
}

func TestSkip(t *testing.T) {
	logger := &recordingTestLogger{}
	results := Run(context.Background(), nil, logger, func(c *Context) {
		c.Run("skipped", func(c *Context) { c.SkipWithReason("not today") })
	})
	assert.True(t, results.OK())
	_, _, skipped := results.Counts()
	assert.Equal(t, 1, skipped)
	assert.Contains(t, logger.events, "skipped skipped: not today")
}

func TestFilterExcludesTests(t *testing.T) {
	var ran []string
	filter := func(id TestID) bool { return id.String() != "b" }
	results := Run(context.Background(), filter, nil, func(c *Context) {
		c.Run("a", func(c *Context) { ran = append(ran, "a") })
		c.Run("b", func(c *Context) { ran = append(ran, "b") })
	})
	assert.Equal(t, []string{"a"}, ran)
	assert.Len(t, results.Tests, 1)
}

func TestCancelledContextSkipsRemainingTests(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var ran []string
	logger := &recordingTestLogger{}
	Run(ctx, nil, logger, func(c *Context) {
		c.Run("first", func(c *Context) {
			ran = append(ran, "first")
			assert.NoError(c, c.BaseContext().Err())
			cancel()
		})
		c.Run("second", func(c *Context) { ran = append(ran, "second") })
	})
	assert.Equal(t, []string{"first"}, ran)
	assert.Contains(t, logger.events, "skipped second: context canceled")
}

func TestDeferredCleanupsRunInReverseOrder(t *testing.T) {
	var order []int
	Run(context.Background(), nil, nil, func(c *Context) {
		c.Run("cleanup", func(c *Context) {
			c.Defer(func() { order = append(order, 1) })
			c.Defer(func() { order = append(order, 2) })
			c.FailNow()
		})
	})
	assert.Equal(t, []int{2, 1}, order)
}

func TestDebugOutputIsPassedToLogger(t *testing.T) {
	var captured CapturedOutput
	logger := &capturingTestLogger{onFinish: func(out CapturedOutput) { captured = out }}
	Run(context.Background(), nil, logger, func(c *Context) {
		c.Run("debug", func(c *Context) {
			c.Debug("value is %d", 3)
			PrefixedLogger(c.DebugLogger(), "client: ").Printf("sent")
		})
	})
	require.Len(t, captured, 2)
	assert.Equal(t, "value is 3", captured[0].Message)
	assert.Equal(t, "client: sent", captured[1].Message)
}

type capturingTestLogger struct {
	nullTestLogger
	onFinish func(CapturedOutput)
}

func (c *capturingTestLogger) TestFinished(_ TestID, _ bool, out CapturedOutput) {
	c.onFinish(out)
}
