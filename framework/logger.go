package framework

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

// PrefixedLogger returns a Logger that prepends prefix to every message before passing it
// to the underlying logger.
func PrefixedLogger(logger Logger, prefix string) Logger {
	if logger == nil {
		return NullLogger()
	}
	return prefixedLogger{logger: logger, prefix: prefix}
}

type prefixedLogger struct {
	logger Logger
	prefix string
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.logger.Printf("%s%s", p.prefix, fmt.Sprintf(message, args...))
}

// WriterLogger returns a Logger that writes timestamped lines to dest.
func WriterLogger(dest io.Writer) Logger {
	return &writerLogger{dest: dest}
}

type writerLogger struct {
	dest io.Writer
	lock sync.Mutex
}

func (w *writerLogger) Printf(message string, args ...interface{}) {
	w.lock.Lock()
	fmt.Fprintf(w.dest, "[%s] %s\n", time.Now().Format(timestampFormat), fmt.Sprintf(message, args...))
	w.lock.Unlock()
}

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s\n",
			prefix,
			m.Time.Format(timestampFormat),
			m.Message,
		)
	}
}

// TestLogger receives notifications about the progress of a test run.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, failed bool, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                        {}
func (n nullTestLogger) TestError(TestID, error)                   {}
func (n nullTestLogger) TestFinished(TestID, bool, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                {}
