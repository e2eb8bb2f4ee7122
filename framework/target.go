package framework

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"
)

const targetPollInterval = time.Millisecond * 100

// AwaitTarget polls the base URL of the API under test until it answers an HTTP request, or
// until the timeout elapses. Any HTTP status counts as an answer: only transport-level errors
// mean that the target is not up yet.
func AwaitTarget(ctx context.Context, baseURL string, timeout time.Duration, output io.Writer) error {
	fmt.Fprintf(output, "Connecting to API under test at %s", baseURL)

	deadline := time.Now().Add(timeout)
	pollCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	for {
		fmt.Fprintf(output, ".")
		req, err := http.NewRequestWithContext(pollCtx, "GET", baseURL, nil)
		if err != nil {
			fmt.Fprintln(output)
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			_, _ = io.Copy(ioutil.Discard, resp.Body)
			resp.Body.Close()
			fmt.Fprintln(output)
			fmt.Fprintf(output, "API under test responded with status %d\n", resp.StatusCode)
			return nil
		}
		if ctx.Err() != nil {
			fmt.Fprintln(output)
			return ctx.Err()
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out, result of last query was: %w", err)
		}
		select {
		case <-pollCtx.Done():
		case <-time.After(targetPollInterval):
		}
	}
}
