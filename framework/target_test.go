package framework

import (
	"bytes"
	"context"
	"net"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitTargetAcceptsAnyStatus(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(404), func(server *httptest.Server) {
		var out bytes.Buffer
		require.NoError(t, AwaitTarget(context.Background(), server.URL, time.Second, &out))
		assert.Contains(t, out.String(), "API under test responded with status 404")
	})
}

func TestAwaitTargetTimesOut(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	var out bytes.Buffer
	err := AwaitTarget(context.Background(), url, 250*time.Millisecond, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestAwaitTargetStopsWhenCancelled(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	assert.Error(t, AwaitTarget(ctx, url, time.Minute, &out))
}

func TestAwaitTargetGivesUpOnServerThatNeverResponds(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	var conns []net.Conn
	var lock sync.Mutex
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			lock.Lock()
			conns = append(conns, conn)
			lock.Unlock()
		}
	}()
	defer func() {
		lock.Lock()
		for _, c := range conns {
			c.Close()
		}
		lock.Unlock()
	}()

	done := make(chan error, 1)
	go func() {
		var out bytes.Buffer
		done <- AwaitTarget(context.Background(), "http://"+ln.Addr().String(), 200*time.Millisecond, &out)
	}()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		require.Fail(t, "AwaitTarget did not return after its timeout")
	}
}
