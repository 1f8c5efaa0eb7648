package server_test

import (
	"context"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/scoreline/internal/server"
)

type testServer struct {
	*server.Server
	URL string
}

// newTestServer starts a server with its hub behind an httptest listener.
// Everything is torn down when the test ends.
func newTestServer(t *testing.T, mutate func(*server.Config), opts ...server.Option) *testServer {
	t.Helper()

	cfg := server.NewConfig()
	cfg.RateLimitBurst = 1000
	if mutate != nil {
		mutate(cfg)
	}

	if len(opts) == 0 {
		opts = []server.Option{server.WithClock(clockwork.NewRealClock())}
	}

	srv := server.New(*cfg, opts...)
	srv.Start()
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		_ = srv.Hub().Shutdown(2 * time.Second)
		ts.Close()
	})

	return &testServer{Server: srv, URL: ts.URL}
}

// TestListenAndServeStopsOnCancel verifies a cancelled context shuts the
// server down cleanly.
func TestListenAndServeStopsOnCancel(t *testing.T) {
	cfg := server.NewConfig()
	cfg.Port = "127.0.0.1:0"
	cfg.ShutdownTimeout = 2 * time.Second
	srv := server.New(*cfg)
	assert.Equal(t, "127.0.0.1:0", srv.Config().Addr())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}

// TestListenAndServeReportsBindFailure verifies listener errors are returned.
func TestListenAndServeReportsBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := server.NewConfig()
	cfg.Port = ln.Addr().String()
	cfg.ShutdownTimeout = time.Second

	err = server.New(*cfg).ListenAndServe(context.Background())
	assert.Error(t, err)
}
