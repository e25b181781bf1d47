package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/garage/internal/config"
	"github.com/deppfellow/garage/internal/database"
	"github.com/deppfellow/garage/internal/logger"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, pgxmock.PgxPoolIface) {
	t.Helper()

	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Database.URL = "postgres://garage@localhost:5432/garage"
	require.NoError(t, cfg.Validate())

	log := zerolog.Nop()
	ls := logger.NewLoggerService(cfg.Observability)
	return NewWithDatabase(cfg, &log, ls, database.NewWithPool(mockPool, &log)), mockPool
}

func TestServer_Start(t *testing.T) {
	t.Run("Should refuse to start without an HTTP server", func(t *testing.T) {
		srv, mockPool := newTestServer(t)
		defer mockPool.Close()

		assert.Error(t, srv.Start())
	})
}

func TestServer_Lifecycle(t *testing.T) {
	t.Run("Should serve until shut down and then close the pool", func(t *testing.T) {
		srv, mockPool := newTestServer(t)
		mockPool.ExpectClose()

		srv.SetupHTTPServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		served := make(chan error, 1)
		go func() { served <- srv.Serve(listener) }()

		require.Eventually(t, func() bool {
			resp, err := http.Get("http://" + listener.Addr().String())
			if err != nil {
				return false
			}
			defer resp.Body.Close()
			return resp.StatusCode == http.StatusTeapot
		}, 2*time.Second, 20*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, srv.Shutdown(ctx))

		assert.NoError(t, <-served)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should still close the pool when draining times out", func(t *testing.T) {
		srv, mockPool := newTestServer(t)
		mockPool.ExpectClose()

		entered := make(chan struct{})
		release := make(chan struct{})
		defer close(release)

		srv.SetupHTTPServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			close(entered)
			<-release
		}))

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		go func() { _ = srv.Serve(listener) }()

		go func() {
			resp, err := http.Get("http://" + listener.Addr().String())
			if err == nil {
				resp.Body.Close()
			}
		}()

		select {
		case <-entered:
		case <-time.After(2 * time.Second):
			t.Fatal("request never reached the handler")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		err = srv.Shutdown(ctx)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should apply the configured timeouts", func(t *testing.T) {
		srv, mockPool := newTestServer(t)
		defer mockPool.Close()

		srv.SetupHTTPServer(http.NotFoundHandler())

		assert.Equal(t, ":8080", srv.httpServer.Addr)
		assert.Equal(t, 30*time.Second, srv.httpServer.ReadTimeout)
		assert.Equal(t, 60*time.Second, srv.httpServer.IdleTimeout)
	})
}
