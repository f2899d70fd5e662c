package fixturebackend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Demo is a seeded fixture backend listening on a loopback port.
type Demo struct {
	URL string

	storage *Storage
	server  *http.Server
	done    chan error
}

// StartDemo opens dsn, seeds DemoDataset as of now() unless the demo users
// already exist, and serves it on 127.0.0.1 with an ephemeral port.
func StartDemo(ctx context.Context, dsn string, now func() time.Time, logger *slog.Logger) (*Demo, error) {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	storage, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, err
	}

	_, err = storage.UserByToken(ctx, DemoAdminToken)
	switch {
	case errors.Is(err, ErrNotFound):
		if err := storage.Seed(ctx, DemoDataset(now())); err != nil {
			_ = storage.Close()
			return nil, err
		}
	case err != nil:
		_ = storage.Close()
		return nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("failed to listen for demo backend: %w", err)
	}

	demo := &Demo{
		URL:     "http://" + listener.Addr().String(),
		storage: storage,
		server: &http.Server{
			Handler:           NewServer(storage, now, logger).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		done: make(chan error, 1),
	}
	go func() {
		err := demo.server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		demo.done <- err
	}()

	logger.InfoContext(ctx, "demo backend listening", "url", demo.URL, "dsn", dsn)
	return demo, nil
}

// Close stops the server and closes the database.
func (d *Demo) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	shutdownErr := d.server.Shutdown(ctx)
	if shutdownErr == nil {
		shutdownErr = <-d.done
	}
	return errors.Join(shutdownErr, d.storage.Close())
}
