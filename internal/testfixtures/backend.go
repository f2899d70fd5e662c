package testfixtures

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/hr-dashboard/internal/backend"
	"github.com/example/hr-dashboard/internal/fixturebackend"
	"github.com/example/hr-dashboard/internal/logging"
)

// Backend is a seeded fixture backend served over HTTP for the life of a test.
type Backend struct {
	Storage *fixturebackend.Storage
	Server  *httptest.Server
	Client  *backend.Client
	Clock   *Clock
}

// NewBackend migrates a temporary SQLite file, seeds the demo dataset as of
// clock.Now() and serves it. A nil clock starts at ReferenceTime.
func NewBackend(tb testing.TB, clock *Clock) *Backend {
	tb.Helper()

	if clock == nil {
		clock = NewClock(time.Time{})
	}

	storage, err := fixturebackend.Open(filepath.Join(tb.TempDir(), "backend.db"))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = storage.Close() })

	ctx := context.Background()
	if err := storage.Migrate(ctx); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	if err := storage.Seed(ctx, fixturebackend.DemoDataset(clock.Now())); err != nil {
		tb.Fatalf("failed to seed storage: %v", err)
	}

	server := httptest.NewServer(fixturebackend.NewServer(storage, clock.Now, logging.Discard()).Handler())
	tb.Cleanup(server.Close)

	client, err := backend.NewClient(server.URL, backend.WithHTTPClient(server.Client()), backend.WithLogger(logging.Discard()))
	if err != nil {
		tb.Fatalf("failed to build client: %v", err)
	}

	return &Backend{Storage: storage, Server: server, Client: client, Clock: clock}
}

// As returns ctx carrying token for the client.
func As(ctx context.Context, token string) context.Context {
	return backend.ContextWithToken(ctx, token)
}
