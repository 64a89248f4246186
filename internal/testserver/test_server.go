// Package testserver runs the whole stack behind an httptest server for end-to-end tests.
package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/starbase/internal/app"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/mcp"
	"github.com/rpggio/starbase/internal/sqlite"
	"github.com/rpggio/starbase/internal/transport"
	"github.com/stretchr/testify/require"
)

// Clock is a settable time source shared by the services and the test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Services *app.Services
	Clock    *Clock
}

// New starts a server on a fresh database with the clock at start.
func New(t *testing.T, start time.Time) *TestServer {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "starbase.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(context.Background()))

	clock := &Clock{now: start}
	svc := app.New(db, app.Options{
		PayoutPeriod:   time.Minute,
		CitizenPeriod:  time.Minute,
		ReconcileGrace: 5 * time.Minute,
		EventBuffer:    64,
		Now:            clock.Now,
	}, nil)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Queue:    svc.Queue,
			Empires:  svc.Empires,
			Ledger:   svc.Ledger,
			Fleets:   svc.Fleets,
			Research: svc.Research,
		},
		TransportMode: "http",
	})
	handler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{},
	)
	server := httptest.NewServer(transport.NewRouter(handler, transport.Options{
		Limiter: transport.NewRateLimiter(1000, 1000),
		Health:  db.PingContext,
	}))

	t.Cleanup(func() {
		server.Close()
		svc.Events.Close()
		_ = db.Close()
	})

	return &TestServer{Server: server, DB: db, Services: svc, Clock: clock}
}

// Seed creates an empire at the current fake time.
func (ts *TestServer) Seed(t *testing.T, req app.SeedRequest) *empire.Empire {
	t.Helper()
	if req.Now.IsZero() {
		req.Now = ts.Clock.Now()
	}
	e, err := ts.Services.Seed(context.Background(), req)
	require.NoError(t, err)
	return e
}

// Connect opens an MCP client session over streamable HTTP.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "testserver", Version: "0.0.1"}, nil)
	cs, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{Endpoint: ts.Server.URL + "/mcp"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

// Tick runs one scheduler pass at the current fake time.
func (ts *TestServer) Tick(t *testing.T) {
	t.Helper()
	report, err := ts.Services.Scheduler.RunOnce(context.Background(), ts.Clock.Now())
	require.NoError(t, err)
	require.Zero(t, report.Failures())
}
