package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/domain/fleet"
	"github.com/rpggio/starbase/internal/domain/ledger"
	"github.com/rpggio/starbase/internal/domain/queue"
	"github.com/rpggio/starbase/internal/domain/research"
)

// QueueService defines production queue operations needed by MCP.
type QueueService interface {
	Start(ctx context.Context, empireID, coord, itemKey string) (*queue.StartResult, error)
	Cancel(ctx context.Context, req queue.CancelRequest) (*queue.Item, error)
	List(ctx context.Context, empireID string, opts queue.ListOptions) ([]queue.Item, error)
}

// EmpireService defines empire and base reads needed by MCP.
type EmpireService interface {
	Get(ctx context.Context, id string) (*empire.Empire, error)
	LoadBase(ctx context.Context, empireID string, coord empire.Coordinate) (*empire.Base, error)
	ListColonies(ctx context.Context, empireID string) ([]empire.Colony, error)
	Economy(ctx context.Context, empireID string) (empire.Economy, error)
}

// LedgerService defines credit history reads needed by MCP.
type LedgerService interface {
	History(ctx context.Context, empireID string, limit int) ([]ledger.Transaction, error)
}

// FleetService defines fleet reads needed by MCP.
type FleetService interface {
	List(ctx context.Context, empireID string) ([]fleet.Fleet, error)
}

// ResearchService defines research project reads needed by MCP.
type ResearchService interface {
	List(ctx context.Context, empireID string) ([]research.Project, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Queue    QueueService
	Empires  EmpireService
	Ledger   LedgerService
	Fleets   FleetService
	Research ResearchService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Version == "" {
		cfg.Version = "0.1.0"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "starbase",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerResources(server)

	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(recoverMiddleware(cfg.Logger))
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services, cfg.Logger.With("transport", cfg.TransportMode))

	return server
}
