// Package app wires the SQLite repositories into the domain services and the tick
// scheduler. Binaries and test harnesses share it.
package app

import (
	"log/slog"
	"time"

	"github.com/rpggio/starbase/internal/config"
	"github.com/rpggio/starbase/internal/domain/building"
	"github.com/rpggio/starbase/internal/domain/citizen"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/domain/fleet"
	"github.com/rpggio/starbase/internal/domain/ledger"
	"github.com/rpggio/starbase/internal/domain/queue"
	"github.com/rpggio/starbase/internal/domain/research"
	"github.com/rpggio/starbase/internal/events"
	"github.com/rpggio/starbase/internal/sqlite"
	"github.com/rpggio/starbase/internal/tick"
)

// Options carries the game tunables.
type Options struct {
	TickInterval   time.Duration
	PayoutPeriod   time.Duration
	CitizenPeriod  time.Duration
	ReconcileGrace time.Duration
	LedgerRetries  int
	EventBuffer    int
	// Now overrides the clock used by queue starts and scheduled passes.
	Now func() time.Time
}

// Services is the full set of wired services.
type Services struct {
	Empires   *empire.Service
	Ledger    *ledger.Service
	Queue     *queue.Service
	Fleets    *fleet.Service
	Buildings *building.Service
	Research  *research.Service
	Citizens  *citizen.Service
	Events    *events.Bus
	Scheduler *tick.Scheduler
}

// New builds every service over db.
func New(db *sqlite.DB, opts Options, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	bus := events.NewBus(opts.EventBuffer, logger)

	empires := empire.NewService(sqlite.NewEmpireRepository(db), logger)
	credits := ledger.NewService(sqlite.NewLedgerRepository(db), ledger.Options{
		PayoutPeriod:  opts.PayoutPeriod,
		RetryAttempts: opts.LedgerRetries,
		RetryDelay:    50 * time.Millisecond,
	}, logger)
	fleets := fleet.NewService(sqlite.NewFleetRepository(db), bus, logger)
	queues := queue.NewService(sqlite.NewQueueRepository(db), empires, credits, empires, fleets, logger, queue.WithClock(now))
	buildings := building.NewService(sqlite.NewBuildingRepository(db), logger)
	projects := research.NewService(sqlite.NewResearchRepository(db), empires, empires, empires, logger)
	citizens := citizen.NewService(sqlite.NewCitizenRepository(db), empires, opts.CitizenPeriod, logger)

	scheduler := tick.NewScheduler(tick.Deps{
		Empires:   empires,
		Queues:    queues,
		Buildings: buildings,
		Ledger:    credits,
		Fleets:    fleets,
		Research:  projects,
		Citizens:  citizens,
	}, tick.Options{
		Interval:       opts.TickInterval,
		ReconcileGrace: opts.ReconcileGrace,
		Now:            now,
	}, logger)

	return &Services{
		Empires:   empires,
		Ledger:    credits,
		Queue:     queues,
		Fleets:    fleets,
		Buildings: buildings,
		Research:  projects,
		Citizens:  citizens,
		Events:    bus,
		Scheduler: scheduler,
	}
}

// OptionsFromConfig maps the game section of the configuration.
func OptionsFromConfig(cfg config.GameConfig) Options {
	return Options{
		TickInterval:   cfg.TickInterval,
		PayoutPeriod:   cfg.PayoutPeriod,
		CitizenPeriod:  cfg.CitizenPeriod,
		ReconcileGrace: cfg.ReconcileGrace,
		LedgerRetries:  cfg.LedgerRetries,
		EventBuffer:    cfg.EventBuffer,
	}
}
