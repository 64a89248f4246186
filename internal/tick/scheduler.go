// Package tick drives the periodic game pass: completions, activations, payouts,
// arrivals and population growth for every empire.
package tick

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rpggio/starbase/internal/domain/catalog"
)

// ErrPassInProgress is returned by RunOnce while another pass is running.
var ErrPassInProgress = errors.New("tick pass already in progress")

const (
	defaultInterval       = 10 * time.Second
	defaultReconcileGrace = 5 * time.Minute
)

// Options tunes the scheduler.
type Options struct {
	Interval time.Duration
	// ReconcileGrace is how long an unpaid queue item may stay pending before it
	// is settled as an orphan. Zero means the 5 minute default; negative disables it.
	ReconcileGrace time.Duration
	Now            func() time.Time
}

// Scheduler runs at most one pass at a time.
type Scheduler struct {
	deps    Deps
	opts    Options
	running atomic.Bool
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// NewScheduler creates a scheduler. A zero ReconcileGrace uses the default; pass a
// negative value to disable reconciliation.
func NewScheduler(deps Deps, opts Options, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.ReconcileGrace == 0 {
		opts.ReconcileGrace = defaultReconcileGrace
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{deps: deps, opts: opts, logger: logger}
}

// Run polls until ctx is cancelled. A tick that fires while a pass is still running
// is skipped, not queued. Run waits for the in-flight pass before returning.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.logger.Info("tick scheduler started", "interval", s.opts.Interval)
	defer s.logger.Info("tick scheduler stopped")

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return
		case <-ticker.C:
			if !s.running.CompareAndSwap(false, true) {
				s.logger.Warn("tick skipped, previous pass still running")
				continue
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer s.running.Store(false)
				if _, err := s.pass(ctx, s.opts.Now()); err != nil {
					s.logger.Error("tick pass failed", "error", err)
				}
			}()
		}
	}
}

// RunOnce performs a single pass at now. It returns ErrPassInProgress if a pass is
// already running.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) (PassReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return PassReport{}, ErrPassInProgress
	}
	defer s.running.Store(false)
	return s.pass(ctx, now)
}

func (s *Scheduler) pass(ctx context.Context, now time.Time) (PassReport, error) {
	start := time.Now()
	report := PassReport{At: now}

	if s.opts.ReconcileGrace > 0 {
		n, err := s.deps.Queues.ReconcileUnpaid(ctx, now.Add(-s.opts.ReconcileGrace))
		if err != nil {
			s.logger.Error("reconciling unpaid queue items", "error", err)
		}
		report.Reconciled = n
	}

	ids, err := s.deps.Empires.ListIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("listing empires: %w", err)
	}

	report.Empires = make([]EmpireReport, 0, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		report.Empires = append(report.Empires, s.runEmpire(ctx, id, now))
	}

	report.Duration = time.Since(start)
	s.logger.Info("tick pass complete",
		"empires", len(report.Empires),
		"failures", report.Failures(),
		"reconciled", report.Reconciled,
		"duration", report.Duration,
	)
	return report, ctx.Err()
}

// runEmpire is one empire's failure domain. An error or panic stops this empire's
// remaining steps only.
func (s *Scheduler) runEmpire(ctx context.Context, empireID string, now time.Time) (r EmpireReport) {
	r.EmpireID = empireID
	step := ""

	defer func() {
		if rec := recover(); rec != nil {
			r.FailedStep = step
			r.Error = fmt.Sprintf("panic: %v", rec)
			s.logger.Error("tick step panicked", "empire_id", empireID, "step", step, "panic", rec)
		}
	}()

	fail := func(err error) EmpireReport {
		r.FailedStep = step
		r.Error = err.Error()
		s.logger.Error("tick step failed", "empire_id", empireID, "step", step, "error", err)
		return r
	}

	complete := func(category catalog.Category) ([]string, error) {
		rep, err := s.deps.Queues.CompleteDue(ctx, category, empireID, now)
		r.CompletionFailures += rep.Failed
		return rep.Completed, err
	}

	var err error

	step = StepDefense
	if r.DefensesCompleted, err = complete(catalog.CategoryDefense); err != nil {
		return fail(err)
	}

	step = StepBuildings
	if r.BuildingsActivated, err = s.deps.Buildings.ActivateDue(ctx, empireID, now); err != nil {
		return fail(err)
	}

	step = StepTech
	if r.TechsCompleted, err = complete(catalog.CategoryTechnology); err != nil {
		return fail(err)
	}

	step = StepUnits
	if r.UnitsCompleted, err = complete(catalog.CategoryUnit); err != nil {
		return fail(err)
	}

	// Economy is read after activations and completions so the payout sees them.
	step = StepLedger
	econ, err := s.deps.Empires.Economy(ctx, empireID)
	if err != nil {
		return fail(err)
	}
	paid, err := s.deps.Ledger.Accrue(ctx, empireID, econ.CreditsPerHour, econ.Energy, now)
	if err != nil {
		return fail(err)
	}
	r.CreditsPaid = paid.Credits

	step = StepFleets
	if r.FleetsArrived, err = s.deps.Fleets.ResolveArrivals(ctx, empireID, now); err != nil {
		return fail(err)
	}

	step = StepResearch
	res, err := s.deps.Research.Advance(ctx, empireID, now)
	if err != nil {
		return fail(err)
	}
	r.ResearchCompleted = res.Completed

	step = StepCitizens
	cit, err := s.deps.Citizens.Accrue(ctx, empireID, now)
	if err != nil {
		return fail(err)
	}
	r.CitizensAdded = cit.Citizens

	return r
}
