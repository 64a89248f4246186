package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/domain/energy"
	"github.com/rpggio/starbase/internal/domain/ledger"
	"github.com/rpggio/starbase/internal/repository"
)

const (
	defaultListLimit = 100
	markPaidAttempts = 3
)

// Service runs the start, completion and cancellation lifecycle of queue items.
type Service struct {
	repo   Repository
	bases  BaseLoader
	ledger Ledger
	techs  TechAdvancer
	fleets FleetMerger
	now    func() time.Time
	logger *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new queue service.
func NewService(repo Repository, bases BaseLoader, credits Ledger, techs TechAdvancer, fleets FleetMerger, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:   repo,
		bases:  bases,
		ledger: credits,
		techs:  techs,
		fleets: fleets,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates and enqueues an item, then charges its cost.
// Checks run in a fixed order and the first failure wins.
func (s *Service) Start(ctx context.Context, empireID, coord, itemKey string) (*StartResult, error) {
	c, err := empire.ParseCoordinate(coord)
	if err != nil {
		// A missing empire outranks a malformed coordinate.
		if _, gerr := s.bases.Get(ctx, empireID); errors.Is(gerr, empire.ErrEmpireNotFound) {
			return nil, newError(CodeNotFound, "empire not found", map[string]any{"empire_id": empireID})
		}
		return nil, newError(CodeInvalidRequest, "malformed coordinate", map[string]any{"coord": coord})
	}

	base, err := s.bases.LoadBase(ctx, empireID, c)
	if err != nil {
		switch {
		case errors.Is(err, empire.ErrEmpireNotFound):
			return nil, newError(CodeNotFound, "empire not found", map[string]any{"empire_id": empireID})
		case errors.Is(err, empire.ErrNotOwner):
			return nil, newError(CodeNotOwner, "coordinate is not a colony of this empire", map[string]any{"coord": string(c)})
		}
		return nil, wrapError(CodeQueueError, "loading base", err, nil)
	}

	item, ok := catalog.Lookup(itemKey)
	if !ok || !item.Category.Queued() {
		return nil, newError(CodeInvalidRequest, "unknown item", map[string]any{"item_key": itemKey})
	}

	if unmet := unmetTechs(item, base.Empire); len(unmet) > 0 {
		return nil, newError(CodeTechRequirements, "technology requirements not met", map[string]any{"unmet": unmet})
	}
	if item.Building != nil {
		if level := base.ActiveLevel(item.Building.Key); level < item.Building.Level {
			return nil, newError(CodeTechRequirements, "building requirements not met", map[string]any{
				"unmet": []Unmet{{Key: item.Building.Key, RequiredLevel: item.Building.Level, CurrentLevel: level, Building: true}},
			})
		}
	}

	cost := catalog.CostAt(item, base.Empire.TechLevel(item.Key))
	if base.Empire.Credits < cost {
		return nil, newError(CodeInsufficientResources, "not enough credits", map[string]any{
			"resource":  "credits",
			"required":  cost,
			"available": base.Empire.Credits,
			"shortfall": cost - base.Empire.Credits,
		})
	}
	if item.EnergyDelta < 0 {
		bal := base.Energy()
		if !energy.Allows(bal, item.EnergyDelta) {
			return nil, newError(CodeInsufficientResources, "not enough energy", map[string]any{
				"resource":          "energy",
				"required":          -item.EnergyDelta,
				"projected_balance": bal.ProjectedBalance,
				"shortfall":         -(bal.ProjectedBalance + item.EnergyDelta),
			})
		}
	}

	rate := base.Capacity().For(item.Capacity).Value
	if rate <= 0 {
		return nil, newError(CodeNoCapacity, "no capacity to build this item", map[string]any{"capacity": item.Capacity})
	}

	now := s.now()
	eta := ETAMinutes(cost, rate)
	q := &Item{
		ID:          uuid.NewString(),
		Category:    item.Category,
		EmpireID:    empireID,
		Coord:       string(c),
		ItemKey:     item.Key,
		IdentityKey: IdentityKey(item.Category, empireID, string(c), item.Key, now),
		CreditsCost: cost,
		StartedAt:   now,
		CompletesAt: now.Add(time.Duration(eta) * time.Minute),
		Status:      StatusPending,
	}

	// Fast path only; the unique index below is what actually guards.
	if existing, err := s.repo.FindPending(ctx, q.Category, q.IdentityKey); err == nil {
		return nil, alreadyInProgress(existing, now)
	}

	if err := s.repo.Insert(ctx, q); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			existing, ferr := s.repo.FindPending(ctx, q.Category, q.IdentityKey)
			if ferr != nil {
				return nil, newError(CodeAlreadyInProgress, "item already in progress", nil)
			}
			return nil, alreadyInProgress(existing, now)
		}
		return nil, wrapError(CodeQueueError, "inserting queue item", err, nil)
	}

	balance, err := s.ledger.Charge(ctx, ledger.Entry{
		EmpireID: empireID,
		Amount:   cost,
		Type:     ledger.TypeQueueCost,
		Note:     fmt.Sprintf("%s %s at %s", item.Category, item.Key, c),
		Meta: map[string]any{
			"queue_id": q.ID,
			"category": string(q.Category),
			"item_key": q.ItemKey,
		},
	})
	if err != nil {
		s.compensate(ctx, q, err)
		details := map[string]any{"queue_id": q.ID}
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			details["reason"] = "insufficient_credits"
		}
		return nil, wrapError(CodeCreditError, "charging credits", err, details)
	}

	s.markPaid(ctx, q)

	s.logger.Info("queue item started",
		"empire_id", empireID,
		"queue_id", q.ID,
		"category", q.Category,
		"item_key", q.ItemKey,
		"eta_minutes", eta,
	)

	return &StartResult{
		QueueID:      q.ID,
		Category:     q.Category,
		ItemKey:      q.ItemKey,
		CompletesAt:  q.CompletesAt,
		ETAMinutes:   eta,
		CapacityRate: rate,
		CreditsCost:  cost,
		BalanceAfter: balance,
	}, nil
}

// CompleteDue claims every paid pending item whose time has come and applies its effect.
// An item cancelled or claimed by another pass in the meantime is skipped. An effect that
// fails after the claim is logged; the item stays completed.
func (s *Service) CompleteDue(ctx context.Context, category catalog.Category, empireID string, now time.Time) (CompletionReport, error) {
	report := CompletionReport{Category: category}

	due, err := s.repo.ListDue(ctx, category, empireID, now)
	if err != nil {
		return report, fmt.Errorf("listing due %s items: %w", category, err)
	}

	for i := range due {
		item := &due[i]
		err := s.completeOne(ctx, item, now)
		switch {
		case err == nil:
			report.Completed = append(report.Completed, item.ID)
		case errors.Is(err, errClaimLost):
			report.Skipped++
			s.logger.Info("queue item no longer pending, skipped",
				"empire_id", item.EmpireID,
				"queue_id", item.ID,
				"category", item.Category,
			)
		default:
			report.Failed++
			s.logger.Error("queue completion failed",
				"empire_id", item.EmpireID,
				"queue_id", item.ID,
				"category", item.Category,
				"item_key", item.ItemKey,
				"error", err,
			)
		}
	}
	return report, nil
}

var errClaimLost = errors.New("queue item no longer pending")

func (s *Service) completeOne(ctx context.Context, item *Item, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if !item.Category.Queued() {
		return fmt.Errorf("unknown category %q", item.Category)
	}

	// The pending -> completed transition is the claim. Only its winner applies the effect.
	if err := s.repo.Complete(ctx, item.Category, item.ID, now); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return errClaimLost
		}
		return fmt.Errorf("marking completed: %w", err)
	}

	switch item.Category {
	case catalog.CategoryTechnology:
		level, err := s.techs.IncrementTech(ctx, item.EmpireID, item.ItemKey)
		if err != nil {
			return fmt.Errorf("completed but tech not incremented: %w", err)
		}
		s.logger.Info("technology researched", "empire_id", item.EmpireID, "tech", item.ItemKey, "level", level)
	case catalog.CategoryUnit:
		f, err := s.fleets.MergeUnits(ctx, item.EmpireID, item.Coord, item.ItemKey, 1)
		if err != nil {
			return fmt.Errorf("completed but units not delivered: %w", err)
		}
		s.logger.Info("unit delivered", "empire_id", item.EmpireID, "fleet_id", f.ID, "unit", item.ItemKey)
	}
	return nil
}

// Cancel flips a pending item to cancelled, refunding only when asked.
func (s *Service) Cancel(ctx context.Context, req CancelRequest) (*Item, error) {
	item, err := s.Get(ctx, req.EmpireID, req.QueueID)
	if err != nil {
		return nil, err
	}
	if item.Status != StatusPending {
		return nil, newError(CodeInvalidRequest, "item is not pending", map[string]any{"queue_id": item.ID, "status": item.Status})
	}

	now := s.now()
	if err := s.repo.Cancel(ctx, item.Category, item.ID, now); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, newError(CodeInvalidRequest, "item is not pending", map[string]any{"queue_id": item.ID})
		}
		return nil, wrapError(CodeQueueError, "cancelling queue item", err, nil)
	}
	item.Status = StatusCancelled
	item.CancelledAt = &now

	if req.Refund && item.Paid && item.CreditsCost > 0 {
		if _, err := s.ledger.Credit(ctx, ledger.Entry{
			EmpireID: item.EmpireID,
			Amount:   item.CreditsCost,
			Type:     ledger.TypeRefund,
			Note:     fmt.Sprintf("cancelled %s %s", item.Category, item.ItemKey),
			Meta:     map[string]any{"queue_id": item.ID},
		}); err != nil {
			return item, wrapError(CodeCreditError, "refunding credits", err, map[string]any{"queue_id": item.ID})
		}
	}

	s.logger.Info("queue item cancelled", "empire_id", item.EmpireID, "queue_id", item.ID, "refund", req.Refund)
	return item, nil
}

// Get returns a queue item owned by the empire.
func (s *Service) Get(ctx context.Context, empireID, queueID string) (*Item, error) {
	item, err := s.repo.Find(ctx, queueID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(CodeNotFound, "queue item not found", map[string]any{"queue_id": queueID})
		}
		return nil, wrapError(CodeQueueError, "getting queue item", err, nil)
	}
	if item.EmpireID != empireID {
		return nil, newError(CodeNotFound, "queue item not found", map[string]any{"queue_id": queueID})
	}
	return item, nil
}

// List returns the empire's queue items, newest first.
func (s *Service) List(ctx context.Context, empireID string, opts ListOptions) ([]Item, error) {
	if opts.Category != "" && !opts.Category.Queued() {
		return nil, newError(CodeInvalidRequest, "unknown queue category", map[string]any{"category": opts.Category})
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	items, err := s.repo.List(ctx, empireID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing queue items: %w", err)
	}
	return items, nil
}

// ReconcileUnpaid settles pending items started before olderThan that are still unpaid.
// An item whose charge reached the ledger is marked paid; anything else is cancelled.
func (s *Service) ReconcileUnpaid(ctx context.Context, olderThan time.Time) (int, error) {
	cancelled := 0
	for _, category := range Categories {
		items, err := s.repo.ListUnpaid(ctx, category, olderThan)
		if err != nil {
			return cancelled, fmt.Errorf("listing unpaid %s items: %w", category, err)
		}
		for _, item := range items {
			charged, err := s.ledger.QueueCharged(ctx, item.EmpireID, item.ID)
			if err != nil {
				s.logger.Error("reconcile charge lookup failed", "queue_id", item.ID, "category", category, "error", err)
				continue
			}
			if charged {
				if err := s.repo.MarkPaid(ctx, category, item.ID); err != nil {
					s.logger.Error("reconcile mark paid failed", "queue_id", item.ID, "category", category, "error", err)
					continue
				}
				s.logger.Warn("charged queue item marked paid",
					"empire_id", item.EmpireID,
					"queue_id", item.ID,
					"category", category,
					"credits_cost", item.CreditsCost,
				)
				continue
			}

			if err := s.repo.Cancel(ctx, category, item.ID, s.now()); err != nil {
				if !errors.Is(err, repository.ErrStale) {
					s.logger.Error("reconcile cancel failed", "queue_id", item.ID, "category", category, "error", err)
				}
				continue
			}
			cancelled++
			s.logger.Warn("cancelled unpaid queue item",
				"empire_id", item.EmpireID,
				"queue_id", item.ID,
				"category", category,
				"item_key", item.ItemKey,
				"started_at", item.StartedAt,
			)
		}
	}
	return cancelled, nil
}

// compensate cancels an item whose charge failed. Anything it misses is left for ReconcileUnpaid.
func (s *Service) compensate(ctx context.Context, q *Item, cause error) {
	if err := s.repo.Cancel(ctx, q.Category, q.ID, s.now()); err != nil {
		s.logger.Error("compensating cancel failed, left for reconciliation",
			"empire_id", q.EmpireID,
			"queue_id", q.ID,
			"cause", cause,
			"error", err,
		)
		return
	}
	s.logger.Warn("queue item cancelled after failed charge", "empire_id", q.EmpireID, "queue_id", q.ID, "cause", cause)
}

func (s *Service) markPaid(ctx context.Context, q *Item) {
	var err error
	for attempt := 1; attempt <= markPaidAttempts; attempt++ {
		if err = s.repo.MarkPaid(ctx, q.Category, q.ID); err == nil {
			q.Paid = true
			return
		}
	}
	s.logger.Error("charged item not marked paid, left for reconciliation",
		"empire_id", q.EmpireID,
		"queue_id", q.ID,
		"credits_cost", q.CreditsCost,
		"error", err,
	)
}

func unmetTechs(item catalog.Item, e *empire.Empire) []Unmet {
	var unmet []Unmet
	for _, req := range item.Techs {
		if have := e.TechLevel(req.Key); have < req.Level {
			unmet = append(unmet, Unmet{Key: req.Key, RequiredLevel: req.Level, CurrentLevel: have})
		}
	}
	return unmet
}

func alreadyInProgress(existing *Item, now time.Time) *Error {
	return newError(CodeAlreadyInProgress, "item already in progress", map[string]any{
		"queue_id":          existing.ID,
		"completes_at":      existing.CompletesAt,
		"remaining_minutes": existing.RemainingMinutes(now),
	})
}
