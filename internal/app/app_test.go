package app_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/starbase/internal/app"
	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/domain/ledger"
	"github.com/rpggio/starbase/internal/domain/queue"
	"github.com/rpggio/starbase/internal/sqlite"
	"github.com/stretchr/testify/require"
)

const home = "A01:02:03:04"

type testEnv struct {
	db  *sqlite.DB
	svc *app.Services
	now time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "starbase.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(context.Background()))
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{db: db, now: time.UnixMilli(1_700_000_040_000)}
	env.svc = app.New(db, app.Options{
		PayoutPeriod:   time.Minute,
		CitizenPeriod:  time.Minute,
		ReconcileGrace: 5 * time.Minute,
		EventBuffer:    16,
		Now:            func() time.Time { return env.now },
	}, nil)
	return env
}

func (env *testEnv) seed(t *testing.T, id string, credits int64, buildings map[string]int, techs map[string]int) {
	t.Helper()
	_, err := env.svc.Seed(context.Background(), app.SeedRequest{
		EmpireID:   id,
		OwnerID:    "owner-" + id,
		Name:       "Empire " + id,
		Credits:    credits,
		Location:   empire.Location{Coord: home, SolarEnergy: 10, Fertility: 2, MetalYield: 3},
		Buildings:  buildings,
		TechLevels: techs,
		Now:        env.now,
	})
	require.NoError(t, err)
}

func TestIntegration_ConcurrentDuplicateStart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(t, "e1", 1000, map[string]int{catalog.ResearchLabs: 1}, nil)

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started int
		dupes   int
		other   []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Queue.Start(ctx, "e1", home, catalog.TechEnergy)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				started++
			case errors.Is(err, queue.ErrAlreadyInProgress):
				dupes++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, other)
	require.Equal(t, 1, started)
	require.Equal(t, callers-1, dupes)

	var pending int
	require.NoError(t, env.db.Get(&pending, `SELECT COUNT(*) FROM tech_queue WHERE status = 'pending'`))
	require.Equal(t, 1, pending)

	acct, err := env.svc.Ledger.Account(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, int64(980), acct.Credits)
}

func TestIntegration_TickCompletesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(t, "e1", 100, map[string]int{catalog.ResearchLabs: 1, catalog.UrbanStructures: 1}, nil)

	res, err := env.svc.Queue.Start(ctx, "e1", home, catalog.TechEnergy)
	require.NoError(t, err)
	require.Equal(t, int64(150), res.ETAMinutes)

	later := env.now.Add(3 * time.Hour)
	report, err := env.svc.Scheduler.RunOnce(ctx, later)
	require.NoError(t, err)
	require.Len(t, report.Empires, 1)
	require.Equal(t, []string{res.QueueID}, report.Empires[0].TechsCompleted)
	require.Equal(t, int64(30), report.Empires[0].CreditsPaid)

	before, err := env.svc.Empires.Get(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, 1, before.TechLevel(catalog.TechEnergy))
	require.Equal(t, int64(110), before.Credits)
	colonies, err := env.svc.Empires.ListColonies(ctx, "e1")
	require.NoError(t, err)
	citizens := colonies[0].Citizens
	require.Equal(t, int64(12), citizens)
	history, err := env.svc.Ledger.History(ctx, "e1", 0)
	require.NoError(t, err)

	// A second pass inside the same period changes nothing.
	report, err = env.svc.Scheduler.RunOnce(ctx, later.Add(10*time.Second))
	require.NoError(t, err)
	require.Empty(t, report.Empires[0].TechsCompleted)
	require.Zero(t, report.Empires[0].CreditsPaid)

	after, err := env.svc.Empires.Get(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, before.Credits, after.Credits)
	require.Equal(t, before.CreditsRemainderMilli, after.CreditsRemainderMilli)
	require.Equal(t, before.TechLevels, after.TechLevels)
	colonies, err = env.svc.Empires.ListColonies(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, citizens, colonies[0].Citizens)
	again, err := env.svc.Ledger.History(ctx, "e1", 0)
	require.NoError(t, err)
	require.Len(t, again, len(history))
	require.Equal(t, ledger.TypeTickPayout, again[0].Type)
}

func TestIntegration_UnitCompletionMergesFleet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(t, "e1", 100, map[string]int{catalog.Shipyards: 1}, map[string]int{"laser": 1})

	first, err := env.svc.Queue.Start(ctx, "e1", home, "fighters")
	require.NoError(t, err)
	env.now = env.now.Add(time.Millisecond)
	second, err := env.svc.Queue.Start(ctx, "e1", home, "fighters")
	require.NoError(t, err)
	require.NotEqual(t, first.QueueID, second.QueueID)

	report, err := env.svc.Scheduler.RunOnce(ctx, env.now.Add(4*time.Hour))
	require.NoError(t, err)
	require.Len(t, report.Empires[0].UnitsCompleted, 2)

	fleets, err := env.svc.Fleets.List(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, fleets, 1)
	require.Equal(t, int64(2), fleets[0].Units["fighters"])
	require.Equal(t, int64(10), fleets[0].SizeCredits)

	select {
	case ev := <-env.svc.Events.FleetUpdates():
		require.Equal(t, "e1", ev.EmpireID)
	default:
		t.Fatal("expected a fleet update event")
	}
}

func TestIntegration_ReconcileCancelsUnpaid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(t, "e1", 100, nil, nil)

	repo := sqlite.NewQueueRepository(env.db)
	require.NoError(t, repo.Insert(ctx, &queue.Item{
		ID:          "orphan",
		Category:    catalog.CategoryDefense,
		EmpireID:    "e1",
		Coord:       home,
		ItemKey:     "barracks",
		IdentityKey: "defense:e1:" + home + ":barracks",
		CreditsCost: 10,
		StartedAt:   env.now,
		CompletesAt: env.now.Add(time.Hour),
		Status:      queue.StatusPending,
	}))

	report, err := env.svc.Scheduler.RunOnce(ctx, env.now.Add(10*time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, report.Reconciled)

	item, err := repo.Get(ctx, catalog.CategoryDefense, "orphan")
	require.NoError(t, err)
	require.Equal(t, queue.StatusCancelled, item.Status)
}

// cancelOnListDue cancels every due item right after it is listed, the way a cancel
// landing mid-pass would.
type cancelOnListDue struct {
	*sqlite.QueueRepository
	cancel func(items []queue.Item)
}

func (r *cancelOnListDue) ListDue(ctx context.Context, category catalog.Category, empireID string, now time.Time) ([]queue.Item, error) {
	items, err := r.QueueRepository.ListDue(ctx, category, empireID, now)
	if err == nil {
		r.cancel(items)
	}
	return items, err
}

func TestIntegration_CancelDuringCompletionGrantsNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(t, "e1", 100, map[string]int{catalog.ResearchLabs: 1}, nil)

	res, err := env.svc.Queue.Start(ctx, "e1", home, catalog.TechEnergy)
	require.NoError(t, err)

	repo := &cancelOnListDue{
		QueueRepository: sqlite.NewQueueRepository(env.db),
		cancel: func(items []queue.Item) {
			for _, item := range items {
				_, err := env.svc.Queue.Cancel(ctx, queue.CancelRequest{EmpireID: item.EmpireID, QueueID: item.ID, Refund: true})
				require.NoError(t, err)
			}
		},
	}
	completer := queue.NewService(repo, env.svc.Empires, env.svc.Ledger, env.svc.Empires, env.svc.Fleets, nil)

	report, err := completer.CompleteDue(ctx, catalog.CategoryTechnology, "e1", env.now.Add(3*time.Hour))
	require.NoError(t, err)
	require.Empty(t, report.Completed)
	require.Equal(t, 1, report.Skipped)
	require.Zero(t, report.Failed)

	item, err := env.svc.Queue.Get(ctx, "e1", res.QueueID)
	require.NoError(t, err)
	require.Equal(t, queue.StatusCancelled, item.Status)

	e, err := env.svc.Empires.Get(ctx, "e1")
	require.NoError(t, err)
	require.Zero(t, e.TechLevel(catalog.TechEnergy))
	require.Equal(t, int64(100), e.Credits)
}

func TestIntegration_ReconcileKeepsChargedItem(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seed(t, "e1", 100, map[string]int{catalog.ResearchLabs: 1}, nil)

	res, err := env.svc.Queue.Start(ctx, "e1", home, catalog.TechEnergy)
	require.NoError(t, err)
	// Simulate every MarkPaid attempt having failed after the charge.
	_, err = env.db.Exec(`UPDATE tech_queue SET paid = 0 WHERE id = ?`, res.QueueID)
	require.NoError(t, err)

	n, err := env.svc.Queue.ReconcileUnpaid(ctx, env.now.Add(time.Minute))
	require.NoError(t, err)
	require.Zero(t, n)

	item, err := env.svc.Queue.Get(ctx, "e1", res.QueueID)
	require.NoError(t, err)
	require.Equal(t, queue.StatusPending, item.Status)
	require.True(t, item.Paid)
}
