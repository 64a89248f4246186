package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/domain/fleet"
	"github.com/rpggio/starbase/internal/domain/ledger"
	"github.com/rpggio/starbase/internal/domain/queue"
	"github.com/rpggio/starbase/internal/repository"
	"github.com/rpggio/starbase/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const home = "A01:02:03:04"

var fixedNow = time.UnixMilli(1_700_000_000_000)

type bases struct{ mock.Mock }

func (m *bases) Get(ctx context.Context, id string) (*empire.Empire, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*empire.Empire); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *bases) LoadBase(ctx context.Context, empireID string, coord empire.Coordinate) (*empire.Base, error) {
	args := m.Called(ctx, empireID, coord)
	if b, ok := args.Get(0).(*empire.Base); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type credits struct{ mock.Mock }

func (m *credits) Charge(ctx context.Context, e ledger.Entry) (int64, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(int64), args.Error(1)
}

func (m *credits) Credit(ctx context.Context, e ledger.Entry) (int64, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(int64), args.Error(1)
}

func (m *credits) QueueCharged(ctx context.Context, empireID, queueID string) (bool, error) {
	args := m.Called(ctx, empireID, queueID)
	return args.Bool(0), args.Error(1)
}

type techs struct{ mock.Mock }

func (m *techs) IncrementTech(ctx context.Context, empireID, key string) (int, error) {
	args := m.Called(ctx, empireID, key)
	return args.Int(0), args.Error(1)
}

type fleets struct{ mock.Mock }

func (m *fleets) MergeUnits(ctx context.Context, empireID, coord, unitKey string, count int64) (*fleet.Fleet, error) {
	args := m.Called(ctx, empireID, coord, unitKey, count)
	if f, ok := args.Get(0).(*fleet.Fleet); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

type harness struct {
	repo   *mocks.QueueRepository
	bases  *bases
	ledger *credits
	techs  *techs
	fleets *fleets
	svc    *queue.Service
}

func newHarness() *harness {
	h := &harness{
		repo:   &mocks.QueueRepository{},
		bases:  &bases{},
		ledger: &credits{},
		techs:  &techs{},
		fleets: &fleets{},
	}
	h.svc = queue.NewService(h.repo, h.bases, h.ledger, h.techs, h.fleets, nil,
		queue.WithClock(func() time.Time { return fixedNow }))
	return h
}

func shipyardBase(credits int64, techLevels map[string]int, buildings ...empire.Building) *empire.Base {
	return &empire.Base{
		Empire:   &empire.Empire{ID: "e1", Credits: credits, TechLevels: techLevels},
		Colony:   &empire.Colony{ID: "c1", EmpireID: "e1", Coord: home},
		Location: empire.Location{Coord: home, SolarEnergy: 4},
		Buildings: append([]empire.Building{
			{Key: catalog.Shipyards, Level: 1, IsActive: true},
			{Key: catalog.SolarPlants, Level: 5, IsActive: true},
		}, buildings...),
	}
}

func requireCode(t *testing.T, err error, sentinel *queue.Error) *queue.Error {
	t.Helper()
	require.ErrorIs(t, err, sentinel)
	var qerr *queue.Error
	require.True(t, errors.As(err, &qerr))
	return qerr
}

func TestETAMinutes(t *testing.T) {
	require.Equal(t, int64(600), queue.ETAMinutes(1000, 100))
	require.Equal(t, int64(1), queue.ETAMinutes(1, 1000))
	require.Equal(t, int64(150), queue.ETAMinutes(5, 2))
	require.Equal(t, int64(0), queue.ETAMinutes(5, 0))
}

func TestIdentityKey(t *testing.T) {
	at := time.Unix(0, 42)
	require.Equal(t, "defense:e1:A01:02:03:04:laser_turrets",
		queue.IdentityKey(catalog.CategoryDefense, "e1", home, "laser_turrets", at))
	require.Equal(t, "technology:e1:A01:02:03:04:laser",
		queue.IdentityKey(catalog.CategoryTechnology, "e1", home, "laser", at))
	require.Equal(t, "unit:e1:A01:02:03:04:fighters:42",
		queue.IdentityKey(catalog.CategoryUnit, "e1", home, "fighters", at))
}

func TestQueueService_StartValidationOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	other := empire.Coordinate("B00:00:00:01")

	h.bases.On("Get", ctx, "ghost").Return((*empire.Empire)(nil), empire.ErrEmpireNotFound)
	h.bases.On("Get", ctx, "e1").Return(&empire.Empire{ID: "e1"}, nil)
	h.bases.On("LoadBase", ctx, "ghost", empire.Coordinate(home)).Return((*empire.Base)(nil), empire.ErrEmpireNotFound)
	h.bases.On("LoadBase", ctx, "e1", other).Return((*empire.Base)(nil), empire.ErrNotOwner)
	h.bases.On("LoadBase", ctx, "e1", empire.Coordinate(home)).Return(shipyardBase(1, map[string]int{}), nil)

	_, err := h.svc.Start(ctx, "ghost", "not-a-coord", "fighters")
	requireCode(t, err, queue.ErrNotFound)

	_, err = h.svc.Start(ctx, "e1", "not-a-coord", "fighters")
	requireCode(t, err, queue.ErrInvalidRequest)

	_, err = h.svc.Start(ctx, "ghost", home, "fighters")
	requireCode(t, err, queue.ErrNotFound)

	_, err = h.svc.Start(ctx, "e1", string(other), "fighters")
	requireCode(t, err, queue.ErrNotOwner)

	_, err = h.svc.Start(ctx, "e1", home, "solar_plants")
	requireCode(t, err, queue.ErrInvalidRequest)

	_, err = h.svc.Start(ctx, "e1", home, "death_star")
	requireCode(t, err, queue.ErrInvalidRequest)

	// fighters need laser 1; credits are also short but tech wins
	_, err = h.svc.Start(ctx, "e1", home, "fighters")
	qerr := requireCode(t, err, queue.ErrTechRequirements)
	unmet := qerr.Details["unmet"].([]queue.Unmet)
	require.Equal(t, []queue.Unmet{{Key: "laser", RequiredLevel: 1, CurrentLevel: 0}}, unmet)

	h.repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestQueueService_StartBuildingRequirement(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.bases.On("LoadBase", ctx, "e1", empire.Coordinate(home)).Return(shipyardBase(1000, map[string]int{"missiles": 1}), nil)

	_, err := h.svc.Start(ctx, "e1", home, "bombers")
	qerr := requireCode(t, err, queue.ErrTechRequirements)
	unmet := qerr.Details["unmet"].([]queue.Unmet)
	require.True(t, unmet[0].Building)
	require.Equal(t, catalog.Shipyards, unmet[0].Key)
	require.Equal(t, 2, unmet[0].RequiredLevel)
}

func TestQueueService_StartInsufficientCredits(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.bases.On("LoadBase", ctx, "e1", empire.Coordinate(home)).Return(shipyardBase(3, map[string]int{"laser": 1}), nil)

	_, err := h.svc.Start(ctx, "e1", home, "fighters")
	qerr := requireCode(t, err, queue.ErrInsufficientResources)
	require.Equal(t, "credits", qerr.Details["resource"])
	require.Equal(t, int64(2), qerr.Details["shortfall"])
}

func TestQueueService_StartInsufficientEnergy(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	base := shipyardBase(1000, map[string]int{"laser": 1})
	// 20 produced, 1 drawn by the shipyard, 19 reserved by pending turrets
	base.PendingDefenses = []string{"plasma_turrets", "ion_turrets", "photon_turrets", "photon_turrets", "photon_turrets", "laser_turrets", "laser_turrets"}
	h.bases.On("LoadBase", ctx, "e1", empire.Coordinate(home)).Return(base, nil)

	_, err := h.svc.Start(ctx, "e1", home, "laser_turrets")
	qerr := requireCode(t, err, queue.ErrInsufficientResources)
	require.Equal(t, "energy", qerr.Details["resource"])
}

func TestQueueService_StartNoCapacity(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	base := shipyardBase(1000, map[string]int{})
	h.bases.On("LoadBase", ctx, "e1", empire.Coordinate(home)).Return(base, nil)

	// research capacity is zero without labs
	_, err := h.svc.Start(ctx, "e1", home, catalog.TechEnergy)
	qerr := requireCode(t, err, queue.ErrNoCapacity)
	require.Equal(t, catalog.KindResearch, qerr.Details["capacity"])
}

func TestQueueService_StartSuccess(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.bases.On("LoadBase", ctx, "e1", empire.Coordinate(home)).Return(shipyardBase(100, map[string]int{"laser": 1}), nil)

	identity := queue.IdentityKey(catalog.CategoryDefense, "e1", home, "laser_turrets", fixedNow)
	h.repo.On("FindPending", ctx, catalog.CategoryDefense, identity).Return((*queue.Item)(nil), repository.ErrNotFound)
	h.repo.On("Insert", ctx, mock.MatchedBy(func(item *queue.Item) bool {
		return item.IdentityKey == identity && item.Status == queue.StatusPending && !item.Paid &&
			item.CompletesAt.Sub(item.StartedAt) == 600*time.Minute
	})).Return(nil)
	h.ledger.On("Charge", ctx, mock.MatchedBy(func(e ledger.Entry) bool {
		return e.EmpireID == "e1" && e.Amount == 20 && e.Type == ledger.TypeQueueCost
	})).Return(int64(80), nil)
	h.repo.On("MarkPaid", ctx, catalog.CategoryDefense, mock.Anything).Return(nil)

	res, err := h.svc.Start(ctx, "e1", home, "laser_turrets")
	require.NoError(t, err)
	require.NotEmpty(t, res.QueueID)
	require.Equal(t, int64(600), res.ETAMinutes)
	require.InDelta(t, 2.0, res.CapacityRate, 1e-9)
	require.Equal(t, fixedNow.Add(600*time.Minute), res.CompletesAt)
	require.Equal(t, int64(80), res.BalanceAfter)
	h.repo.AssertExpectations(t)
}

func TestQueueService_StartDuplicateReturnsExisting(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.bases.On("LoadBase", ctx, "e1", empire.Coordinate(home)).Return(shipyardBase(100, map[string]int{"laser": 1}), nil)

	existing := &queue.Item{ID: "q-existing", CompletesAt: fixedNow.Add(90*time.Second + 30*time.Minute)}
	h.repo.On("FindPending", ctx, catalog.CategoryDefense, mock.Anything).Return((*queue.Item)(nil), repository.ErrNotFound).Once()
	h.repo.On("Insert", ctx, mock.Anything).Return(repository.ErrDuplicate)
	h.repo.On("FindPending", ctx, catalog.CategoryDefense, mock.Anything).Return(existing, nil).Once()

	_, err := h.svc.Start(ctx, "e1", home, "laser_turrets")
	qerr := requireCode(t, err, queue.ErrAlreadyInProgress)
	require.Equal(t, "q-existing", qerr.Details["queue_id"])
	require.Equal(t, int64(32), qerr.Details["remaining_minutes"])
	h.ledger.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
}

func TestQueueService_StartChargeFailureCancels(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.bases.On("LoadBase", ctx, "e1", empire.Coordinate(home)).Return(shipyardBase(100, map[string]int{"laser": 1}), nil)
	h.repo.On("FindPending", ctx, catalog.CategoryUnit, mock.Anything).Return((*queue.Item)(nil), repository.ErrNotFound)
	h.repo.On("Insert", ctx, mock.Anything).Return(nil)
	h.ledger.On("Charge", ctx, mock.Anything).Return(int64(0), ledger.ErrInsufficientCredits)
	h.repo.On("Cancel", ctx, catalog.CategoryUnit, mock.Anything, fixedNow).Return(nil)

	_, err := h.svc.Start(ctx, "e1", home, "fighters")
	qerr := requireCode(t, err, queue.ErrCredit)
	require.Equal(t, "insufficient_credits", qerr.Details["reason"])
	require.ErrorIs(t, err, ledger.ErrInsufficientCredits)
	h.repo.AssertCalled(t, "Cancel", ctx, catalog.CategoryUnit, qerr.Details["queue_id"], fixedNow)
	h.repo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestQueueService_StartMarkPaidFailureIsRecovered(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.bases.On("LoadBase", ctx, "e1", empire.Coordinate(home)).Return(shipyardBase(100, map[string]int{"laser": 1}), nil)
	h.repo.On("FindPending", ctx, catalog.CategoryDefense, mock.Anything).Return((*queue.Item)(nil), repository.ErrNotFound)
	h.repo.On("Insert", ctx, mock.Anything).Return(nil)
	h.ledger.On("Charge", ctx, mock.Anything).Return(int64(80), nil)
	h.repo.On("MarkPaid", ctx, catalog.CategoryDefense, mock.Anything).Return(errors.New("database is locked")).Times(3)

	res, err := h.svc.Start(ctx, "e1", home, "laser_turrets")
	require.NoError(t, err)
	h.repo.AssertNumberOfCalls(t, "MarkPaid", 3)

	cutoff := fixedNow.Add(-5 * time.Minute)
	h.repo.On("ListUnpaid", ctx, catalog.CategoryDefense, cutoff).Return([]queue.Item{
		{ID: res.QueueID, Category: catalog.CategoryDefense, EmpireID: "e1", CreditsCost: 20},
	}, nil)
	h.repo.On("ListUnpaid", ctx, mock.Anything, cutoff).Return([]queue.Item{}, nil)
	h.ledger.On("QueueCharged", ctx, "e1", res.QueueID).Return(true, nil)
	h.repo.On("MarkPaid", ctx, catalog.CategoryDefense, res.QueueID).Return(nil).Once()

	n, err := h.svc.ReconcileUnpaid(ctx, cutoff)
	require.NoError(t, err)
	require.Zero(t, n)
	h.repo.AssertNumberOfCalls(t, "MarkPaid", 4)
	h.repo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQueueService_StartInsertFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.bases.On("LoadBase", ctx, "e1", empire.Coordinate(home)).Return(shipyardBase(100, map[string]int{"laser": 1}), nil)
	h.repo.On("FindPending", ctx, catalog.CategoryUnit, mock.Anything).Return((*queue.Item)(nil), repository.ErrNotFound)
	h.repo.On("Insert", ctx, mock.Anything).Return(errors.New("database is locked"))

	_, err := h.svc.Start(ctx, "e1", home, "fighters")
	requireCode(t, err, queue.ErrQueue)
}

func TestQueueService_CompleteDueAppliesEffects(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	h.repo.On("ListDue", ctx, catalog.CategoryTechnology, "e1", fixedNow).Return([]queue.Item{
		{ID: "t1", Category: catalog.CategoryTechnology, EmpireID: "e1", ItemKey: "laser"},
		{ID: "t2", Category: catalog.CategoryTechnology, EmpireID: "e1", ItemKey: "armour"},
	}, nil)
	h.techs.On("IncrementTech", ctx, "e1", "laser").Return(2, nil)
	h.techs.On("IncrementTech", ctx, "e1", "armour").Return(0, errors.New("boom"))
	h.repo.On("Complete", ctx, catalog.CategoryTechnology, "t1", fixedNow).Return(nil)
	h.repo.On("Complete", ctx, catalog.CategoryTechnology, "t2", fixedNow).Return(nil)

	report, err := h.svc.CompleteDue(ctx, catalog.CategoryTechnology, "e1", fixedNow)
	require.NoError(t, err)
	require.Equal(t, []string{"t1"}, report.Completed)
	require.Equal(t, 1, report.Failed)
	h.repo.AssertExpectations(t)
}

func TestQueueService_CompleteDueSkipsItemNoLongerPending(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	h.repo.On("ListDue", ctx, catalog.CategoryTechnology, "e1", fixedNow).Return([]queue.Item{
		{ID: "t1", Category: catalog.CategoryTechnology, EmpireID: "e1", ItemKey: "laser"},
	}, nil)
	h.repo.On("Complete", ctx, catalog.CategoryTechnology, "t1", fixedNow).Return(repository.ErrStale)

	report, err := h.svc.CompleteDue(ctx, catalog.CategoryTechnology, "e1", fixedNow)
	require.NoError(t, err)
	require.Empty(t, report.Completed)
	require.Equal(t, 1, report.Skipped)
	require.Zero(t, report.Failed)
	h.techs.AssertNotCalled(t, "IncrementTech", mock.Anything, mock.Anything, mock.Anything)
}

func TestQueueService_CompleteDueUnits(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	h.repo.On("ListDue", ctx, catalog.CategoryUnit, "e1", fixedNow).Return([]queue.Item{
		{ID: "u1", Category: catalog.CategoryUnit, EmpireID: "e1", Coord: home, ItemKey: "fighters"},
	}, nil)
	h.fleets.On("MergeUnits", ctx, "e1", home, "fighters", int64(1)).Return(&fleet.Fleet{ID: "f1"}, nil)
	h.repo.On("Complete", ctx, catalog.CategoryUnit, "u1", fixedNow).Return(nil)

	report, err := h.svc.CompleteDue(ctx, catalog.CategoryUnit, "e1", fixedNow)
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, report.Completed)
	h.fleets.AssertExpectations(t)
}

func TestQueueService_CompleteDueNothingDue(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.repo.On("ListDue", ctx, catalog.CategoryDefense, "e1", fixedNow).Return([]queue.Item{}, nil)

	report, err := h.svc.CompleteDue(ctx, catalog.CategoryDefense, "e1", fixedNow)
	require.NoError(t, err)
	require.Empty(t, report.Completed)
	h.repo.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQueueService_CancelWithRefund(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	item := &queue.Item{ID: "q1", Category: catalog.CategoryDefense, EmpireID: "e1", ItemKey: "barracks",
		CreditsCost: 10, Status: queue.StatusPending, Paid: true}

	h.repo.On("Find", ctx, "q1").Return(item, nil)
	h.repo.On("Cancel", ctx, catalog.CategoryDefense, "q1", fixedNow).Return(nil)
	h.ledger.On("Credit", ctx, mock.MatchedBy(func(e ledger.Entry) bool {
		return e.Amount == 10 && e.Type == ledger.TypeRefund
	})).Return(int64(110), nil)

	cancelled, err := h.svc.Cancel(ctx, queue.CancelRequest{EmpireID: "e1", QueueID: "q1", Refund: true})
	require.NoError(t, err)
	require.Equal(t, queue.StatusCancelled, cancelled.Status)
	h.ledger.AssertExpectations(t)
}

func TestQueueService_CancelWithoutRefund(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	item := &queue.Item{ID: "q1", Category: catalog.CategoryDefense, EmpireID: "e1", CreditsCost: 10,
		Status: queue.StatusPending, Paid: true}
	h.repo.On("Find", ctx, "q1").Return(item, nil)
	h.repo.On("Cancel", ctx, catalog.CategoryDefense, "q1", fixedNow).Return(nil)

	_, err := h.svc.Cancel(ctx, queue.CancelRequest{EmpireID: "e1", QueueID: "q1"})
	require.NoError(t, err)
	h.ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything)
}

func TestQueueService_CancelRejects(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.repo.On("Find", ctx, "done").Return(&queue.Item{ID: "done", EmpireID: "e1", Status: queue.StatusCompleted}, nil)
	h.repo.On("Find", ctx, "theirs").Return(&queue.Item{ID: "theirs", EmpireID: "e2", Status: queue.StatusPending}, nil)
	h.repo.On("Find", ctx, "missing").Return((*queue.Item)(nil), repository.ErrNotFound)

	_, err := h.svc.Cancel(ctx, queue.CancelRequest{EmpireID: "e1", QueueID: "done"})
	requireCode(t, err, queue.ErrInvalidRequest)

	_, err = h.svc.Cancel(ctx, queue.CancelRequest{EmpireID: "e1", QueueID: "theirs"})
	requireCode(t, err, queue.ErrNotFound)

	_, err = h.svc.Cancel(ctx, queue.CancelRequest{EmpireID: "e1", QueueID: "missing"})
	requireCode(t, err, queue.ErrNotFound)
}

func TestQueueService_ReconcileUnpaid(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	cutoff := fixedNow.Add(-5 * time.Minute)

	h.repo.On("ListUnpaid", ctx, catalog.CategoryDefense, cutoff).Return([]queue.Item{{ID: "d1", EmpireID: "e1", ItemKey: "barracks"}}, nil)
	h.repo.On("ListUnpaid", ctx, catalog.CategoryTechnology, cutoff).Return([]queue.Item{{ID: "t1", EmpireID: "e1"}}, nil)
	h.repo.On("ListUnpaid", ctx, catalog.CategoryUnit, cutoff).Return([]queue.Item{{ID: "u1", EmpireID: "e1"}, {ID: "u2", EmpireID: "e1"}}, nil)
	h.ledger.On("QueueCharged", ctx, "e1", "t1").Return(true, nil)
	h.ledger.On("QueueCharged", ctx, "e1", mock.Anything).Return(false, nil)
	h.repo.On("MarkPaid", ctx, catalog.CategoryTechnology, "t1").Return(nil)
	h.repo.On("Cancel", ctx, catalog.CategoryDefense, "d1", fixedNow).Return(nil)
	h.repo.On("Cancel", ctx, catalog.CategoryUnit, "u1", fixedNow).Return(nil)
	h.repo.On("Cancel", ctx, catalog.CategoryUnit, "u2", fixedNow).Return(repository.ErrStale)

	n, err := h.svc.ReconcileUnpaid(ctx, cutoff)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	h.repo.AssertCalled(t, "MarkPaid", ctx, catalog.CategoryTechnology, "t1")
	h.repo.AssertNotCalled(t, "Cancel", ctx, catalog.CategoryTechnology, "t1", fixedNow)
}

func TestQueueService_ListRejectsUnknownCategory(t *testing.T) {
	h := newHarness()
	_, err := h.svc.List(context.Background(), "e1", queue.ListOptions{Category: catalog.CategoryBuilding})
	requireCode(t, err, queue.ErrInvalidRequest)
}

func TestItem_RemainingMinutes(t *testing.T) {
	item := &queue.Item{CompletesAt: fixedNow.Add(61 * time.Second)}
	require.Equal(t, int64(2), item.RemainingMinutes(fixedNow))
	require.Equal(t, int64(0), item.RemainingMinutes(fixedNow.Add(time.Hour)))
}
