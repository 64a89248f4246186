package fleet_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/starbase/internal/domain/fleet"
	"github.com/rpggio/starbase/internal/events"
	"github.com/rpggio/starbase/internal/repository"
	"github.com/rpggio/starbase/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFleetService_MergeUnitsCreatesFleet(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.FleetRepository{}
	repo.On("FindStationed", ctx, "e1", "A01:01:01:01").Return((*fleet.Fleet)(nil), repository.ErrNotFound)
	repo.On("Create", ctx, mock.MatchedBy(func(f *fleet.Fleet) bool {
		return f.Units["fighters"] == 2 && f.SizeCredits == 10 && f.Status == fleet.StatusStationed
	})).Return(nil)

	bus := events.NewBus(4, nil)
	svc := fleet.NewService(repo, bus, nil)

	f, err := svc.MergeUnits(ctx, "e1", "A01:01:01:01", "fighters", 2)
	require.NoError(t, err)
	require.NotEmpty(t, f.ID)

	ev := <-bus.FleetUpdates()
	require.Equal(t, f.ID, ev.FleetID)
	require.Equal(t, "e1", ev.EmpireID)
	require.Equal(t, int64(2), ev.UnitCount)
}

func TestFleetService_MergeUnitsIntoStationed(t *testing.T) {
	ctx := context.Background()
	existing := &fleet.Fleet{ID: "f1", EmpireID: "e1", Coord: "A01:01:01:01", Status: fleet.StatusStationed,
		Units: map[string]int64{"fighters": 3, "bombers": 1}}

	repo := &mocks.FleetRepository{}
	repo.On("FindStationed", ctx, "e1", "A01:01:01:01").Return(existing, nil)
	repo.On("Update", ctx, existing).Return(nil)

	svc := fleet.NewService(repo, nil, nil)
	f, err := svc.MergeUnits(ctx, "e1", "A01:01:01:01", "bombers", 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), f.Units["bombers"])
	require.Equal(t, int64(3*5+2*10), f.SizeCredits)
	require.Equal(t, int64(5), f.UnitCount())
}

func TestFleetService_MergeUnitsRejectsNonUnits(t *testing.T) {
	svc := fleet.NewService(&mocks.FleetRepository{}, nil, nil)
	_, err := svc.MergeUnits(context.Background(), "e1", "A01:01:01:01", "laser_turrets", 1)
	require.ErrorIs(t, err, fleet.ErrInvalidInput)
}

func TestFleetService_ResolveArrivals(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	past := now.Add(-time.Minute)

	moving := []fleet.Fleet{
		{ID: "m1", EmpireID: "e1", Coord: "A01:01:01:01", Destination: "A02:02:02:02", ArrivesAt: &past,
			Status: fleet.StatusMoving, Units: map[string]int64{"fighters": 1}},
		{ID: "m2", EmpireID: "e1", Coord: "A01:01:01:01", Destination: "A03:03:03:03", ArrivesAt: &past,
			Status: fleet.StatusMoving, Units: map[string]int64{"corvette": 2}},
	}
	stationed := &fleet.Fleet{ID: "s1", EmpireID: "e1", Coord: "A02:02:02:02", Status: fleet.StatusStationed,
		Units: map[string]int64{"fighters": 4}}

	repo := &mocks.FleetRepository{}
	repo.On("ListArrived", ctx, "e1", now).Return(moving, nil)
	repo.On("FindStationed", ctx, "e1", "A02:02:02:02").Return(stationed, nil)
	repo.On("FindStationed", ctx, "e1", "A03:03:03:03").Return((*fleet.Fleet)(nil), repository.ErrNotFound)
	repo.On("MergeInto", ctx, stationed, mock.MatchedBy(func(f *fleet.Fleet) bool { return f.ID == "m1" })).Return(nil)
	repo.On("Update", ctx, mock.MatchedBy(func(f *fleet.Fleet) bool {
		return f.ID == "m2" && f.Status == fleet.StatusStationed && f.Coord == "A03:03:03:03" && f.ArrivesAt == nil
	})).Return(nil)

	svc := fleet.NewService(repo, nil, nil)
	landed, err := svc.ResolveArrivals(ctx, "e1", now)
	require.NoError(t, err)
	require.Equal(t, 2, landed)
	require.Equal(t, int64(5), stationed.Units["fighters"])
	repo.AssertExpectations(t)
}

func TestFleetService_Dispatch(t *testing.T) {
	ctx := context.Background()
	f := &fleet.Fleet{ID: "f1", EmpireID: "e1", Coord: "A01:01:01:01", Status: fleet.StatusStationed}

	repo := &mocks.FleetRepository{}
	repo.On("Get", ctx, "f1").Return(f, nil)
	repo.On("Update", ctx, f).Return(nil)

	svc := fleet.NewService(repo, nil, nil)

	_, err := svc.Dispatch(ctx, "f1", "A01:01:01:01", time.Now().Add(time.Hour))
	require.ErrorIs(t, err, fleet.ErrInvalidInput)

	moved, err := svc.Dispatch(ctx, "f1", "a05:05:05:05", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, fleet.StatusMoving, moved.Status)
	require.Equal(t, "A05:05:05:05", moved.Destination)

	_, err = svc.Dispatch(ctx, "f1", "A06:06:06:06", time.Now().Add(time.Hour))
	require.ErrorIs(t, err, fleet.ErrNotStationed)
}

func TestFleetService_MergeUnitsRetriesAfterConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	stale := &fleet.Fleet{ID: "f1", EmpireID: "e1", Coord: "A01:01:01:01", Status: fleet.StatusStationed,
		Units: map[string]int64{"fighters": 2}}

	repo := &mocks.FleetRepository{}
	repo.On("FindStationed", ctx, "e1", "A01:01:01:01").Return(stale, nil).Once()
	repo.On("Update", ctx, stale).Return(repository.ErrStale).Once()
	// The fleet was dispatched in between, so nothing is stationed at the base any more.
	repo.On("FindStationed", ctx, "e1", "A01:01:01:01").Return((*fleet.Fleet)(nil), repository.ErrNotFound).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(f *fleet.Fleet) bool {
		return f.ID != "f1" && f.Units["fighters"] == 1
	})).Return(nil)

	svc := fleet.NewService(repo, nil, nil)
	f, err := svc.MergeUnits(ctx, "e1", "A01:01:01:01", "fighters", 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), f.Units["fighters"])
	repo.AssertExpectations(t)
}

func TestFleetService_DispatchKeepsConcurrentlyMergedUnits(t *testing.T) {
	ctx := context.Background()
	before := &fleet.Fleet{ID: "f1", EmpireID: "e1", Coord: "A01:01:01:01", Status: fleet.StatusStationed,
		Units: map[string]int64{"fighters": 2}}
	after := &fleet.Fleet{ID: "f1", EmpireID: "e1", Coord: "A01:01:01:01", Status: fleet.StatusStationed,
		Units: map[string]int64{"fighters": 3}, Version: 1}

	repo := &mocks.FleetRepository{}
	repo.On("Get", ctx, "f1").Return(before, nil).Once()
	repo.On("Update", ctx, before).Return(repository.ErrStale).Once()
	repo.On("Get", ctx, "f1").Return(after, nil).Once()
	repo.On("Update", ctx, after).Return(nil).Once()

	svc := fleet.NewService(repo, nil, nil)
	moved, err := svc.Dispatch(ctx, "f1", "A02:02:02:02", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, fleet.StatusMoving, moved.Status)
	require.Equal(t, int64(3), moved.Units["fighters"])
	repo.AssertExpectations(t)
}

func TestFleetService_DispatchGivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.FleetRepository{}
	for i := 0; i < 3; i++ {
		repo.On("Get", ctx, "f1").Return(&fleet.Fleet{ID: "f1", Coord: "A01:01:01:01", Status: fleet.StatusStationed}, nil).Once()
	}
	repo.On("Update", ctx, mock.Anything).Return(repository.ErrStale)

	svc := fleet.NewService(repo, nil, nil)
	_, err := svc.Dispatch(ctx, "f1", "A02:02:02:02", time.Now().Add(time.Hour))
	require.ErrorIs(t, err, repository.ErrStale)
	repo.AssertNumberOfCalls(t, "Update", 3)
}
