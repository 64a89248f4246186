package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/starbase/internal/domain/fleet"
	"github.com/rpggio/starbase/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestFleetRepository_UpdateRejectsStaleCopy(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertEmpire(t, db, "e1", 0)
	repo := NewFleetRepository(db)

	require.NoError(t, repo.Create(ctx, &fleet.Fleet{
		ID: "f1", EmpireID: "e1", Coord: "A01:01:01:01", Status: fleet.StatusStationed,
		Units: map[string]int64{"fighters": 2}, UpdatedAt: testEpoch,
	}))

	merging, err := repo.Get(ctx, "f1")
	require.NoError(t, err)
	dispatching, err := repo.Get(ctx, "f1")
	require.NoError(t, err)

	merging.Add(map[string]int64{"fighters": 1})
	require.NoError(t, repo.Update(ctx, merging))
	require.Equal(t, int64(1), merging.Version)

	dispatching.Status = fleet.StatusMoving
	dispatching.Destination = "A02:02:02:02"
	require.ErrorIs(t, repo.Update(ctx, dispatching), repository.ErrStale)

	stored, err := repo.Get(ctx, "f1")
	require.NoError(t, err)
	require.Equal(t, int64(3), stored.Units["fighters"])
	require.Equal(t, fleet.StatusStationed, stored.Status)

	require.ErrorIs(t, repo.Update(ctx, &fleet.Fleet{ID: "ghost", EmpireID: "e1", Status: fleet.StatusStationed}), repository.ErrNotFound)
}

func TestFleetRepository_MergeIntoIsAllOrNothing(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertEmpire(t, db, "e1", 0)
	repo := NewFleetRepository(db)

	for _, f := range []*fleet.Fleet{
		{ID: "home", EmpireID: "e1", Coord: "A02:02:02:02", Status: fleet.StatusStationed, Units: map[string]int64{"fighters": 4}},
		{ID: "arriving", EmpireID: "e1", Coord: "A01:01:01:01", Destination: "A02:02:02:02", Status: fleet.StatusMoving,
			Units: map[string]int64{"fighters": 1}},
	} {
		f.UpdatedAt = testEpoch
		require.NoError(t, repo.Create(ctx, f))
	}

	target, err := repo.Get(ctx, "home")
	require.NoError(t, err)
	absorbed, err := repo.Get(ctx, "arriving")
	require.NoError(t, err)

	// The arriving fleet changed after it was read; nothing may be written.
	bumped := *absorbed
	require.NoError(t, repo.Update(ctx, &bumped))

	target.Add(absorbed.Units)
	require.ErrorIs(t, repo.MergeInto(ctx, target, absorbed), repository.ErrStale)

	home, err := repo.Get(ctx, "home")
	require.NoError(t, err)
	require.Equal(t, int64(4), home.Units["fighters"])
	require.Equal(t, int64(0), home.Version)

	absorbed, err = repo.Get(ctx, "arriving")
	require.NoError(t, err)
	home.Add(absorbed.Units)
	require.NoError(t, repo.MergeInto(ctx, home, absorbed))

	home, err = repo.Get(ctx, "home")
	require.NoError(t, err)
	require.Equal(t, int64(5), home.Units["fighters"])
	_, err = repo.Get(ctx, "arriving")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
