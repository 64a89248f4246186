package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestEmpireRepository_CreateGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewEmpireRepository(db)

	e := &empire.Empire{
		ID:                 "e1",
		OwnerID:            "u1",
		Name:               "Vega",
		Credits:            250,
		TechLevels:         map[string]int{"energy": 2},
		LastResourceUpdate: testEpoch,
		LastCreditPayout:   testEpoch,
		CreatedAt:          testEpoch,
	}
	require.NoError(t, repo.Create(ctx, e))
	require.ErrorIs(t, repo.Create(ctx, e), repository.ErrDuplicate)

	loaded, err := repo.Get(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "Vega", loaded.Name)
	require.Equal(t, int64(250), loaded.Credits)
	require.Equal(t, 2, loaded.TechLevel("energy"))
	require.Equal(t, testEpoch.UnixMilli(), loaded.LastCreditPayout.UnixMilli())

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"e1"}, ids)
}

func TestEmpireRepository_IncrementTech(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertEmpire(t, db, "e1", 0)
	repo := NewEmpireRepository(db)

	level, err := repo.IncrementTech(ctx, "e1", "laser")
	require.NoError(t, err)
	require.Equal(t, 1, level)

	level, err = repo.IncrementTech(ctx, "e1", "laser")
	require.NoError(t, err)
	require.Equal(t, 2, level)

	e, err := repo.Get(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"laser": 2}, e.TechLevels)

	_, err = repo.IncrementTech(ctx, "missing", "laser")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEmpireRepository_Colonies(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertEmpire(t, db, "e1", 0)
	insertEmpire(t, db, "e2", 0)
	repo := NewEmpireRepository(db)

	loc := &empire.Location{Coord: "A01:02:03:04", SolarEnergy: 12, Fertility: 3}
	require.NoError(t, repo.UpsertLocation(ctx, loc))
	loc.SolarEnergy = 15
	require.NoError(t, repo.UpsertLocation(ctx, loc))

	got, err := repo.GetLocation(ctx, "A01:02:03:04")
	require.NoError(t, err)
	require.Equal(t, int64(15), got.SolarEnergy)

	col := &empire.Colony{ID: "c1", EmpireID: "e1", Coord: "A01:02:03:04", Citizens: 4, LastCitizenUpdate: testEpoch}
	require.NoError(t, repo.CreateColony(ctx, col))

	dup := &empire.Colony{ID: "c2", EmpireID: "e2", Coord: "A01:02:03:04", LastCitizenUpdate: testEpoch}
	require.ErrorIs(t, repo.CreateColony(ctx, dup), repository.ErrDuplicate)

	loaded, err := repo.GetColony(ctx, "A01:02:03:04")
	require.NoError(t, err)
	require.Equal(t, "e1", loaded.EmpireID)
	require.Equal(t, int64(4), loaded.Citizens)

	list, err := repo.ListColonies(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = repo.GetColony(ctx, "B01:01:01:01")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEmpireRepository_ListDefenseKeys(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertEmpire(t, db, "e1", 0)
	repo := NewEmpireRepository(db)

	for i, row := range []struct{ key, status string }{
		{"laser_turrets", "completed"},
		{"planetary_shield", "pending"},
		{"barracks", "cancelled"},
	} {
		_, err := db.Exec(`
			INSERT INTO defense_queue (id, empire_id, coord, item_key, identity_key, credits_cost, started_at, completes_at, status, paid)
			VALUES (?, 'e1', 'A01:02:03:04', ?, ?, 10, ?, ?, ?, 1)
		`, row.key, row.key, row.key, int64(i), int64(i)+60000, row.status)
		require.NoError(t, err)
	}

	completed, err := repo.ListDefenseKeys(ctx, "e1", "A01:02:03:04", "completed")
	require.NoError(t, err)
	require.Equal(t, []string{"laser_turrets"}, completed)

	pending, err := repo.ListDefenseKeys(ctx, "e1", "A01:02:03:04", "pending")
	require.NoError(t, err)
	require.Equal(t, []string{"planetary_shield"}, pending)
}
