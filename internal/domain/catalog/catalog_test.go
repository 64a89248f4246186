package catalog_test

import (
	"testing"

	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	it, ok := catalog.Lookup("fighters")
	require.True(t, ok)
	require.Equal(t, catalog.CategoryUnit, it.Category)
	require.NotNil(t, it.Building)
	require.Equal(t, catalog.Shipyards, it.Building.Key)

	_, ok = catalog.Lookup("death_star")
	require.False(t, ok)
}

func TestAll_FiltersAndSorts(t *testing.T) {
	defenses := catalog.All(catalog.CategoryDefense)
	require.NotEmpty(t, defenses)
	for i, it := range defenses {
		require.Equal(t, catalog.CategoryDefense, it.Category)
		if i > 0 {
			require.Less(t, defenses[i-1].Key, it.Key)
		}
	}

	all := catalog.All()
	require.Greater(t, len(all), len(defenses))
}

func TestCostAt_ScalesTechnologyOnly(t *testing.T) {
	energyTech, _ := catalog.Lookup(catalog.TechEnergy)
	require.Equal(t, int64(20), catalog.CostAt(energyTech, 0))
	require.Equal(t, int64(30), catalog.CostAt(energyTech, 1))
	require.Equal(t, int64(45), catalog.CostAt(energyTech, 2))

	turret, _ := catalog.Lookup("laser_turrets")
	require.Equal(t, turret.Cost, catalog.CostAt(turret, 7))
}

func TestUnitCost(t *testing.T) {
	require.Equal(t, int64(5), catalog.UnitCost("fighters"))
	require.Equal(t, int64(0), catalog.UnitCost("laser_turrets"))
	require.Equal(t, int64(0), catalog.UnitCost("nope"))
}

func TestCategory_Queued(t *testing.T) {
	require.True(t, catalog.CategoryTechnology.Queued())
	require.True(t, catalog.CategoryUnit.Queued())
	require.True(t, catalog.CategoryDefense.Queued())
	require.False(t, catalog.CategoryBuilding.Queued())
}
