package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rpggio/starbase/internal/domain/building"
	"github.com/rpggio/starbase/internal/domain/empire"
)

// SeedRequest describes a starting empire with one developed colony.
type SeedRequest struct {
	EmpireID   string
	OwnerID    string
	Name       string
	Credits    int64
	Citizens   int64
	Location   empire.Location
	Buildings  map[string]int
	TechLevels map[string]int
	Now        time.Time
}

// Seed creates an empire, settles its home colony and places active buildings.
func (s *Services) Seed(ctx context.Context, req SeedRequest) (*empire.Empire, error) {
	e, err := s.Empires.Create(ctx, empire.CreateRequest{
		ID:      req.EmpireID,
		OwnerID: req.OwnerID,
		Name:    req.Name,
		Credits: req.Credits,
		Now:     req.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("creating empire: %w", err)
	}

	col, err := s.Empires.Colonize(ctx, empire.ColonizeRequest{
		EmpireID: e.ID,
		Location: req.Location,
		Citizens: req.Citizens,
		Now:      req.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("colonizing %s: %w", req.Location.Coord, err)
	}

	keys := make([]string, 0, len(req.Buildings))
	for k := range req.Buildings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := s.Buildings.Schedule(ctx, building.ScheduleRequest{
			EmpireID: e.ID,
			Coord:    col.Coord,
			Key:      key,
			Level:    req.Buildings[key],
		}); err != nil {
			return nil, fmt.Errorf("placing %s: %w", key, err)
		}
	}

	techs := make([]string, 0, len(req.TechLevels))
	for k := range req.TechLevels {
		techs = append(techs, k)
	}
	sort.Strings(techs)
	for _, key := range techs {
		for i := 0; i < req.TechLevels[key]; i++ {
			if _, err := s.Empires.IncrementTech(ctx, e.ID, key); err != nil {
				return nil, fmt.Errorf("granting %s: %w", key, err)
			}
		}
	}

	return s.Empires.Get(ctx, e.ID)
}
