package mocks

import (
	"context"
	"time"

	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/stretchr/testify/mock"
)

// BuildingRepository is a mock for building.Repository.
type BuildingRepository struct {
	mock.Mock
}

func (m *BuildingRepository) Upsert(ctx context.Context, b *empire.Building) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *BuildingRepository) Get(ctx context.Context, empireID string, coord empire.Coordinate, key string) (*empire.Building, error) {
	args := m.Called(ctx, empireID, coord, key)
	if b, ok := args.Get(0).(*empire.Building); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BuildingRepository) ListDue(ctx context.Context, empireID string, now time.Time) ([]empire.Building, error) {
	args := m.Called(ctx, empireID, now)
	if list, ok := args.Get(0).([]empire.Building); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BuildingRepository) Activate(ctx context.Context, id string, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}
