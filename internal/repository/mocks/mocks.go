package mocks

import (
	"context"

	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/stretchr/testify/mock"
)

// EmpireRepository is a mock for empire.Repository.
type EmpireRepository struct {
	mock.Mock
}

func (m *EmpireRepository) Create(ctx context.Context, e *empire.Empire) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *EmpireRepository) Get(ctx context.Context, id string) (*empire.Empire, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*empire.Empire); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EmpireRepository) List(ctx context.Context) ([]empire.Empire, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]empire.Empire); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EmpireRepository) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EmpireRepository) IncrementTech(ctx context.Context, empireID, key string) (int, error) {
	args := m.Called(ctx, empireID, key)
	return args.Int(0), args.Error(1)
}

func (m *EmpireRepository) UpsertLocation(ctx context.Context, loc *empire.Location) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *EmpireRepository) GetLocation(ctx context.Context, coord empire.Coordinate) (*empire.Location, error) {
	args := m.Called(ctx, coord)
	if loc, ok := args.Get(0).(*empire.Location); ok {
		return loc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EmpireRepository) CreateColony(ctx context.Context, c *empire.Colony) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *EmpireRepository) GetColony(ctx context.Context, coord empire.Coordinate) (*empire.Colony, error) {
	args := m.Called(ctx, coord)
	if c, ok := args.Get(0).(*empire.Colony); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EmpireRepository) ListColonies(ctx context.Context, empireID string) ([]empire.Colony, error) {
	args := m.Called(ctx, empireID)
	if list, ok := args.Get(0).([]empire.Colony); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EmpireRepository) ListBuildings(ctx context.Context, empireID string, coord empire.Coordinate) ([]empire.Building, error) {
	args := m.Called(ctx, empireID, coord)
	if list, ok := args.Get(0).([]empire.Building); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EmpireRepository) ListDefenseKeys(ctx context.Context, empireID string, coord empire.Coordinate, status string) ([]string, error) {
	args := m.Called(ctx, empireID, coord, status)
	if keys, ok := args.Get(0).([]string); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}
