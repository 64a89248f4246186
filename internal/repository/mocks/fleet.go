package mocks

import (
	"context"
	"time"

	"github.com/rpggio/starbase/internal/domain/fleet"
	"github.com/stretchr/testify/mock"
)

// FleetRepository is a mock for fleet.Repository.
type FleetRepository struct {
	mock.Mock
}

func (m *FleetRepository) Create(ctx context.Context, f *fleet.Fleet) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *FleetRepository) Get(ctx context.Context, id string) (*fleet.Fleet, error) {
	args := m.Called(ctx, id)
	if f, ok := args.Get(0).(*fleet.Fleet); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FleetRepository) FindStationed(ctx context.Context, empireID, coord string) (*fleet.Fleet, error) {
	args := m.Called(ctx, empireID, coord)
	if f, ok := args.Get(0).(*fleet.Fleet); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FleetRepository) ListByEmpire(ctx context.Context, empireID string) ([]fleet.Fleet, error) {
	args := m.Called(ctx, empireID)
	if list, ok := args.Get(0).([]fleet.Fleet); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FleetRepository) ListArrived(ctx context.Context, empireID string, now time.Time) ([]fleet.Fleet, error) {
	args := m.Called(ctx, empireID, now)
	if list, ok := args.Get(0).([]fleet.Fleet); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FleetRepository) Update(ctx context.Context, f *fleet.Fleet) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *FleetRepository) MergeInto(ctx context.Context, target, absorbed *fleet.Fleet) error {
	args := m.Called(ctx, target, absorbed)
	return args.Error(0)
}
