package mocks

import (
	"context"

	"github.com/rpggio/starbase/internal/domain/citizen"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/stretchr/testify/mock"
)

// CitizenRepository is a mock for citizen.Repository.
type CitizenRepository struct {
	mock.Mock
}

func (m *CitizenRepository) ListColonies(ctx context.Context, empireID string) ([]empire.Colony, error) {
	args := m.Called(ctx, empireID)
	if list, ok := args.Get(0).([]empire.Colony); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CitizenRepository) ApplyGrowth(ctx context.Context, g citizen.Growth) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}
