package mocks

import (
	"context"
	"time"

	"github.com/rpggio/starbase/internal/domain/research"
	"github.com/stretchr/testify/mock"
)

// ResearchRepository is a mock for research.Repository.
type ResearchRepository struct {
	mock.Mock
}

func (m *ResearchRepository) Create(ctx context.Context, p *research.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ResearchRepository) ListActive(ctx context.Context, empireID string) ([]research.Project, error) {
	args := m.Called(ctx, empireID)
	if list, ok := args.Get(0).([]research.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ResearchRepository) UpdateProgress(ctx context.Context, id string, progressMilli int64, previous, at time.Time) error {
	args := m.Called(ctx, id, progressMilli, previous, at)
	return args.Error(0)
}

func (m *ResearchRepository) Complete(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
