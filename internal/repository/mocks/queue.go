package mocks

import (
	"context"
	"time"

	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/domain/queue"
	"github.com/stretchr/testify/mock"
)

// QueueRepository is a mock for queue.Repository.
type QueueRepository struct {
	mock.Mock
}

func (m *QueueRepository) Insert(ctx context.Context, item *queue.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *QueueRepository) Get(ctx context.Context, category catalog.Category, id string) (*queue.Item, error) {
	args := m.Called(ctx, category, id)
	if item, ok := args.Get(0).(*queue.Item); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QueueRepository) Find(ctx context.Context, id string) (*queue.Item, error) {
	args := m.Called(ctx, id)
	if item, ok := args.Get(0).(*queue.Item); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QueueRepository) FindPending(ctx context.Context, category catalog.Category, identityKey string) (*queue.Item, error) {
	args := m.Called(ctx, category, identityKey)
	if item, ok := args.Get(0).(*queue.Item); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QueueRepository) ListDue(ctx context.Context, category catalog.Category, empireID string, now time.Time) ([]queue.Item, error) {
	args := m.Called(ctx, category, empireID, now)
	if list, ok := args.Get(0).([]queue.Item); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QueueRepository) ListUnpaid(ctx context.Context, category catalog.Category, olderThan time.Time) ([]queue.Item, error) {
	args := m.Called(ctx, category, olderThan)
	if list, ok := args.Get(0).([]queue.Item); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QueueRepository) List(ctx context.Context, empireID string, opts queue.ListOptions) ([]queue.Item, error) {
	args := m.Called(ctx, empireID, opts)
	if list, ok := args.Get(0).([]queue.Item); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QueueRepository) MarkPaid(ctx context.Context, category catalog.Category, id string) error {
	args := m.Called(ctx, category, id)
	return args.Error(0)
}

func (m *QueueRepository) Complete(ctx context.Context, category catalog.Category, id string, at time.Time) error {
	args := m.Called(ctx, category, id, at)
	return args.Error(0)
}

func (m *QueueRepository) Cancel(ctx context.Context, category catalog.Category, id string, at time.Time) error {
	args := m.Called(ctx, category, id, at)
	return args.Error(0)
}
