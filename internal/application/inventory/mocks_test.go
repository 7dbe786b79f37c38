package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/labstock/backend/internal/domain/inventory"
	"github.com/labstock/backend/internal/domain/shared"
)

// MockEventPublisher collects published domain events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockItemRepository is a mock implementation of ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindByCode(ctx context.Context, code string) (*inventory.Item, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindAll(ctx context.Context) ([]inventory.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindLowStockUnnotified(ctx context.Context) ([]inventory.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindExpiringUnnotified(ctx context.Context, deadline time.Time) ([]inventory.Item, error) {
	args := m.Called(ctx, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockDeletedItemRepository is a mock implementation of DeletedItemRepository
type MockDeletedItemRepository struct {
	mock.Mock
}

func (m *MockDeletedItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.DeletedItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.DeletedItem), args.Error(1)
}

func (m *MockDeletedItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.DeletedItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.DeletedItem), args.Error(1)
}

func (m *MockDeletedItemRepository) Save(ctx context.Context, item *inventory.DeletedItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockDeletedItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDeletedItemRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockActivityLogRepository is a mock implementation of ActivityLogRepository
type MockActivityLogRepository struct {
	mock.Mock
}

func (m *MockActivityLogRepository) Append(ctx context.Context, entry *inventory.ActivityLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockActivityLogRepository) FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]inventory.ActivityLogEntry, error) {
	args := m.Called(ctx, itemID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.ActivityLogEntry), args.Error(1)
}

func (m *MockActivityLogRepository) CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActivityLogRepository) PurgeByItem(ctx context.Context, itemID uuid.UUID) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

// PassthroughTxManager runs the callback without a real transaction
type PassthroughTxManager struct {
	FailWith error
}

func (m *PassthroughTxManager) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	return fn(ctx)
}
