package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/labstock/backend/internal/domain/inventory"
	"github.com/labstock/backend/internal/domain/shared"
)

func newTrashServiceUnderTest() (*TrashService, *MockItemRepository, *MockDeletedItemRepository, *MockActivityLogRepository, *MockEventPublisher) {
	itemRepo := new(MockItemRepository)
	trashRepo := new(MockDeletedItemRepository)
	logRepo := new(MockActivityLogRepository)
	publisher := NewMockEventPublisher()

	svc := NewTrashService(itemRepo, trashRepo, logRepo, &PassthroughTxManager{})
	svc.SetEventPublisher(publisher)
	return svc, itemRepo, trashRepo, logRepo, publisher
}

func trashedItem(t *testing.T) *inventory.DeletedItem {
	t.Helper()
	item := mustNewItem(t, inventory.ItemFields{Name: "WBC Lyse", Quantity: 10, MinStock: 2})
	item.MarkLowStockNotified()
	return inventory.NewDeletedItem(item, testActor)
}

func TestTrashService_List(t *testing.T) {
	svc, _, trashRepo, _, _ := newTrashServiceUnderTest()
	snapshot := trashedItem(t)

	trashRepo.On("FindAll", mock.Anything, shared.Filter{Page: 1, PageSize: 20}).
		Return([]inventory.DeletedItem{*snapshot}, nil)
	trashRepo.On("Count", mock.Anything).Return(int64(1), nil)

	page, err := svc.List(context.Background(), 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "WBC Lyse", page.Items[0].Name)
	assert.Equal(t, "Alice", page.Items[0].DeletedBy)
}

func TestTrashService_Restore(t *testing.T) {
	svc, itemRepo, trashRepo, logRepo, publisher := newTrashServiceUnderTest()
	snapshot := trashedItem(t)

	trashRepo.On("FindByID", mock.Anything, snapshot.ID).Return(snapshot, nil)
	itemRepo.On("Save", mock.Anything, mock.MatchedBy(func(i *inventory.Item) bool {
		return i.ID == snapshot.ID && !i.LowStockNotified && !i.ExpiryWarningNotified
	})).Return(nil)
	logRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *inventory.ActivityLogEntry) bool {
		return e.Type == inventory.LogTypeRestore
	})).Return(nil)
	trashRepo.On("Delete", mock.Anything, snapshot.ID).Return(nil)

	resp, err := svc.Restore(context.Background(), snapshot.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, snapshot.ID, resp.ID, "restored under the original id")
	assert.False(t, resp.LowStockNotified, "suppressed alerts can re-fire")
	assert.Len(t, publisher.GetEventsByType(inventory.EventTypeItemRestored), 1)
	trashRepo.AssertExpectations(t)
}

func TestTrashService_Restore_NotFound(t *testing.T) {
	svc, _, trashRepo, _, _ := newTrashServiceUnderTest()
	id := uuid.New()
	trashRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := svc.Restore(context.Background(), id, testActor)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTrashService_PermanentDelete(t *testing.T) {
	svc, _, trashRepo, logRepo, _ := newTrashServiceUnderTest()
	snapshot := trashedItem(t)

	trashRepo.On("FindByID", mock.Anything, snapshot.ID).Return(snapshot, nil)
	trashRepo.On("Delete", mock.Anything, snapshot.ID).Return(nil)
	logRepo.On("PurgeByItem", mock.Anything, snapshot.ID).Return(nil)

	require.NoError(t, svc.PermanentDelete(context.Background(), snapshot.ID))
	logRepo.AssertCalled(t, "PurgeByItem", mock.Anything, snapshot.ID)
}
