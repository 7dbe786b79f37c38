package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventoryapp "github.com/labstock/backend/internal/application/inventory"
	"github.com/labstock/backend/internal/domain/inventory"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/infrastructure/persistence"
)

var testActor = inventory.UserRef{
	UserID:      uuid.NewString(),
	DisplayName: "Integration Bot",
}

func newItemFields(name string) inventoryapp.ItemFieldsRequest {
	return inventoryapp.ItemFieldsRequest{
		Name:     name,
		Quantity: 10,
		MinStock: 2,
		Section:  "A1",
	}
}

func TestItemRepository_SaveAndFind(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormItemRepository(tdb.DB)
	ctx := context.Background()

	item, _, err := inventory.NewItem(inventory.ItemFields{
		Name:     "Sodium Chloride",
		Quantity: 25,
		MinStock: 5,
		Code:     "NACL-500",
		Section:  "B2",
	}, testActor)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, item))

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "Sodium Chloride", found.Name)
		assert.Equal(t, 25, found.Quantity)
		assert.Equal(t, testActor.UserID, found.CreatedBy.UserID)
	})

	t.Run("find by code", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, "NACL-500")
		require.NoError(t, err)
		assert.Equal(t, item.ID, found.ID)
	})

	t.Run("unknown id yields not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("count", func(t *testing.T) {
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestItemRepository_AlertScans(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormItemRepository(tdb.DB)
	ctx := context.Background()

	lowStock, _, err := inventory.NewItem(inventory.ItemFields{
		Name:     "Ethanol",
		Quantity: 1,
		MinStock: 5,
	}, testActor)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, lowStock))

	soon := time.Now().Add(24 * time.Hour)
	expiring, _, err := inventory.NewItem(inventory.ItemFields{
		Name:       "Agar Plates",
		Quantity:   40,
		MinStock:   5,
		ExpiryDate: &soon,
	}, testActor)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, expiring))

	t.Run("low stock scan", func(t *testing.T) {
		items, err := repo.FindLowStockUnnotified(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Ethanol", items[0].Name)
	})

	t.Run("expiry scan", func(t *testing.T) {
		items, err := repo.FindExpiringUnnotified(ctx, time.Now().Add(7*24*time.Hour))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Agar Plates", items[0].Name)
	})

	t.Run("notified items are skipped", func(t *testing.T) {
		lowStock.LowStockNotified = true
		require.NoError(t, repo.Save(ctx, lowStock))

		items, err := repo.FindLowStockUnnotified(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

// Exercises the full transactional delete/restore path against a real
// database: item row moves to trash, audit entries survive restore and are
// purged on permanent delete.
func TestItemLifecycle_DeleteRestorePurge(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()

	itemRepo := persistence.NewGormItemRepository(tdb.DB)
	trashRepo := persistence.NewGormDeletedItemRepository(tdb.DB)
	logRepo := persistence.NewGormActivityLogRepository(tdb.DB)
	txManager := persistence.NewGormTransactionManager(tdb.DB)

	itemService := inventoryapp.NewItemService(itemRepo, trashRepo, logRepo, txManager)
	trashService := inventoryapp.NewTrashService(itemRepo, trashRepo, logRepo, txManager)

	created, conflict, err := itemService.Create(ctx, inventoryapp.CreateItemRequest{
		ItemFieldsRequest: newItemFields("Acetonitrile"),
	}, testActor)
	require.NoError(t, err)
	require.Nil(t, conflict)
	itemID := created.ID

	_, err = itemService.Consume(ctx, itemID, inventoryapp.ConsumeRequest{Quantity: 3}, testActor)
	require.NoError(t, err)

	require.NoError(t, itemService.Delete(ctx, itemID, testActor))

	t.Run("deleted item is in trash, not live", func(t *testing.T) {
		_, err := itemRepo.FindByID(ctx, itemID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		snapshot, err := trashRepo.FindByID(ctx, itemID)
		require.NoError(t, err)
		assert.Equal(t, "Acetonitrile", snapshot.Name)
		assert.Equal(t, testActor.UserID, snapshot.DeletedBy.UserID)
	})

	t.Run("restore brings the item back with its history", func(t *testing.T) {
		restored, err := trashService.Restore(ctx, itemID, testActor)
		require.NoError(t, err)
		assert.Equal(t, itemID, restored.ID)
		assert.Equal(t, 7, restored.Quantity)

		_, err = trashRepo.FindByID(ctx, itemID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		count, err := logRepo.CountByItem(ctx, itemID)
		require.NoError(t, err)
		// create, consume, delete, restore
		assert.Equal(t, int64(4), count)
	})

	t.Run("permanent delete purges the audit trail", func(t *testing.T) {
		require.NoError(t, itemService.Delete(ctx, itemID, testActor))
		require.NoError(t, trashService.PermanentDelete(ctx, itemID))

		_, err := trashRepo.FindByID(ctx, itemID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		count, err := logRepo.CountByItem(ctx, itemID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestActivityLogRepository_Pagination(t *testing.T) {
	tdb := NewTestDB(t)
	logRepo := persistence.NewGormActivityLogRepository(tdb.DB)
	ctx := context.Background()

	itemID := uuid.New()
	for i := 0; i < 5; i++ {
		entry := inventory.NewMarkerEntry(itemID, testActor, inventory.LogTypeCreate, "Buffer Solution")
		entry.Timestamp = time.Now().Add(time.Duration(i) * time.Second)
		require.NoError(t, logRepo.Append(ctx, entry))
	}

	page1, err := logRepo.FindByItem(ctx, itemID, shared.Filter{Page: 1, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, page1, 3)

	page2, err := logRepo.FindByItem(ctx, itemID, shared.Filter{Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, page2, 2)

	// Newest first
	assert.True(t, page1[0].Timestamp.After(page1[2].Timestamp))
}
