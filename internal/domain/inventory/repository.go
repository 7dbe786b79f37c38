package inventory

import (
	"context"
	"time"

	"github.com/labstock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ItemRepository defines the interface for live item persistence
type ItemRepository interface {
	// FindByID finds an item by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByCode finds an item by its barcode value
	FindByCode(ctx context.Context, code string) (*Item, error)

	// FindAll returns all live items (the set is small enough to hold in
	// memory; views and metrics are derived in the domain layer)
	FindAll(ctx context.Context) ([]Item, error)

	// FindLowStockUnnotified finds items at or below threshold whose
	// low-stock flag is still clear
	FindLowStockUnnotified(ctx context.Context) ([]Item, error)

	// FindExpiringUnnotified finds items expiring at or before the deadline
	// whose expiry flag is still clear
	FindExpiringUnnotified(ctx context.Context, deadline time.Time) ([]Item, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error

	// Delete removes an item document
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts live items
	Count(ctx context.Context) (int64, error)
}

// DeletedItemRepository defines the interface for the trash store
type DeletedItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DeletedItem, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]DeletedItem, error)
	Save(ctx context.Context, item *DeletedItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// ActivityLogRepository defines the interface for the append-only audit log
type ActivityLogRepository interface {
	// Append stores a new entry. Entries are never updated.
	Append(ctx context.Context, entry *ActivityLogEntry) error

	// FindByItem returns entries for one item, newest first
	FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]ActivityLogEntry, error)

	// CountByItem counts entries for one item
	CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error)

	// PurgeByItem removes all entries for a permanently deleted item
	PurgeByItem(ctx context.Context, itemID uuid.UUID) error
}

// TransactionManager runs a function inside one database transaction so the
// delete and restore paths touch the item, trash and log stores atomically.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error
}
