package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/labstock/backend/internal/domain/inventory"
	"github.com/labstock/backend/internal/domain/shared"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	var item inventory.Item
	if err := r.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByCode finds an item by its barcode value
func (r *GormItemRepository) FindByCode(ctx context.Context, code string) (*inventory.Item, error) {
	if code == "" {
		return nil, shared.ErrNotFound
	}
	var item inventory.Item
	if err := r.conn(ctx).First(&item, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAll returns all live items ordered by name
func (r *GormItemRepository) FindAll(ctx context.Context) ([]inventory.Item, error) {
	var items []inventory.Item
	if err := r.conn(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindLowStockUnnotified finds items at or below threshold whose low-stock
// flag is still clear
func (r *GormItemRepository) FindLowStockUnnotified(ctx context.Context) ([]inventory.Item, error) {
	var items []inventory.Item
	if err := r.conn(ctx).
		Where("quantity <= min_stock AND low_stock_notified = ?", false).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindExpiringUnnotified finds items expiring at or before the deadline whose
// expiry flag is still clear
func (r *GormItemRepository) FindExpiringUnnotified(ctx context.Context, deadline time.Time) ([]inventory.Item, error) {
	var items []inventory.Item
	if err := r.conn(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date <= ? AND expiry_warning_notified = ?", deadline, false).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	return r.conn(ctx).Save(item).Error
}

// Delete removes an item row
func (r *GormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.conn(ctx).Delete(&inventory.Item{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts live items
func (r *GormItemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.conn(ctx).Model(&inventory.Item{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ inventory.ItemRepository = (*GormItemRepository)(nil)
