package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/labstock/backend/internal/domain/inventory"
	"github.com/labstock/backend/internal/domain/shared"
)

// GormActivityLogRepository implements ActivityLogRepository using GORM
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

func (r *GormActivityLogRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// Append stores a new entry. Entries are never updated.
func (r *GormActivityLogRepository) Append(ctx context.Context, entry *inventory.ActivityLogEntry) error {
	return r.conn(ctx).Create(entry).Error
}

// FindByItem returns entries for one item, newest first
func (r *GormActivityLogRepository) FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]inventory.ActivityLogEntry, error) {
	var entries []inventory.ActivityLogEntry
	query := r.conn(ctx).Where("item_id = ?", itemID).Order("timestamp DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByItem counts entries for one item
func (r *GormActivityLogRepository) CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	if err := r.conn(ctx).
		Model(&inventory.ActivityLogEntry{}).
		Where("item_id = ?", itemID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PurgeByItem removes all entries for a permanently deleted item
func (r *GormActivityLogRepository) PurgeByItem(ctx context.Context, itemID uuid.UUID) error {
	return r.conn(ctx).Delete(&inventory.ActivityLogEntry{}, "item_id = ?", itemID).Error
}

var _ inventory.ActivityLogRepository = (*GormActivityLogRepository)(nil)
