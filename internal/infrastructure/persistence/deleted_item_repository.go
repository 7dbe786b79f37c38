package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/labstock/backend/internal/domain/inventory"
	"github.com/labstock/backend/internal/domain/shared"
)

// GormDeletedItemRepository implements DeletedItemRepository using GORM
type GormDeletedItemRepository struct {
	db *gorm.DB
}

// NewGormDeletedItemRepository creates a new GormDeletedItemRepository
func NewGormDeletedItemRepository(db *gorm.DB) *GormDeletedItemRepository {
	return &GormDeletedItemRepository{db: db}
}

func (r *GormDeletedItemRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a trashed item by its ID
func (r *GormDeletedItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.DeletedItem, error) {
	var item inventory.DeletedItem
	if err := r.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAll returns trashed items, most recently deleted first
func (r *GormDeletedItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.DeletedItem, error) {
	var items []inventory.DeletedItem
	query := r.conn(ctx).Model(&inventory.DeletedItem{})

	if filter.Search != "" {
		pattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("name LIKE ? OR lot_number LIKE ?", pattern, pattern)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Order("deleted_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save stores a trash snapshot
func (r *GormDeletedItemRepository) Save(ctx context.Context, item *inventory.DeletedItem) error {
	return r.conn(ctx).Save(item).Error
}

// Delete removes a trash snapshot
func (r *GormDeletedItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.conn(ctx).Delete(&inventory.DeletedItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts trashed items
func (r *GormDeletedItemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.conn(ctx).Model(&inventory.DeletedItem{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ inventory.DeletedItemRepository = (*GormDeletedItemRepository)(nil)
