package inventory

import (
	"time"

	"github.com/labstock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeletedItem is a soft-delete snapshot held in a parallel store under the
// same id as the original item, pending restore or permanent purge.
type DeletedItem struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name                  string     `gorm:"type:varchar(255);not null"`
	Quantity              int        `gorm:"not null"`
	MinStock              int        `gorm:"not null"`
	ExpiryDate            *time.Time ``
	LotNumber             string     `gorm:"type:varchar(128)"`
	PackagingType         string     `gorm:"type:varchar(128)"`
	Code                  string     `gorm:"type:varchar(128)"`
	Temperature           string     `gorm:"type:varchar(64)"`
	Section               string     `gorm:"type:varchar(128)"`
	CreatedBy             UserRef    `gorm:"embedded;embeddedPrefix:created_by_"`
	UpdatedBy             UserRef    `gorm:"embedded;embeddedPrefix:updated_by_"`
	LowStockNotified      bool       `gorm:"not null"`
	ExpiryWarningNotified bool       `gorm:"not null"`
	CreatedAt             time.Time  `gorm:"not null"`
	UpdatedAt             time.Time  `gorm:"not null"`
	DeletedAt             time.Time  `gorm:"not null;index"`
	DeletedBy             UserRef    `gorm:"embedded;embeddedPrefix:deleted_by_"`
}

// TableName returns the table name for GORM
func (DeletedItem) TableName() string {
	return "deleted_items"
}

// NewDeletedItem snapshots an item for the trash store
func NewDeletedItem(item *Item, actor UserRef) *DeletedItem {
	return &DeletedItem{
		ID:                    item.ID,
		Name:                  item.Name,
		Quantity:              item.Quantity,
		MinStock:              item.MinStock,
		ExpiryDate:            item.ExpiryDate,
		LotNumber:             item.LotNumber,
		PackagingType:         item.PackagingType,
		Code:                  item.Code,
		Temperature:           item.Temperature,
		Section:               item.Section,
		CreatedBy:             item.CreatedBy,
		UpdatedBy:             item.UpdatedBy,
		LowStockNotified:      item.LowStockNotified,
		ExpiryWarningNotified: item.ExpiryWarningNotified,
		CreatedAt:             item.CreatedAt,
		UpdatedAt:             item.UpdatedAt,
		DeletedAt:             time.Now(),
		DeletedBy:             actor,
	}
}

// Restore rebuilds the live item from the snapshot. Both notification flags
// are forced off so previously-suppressed alerts can re-fire.
func (d *DeletedItem) Restore(actor UserRef) (*Item, *ActivityLogEntry) {
	item := &Item{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        d.ID,
				CreatedAt: d.CreatedAt,
				UpdatedAt: time.Now(),
			},
			Version: 1,
		},
		Name:          d.Name,
		Quantity:      d.Quantity,
		MinStock:      d.MinStock,
		ExpiryDate:    d.ExpiryDate,
		LotNumber:     d.LotNumber,
		PackagingType: d.PackagingType,
		Code:          d.Code,
		Temperature:   d.Temperature,
		Section:       d.Section,
		CreatedBy:     d.CreatedBy,
		UpdatedBy:     actor,
	}
	item.ResetNotificationFlags()
	item.AddDomainEvent(NewItemRestoredEvent(item))
	entry := NewMarkerEntry(item.ID, actor, LogTypeRestore, item.Name)
	return item, entry
}
