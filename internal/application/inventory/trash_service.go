package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/labstock/backend/internal/domain/inventory"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/infrastructure/telemetry"
)

// TrashService handles the soft-delete store: listing, restore and permanent
// purge.
type TrashService struct {
	itemRepo       inventory.ItemRepository
	trashRepo      inventory.DeletedItemRepository
	logRepo        inventory.ActivityLogRepository
	txManager      inventory.TransactionManager
	eventPublisher shared.EventPublisher
}

// NewTrashService creates a new TrashService
func NewTrashService(
	itemRepo inventory.ItemRepository,
	trashRepo inventory.DeletedItemRepository,
	logRepo inventory.ActivityLogRepository,
	txManager inventory.TransactionManager,
) *TrashService {
	return &TrashService{
		itemRepo:  itemRepo,
		trashRepo: trashRepo,
		logRepo:   logRepo,
		txManager: txManager,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *TrashService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns trashed items, most recently deleted first
func (s *TrashService) List(ctx context.Context, page, pageSize int, search string) (*shared.Paginated[TrashItemResponse], error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	filter := shared.Filter{Page: page, PageSize: pageSize, Search: search}
	items, err := s.trashRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.trashRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToTrashItemResponses(items), total, page, pageSize)
	return &result, nil
}

// Restore moves a trashed item back into the live store under its original
// id, with both notification flags cleared. The item write, the RESTORE log
// entry and the trash removal happen in one transaction.
func (s *TrashService) Restore(ctx context.Context, itemID uuid.UUID, actor inventory.UserRef) (*ItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "trash", "restore",
		telemetry.WithAttribute(telemetry.SpanAttrItemID, itemID))
	defer span.End()

	snapshot, err := s.trashRepo.FindByID(ctx, itemID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	item, entry := snapshot.Restore(actor)

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.itemRepo.Save(txCtx, item); err != nil {
			return err
		}
		if err := s.logRepo.Append(txCtx, entry); err != nil {
			return err
		}
		return s.trashRepo.Delete(txCtx, snapshot.ID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, storeWriteError(err)
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, item.GetDomainEvents()...)
		item.ClearDomainEvents()
	}

	resp := ToItemResponse(item, time.Now())
	return &resp, nil
}

// PermanentDelete removes a trashed item for good, together with its entire
// activity history.
func (s *TrashService) PermanentDelete(ctx context.Context, itemID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "trash", "permanent_delete",
		telemetry.WithAttribute(telemetry.SpanAttrItemID, itemID))
	defer span.End()

	if _, err := s.trashRepo.FindByID(ctx, itemID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.trashRepo.Delete(txCtx, itemID); err != nil {
			return err
		}
		return s.logRepo.PurgeByItem(txCtx, itemID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return storeWriteError(err)
	}
	return nil
}
