package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/labstock/backend/internal/domain/inventory"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/infrastructure/telemetry"
)

// ItemService handles item-related business operations. Every successful
// mutation persists the item and its activity log entry in one transaction.
type ItemService struct {
	itemRepo       inventory.ItemRepository
	trashRepo      inventory.DeletedItemRepository
	logRepo        inventory.ActivityLogRepository
	txManager      inventory.TransactionManager
	eventPublisher shared.EventPublisher
}

// NewItemService creates a new ItemService
func NewItemService(
	itemRepo inventory.ItemRepository,
	trashRepo inventory.DeletedItemRepository,
	logRepo inventory.ActivityLogRepository,
	txManager inventory.TransactionManager,
) *ItemService {
	return &ItemService{
		itemRepo:  itemRepo,
		trashRepo: trashRepo,
		logRepo:   logRepo,
		txManager: txManager,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ItemService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes all pending domain events from the item.
// Errors are logged by the event bus, not propagated.
func (s *ItemService) publishDomainEvents(ctx context.Context, item *inventory.Item) {
	if s.eventPublisher == nil {
		return
	}
	events := item.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	item.ClearDomainEvents()
}

// storeWriteError maps infrastructure failures to the store-write domain
// error while passing existing domain errors through unchanged.
func storeWriteError(err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return shared.NewDomainError("STORE_WRITE_ERROR", "Failed to persist changes")
}

// Create adds a new item after duplicate resolution. When a conflict is found
// and the request does not force creation, the conflicting item is returned
// instead and nothing is written.
func (s *ItemService) Create(ctx context.Context, req CreateItemRequest, actor inventory.UserRef) (*ItemResponse, *DuplicateConflictResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "item", "create",
		telemetry.WithAttribute(telemetry.SpanAttrItemName, req.Name))
	defer span.End()

	if !req.Force {
		existing, err := s.itemRepo.FindAll(ctx)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, nil, err
		}
		if dup := inventory.FindDuplicate(existing, req.Name, req.LotNumber); dup != nil {
			resp := ToItemResponse(dup.Item, time.Now())
			return nil, &DuplicateConflictResponse{Match: string(dup.Match), Item: resp}, nil
		}
	}

	item, entry, err := inventory.NewItem(req.ToFields(), actor)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.itemRepo.Save(txCtx, item); err != nil {
			return err
		}
		return s.logRepo.Append(txCtx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, storeWriteError(err)
	}

	s.publishDomainEvents(ctx, item)
	resp := ToItemResponse(item, time.Now())
	return &resp, nil, nil
}

// GetByID retrieves a single item
func (s *ItemService) GetByID(ctx context.Context, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item, time.Now())
	return &resp, nil
}

// LookupByCode retrieves an item by its barcode value
func (s *ItemService) LookupByCode(ctx context.Context, code string) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item, time.Now())
	return &resp, nil
}

// List retrieves the filtered, sorted item view
func (s *ItemService) List(ctx context.Context, query ListItemsQuery) ([]ItemResponse, error) {
	items, err := s.itemRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	view := inventory.ApplyView(items, inventory.ViewQuery{
		Search:      query.Search,
		Temperature: query.Temperature,
		Section:     query.Section,
		Status:      inventory.StatusFilter(query.Status),
		SortBy:      inventory.SortField(query.SortBy),
		Descending:  query.OrderDir == "desc",
	}, now)
	return ToItemResponses(view, now), nil
}

// Metrics derives the dashboard aggregates over the full item set
func (s *ItemService) Metrics(ctx context.Context) (*inventory.Metrics, error) {
	items, err := s.itemRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	m := inventory.ComputeMetrics(items, time.Now())
	return &m, nil
}

// Consume removes stock from an item. Over-consumption is rejected.
func (s *ItemService) Consume(ctx context.Context, itemID uuid.UUID, req ConsumeRequest, actor inventory.UserRef) (*ItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "item", "consume",
		telemetry.WithAttribute(telemetry.SpanAttrItemID, itemID),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, req.Quantity))
	defer span.End()

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	entry, err := item.Consume(req.Quantity, req.Reason, actor)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.itemRepo.Save(txCtx, item); err != nil {
			return err
		}
		return s.logRepo.Append(txCtx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, storeWriteError(err)
	}

	s.publishDomainEvents(ctx, item)
	resp := ToItemResponse(item, time.Now())
	return &resp, nil
}

// Adjust is the quick-receive path: it adds stock and re-arms the low-stock
// alert.
func (s *ItemService) Adjust(ctx context.Context, itemID uuid.UUID, req AdjustRequest, actor inventory.UserRef) (*ItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "item", "adjust",
		telemetry.WithAttribute(telemetry.SpanAttrItemID, itemID))
	defer span.End()

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	entry, err := item.AdjustQuantity(req.Change, actor)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.itemRepo.Save(txCtx, item); err != nil {
			return err
		}
		return s.logRepo.Append(txCtx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, storeWriteError(err)
	}

	s.publishDomainEvents(ctx, item)
	resp := ToItemResponse(item, time.Now())
	return &resp, nil
}

// PreviewEdit computes the diff an edit would apply without mutating anything
func (s *ItemService) PreviewEdit(ctx context.Context, itemID uuid.UUID, req ItemFieldsRequest) (*EditPreviewResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	diff, err := item.PreviewEdit(req.ToFields())
	if err != nil {
		return nil, err
	}
	return &EditPreviewResponse{Changes: diff, NoOp: len(diff) == 0}, nil
}

// Update applies a confirmed edit. A no-op edit writes nothing and produces
// no log entry.
func (s *ItemService) Update(ctx context.Context, itemID uuid.UUID, req ItemFieldsRequest, actor inventory.UserRef) (*ItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "item", "update",
		telemetry.WithAttribute(telemetry.SpanAttrItemID, itemID))
	defer span.End()

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	entry, err := item.ApplyEdit(req.ToFields(), actor)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if entry == nil {
		resp := ToItemResponse(item, time.Now())
		return &resp, nil
	}

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.itemRepo.Save(txCtx, item); err != nil {
			return err
		}
		return s.logRepo.Append(txCtx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, storeWriteError(err)
	}

	s.publishDomainEvents(ctx, item)
	resp := ToItemResponse(item, time.Now())
	return &resp, nil
}

// Delete soft-deletes an item: the snapshot lands in the trash store, the
// DELETE entry lands in the log, and the live row goes away, all in one
// transaction.
func (s *ItemService) Delete(ctx context.Context, itemID uuid.UUID, actor inventory.UserRef) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "item", "delete",
		telemetry.WithAttribute(telemetry.SpanAttrItemID, itemID))
	defer span.End()

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	snapshot := inventory.NewDeletedItem(item, actor)
	entry := inventory.NewMarkerEntry(item.ID, actor, inventory.LogTypeDelete, item.Name)
	item.AddDomainEvent(inventory.NewItemDeletedEvent(item))

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.trashRepo.Save(txCtx, snapshot); err != nil {
			return err
		}
		if err := s.logRepo.Append(txCtx, entry); err != nil {
			return err
		}
		return s.itemRepo.Delete(txCtx, item.ID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return storeWriteError(err)
	}

	s.publishDomainEvents(ctx, item)
	return nil
}

// GetActivity returns the paginated audit trail for one item, newest first
func (s *ItemService) GetActivity(ctx context.Context, itemID uuid.UUID, page, pageSize int) (*shared.Paginated[ActivityLogEntryResponse], error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	filter := shared.Filter{Page: page, PageSize: pageSize}
	entries, err := s.logRepo.FindByItem(ctx, itemID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.logRepo.CountByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToActivityLogEntryResponses(entries), total, page, pageSize)
	return &result, nil
}
