package handler

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/labstock/backend/internal/application/inventory"
	"github.com/labstock/backend/internal/domain/inventory"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/infrastructure/auth"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
)

// In-memory repository fakes shared by the handler tests

type fakeItemRepo struct {
	items   map[uuid.UUID]*inventory.Item
	saveErr error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[uuid.UUID]*inventory.Item)}
}

func (f *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Item, error) {
	if item, ok := f.items[id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeItemRepo) FindByCode(_ context.Context, code string) (*inventory.Item, error) {
	if code == "" {
		return nil, shared.ErrNotFound
	}
	for _, item := range f.items {
		if item.Code == code {
			copied := *item
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeItemRepo) FindAll(_ context.Context) ([]inventory.Item, error) {
	out := make([]inventory.Item, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeItemRepo) FindLowStockUnnotified(_ context.Context) ([]inventory.Item, error) {
	var out []inventory.Item
	for _, item := range f.items {
		if item.IsLowStock() && !item.LowStockNotified {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeItemRepo) FindExpiringUnnotified(_ context.Context, deadline time.Time) ([]inventory.Item, error) {
	var out []inventory.Item
	for _, item := range f.items {
		if item.ExpiryDate != nil && !item.ExpiryDate.After(deadline) && !item.ExpiryWarningNotified {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeItemRepo) Save(_ context.Context, item *inventory.Item) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItemRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.items)), nil
}

type fakeTrashRepo struct {
	items map[uuid.UUID]*inventory.DeletedItem
}

func newFakeTrashRepo() *fakeTrashRepo {
	return &fakeTrashRepo{items: make(map[uuid.UUID]*inventory.DeletedItem)}
}

func (f *fakeTrashRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.DeletedItem, error) {
	if item, ok := f.items[id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeTrashRepo) FindAll(_ context.Context, filter shared.Filter) ([]inventory.DeletedItem, error) {
	var out []inventory.DeletedItem
	for _, item := range f.items {
		if filter.Search != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeletedAt.After(out[j].DeletedAt) })
	return out, nil
}

func (f *fakeTrashRepo) Save(_ context.Context, item *inventory.DeletedItem) error {
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeTrashRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeTrashRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.items)), nil
}

type fakeLogRepo struct {
	entries []inventory.ActivityLogEntry
}

func (f *fakeLogRepo) Append(_ context.Context, entry *inventory.ActivityLogEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLogRepo) FindByItem(_ context.Context, itemID uuid.UUID, _ shared.Filter) ([]inventory.ActivityLogEntry, error) {
	var out []inventory.ActivityLogEntry
	for _, e := range f.entries {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (f *fakeLogRepo) CountByItem(_ context.Context, itemID uuid.UUID) (int64, error) {
	var n int64
	for _, e := range f.entries {
		if e.ItemID == itemID {
			n++
		}
	}
	return n, nil
}

func (f *fakeLogRepo) PurgeByItem(_ context.Context, itemID uuid.UUID) error {
	kept := f.entries[:0]
	for _, e := range f.entries {
		if e.ItemID != itemID {
			kept = append(kept, e)
		}
	}
	f.entries = kept
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// testEnv bundles the fakes, services and router used by handler tests
type testEnv struct {
	itemRepo  *fakeItemRepo
	trashRepo *fakeTrashRepo
	logRepo   *fakeLogRepo
	engine    *gin.Engine
}

var testClaims = &auth.Claims{
	UserID:      "7f2b8a1e-0000-0000-0000-000000000001",
	DisplayName: "Alice",
}

// authStub injects claims the way the auth middleware would
func authStub() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, testClaims)
		c.Set(middleware.JWTUserIDKey, testClaims.UserID)
		c.Next()
	}
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	itemRepo := newFakeItemRepo()
	trashRepo := newFakeTrashRepo()
	logRepo := &fakeLogRepo{}
	tx := fakeTxManager{}

	itemService := inventoryapp.NewItemService(itemRepo, trashRepo, logRepo, tx)
	trashService := inventoryapp.NewTrashService(itemRepo, trashRepo, logRepo, tx)
	exportService := inventoryapp.NewExportService(itemRepo)

	engine := gin.New()
	engine.Use(middleware.RequestID(), authStub())

	api := engine.Group("/api/v1")
	NewItemHandler(itemService, exportService).RegisterRoutes(api)
	NewTrashHandler(trashService).RegisterRoutes(api)

	return &testEnv{
		itemRepo:  itemRepo,
		trashRepo: trashRepo,
		logRepo:   logRepo,
		engine:    engine,
	}
}

// seedItem creates a live item directly through the domain constructor
func (e *testEnv) seedItem(fields inventory.ItemFields) *inventory.Item {
	item, _, err := inventory.NewItem(fields, inventory.UserRef{UserID: testClaims.UserID, DisplayName: testClaims.DisplayName})
	if err != nil {
		panic(err)
	}
	item.ClearDomainEvents()
	e.itemRepo.items[item.ID] = item
	return item
}
