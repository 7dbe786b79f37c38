package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/labstock/backend/internal/application/inventory"
	"github.com/labstock/backend/internal/domain/inventory"
	"github.com/labstock/backend/internal/interfaces/http/dto"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
)

// ItemHandler handles inventory item HTTP requests
type ItemHandler struct {
	BaseHandler
	itemService   *inventoryapp.ItemService
	exportService *inventoryapp.ExportService
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService *inventoryapp.ItemService, exportService *inventoryapp.ExportService) *ItemHandler {
	return &ItemHandler{
		itemService:   itemService,
		exportService: exportService,
	}
}

// RegisterRoutes registers the item routes
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/items")
	{
		items.GET("", h.List)
		items.POST("", h.Create)
		items.GET("/metrics", h.Metrics)
		items.GET("/export", h.Export)
		items.GET("/lookup", h.Lookup)
		items.GET("/:id", h.Get)
		items.PUT("/:id", h.Update)
		items.POST("/:id/preview", h.PreviewEdit)
		items.POST("/:id/consume", h.Consume)
		items.POST("/:id/adjust", h.Adjust)
		items.DELETE("/:id", h.Delete)
		items.GET("/:id/activity", h.Activity)
	}
}

// actor resolves the authenticated user or aborts with 401
func (h *ItemHandler) actor(c *gin.Context) (inventory.UserRef, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
	}
	return actor, ok
}

// itemID parses the :id path parameter or aborts with 400
func (h *ItemHandler) itemID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid item ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return uuid.Nil, false
	}
	return id, true
}

// List returns the filtered, sorted item collection
func (h *ItemHandler) List(c *gin.Context) {
	var query inventoryapp.ListItemsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindError(c, err)
		return
	}

	items, err := h.itemService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// Create adds a new item. When a duplicate is detected and force is not set,
// no write happens and the existing item is returned with a 409 so the client
// can ask the user to confirm.
func (h *ItemHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req inventoryapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	item, conflict, err := h.itemService.Create(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if conflict != nil {
		c.JSON(http.StatusConflict, dto.Response{
			Success: false,
			Error: &dto.ErrorInfo{
				Code:      dto.ErrCodeDuplicateItem,
				Message:   "A matching item already exists",
				RequestID: middleware.GetRequestID(c),
			},
			Data: conflict,
		})
		return
	}

	h.Created(c, item)
}

// Get returns a single item by ID
func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	item, err := h.itemService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Lookup finds an item by its barcode value
func (h *ItemHandler) Lookup(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.BadRequest(c, "Query parameter 'code' is required")
		return
	}

	item, err := h.itemService.LookupByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Metrics returns aggregate inventory counts
func (h *ItemHandler) Metrics(c *gin.Context) {
	metrics, err := h.itemService.Metrics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, metrics)
}

// Update applies a full edit to an item
func (h *ItemHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, ok := h.itemID(c)
	if !ok {
		return
	}

	var req inventoryapp.ItemFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// PreviewEdit computes the diff an edit would apply without persisting it
func (h *ItemHandler) PreviewEdit(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	var req inventoryapp.ItemFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	preview, err := h.itemService.PreviewEdit(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, preview)
}

// Consume removes stock from an item
func (h *ItemHandler) Consume(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, ok := h.itemID(c)
	if !ok {
		return
	}

	var req inventoryapp.ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	item, err := h.itemService.Consume(c.Request.Context(), id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Adjust adds stock to an item
func (h *ItemHandler) Adjust(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, ok := h.itemID(c)
	if !ok {
		return
	}

	var req inventoryapp.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	item, err := h.itemService.Adjust(c.Request.Context(), id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Delete moves an item to the trash
func (h *ItemHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, ok := h.itemID(c)
	if !ok {
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), id, actor); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Activity returns the paginated audit trail for an item
func (h *ItemHandler) Activity(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	var page dto.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.HandleBindError(c, err)
		return
	}
	page.Normalize()

	result, err := h.itemService.GetActivity(c.Request.Context(), id, page.Page, page.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Export streams the full inventory as a CSV attachment
func (h *ItemHandler) Export(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="inventory.csv"`)

	if err := h.exportService.WriteCSV(c.Request.Context(), c.Writer); err != nil {
		// Headers may already be sent; report in the log via the error status
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusOK)
}
