package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/labstock/backend/internal/application/inventory"
	"github.com/labstock/backend/internal/interfaces/http/dto"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
)

// TrashHandler handles soft-deleted item HTTP requests
type TrashHandler struct {
	BaseHandler
	trashService *inventoryapp.TrashService
}

// NewTrashHandler creates a new trash handler
func NewTrashHandler(trashService *inventoryapp.TrashService) *TrashHandler {
	return &TrashHandler{
		trashService: trashService,
	}
}

// RegisterRoutes registers the trash routes
func (h *TrashHandler) RegisterRoutes(rg *gin.RouterGroup) {
	trash := rg.Group("/trash")
	{
		trash.GET("", h.List)
		trash.POST("/:id/restore", h.Restore)
		trash.DELETE("/:id", h.PermanentDelete)
	}
}

func (h *TrashHandler) trashID(c *gin.Context) (uuid.UUID, bool) {
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

// List returns soft-deleted items, newest deletions first
func (h *TrashHandler) List(c *gin.Context) {
	var page dto.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.HandleBindError(c, err)
		return
	}
	page.Normalize()

	result, err := h.trashService.List(c.Request.Context(), page.Page, page.PageSize, page.Search)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Restore moves a trashed item back into the live inventory
func (h *TrashHandler) Restore(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := h.trashID(c)
	if !ok {
		return
	}

	item, err := h.trashService.Restore(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// PermanentDelete removes a trashed item and its audit trail for good
func (h *TrashHandler) PermanentDelete(c *gin.Context) {
	id, ok := h.trashID(c)
	if !ok {
		return
	}

	if err := h.trashService.PermanentDelete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
