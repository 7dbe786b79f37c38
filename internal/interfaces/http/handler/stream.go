package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	inventoryapp "github.com/labstock/backend/internal/application/inventory"
	"github.com/labstock/backend/internal/interfaces/http/dto"
	"github.com/labstock/backend/internal/interfaces/http/middleware"
)

// sseMessage represents a single server-sent event
type sseMessage struct {
	Event string
	Data  string
}

// StreamHandler pushes live inventory changes to clients over SSE
type StreamHandler struct {
	BaseHandler
	feed       *inventoryapp.LiveItemFeed
	logger     *zap.Logger
	heartbeat  time.Duration
	maxClients int
}

// StreamOption is a functional option for configuring the handler
type StreamOption func(*StreamHandler)

// WithStreamHeartbeat sets the keep-alive interval
func WithStreamHeartbeat(interval time.Duration) StreamOption {
	return func(h *StreamHandler) {
		h.heartbeat = interval
	}
}

// WithStreamMaxClients caps the number of concurrent connections
func WithStreamMaxClients(max int) StreamOption {
	return func(h *StreamHandler) {
		h.maxClients = max
	}
}

// NewStreamHandler creates a new SSE handler backed by the live item feed
func NewStreamHandler(feed *inventoryapp.LiveItemFeed, logger *zap.Logger, opts ...StreamOption) *StreamHandler {
	h := &StreamHandler{
		feed:       feed,
		logger:     logger,
		heartbeat:  30 * time.Second,
		maxClients: 1000,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// RegisterRoutes registers the stream route
func (h *StreamHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/items/stream", h.Stream)
}

// Stream establishes a Server-Sent Events connection carrying item change
// notifications until the client disconnects
func (h *StreamHandler) Stream(c *gin.Context) {
	if h.maxClients > 0 && h.feed.SubscriberCount() >= h.maxClients {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
			"MAX_CONNECTIONS_REACHED",
			"Maximum number of stream connections reached",
		))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	subID, changes := h.feed.Subscribe()
	defer h.feed.Unsubscribe(subID)

	h.logger.Info("Stream client connected",
		zap.String("subscription_id", subID.String()),
		zap.String("user_id", middleware.GetJWTUserID(c)))

	sendEvent(c.Writer, sseMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"subscription_id":"%s","timestamp":%d}`, subID, time.Now().Unix()),
	})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	reqCtx := c.Request.Context()

	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("Stream client disconnected",
				zap.String("subscription_id", subID.String()))
			return
		case <-ticker.C:
			sendEvent(c.Writer, sseMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
			c.Writer.Flush()
		case change, ok := <-changes:
			if !ok {
				// Feed closed during shutdown
				return
			}
			data, err := json.Marshal(change)
			if err != nil {
				h.logger.Error("Failed to marshal item change", zap.Error(err))
				continue
			}
			sendEvent(c.Writer, sseMessage{
				Event: "item_changed",
				Data:  string(data),
			})
			c.Writer.Flush()
		}
	}
}

// sendEvent writes one SSE frame to the response writer
func sendEvent(w io.Writer, msg sseMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
