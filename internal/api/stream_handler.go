package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stocktrail-backend-go/internal/core"
	"stocktrail-backend-go/internal/db"
	"stocktrail-backend-go/internal/models"
)

// StreamHandler exposes the live subscriptions as server-sent event streams.
// Each connection owns exactly one store subscription, cancelled when the
// client disconnects.
type StreamHandler struct {
	catalog core.CatalogService
	stock   core.StockService
	logger  *zap.Logger
}

// NewStreamHandler creates a StreamHandler.
func NewStreamHandler(catalog core.CatalogService, stock core.StockService, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{catalog: catalog, stock: stock, logger: logger}
}

// snapshots is a latest-wins buffer between the subscription callback and
// the SSE write loop. The callback never blocks, so cancelling the
// subscription can never deadlock against a slow client.
type snapshots struct {
	ch chan any
}

func newSnapshots() *snapshots {
	return &snapshots{ch: make(chan any, 1)}
}

func (s *snapshots) push(v any) {
	for {
		select {
		case s.ch <- v:
			return
		default:
			select {
			case <-s.ch: // drop the stale snapshot
			default:
			}
		}
	}
}

// Groups handles GET /api/v1/streams/groups.
func (h *StreamHandler) Groups(c *gin.Context) {
	buf := newSnapshots()
	sub, err := h.catalog.WatchGroups(c.Request.Context(), func(groups []*models.ProductGroup) {
		buf.push(groups)
	})
	h.serve(c, sub, err, buf)
}

// ProductsByGroup handles GET /api/v1/streams/groups/:groupId/products.
func (h *StreamHandler) ProductsByGroup(c *gin.Context) {
	buf := newSnapshots()
	sub, err := h.catalog.WatchProductsByGroup(c.Request.Context(), c.Param("groupId"), func(products []*models.Product) {
		buf.push(products)
	})
	h.serve(c, sub, err, buf)
}

// Product handles GET /api/v1/streams/products/:productId. A deleted
// product is delivered as a null snapshot.
func (h *StreamHandler) Product(c *gin.Context) {
	buf := newSnapshots()
	sub, err := h.catalog.WatchProduct(c.Request.Context(), c.Param("productId"), func(product *models.Product) {
		buf.push(product)
	})
	h.serve(c, sub, err, buf)
}

// History handles GET /api/v1/streams/products/:productId/history. Entries
// arrive newest first; the missing-index fallback is applied upstream.
func (h *StreamHandler) History(c *gin.Context) {
	buf := newSnapshots()
	sub, err := h.stock.WatchHistory(c.Request.Context(), c.Param("productId"), func(entries []*models.StockHistoryEntry) {
		buf.push(entries)
	})
	h.serve(c, sub, err, buf)
}

// serve runs the SSE write loop until the client goes away or the
// subscription terminates.
func (h *StreamHandler) serve(c *gin.Context, sub *db.Subscription, err error, buf *snapshots) {
	if err != nil {
		h.logger.Error("failed to open subscription", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to open live stream", Details: err.Error()})
		return
	}
	defer sub.Cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case <-sub.Done():
			return false
		case v := <-buf.ch:
			c.SSEvent("snapshot", v)
			return true
		}
	})
}
