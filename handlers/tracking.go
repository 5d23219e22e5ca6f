package handlers

import (
	"io"
	"net/http"
	"time"

	"pizza-delivery-api/middleware"

	"github.com/gin-gonic/gin"
)

// keepAliveInterval spaces SSE comments so proxies keep the stream open.
const keepAliveInterval = 15 * time.Second

func (h *Handler) GetTracking(c *gin.Context) {
	pos, err := h.Orders.Tracking(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracking": pos})
}

// StreamTracking pushes driver positions as server-sent "position" events
// until the delivery ends or the client goes away.
func (h *Handler) StreamTracking(c *gin.Context) {
	ctx := c.Request.Context()
	updates, unsubscribe, err := h.Orders.Subscribe(ctx, c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	defer unsubscribe()

	if pos, err := h.Orders.Tracking(ctx, c.Param("id"), middleware.GetUserID(c)); err == nil {
		c.SSEvent("position", pos)
		c.Writer.Flush()
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case pos, ok := <-updates:
			if !ok {
				c.SSEvent("end", gin.H{"order_id": c.Param("id")})
				return false
			}
			c.SSEvent("position", pos)
			return !pos.Done
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
