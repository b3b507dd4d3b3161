package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"forum/internal/events"
	"forum/internal/service"
)

// StreamHandler bridges the in-process event hub onto a websocket so
// clients can watch topic transitions live.
type StreamHandler struct {
	Hub      *events.Hub
	Settings *service.SystemSettingsService
	Logger   *zap.Logger
}

func (h *StreamHandler) Register(r *gin.Engine) {
	r.GET("/stream", h.stream)
}

// @Summary Stream topic events over a websocket
// @Tags stream
// @Success 101 {string} string "switching protocols"
// @Router /stream [get]
func (h *StreamHandler) stream(c *gin.Context) {
	if h.Hub == nil {
		Error(c, http.StatusServiceUnavailable, "event hub unavailable", nil)
		return
	}
	if !h.Settings.IsEnabled(c.Request.Context(), service.FeatureEventStream, true) {
		Error(c, http.StatusServiceUnavailable, "event stream disabled", nil)
		return
	}
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ch, cancel := h.Hub.Subscribe(64)
	defer cancel()

	// Consume incoming frames so client close and pings are handled;
	// the returned context ends when the peer disconnects.
	ctx := conn.CloseRead(c.Request.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				return
			}
		}
	}
}
