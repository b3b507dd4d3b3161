package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Topic Status Service

Deferred topic transitions: schedule a close, open, publish, delete or
bump, and a periodic reconcile sweep applies whatever is due.

## Notable Routes

- GET /healthz
- GET /readyz
- GET /swagger/index.html
- PUT /api/topics/{topic_id}/status
- POST /api/topics/{topic_id}/status-update
- GET /api/topics/{topic_id}/status-updates
- PUT /api/topics/{topic_id}/clear-pin
- PUT /api/topics/{topic_id}/re-pin
- PUT /api/topics/{topic_id}/make-banner
- PUT /api/topics/{topic_id}/remove-banner
- PUT /api/topics/{topic_id}/archive-message
- PUT /api/topics/{topic_id}/move-to-inbox
- POST /api/admin/reconcile
- GET /api/admin/transitions
- GET /stream (websocket)

## Scheduling a status update

POST /api/topics/{topic_id}/status-update accepts a time as a bare hour
count ("72"), a wall-clock time ("13:00"), or a timestamp
("2026-09-12 17:00", RFC3339 also accepted). An empty time cancels the
pending update for that status type.
`)
	})
}
