package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"forum/internal/clock"
	"forum/internal/models"
	"forum/internal/reconciler"
	"forum/internal/repository"
	"forum/internal/service"
)

// AdminHandler exposes the reconcile sweep and its transition log.
type AdminHandler struct {
	Repo       repository.Repository
	Reconciler *reconciler.Reconciler
	Settings   *service.SystemSettingsService
	Clock      clock.Clock
}

func (h *AdminHandler) Register(r *gin.Engine) {
	group := r.Group("/api/admin")
	group.POST("/reconcile", h.reconcile)
	group.GET("/transitions", h.listTransitions)
}

// @Summary Run one reconcile sweep now
// @Tags admin
// @Success 200 {object} map[string]any
// @Router /api/admin/reconcile [post]
func (h *AdminHandler) reconcile(c *gin.Context) {
	if h.Reconciler == nil {
		Error(c, http.StatusServiceUnavailable, "reconciler unavailable", nil)
		return
	}
	if !h.Settings.IsEnabled(c.Request.Context(), service.FeatureAdminSweep, true) {
		Error(c, http.StatusServiceUnavailable, "manual sweep disabled", nil)
		return
	}
	applied, err := h.Reconciler.RunOnce(c.Request.Context(), h.Clock.Now())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, applied, map[string]any{"count": len(applied)})
}

// @Summary List applied transitions
// @Tags admin
// @Param topic_id query int false "filter by topic"
// @Param status_type query string false "filter by status type"
// @Param action query string false "applied|skipped|failed"
// @Param since query string false "RFC3339 lower bound"
// @Success 200 {object} map[string]any
// @Router /api/admin/transitions [get]
func (h *AdminHandler) listTransitions(c *gin.Context) {
	params := repository.ListAppliedTransitionsParams{
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	}
	if raw := strings.TrimSpace(c.Query("topic_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			Error(c, http.StatusBadRequest, "invalid topic_id", nil)
			return
		}
		params.TopicID = &id
	}
	if raw := strings.TrimSpace(c.Query("status_type")); raw != "" {
		statusType, ok := models.ParseStatusType(raw)
		if !ok {
			Error(c, http.StatusBadRequest, "invalid status_type", nil)
			return
		}
		params.StatusType = &statusType
	}
	if raw := strings.TrimSpace(c.Query("action")); raw != "" {
		params.Action = &raw
	}
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid since", nil)
			return
		}
		utc := ts.UTC()
		params.Since = &utc
	}
	items, err := h.Repo.ListAppliedTransitions(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountAppliedTransitions(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}
