package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"forum/internal/models"
	"forum/internal/repository"
	"forum/internal/scheduler"
	"forum/internal/status"
)

// TopicHandler exposes the staff commands that change topic status,
// pins, banners and message archive state.
type TopicHandler struct {
	Repo      repository.Repository
	Status    *status.Service
	Scheduler *scheduler.Scheduler
}

func (h *TopicHandler) Register(r *gin.Engine) {
	group := r.Group("/api/topics/:topic_id")
	group.PUT("/status", h.updateStatus)
	group.POST("/status-update", h.scheduleStatusUpdate)
	group.GET("/status-updates", h.listStatusUpdates)
	group.PUT("/clear-pin", h.clearPin)
	group.PUT("/re-pin", h.rePin)
	group.PUT("/make-banner", h.makeBanner)
	group.PUT("/remove-banner", h.removeBanner)
	group.PUT("/archive-message", h.archiveMessage)
	group.PUT("/move-to-inbox", h.moveToInbox)
}

type statusRequest struct {
	Status       string `json:"status"`
	Enabled      bool   `json:"enabled"`
	ActingUserID int64  `json:"acting_user_id"`
	Until        string `json:"until"`
}

// @Summary Set a topic status flag
// @Tags topics
// @Accept json
// @Param topic_id path int true "topic id"
// @Param body body statusRequest true "status command"
// @Success 200 {object} map[string]any
// @Router /api/topics/{topic_id}/status [put]
func (h *TopicHandler) updateStatus(c *gin.Context) {
	topicID := int64Param(c, "topic_id")
	if topicID == 0 {
		Error(c, http.StatusBadRequest, "invalid topic_id", nil)
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	actor, ok := h.requireStaff(c, req.ActingUserID)
	if !ok {
		return
	}
	result, err := h.Status.Apply(c.Request.Context(), topicID, req.Status, req.Enabled, actor.ID, status.ApplyOptions{
		Until: req.Until,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	Ok(c, gin.H{
		"topic_id":        topicID,
		"status":          req.Status,
		"enabled":         req.Enabled,
		"changed":         result.Changed,
		"history_post_id": result.HistoryPostID,
		"topic":           result.Topic,
	}, nil)
}

type statusUpdateRequest struct {
	Time            string `json:"time"`
	StatusType      string `json:"status_type"`
	ActingUserID    int64  `json:"acting_user_id"`
	TimezoneOffset  int    `json:"timezone_offset"`
	BasedOnLastPost bool   `json:"based_on_last_post"`
	CategoryID      *int64 `json:"category_id"`
}

// @Summary Schedule or cancel a deferred status update
// @Tags topics
// @Accept json
// @Param topic_id path int true "topic id"
// @Param body body statusUpdateRequest true "schedule command; empty time cancels"
// @Success 200 {object} map[string]any
// @Router /api/topics/{topic_id}/status-update [post]
func (h *TopicHandler) scheduleStatusUpdate(c *gin.Context) {
	topicID := int64Param(c, "topic_id")
	if topicID == 0 {
		Error(c, http.StatusBadRequest, "invalid topic_id", nil)
		return
	}
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	statusType, ok := models.ParseStatusType(req.StatusType)
	if !ok {
		Error(c, http.StatusBadRequest, "invalid status_type", nil)
		return
	}
	actor, ok := h.requireScheduler(c, req.ActingUserID)
	if !ok {
		return
	}
	var actorID *int64
	if actor != nil {
		actorID = &actor.ID
	}
	item, err := h.Scheduler.Schedule(c.Request.Context(), topicID, statusType, req.Time, scheduler.Options{
		ActorID:         actorID,
		TimezoneOffset:  req.TimezoneOffset,
		BasedOnLastPost: req.BasedOnLastPost,
		CategoryID:      req.CategoryID,
	})
	if err != nil && !errors.Is(err, scheduler.ErrPastExecuteAt) {
		h.writeError(c, err)
		return
	}
	var meta map[string]any
	if errors.Is(err, scheduler.ErrPastExecuteAt) {
		meta = map[string]any{"warning": "execute_at is not in the future"}
	}
	if item == nil {
		Ok(c, gin.H{"topic_id": topicID, "status_type": statusType, "cancelled": true}, meta)
		return
	}
	Ok(c, item, meta)
}

// @Summary List pending status updates for a topic
// @Tags topics
// @Param topic_id path int true "topic id"
// @Success 200 {object} map[string]any
// @Router /api/topics/{topic_id}/status-updates [get]
func (h *TopicHandler) listStatusUpdates(c *gin.Context) {
	topicID := int64Param(c, "topic_id")
	if topicID == 0 {
		Error(c, http.StatusBadRequest, "invalid topic_id", nil)
		return
	}
	items, err := h.Repo.ListStatusUpdatesByTopic(c.Request.Context(), topicID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	Ok(c, items, nil)
}

type actorRequest struct {
	ActingUserID int64 `json:"acting_user_id"`
}

// @Summary Dismiss a pinned topic for one user
// @Tags topics
// @Accept json
// @Param topic_id path int true "topic id"
// @Param body body actorRequest true "acting user"
// @Success 200 {object} map[string]any
// @Router /api/topics/{topic_id}/clear-pin [put]
func (h *TopicHandler) clearPin(c *gin.Context) {
	topicID, req, ok := h.pinArgs(c)
	if !ok {
		return
	}
	if err := h.Status.ClearPin(c.Request.Context(), topicID, req.ActingUserID); err != nil {
		h.writeError(c, err)
		return
	}
	Ok(c, gin.H{"topic_id": topicID, "user_id": req.ActingUserID, "pinned": false}, nil)
}

// @Summary Restore a dismissed pin for one user
// @Tags topics
// @Accept json
// @Param topic_id path int true "topic id"
// @Param body body actorRequest true "acting user"
// @Success 200 {object} map[string]any
// @Router /api/topics/{topic_id}/re-pin [put]
func (h *TopicHandler) rePin(c *gin.Context) {
	topicID, req, ok := h.pinArgs(c)
	if !ok {
		return
	}
	if err := h.Status.RePin(c.Request.Context(), topicID, req.ActingUserID); err != nil {
		h.writeError(c, err)
		return
	}
	Ok(c, gin.H{"topic_id": topicID, "user_id": req.ActingUserID, "pinned": true}, nil)
}

func (h *TopicHandler) pinArgs(c *gin.Context) (int64, actorRequest, bool) {
	topicID := int64Param(c, "topic_id")
	if topicID == 0 {
		Error(c, http.StatusBadRequest, "invalid topic_id", nil)
		return 0, actorRequest{}, false
	}
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return 0, actorRequest{}, false
	}
	if req.ActingUserID == 0 {
		Error(c, http.StatusBadRequest, "acting_user_id required", nil)
		return 0, actorRequest{}, false
	}
	return topicID, req, true
}

// @Summary Promote a topic to the site banner
// @Tags topics
// @Accept json
// @Param topic_id path int true "topic id"
// @Param body body actorRequest true "acting user"
// @Success 200 {object} map[string]any
// @Router /api/topics/{topic_id}/make-banner [put]
func (h *TopicHandler) makeBanner(c *gin.Context) {
	topicID, actor, ok := h.topicAndStaff(c)
	if !ok {
		return
	}
	if err := h.Status.MakeBanner(c.Request.Context(), topicID, actor.ID); err != nil {
		h.writeError(c, err)
		return
	}
	Ok(c, gin.H{"topic_id": topicID, "archetype": models.ArchetypeBanner}, nil)
}

// @Summary Demote the banner topic back to a regular topic
// @Tags topics
// @Accept json
// @Param topic_id path int true "topic id"
// @Param body body actorRequest true "acting user"
// @Success 200 {object} map[string]any
// @Router /api/topics/{topic_id}/remove-banner [put]
func (h *TopicHandler) removeBanner(c *gin.Context) {
	topicID, actor, ok := h.topicAndStaff(c)
	if !ok {
		return
	}
	if err := h.Status.RemoveBanner(c.Request.Context(), topicID, actor.ID); err != nil {
		h.writeError(c, err)
		return
	}
	Ok(c, gin.H{"topic_id": topicID, "archetype": models.ArchetypeRegular}, nil)
}

type archiveRequest struct {
	ActingUserID int64   `json:"acting_user_id"`
	GroupIDs     []int64 `json:"group_ids"`
}

// @Summary Archive a private message
// @Tags topics
// @Accept json
// @Param topic_id path int true "topic id"
// @Param body body archiveRequest true "acting user and optional group inboxes"
// @Success 200 {object} map[string]any
// @Router /api/topics/{topic_id}/archive-message [put]
func (h *TopicHandler) archiveMessage(c *gin.Context) {
	topicID, req, ok := h.archiveArgs(c)
	if !ok {
		return
	}
	if err := h.Status.ArchiveMessage(c.Request.Context(), topicID, req.ActingUserID, req.GroupIDs); err != nil {
		h.writeError(c, err)
		return
	}
	Ok(c, gin.H{"topic_id": topicID, "archived": true}, nil)
}

// @Summary Move a private message back to the inbox
// @Tags topics
// @Accept json
// @Param topic_id path int true "topic id"
// @Param body body archiveRequest true "acting user and optional group inboxes"
// @Success 200 {object} map[string]any
// @Router /api/topics/{topic_id}/move-to-inbox [put]
func (h *TopicHandler) moveToInbox(c *gin.Context) {
	topicID, req, ok := h.archiveArgs(c)
	if !ok {
		return
	}
	if err := h.Status.MoveToInbox(c.Request.Context(), topicID, req.ActingUserID, req.GroupIDs); err != nil {
		h.writeError(c, err)
		return
	}
	Ok(c, gin.H{"topic_id": topicID, "archived": false}, nil)
}

func (h *TopicHandler) archiveArgs(c *gin.Context) (int64, archiveRequest, bool) {
	topicID := int64Param(c, "topic_id")
	if topicID == 0 {
		Error(c, http.StatusBadRequest, "invalid topic_id", nil)
		return 0, archiveRequest{}, false
	}
	var req archiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return 0, archiveRequest{}, false
	}
	if req.ActingUserID == 0 {
		Error(c, http.StatusBadRequest, "acting_user_id required", nil)
		return 0, archiveRequest{}, false
	}
	return topicID, req, true
}

func (h *TopicHandler) topicAndStaff(c *gin.Context) (int64, *models.User, bool) {
	topicID := int64Param(c, "topic_id")
	if topicID == 0 {
		Error(c, http.StatusBadRequest, "invalid topic_id", nil)
		return 0, nil, false
	}
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return 0, nil, false
	}
	actor, ok := h.requireStaff(c, req.ActingUserID)
	if !ok {
		return 0, nil, false
	}
	return topicID, actor, true
}

// requireStaff loads the acting user and rejects non-staff.
func (h *TopicHandler) requireStaff(c *gin.Context, userID int64) (*models.User, bool) {
	if userID == 0 {
		Error(c, http.StatusBadRequest, "acting_user_id required", nil)
		return nil, false
	}
	user, err := h.Repo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			Error(c, http.StatusForbidden, "unknown acting user", nil)
			return nil, false
		}
		h.writeError(c, err)
		return nil, false
	}
	if !user.Staff() {
		Error(c, http.StatusForbidden, "staff required", nil)
		return nil, false
	}
	return user, true
}

// requireScheduler allows staff and top-trust users to book status
// updates; a missing acting_user_id is allowed and resolves through the
// creator fallback.
func (h *TopicHandler) requireScheduler(c *gin.Context, userID int64) (*models.User, bool) {
	if userID == 0 {
		return nil, true
	}
	user, err := h.Repo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			Error(c, http.StatusForbidden, "unknown acting user", nil)
			return nil, false
		}
		h.writeError(c, err)
		return nil, false
	}
	if !user.StaffOrTopTrust() {
		Error(c, http.StatusForbidden, "staff or top trust level required", nil)
		return nil, false
	}
	return user, true
}

func (h *TopicHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		Error(c, http.StatusNotFound, "topic not found", nil)
	case errors.Is(err, status.ErrInvalidStatus):
		Error(c, http.StatusBadRequest, "invalid status", nil)
	case errors.Is(err, status.ErrNotPrivateMessage):
		Error(c, http.StatusConflict, "topic is not a private message", nil)
	case errors.Is(err, scheduler.ErrInvalidTimeSpec):
		Error(c, http.StatusBadRequest, "invalid time", nil)
	default:
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}
