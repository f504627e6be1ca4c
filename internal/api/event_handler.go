package api

import (
	"net/http"
	"strconv"

	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EventHandler serves the moderation audit trail
type EventHandler struct {
	audit service.AuditService
	log   zerolog.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(audit service.AuditService, log zerolog.Logger) *EventHandler {
	return &EventHandler{
		audit: audit,
		log:   log.With().Str("handler", "events").Logger(),
	}
}

// ListEvents handles GET /v1/moderation/events
// Query params: kind, content_id, limit
func (h *EventHandler) ListEvents(c *gin.Context) {
	var filter models.EventFilter

	if kind := models.ContentKind(c.Query("kind")); kind != "" {
		if !kind.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be one of: blog, video"})
			return
		}
		filter.Kind = kind
	}
	if raw := c.Query("content_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content_id must be a positive integer"})
			return
		}
		filter.ContentID = id
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		filter.Limit = limit
	}

	events, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list moderation events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list moderation events"})
		return
	}
	if events == nil {
		events = []*models.ModerationEvent{}
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}
