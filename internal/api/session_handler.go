package api

import (
	"net/http"

	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionHandler handles the persisted session
type SessionHandler struct {
	sessions service.SessionService
	log      zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions service.SessionService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		log:      log.With().Str("handler", "session").Logger(),
	}
}

// GetSession handles GET /v1/session. Tokens are never returned.
func (h *SessionHandler) GetSession(c *gin.Context) {
	user, err := h.sessions.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"is_admin": user.IsAdmin(),
	})
}

// PutSession handles PUT /v1/session
func (h *SessionHandler) PutSession(c *gin.Context) {
	var req models.Session
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if err := h.sessions.Login(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().Msg("Session stored")
	c.JSON(http.StatusOK, gin.H{
		"user":     req.User,
		"is_admin": req.User.IsAdmin(),
	})
}

// DeleteSession handles DELETE /v1/session
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
