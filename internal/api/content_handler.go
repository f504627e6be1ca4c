package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/content-lifecycle-console/internal/apperr"
	"github.com/content-lifecycle-console/internal/config"
	"github.com/content-lifecycle-console/internal/lifecycle"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ContentHandler handles the endpoints of one content kind
type ContentHandler struct {
	content service.ContentService
	cfg     *config.Config
	log     zerolog.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(content service.ContentService, cfg *config.Config, log zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		content: content,
		cfg:     cfg,
		log:     log.With().Str("handler", "content").Str("kind", string(content.Kind())).Logger(),
	}
}

type transitionFunc func(ctx context.Context, id int64) (*models.ContentItem, error)

// Register mounts the handler on group
func (h *ContentHandler) Register(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.POST("/refresh", h.Refresh)
	group.GET("/:id", h.Get)
	group.PATCH("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	group.POST("/:id/reject", h.Reject)

	group.POST("/:id/submit", h.transition(h.content.SubmitForApproval))
	group.POST("/:id/approve", h.transition(h.content.Approve))
	group.POST("/:id/publish", h.transition(h.content.Publish))
	group.POST("/:id/archive", h.transition(h.content.Archive))
	group.POST("/:id/unarchive", h.transition(h.content.Unarchive))
	group.POST("/:id/like", h.transition(h.content.ToggleLike))
}

// List handles GET /v1/{kind}
// Query params: view, q, author
func (h *ContentHandler) List(c *gin.Context) {
	view, err := lifecycle.ParseView(c.Query("view"))
	if err != nil {
		respondError(c, apperr.Validation(apperr.FieldError{Field: "view", Message: err.Error(), Value: c.Query("view")}))
		return
	}

	filter := lifecycle.Filter{View: view, Query: c.Query("q")}
	if author := c.Query("author"); author != "" {
		id, err := strconv.ParseInt(author, 10, 64)
		if err != nil {
			respondError(c, apperr.Validation(apperr.FieldError{Field: "author", Message: "author must be a user id", Value: author}))
			return
		}
		filter.AuthorID = id
	}

	items := h.content.List(c.Request.Context(), filter)
	c.JSON(http.StatusOK, gin.H{
		"kind":   h.content.Kind(),
		"view":   view,
		"items":  items,
		"count":  len(items),
		"counts": h.content.Counts(),
	})
}

// Refresh handles POST /v1/{kind}/refresh?status=S
// An empty status or "all" reloads every status.
func (h *ContentHandler) Refresh(c *gin.Context) {
	var status models.Status
	if raw := c.Query("status"); raw != "" && raw != "all" {
		s, err := models.ParseStatus(raw)
		if err != nil {
			respondError(c, apperr.Validation(apperr.FieldError{Field: "status", Message: err.Error(), Value: raw}))
			return
		}
		status = s
	}

	res, err := h.content.Refresh(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    res.Status,
		"fetched":   res.Fetched,
		"pruned":    res.Pruned,
		"pages":     res.Pages,
		"truncated": res.Truncated,
	})
}

// Get handles GET /v1/{kind}/:id
func (h *ContentHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.content.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Create handles POST /v1/{kind} with a multipart form
func (h *ContentHandler) Create(c *gin.Context) {
	form, err := h.parseForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := h.content.Create(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().Int64("id", item.ID).Msg("Content created")
	c.JSON(http.StatusCreated, item)
}

// Update handles PATCH /v1/{kind}/:id. Only changed fields are sent upstream.
func (h *ContentHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	form, err := h.parseForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := h.content.Update(c.Request.Context(), id, form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete handles DELETE /v1/{kind}/:id
func (h *ContentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.content.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reject handles POST /v1/{kind}/:id/reject with {"reason": "..."}
func (h *ContentHandler) Reject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
	}

	item, err := h.content.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ContentHandler) transition(fn transitionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		item, err := fn(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// parseForm reads the editable fields of a create or update request.
// Fields absent from the request stay nil.
func (h *ContentHandler) parseForm(c *gin.Context) (models.ContentForm, error) {
	var form models.ContentForm

	if limit := h.cfg.Server.MaxUploadSize; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	var maxBytes *http.MaxBytesError
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && errors.As(err, &maxBytes) {
		return form, apperr.Validation(apperr.FieldError{
			Field:   "file",
			Message: fmt.Sprintf("upload too large, max size is %d MB", h.cfg.Server.MaxUploadSize/(1024*1024)),
		})
	}

	if title, ok := c.GetPostForm("title"); ok {
		form.Title = &title
	}
	if body, ok := c.GetPostForm("body"); ok {
		form.Body = &body
	} else if body, ok := c.GetPostForm(bodyField(h.content.Kind())); ok {
		form.Body = &body
	}
	if raw, ok := c.GetPostForm("status"); ok {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return form, apperr.Validation(apperr.FieldError{Field: "status", Message: err.Error(), Value: raw})
		}
		form.Status = &status
	}
	if duration, ok := c.GetPostForm("duration"); ok {
		form.Duration = &duration
	}

	var err error
	switch h.content.Kind() {
	case models.KindBlog:
		form.Image, err = readUpload(c, "image")
	case models.KindVideo:
		if form.Video, err = readUpload(c, "video"); err == nil {
			form.Thumbnail, err = readUpload(c, "thumbnail")
		}
	}
	return form, err
}

// readUpload returns nil when the request carries no file under field
func readUpload(c *gin.Context, field string) (*models.Upload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validation(apperr.FieldError{Field: field, Message: "unreadable upload: " + err.Error()})
	}
	return openUpload(field, header)
}

func openUpload(field string, header *multipart.FileHeader) (*models.Upload, error) {
	file, err := header.Open()
	if err != nil {
		return nil, apperr.Validation(apperr.FieldError{Field: field, Message: "unreadable upload: " + err.Error()})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.Validation(apperr.FieldError{Field: field, Message: "unreadable upload: " + err.Error()})
	}

	return &models.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func bodyField(kind models.ContentKind) string {
	if kind == models.KindVideo {
		return "description"
	}
	return "content"
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}
