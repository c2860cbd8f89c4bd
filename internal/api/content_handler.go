package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gallery-backend-go/internal/core"
	"gallery-backend-go/internal/middleware"
	"gallery-backend-go/internal/models"
)

// ContentHandler serves content sets and their comments.
type ContentHandler struct {
	contentService core.ContentService
	logger         *zap.Logger
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(cs core.ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{contentService: cs, logger: logger}
}

// ListContent handles GET /api/v1/content.
func (h *ContentHandler) ListContent(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	items, err := h.contentService.ListPublic(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetContent handles GET /api/v1/content/:id. The caller is optional; private
// sets are only returned to entitled subscribers and admins.
func (h *ContentHandler) GetContent(c *gin.Context) {
	content, err := h.contentService.Get(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// UploadContent handles POST /api/v1/content. Files arrive in the multipart
// "files" field (or a single "file"); the other form fields are shared metadata.
func (h *ContentHandler) UploadContent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var meta models.ContentMetadata
	if err := c.ShouldBind(&meta); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid content metadata", Details: err.Error()})
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Multipart form is required", Details: err.Error()})
		return
	}

	var files []core.UploadFile
	for _, field := range []string{"files", "file"} {
		for _, fh := range form.File[field] {
			files = append(files, uploadFile(fh))
		}
	}

	created, err := h.contentService.Upload(c.Request.Context(), userID, files, meta)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteContent handles DELETE /api/v1/content/:id.
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.contentService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListComments handles GET /api/v1/content/:id/comments.
func (h *ContentHandler) ListComments(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	comments, err := h.contentService.ListComments(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// AddComment handles POST /api/v1/content/:id/comments.
func (h *ContentHandler) AddComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	comment, err := h.contentService.AddComment(c.Request.Context(), userID, c.Param("id"), req.Text)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
