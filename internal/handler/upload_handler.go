package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minigolfeveryday/mged-site/internal/common"
	"github.com/minigolfeveryday/mged-site/internal/service"
)

// UploadHandler handles editor image uploads
type UploadHandler struct {
	service service.UploadService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(service service.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// UploadImage handles POST /api/upload/image. The file arrives as the
// multipart "file" field.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "No file provided", err)
		return
	}

	url, err := h.service.SaveImage(file)
	if errors.Is(err, common.ErrInvalidInput) {
		common.ErrorResponse(c, http.StatusBadRequest, "File too large or unsupported type", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Upload failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
