package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minigolfeveryday/mged-site/internal/common"
	"github.com/minigolfeveryday/mged-site/internal/domain"
	"github.com/minigolfeveryday/mged-site/internal/middleware"
	"github.com/minigolfeveryday/mged-site/internal/service"
)

// VideoHandler handles video archive requests
type VideoHandler struct {
	service    service.VideoService
	legacyFile string
}

// NewVideoHandler creates a new VideoHandler. legacyFile is the flat
// archive the reimport endpoint reads.
func NewVideoHandler(service service.VideoService, legacyFile string) *VideoHandler {
	return &VideoHandler{service: service, legacyFile: legacyFile}
}

// List handles GET /api/videos
func (h *VideoHandler) List(c *gin.Context) {
	videos, err := h.service.List(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load videos", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// Status handles GET /api/status
func (h *VideoHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load status", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Update handles POST /api/update, the admin channel pull. A channel
// fetch failure is a 200 with the preserved totals, not an error.
func (h *VideoHandler) Update(c *gin.Context) {
	result, err := h.service.Pull(c.Request.Context())
	if err != nil {
		middleware.CountVideoPull("error")
		common.ErrorResponse(c, http.StatusInternalServerError, "Update failed", err)
		return
	}

	if result.NewVideos > 0 || result.Message == "database updated" {
		middleware.CountVideoPull("updated")
	} else {
		middleware.CountVideoPull("preserved")
	}

	c.JSON(http.StatusOK, result)
}

// ReimportDatabase handles POST /api/admin/update-database, replacing
// the archive from the legacy flat file.
func (h *VideoHandler) ReimportDatabase(c *gin.Context) {
	count, err := h.service.ImportLegacyFile(h.legacyFile)
	if err != nil {
		middleware.CountVideoPull("error")
		common.ErrorResponse(c, http.StatusInternalServerError, "Reimport failed", err)
		return
	}

	middleware.CountVideoPull("updated")
	c.JSON(http.StatusOK, &domain.PullResult{
		Message:     "database updated",
		TotalVideos: count,
	})
}
