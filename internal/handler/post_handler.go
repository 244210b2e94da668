package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/minigolfeveryday/mged-site/internal/common"
	"github.com/minigolfeveryday/mged-site/internal/domain"
	"github.com/minigolfeveryday/mged-site/internal/middleware"
	"github.com/minigolfeveryday/mged-site/internal/service"
)

// PostHandler handles blog post requests
type PostHandler struct {
	service service.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// List handles GET /api/blog/posts.
// Anonymous callers only ever see published posts; authenticated ones
// may pass published=false to include drafts.
func (h *PostHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("limit", c.DefaultQuery("per_page", "10")))

	publishedOnly := true
	if middleware.GetUserID(c) != 0 && c.Query("published") == "false" {
		publishedOnly = false
	}

	authorID, _ := strconv.ParseUint(c.Query("author_id"), 10, 32)

	filter := domain.PostListFilter{
		Page:          page,
		PerPage:       perPage,
		PublishedOnly: publishedOnly,
		FeaturedOnly:  c.Query("featured") == "true",
		AuthorID:      uint(authorID),
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list posts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      result.Posts,
		"pagination": result.Pagination,
	})
}

// GetBySlug handles GET /api/blog/posts/:slug. A numeric path segment
// is also accepted as a post ID, old permalinks used IDs before slugs.
func (h *PostHandler) GetBySlug(c *gin.Context) {
	includeDrafts := middleware.GetUserID(c) != 0
	slug := c.Param("slug")

	post, err := h.service.GetBySlug(slug, includeDrafts)
	if errors.Is(err, common.ErrPostNotFound) {
		if id, parseErr := strconv.ParseUint(slug, 10, 32); parseErr == nil {
			if byID, idErr := h.service.GetByID(uint(id)); idErr == nil &&
				(byID.IsPublished || includeDrafts) {
				c.JSON(http.StatusOK, gin.H{"post": byID})
				return
			}
		}
		common.ErrorResponse(c, http.StatusNotFound, "Post not found", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load post", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// GetPublicByID handles GET /api/blog/posts/:slug/public where the
// path segment is a numeric ID. The editor loads posts this way when
// resuming an existing draft, so authenticated callers get drafts too.
func (h *PostHandler) GetPublicByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("slug"), 10, 32)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid post ID", err)
		return
	}

	post, svcErr := h.service.GetByID(uint(id))
	if errors.Is(svcErr, common.ErrPostNotFound) {
		common.ErrorResponse(c, http.StatusNotFound, "Post not found", svcErr)
		return
	}
	if svcErr != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load post", svcErr)
		return
	}

	if !post.IsPublished && middleware.GetUserID(c) == 0 {
		common.ErrorResponse(c, http.StatusNotFound, "Post not found", common.ErrPostNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// Create handles POST /api/blog/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req domain.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Title and content are required", err)
		return
	}

	post, err := h.service.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if errors.Is(err, common.ErrTitleTooLong) {
		common.ErrorResponse(c, http.StatusBadRequest, "Title exceeds 200 characters", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to create post", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// Update handles PUT /api/blog/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid post ID", err)
		return
	}

	var req domain.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	post, err := h.service.Update(c.Request.Context(), middleware.GetUserID(c), middleware.GetIsAdmin(c), uint(id), &req)
	switch {
	case errors.Is(err, common.ErrPostNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Post not found", err)
		return
	case errors.Is(err, common.ErrForbidden):
		common.ErrorResponse(c, http.StatusForbidden, "Not your post", err)
		return
	case errors.Is(err, common.ErrTitleTooLong):
		common.ErrorResponse(c, http.StatusBadRequest, "Title exceeds 200 characters", err)
		return
	case err != nil:
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to update post", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// Delete handles DELETE /api/blog/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid post ID", err)
		return
	}

	err = h.service.Delete(c.Request.Context(), middleware.GetUserID(c), middleware.GetIsAdmin(c), uint(id))
	switch {
	case errors.Is(err, common.ErrPostNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Post not found", err)
		return
	case errors.Is(err, common.ErrForbidden):
		common.ErrorResponse(c, http.StatusForbidden, "Not your post", err)
		return
	case err != nil:
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete post", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}
