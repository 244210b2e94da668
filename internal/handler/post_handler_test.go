package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/minigolfeveryday/mged-site/internal/common"
	"github.com/minigolfeveryday/mged-site/internal/domain"
	"github.com/minigolfeveryday/mged-site/internal/service"
)

type mockPostService struct {
	mock.Mock
}

func (m *mockPostService) List(ctx context.Context, filter domain.PostListFilter) (*service.PostPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PostPage), args.Error(1)
}

func (m *mockPostService) GetBySlug(slug string, includeDrafts bool) (*domain.PostResponse, error) {
	args := m.Called(slug, includeDrafts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostResponse), args.Error(1)
}

func (m *mockPostService) GetByID(id uint) (*domain.PostResponse, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostResponse), args.Error(1)
}

func (m *mockPostService) Create(ctx context.Context, authorID uint, req *domain.CreatePostRequest) (*domain.PostResponse, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostResponse), args.Error(1)
}

func (m *mockPostService) Update(ctx context.Context, userID uint, isAdmin bool, id uint, req *domain.UpdatePostRequest) (*domain.PostResponse, error) {
	args := m.Called(ctx, userID, isAdmin, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostResponse), args.Error(1)
}

func (m *mockPostService) Delete(ctx context.Context, userID uint, isAdmin bool, id uint) error {
	return m.Called(ctx, userID, isAdmin, id).Error(0)
}

func postRouter(svc service.PostService, userID uint, isAdmin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if userID != 0 {
		r.Use(func(c *gin.Context) {
			c.Set("userID", userID)
			c.Set("isAdmin", isAdmin)
			c.Next()
		})
	}
	h := NewPostHandler(svc)
	r.GET("/api/blog/posts", h.List)
	r.GET("/api/blog/posts/:slug", h.GetBySlug)
	r.POST("/api/blog/posts", h.Create)
	r.PUT("/api/blog/posts/:id", h.Update)
	r.DELETE("/api/blog/posts/:id", h.Delete)
	return r
}

func TestListPostsWireShape(t *testing.T) {
	svc := &mockPostService{}
	svc.On("List", mock.Anything, mock.MatchedBy(func(f domain.PostListFilter) bool {
		return f.Page == 2 && f.PerPage == 5 && f.PublishedOnly
	})).Return(&service.PostPage{
		Posts:      []*domain.PostResponse{{ID: 1, Title: "Day 1"}},
		Pagination: common.NewMeta(2, 5, 11),
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/blog/posts?page=2&per_page=5", nil)
	postRouter(svc, 0, false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Posts      []json.RawMessage `json:"posts"`
		Pagination struct {
			Page    int   `json:"page"`
			Pages   int   `json:"pages"`
			Total   int64 `json:"total"`
			HasNext bool  `json:"has_next"`
			HasPrev bool  `json:"has_prev"`
		} `json:"pagination"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Posts, 1)
	assert.Equal(t, 2, body.Pagination.Page)
	assert.Equal(t, 3, body.Pagination.Pages)
	assert.True(t, body.Pagination.HasNext)
	assert.True(t, body.Pagination.HasPrev)
}

func TestAnonymousListIgnoresPublishedFlag(t *testing.T) {
	svc := &mockPostService{}
	svc.On("List", mock.Anything, mock.MatchedBy(func(f domain.PostListFilter) bool {
		return f.PublishedOnly
	})).Return(&service.PostPage{Posts: nil, Pagination: common.NewMeta(1, 10, 0)}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/blog/posts?published=false", nil)
	postRouter(svc, 0, false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAuthenticatedListMayIncludeDrafts(t *testing.T) {
	svc := &mockPostService{}
	svc.On("List", mock.Anything, mock.MatchedBy(func(f domain.PostListFilter) bool {
		return !f.PublishedOnly
	})).Return(&service.PostPage{Posts: nil, Pagination: common.NewMeta(1, 10, 0)}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/blog/posts?published=false", nil)
	postRouter(svc, 7, false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGetPostBySlugNotFound(t *testing.T) {
	svc := &mockPostService{}
	svc.On("GetBySlug", "missing", false).Return(nil, common.ErrPostNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/blog/posts/missing", nil)
	postRouter(svc, 0, false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestGetPostByNumericIDFallback(t *testing.T) {
	svc := &mockPostService{}
	svc.On("GetBySlug", "42", false).Return(nil, common.ErrPostNotFound)
	svc.On("GetByID", uint(42)).Return(&domain.PostResponse{ID: 42, Slug: "day-42", IsPublished: true}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/blog/posts/42", nil)
	postRouter(svc, 0, false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Post domain.PostResponse `json:"post"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "day-42", body.Post.Slug)
}

func TestGetPostByNumericIDFallbackHidesDrafts(t *testing.T) {
	svc := &mockPostService{}
	svc.On("GetBySlug", "42", false).Return(nil, common.ErrPostNotFound)
	svc.On("GetByID", uint(42)).Return(&domain.PostResponse{ID: 42, Slug: "day-42", IsPublished: false}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/blog/posts/42", nil)
	postRouter(svc, 0, false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePost(t *testing.T) {
	svc := &mockPostService{}
	svc.On("Create", mock.Anything, uint(7), mock.MatchedBy(func(req *domain.CreatePostRequest) bool {
		return req.Title == "Day 1"
	})).Return(&domain.PostResponse{ID: 1, Title: "Day 1", Slug: "day-1"}, nil)

	payload, _ := json.Marshal(map[string]interface{}{"title": "Day 1", "content": "<p>x</p>"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/blog/posts", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	postRouter(svc, 7, false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		Post domain.PostResponse `json:"post"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "day-1", body.Post.Slug)
}

func TestCreatePostMissingFields(t *testing.T) {
	svc := &mockPostService{}

	payload := []byte(`{"title":"no content"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/blog/posts", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	postRouter(svc, 7, false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePostForbidden(t *testing.T) {
	svc := &mockPostService{}
	svc.On("Update", mock.Anything, uint(7), false, uint(3), mock.Anything).
		Return(nil, common.ErrForbidden)

	payload := []byte(`{"excerpt":"x"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/blog/posts/3", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	postRouter(svc, 7, false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeletePost(t *testing.T) {
	svc := &mockPostService{}
	svc.On("Delete", mock.Anything, uint(7), true, uint(3)).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/blog/posts/3", nil)
	postRouter(svc, 7, true).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUpdatePostBadID(t *testing.T) {
	svc := &mockPostService{}

	payload := []byte(`{}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/blog/posts/abc", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	postRouter(svc, 7, false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
