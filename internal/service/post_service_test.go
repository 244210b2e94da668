package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/minigolfeveryday/mged-site/internal/common"
	"github.com/minigolfeveryday/mged-site/internal/domain"
)

// --- Mock PostRepository ---

type mockPostRepo struct {
	mock.Mock
}

func (m *mockPostRepo) List(filter domain.PostListFilter) ([]*domain.BlogPost, int64, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.BlogPost), args.Get(1).(int64), args.Error(2)
}

func (m *mockPostRepo) FindByID(id uint) (*domain.BlogPost, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlogPost), args.Error(1)
}

func (m *mockPostRepo) FindBySlug(slug string) (*domain.BlogPost, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlogPost), args.Error(1)
}

func (m *mockPostRepo) Create(post *domain.BlogPost) error {
	return m.Called(post).Error(0)
}

func (m *mockPostRepo) Update(post *domain.BlogPost) error {
	return m.Called(post).Error(0)
}

func (m *mockPostRepo) Delete(id uint) error {
	return m.Called(id).Error(0)
}

func (m *mockPostRepo) UniqueSlug(base string, excludeID uint) (string, error) {
	args := m.Called(base, excludeID)
	return args.String(0), args.Error(1)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreatePostSanitizesContent(t *testing.T) {
	repo := &mockPostRepo{}
	svc := NewPostService(repo, nil)

	repo.On("UniqueSlug", "day-100", uint(0)).Return("day-100", nil)
	var created *domain.BlogPost
	repo.On("Create", mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(0).(*domain.BlogPost)
		created.ID = 5
	}).Return(nil)
	repo.On("FindByID", uint(5)).Return(nil, common.ErrPostNotFound)

	resp, err := svc.Create(context.Background(), 1, &domain.CreatePostRequest{
		Title:   "Day 100",
		Content: `<p>hi</p><script>alert(1)</script><iframe src="https://www.youtube.com/embed/x"></iframe>`,
	})
	assert.NoError(t, err)
	assert.NotContains(t, created.Content, "<script>")
	assert.Contains(t, created.Content, "youtube.com/embed")
	assert.Equal(t, "day-100", resp.Slug)
	assert.Equal(t, uint(1), created.AuthorID)
}

func TestCreatePostTitleTooLong(t *testing.T) {
	repo := &mockPostRepo{}
	svc := NewPostService(repo, nil)

	long := make([]byte, maxTitleLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := svc.Create(context.Background(), 1, &domain.CreatePostRequest{
		Title:   string(long),
		Content: "<p>x</p>",
	})
	assert.ErrorIs(t, err, common.ErrTitleTooLong)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreatePublishedPostStampsPublishedAt(t *testing.T) {
	repo := &mockPostRepo{}
	svc := NewPostService(repo, nil)

	repo.On("UniqueSlug", "day-1", uint(0)).Return("day-1", nil)
	var created *domain.BlogPost
	repo.On("Create", mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(0).(*domain.BlogPost)
	}).Return(nil)
	repo.On("FindByID", mock.Anything).Return(nil, common.ErrPostNotFound)

	_, err := svc.Create(context.Background(), 1, &domain.CreatePostRequest{
		Title: "Day 1", Content: "<p>x</p>", IsPublished: true,
	})
	assert.NoError(t, err)
	assert.True(t, created.IsPublished)
	assert.NotNil(t, created.PublishedAt)
}

func TestUpdatePostPermission(t *testing.T) {
	repo := &mockPostRepo{}
	svc := NewPostService(repo, nil)

	post := &domain.BlogPost{ID: 3, Title: "Day 3", AuthorID: 7}
	repo.On("FindByID", uint(3)).Return(post, nil)

	// stranger is rejected, admin is not
	_, err := svc.Update(context.Background(), 99, false, 3, &domain.UpdatePostRequest{Excerpt: strPtr("x")})
	assert.ErrorIs(t, err, common.ErrForbidden)

	repo.On("Update", mock.Anything).Return(nil)
	_, err = svc.Update(context.Background(), 99, true, 3, &domain.UpdatePostRequest{Excerpt: strPtr("x")})
	assert.NoError(t, err)
}

func TestUpdatePostTitleChangesSlug(t *testing.T) {
	repo := &mockPostRepo{}
	svc := NewPostService(repo, nil)

	post := &domain.BlogPost{ID: 3, Title: "Old Title", Slug: "old-title", AuthorID: 7}
	repo.On("FindByID", uint(3)).Return(post, nil)
	repo.On("UniqueSlug", "new-title", uint(3)).Return("new-title-2", nil)
	repo.On("Update", mock.Anything).Return(nil)

	resp, err := svc.Update(context.Background(), 7, false, 3, &domain.UpdatePostRequest{Title: strPtr("New Title")})
	assert.NoError(t, err)
	assert.Equal(t, "new-title-2", resp.Slug)
}

func TestUpdatePostPublishTransition(t *testing.T) {
	repo := &mockPostRepo{}
	svc := NewPostService(repo, nil)

	post := &domain.BlogPost{ID: 3, Title: "Day 3", Slug: "day-3", AuthorID: 7}
	repo.On("FindByID", uint(3)).Return(post, nil)
	repo.On("Update", mock.Anything).Return(nil)

	resp, err := svc.Update(context.Background(), 7, false, 3, &domain.UpdatePostRequest{IsPublished: boolPtr(true)})
	assert.NoError(t, err)
	assert.True(t, resp.IsPublished)
	assert.NotNil(t, resp.PublishedAt)

	resp, err = svc.Update(context.Background(), 7, false, 3, &domain.UpdatePostRequest{IsPublished: boolPtr(false)})
	assert.NoError(t, err)
	assert.False(t, resp.IsPublished)
	assert.Nil(t, resp.PublishedAt)
}

func TestGetBySlugHidesDrafts(t *testing.T) {
	repo := &mockPostRepo{}
	svc := NewPostService(repo, nil)

	draft := &domain.BlogPost{ID: 1, Title: "Draft", Slug: "draft", IsPublished: false}
	repo.On("FindBySlug", "draft").Return(draft, nil)

	_, err := svc.GetBySlug("draft", false)
	assert.ErrorIs(t, err, common.ErrPostNotFound)

	resp, err := svc.GetBySlug("draft", true)
	assert.NoError(t, err)
	assert.Equal(t, "Draft", resp.Title)
}

func TestListOmitsContent(t *testing.T) {
	repo := &mockPostRepo{}
	svc := NewPostService(repo, nil)

	posts := []*domain.BlogPost{
		{ID: 1, Title: "A", Content: "<p>body</p>", IsPublished: true},
	}
	repo.On("List", mock.Anything).Return(posts, int64(1), nil)

	page, err := svc.List(context.Background(), domain.PostListFilter{Page: 1, PerPage: 10, PublishedOnly: true})
	assert.NoError(t, err)
	assert.Len(t, page.Posts, 1)
	assert.Empty(t, page.Posts[0].Content)
	assert.Equal(t, int64(1), page.Pagination.Total)
	assert.False(t, page.Pagination.HasNext)
}

func TestDeletePostPermission(t *testing.T) {
	repo := &mockPostRepo{}
	svc := NewPostService(repo, nil)

	post := &domain.BlogPost{ID: 4, AuthorID: 7}
	repo.On("FindByID", uint(4)).Return(post, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), 99, false, 4), common.ErrForbidden)

	repo.On("Delete", uint(4)).Return(nil)
	assert.NoError(t, svc.Delete(context.Background(), 7, false, 4))
}
