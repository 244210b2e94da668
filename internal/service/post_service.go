package service

import (
	"context"

	"github.com/minigolfeveryday/mged-site/internal/common"
	"github.com/minigolfeveryday/mged-site/internal/domain"
	"github.com/minigolfeveryday/mged-site/internal/repository"
	"github.com/minigolfeveryday/mged-site/pkg/cache"
	"github.com/minigolfeveryday/mged-site/pkg/logger"
)

const maxTitleLength = 200

// PostPage one page of posts plus pagination metadata
type PostPage struct {
	Posts      []*domain.PostResponse `json:"posts"`
	Pagination *common.Meta           `json:"pagination"`
}

// PostService blog post business logic
type PostService interface {
	List(ctx context.Context, filter domain.PostListFilter) (*PostPage, error)
	GetBySlug(slug string, includeDrafts bool) (*domain.PostResponse, error)
	GetByID(id uint) (*domain.PostResponse, error)
	Create(ctx context.Context, authorID uint, req *domain.CreatePostRequest) (*domain.PostResponse, error)
	Update(ctx context.Context, userID uint, isAdmin bool, id uint, req *domain.UpdatePostRequest) (*domain.PostResponse, error)
	Delete(ctx context.Context, userID uint, isAdmin bool, id uint) error
}

type postService struct {
	postRepo repository.PostRepository
	cache    cache.Service
}

// NewPostService creates a new PostService
func NewPostService(postRepo repository.PostRepository, cacheSvc cache.Service) PostService {
	return &postService{postRepo: postRepo, cache: cacheSvc}
}

// List returns one page. Published-only pages are served from cache when
// possible since that is what the public blog index hits.
func (s *postService) List(ctx context.Context, filter domain.PostListFilter) (*PostPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 50 {
		filter.PerPage = 10
	}

	cacheable := filter.PublishedOnly && !filter.FeaturedOnly && filter.AuthorID == 0
	if cacheable && s.cache != nil {
		if raw, err := s.cache.GetPostPage(ctx, filter.Page, filter.PerPage, true); err == nil {
			var page PostPage
			if err := decodeJSON(raw, &page); err == nil {
				return &page, nil
			}
		}
	}

	posts, total, err := s.postRepo.List(filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.PostResponse, 0, len(posts))
	for _, p := range posts {
		responses = append(responses, p.ToResponse(false))
	}

	page := &PostPage{
		Posts:      responses,
		Pagination: common.NewMeta(filter.Page, filter.PerPage, total),
	}

	if cacheable && s.cache != nil {
		if err := s.cache.SetPostPage(ctx, filter.Page, filter.PerPage, true, page); err != nil {
			logger.Warn("failed to cache post page: %v", err)
		}
	}
	return page, nil
}

// GetBySlug loads one post. Drafts are hidden unless includeDrafts (the
// admin view) is set.
func (s *postService) GetBySlug(slug string, includeDrafts bool) (*domain.PostResponse, error) {
	post, err := s.postRepo.FindBySlug(slug)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished && !includeDrafts {
		return nil, common.ErrPostNotFound
	}
	return post.ToResponse(true), nil
}

func (s *postService) GetByID(id uint) (*domain.PostResponse, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return post.ToResponse(true), nil
}

// Create builds the post from the editor payload. Content is sanitized
// server-side regardless of what the editor sent.
func (s *postService) Create(ctx context.Context, authorID uint, req *domain.CreatePostRequest) (*domain.PostResponse, error) {
	if len(req.Title) > maxTitleLength {
		return nil, common.ErrTitleTooLong
	}

	slug, err := s.postRepo.UniqueSlug(domain.SlugFromTitle(req.Title), 0)
	if err != nil {
		return nil, err
	}

	post := &domain.BlogPost{
		Title:           req.Title,
		Slug:            slug,
		Content:         common.SanitizeContent(req.Content),
		Excerpt:         req.Excerpt,
		FeaturedImage:   req.FeaturedImage,
		IsFeatured:      req.IsFeatured,
		AuthorID:        authorID,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	}
	if req.IsPublished {
		post.Publish()
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	created, err := s.postRepo.FindByID(post.ID)
	if err != nil {
		return post.ToResponse(true), nil
	}
	return created.ToResponse(true), nil
}

// Update applies the non-nil fields. Only the author or an admin may
// touch a post.
func (s *postService) Update(ctx context.Context, userID uint, isAdmin bool, id uint, req *domain.UpdatePostRequest) (*domain.PostResponse, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID && !isAdmin {
		return nil, common.ErrForbidden
	}

	if req.Title != nil && *req.Title != post.Title {
		if len(*req.Title) > maxTitleLength {
			return nil, common.ErrTitleTooLong
		}
		post.Title = *req.Title
		slug, err := s.postRepo.UniqueSlug(domain.SlugFromTitle(post.Title), post.ID)
		if err != nil {
			return nil, err
		}
		post.Slug = slug
	}
	if req.Content != nil {
		post.Content = common.SanitizeContent(*req.Content)
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.FeaturedImage != nil {
		post.FeaturedImage = *req.FeaturedImage
	}
	if req.MetaTitle != nil {
		post.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		post.MetaDescription = *req.MetaDescription
	}
	if req.IsFeatured != nil {
		post.IsFeatured = *req.IsFeatured
	}
	if req.IsPublished != nil && *req.IsPublished != post.IsPublished {
		if *req.IsPublished {
			post.Publish()
		} else {
			post.Unpublish()
		}
	}

	if err := s.postRepo.Update(post); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return post.ToResponse(true), nil
}

// Delete removes a post, author-or-admin only
func (s *postService) Delete(ctx context.Context, userID uint, isAdmin bool, id uint) error {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return err
	}
	if post.AuthorID != userID && !isAdmin {
		return common.ErrForbidden
	}
	if err := s.postRepo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *postService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePosts(ctx); err != nil {
		logger.Warn("failed to invalidate post cache: %v", err)
	}
}
