package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/minigolfeveryday/mged-site/internal/common"
	"github.com/minigolfeveryday/mged-site/internal/domain"
)

// PostRepository blog post storage
type PostRepository interface {
	List(filter domain.PostListFilter) ([]*domain.BlogPost, int64, error)
	FindByID(id uint) (*domain.BlogPost, error)
	FindBySlug(slug string) (*domain.BlogPost, error)
	Create(post *domain.BlogPost) error
	Update(post *domain.BlogPost) error
	Delete(id uint) error

	// UniqueSlug resolves slug collisions by suffixing a counter
	UniqueSlug(base string, excludeID uint) (string, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository constructor
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// List returns one page plus the unpaged total. Published posts sort by
// publish date, drafts fall back to creation date.
func (r *postRepository) List(filter domain.PostListFilter) ([]*domain.BlogPost, int64, error) {
	q := r.db.Model(&domain.BlogPost{})
	if filter.PublishedOnly {
		q = q.Where("is_published = ?", true)
	}
	if filter.FeaturedOnly {
		q = q.Where("is_featured = ?", true)
	}
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 10
	}

	var posts []*domain.BlogPost
	err := q.Preload("Author").
		Order("published_at IS NULL, published_at DESC, created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) FindByID(id uint) (*domain.BlogPost, error) {
	var post domain.BlogPost
	if err := r.db.Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindBySlug(slug string) (*domain.BlogPost, error) {
	var post domain.BlogPost
	if err := r.db.Preload("Author").Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(post *domain.BlogPost) error {
	return r.db.Create(post).Error
}

func (r *postRepository) Update(post *domain.BlogPost) error {
	return r.db.Save(post).Error
}

func (r *postRepository) Delete(id uint) error {
	result := r.db.Delete(&domain.BlogPost{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrPostNotFound
	}
	return nil
}

// UniqueSlug appends -2, -3, ... until the slug is free. excludeID keeps
// a post's own slug valid on update.
func (r *postRepository) UniqueSlug(base string, excludeID uint) (string, error) {
	slug := base
	for counter := 2; ; counter++ {
		var count int64
		q := r.db.Model(&domain.BlogPost{}).Where("slug = ?", slug)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
