package domain

import (
	"regexp"
	"strings"
	"time"
)

// BlogPost is a CMS article. Content is sanitized HTML from the editor.
type BlogPost struct {
	ID              uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title           string     `json:"title" gorm:"size:200;not null"`
	Slug            string     `json:"slug" gorm:"uniqueIndex;size:250;not null"`
	Content         string     `json:"content,omitempty" gorm:"type:text;not null"`
	Excerpt         string     `json:"excerpt" gorm:"type:text"`
	FeaturedImage   string     `json:"featured_image" gorm:"size:500"`
	IsPublished     bool       `json:"is_published" gorm:"not null;default:false;index"`
	IsFeatured      bool       `json:"is_featured" gorm:"not null;default:false"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PublishedAt     *time.Time `json:"published_at"`
	AuthorID        uint       `json:"-" gorm:"not null;index"`
	Author          User       `json:"-" gorm:"foreignKey:AuthorID"`
	MetaTitle       string     `json:"meta_title" gorm:"size:200"`
	MetaDescription string     `json:"meta_description" gorm:"size:500"`
}

// TableName gorm table name
func (BlogPost) TableName() string {
	return "blog_posts"
}

// Publish marks the post published and stamps published_at
func (p *BlogPost) Publish() {
	p.IsPublished = true
	now := time.Now().UTC()
	p.PublishedAt = &now
	if p.Slug == "" {
		p.Slug = SlugFromTitle(p.Title)
	}
}

// Unpublish reverts the post to draft
func (p *BlogPost) Unpublish() {
	p.IsPublished = false
	p.PublishedAt = nil
}

// PostAuthor is the embedded author shape in post responses
type PostAuthor struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// PostResponse is the post shape returned by the API
type PostResponse struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content,omitempty"`
	Excerpt         string     `json:"excerpt"`
	FeaturedImage   string     `json:"featured_image"`
	IsPublished     bool       `json:"is_published"`
	IsFeatured      bool       `json:"is_featured"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PublishedAt     *time.Time `json:"published_at"`
	Author          PostAuthor `json:"author"`
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
}

// ToResponse converts to the API shape; content is skipped on list views
func (p *BlogPost) ToResponse(includeContent bool) *PostResponse {
	resp := &PostResponse{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Excerpt:       p.Excerpt,
		FeaturedImage: p.FeaturedImage,
		IsPublished:   p.IsPublished,
		IsFeatured:    p.IsFeatured,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		PublishedAt:   p.PublishedAt,
		Author: PostAuthor{
			ID:       p.Author.ID,
			Username: p.Author.Username,
		},
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
	}
	if includeContent {
		resp.Content = p.Content
	}
	return resp
}

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRe = regexp.MustCompile(`[-\s]+`)
)

// SlugFromTitle builds a URL-friendly slug. Uniqueness suffixing is the
// repository's job since it needs the existing rows.
func SlugFromTitle(title string) string {
	slug := strings.ToLower(title)
	slug = slugStripRe.ReplaceAllString(slug, "")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// CreatePostRequest create/update payload from the editor
type CreatePostRequest struct {
	Title           string `json:"title" binding:"required"`
	Content         string `json:"content" binding:"required"`
	Excerpt         string `json:"excerpt"`
	FeaturedImage   string `json:"featured_image"`
	IsPublished     bool   `json:"is_published"`
	IsFeatured      bool   `json:"is_featured"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
}

// UpdatePostRequest partial update payload; nil fields are left untouched
type UpdatePostRequest struct {
	Title           *string `json:"title"`
	Content         *string `json:"content"`
	Excerpt         *string `json:"excerpt"`
	FeaturedImage   *string `json:"featured_image"`
	IsPublished     *bool   `json:"is_published"`
	IsFeatured      *bool   `json:"is_featured"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
}

// PostListFilter narrows post list queries
type PostListFilter struct {
	Page          int
	PerPage       int
	PublishedOnly bool
	FeaturedOnly  bool
	AuthorID      uint
}
