// Package editor is the CMS post-editing controller: it owns at most one
// live rich-text editing instance, serializes its document plus form
// fields into API payloads, and hosts the template/media insertion
// helpers.
package editor

import (
	"context"
	"errors"
	"strings"

	"github.com/minigolfeveryday/mged-site/internal/domain"
)

// Validation errors surfaced before any API call is made
var (
	ErrEmptyTitle   = errors.New("post title is required")
	ErrEmptyContent = errors.New("post content is required")
	ErrNoInstance   = errors.New("no editor instance is open")
)

// PostSaver is the API surface the editor saves through
type PostSaver interface {
	CreatePost(ctx context.Context, req *domain.CreatePostRequest) (*domain.PostResponse, error)
	UpdatePost(ctx context.Context, id uint, req *domain.UpdatePostRequest) (*domain.PostResponse, error)
}

// Form carries the non-body fields of the editor form
type Form struct {
	Title           string
	Excerpt         string
	FeaturedImage   string
	MetaTitle       string
	MetaDescription string
	IsPublished     bool
	IsFeatured      bool
}

// instance is one live editing session over a document
type instance struct {
	postID  uint // 0 = new post
	content string
	// cursor is the splice point for insert helpers; -1 means no
	// selection, in which case fragments append.
	cursor int
	// toolbarMounted guards against duplicate toolbars when the editor
	// is reopened without a full teardown.
	toolbarMounted bool
}

// Controller owns exactly one live editor instance at a time
type Controller struct {
	saver  PostSaver
	active *instance
	form   Form
	// mountedToolbars counts toolbar mounts that have not been torn
	// down. More than one at a time is the old duplicate-toolbar bug.
	mountedToolbars int
}

// NewController creates an editor controller saving through saver
func NewController(saver PostSaver) *Controller {
	return &Controller{saver: saver}
}

// Open starts an editing session. For an existing post the document and
// form are populated from it; nil starts a blank new-post session.
// Any previous instance is fully torn down first.
func (c *Controller) Open(post *domain.PostResponse) {
	c.Close()

	inst := &instance{cursor: -1}
	if post != nil {
		inst.postID = post.ID
		inst.content = post.Content
		c.form = Form{
			Title:           post.Title,
			Excerpt:         post.Excerpt,
			FeaturedImage:   post.FeaturedImage,
			MetaTitle:       post.MetaTitle,
			MetaDescription: post.MetaDescription,
			IsPublished:     post.IsPublished,
			IsFeatured:      post.IsFeatured,
		}
	} else {
		c.form = Form{}
	}

	inst.toolbarMounted = true
	c.mountedToolbars++
	c.active = inst
}

// Close tears the live instance down completely, toolbar included
func (c *Controller) Close() {
	if c.active == nil {
		return
	}
	if c.active.toolbarMounted {
		c.mountedToolbars--
		c.active.toolbarMounted = false
	}
	c.active = nil
}

// Active reports whether an editing session is open
func (c *Controller) Active() bool {
	return c.active != nil
}

// MountedToolbars is the number of live toolbars; it must never exceed 1
func (c *Controller) MountedToolbars() int {
	return c.mountedToolbars
}

// EditingPostID returns the post being edited, 0 for a new post
func (c *Controller) EditingPostID() uint {
	if c.active == nil {
		return 0
	}
	return c.active.postID
}

// Content returns the current document
func (c *Controller) Content() string {
	if c.active == nil {
		return ""
	}
	return c.active.content
}

// SetContent replaces the document
func (c *Controller) SetContent(html string) error {
	if c.active == nil {
		return ErrNoInstance
	}
	c.active.content = html
	return nil
}

// Form returns a copy of the form fields
func (c *Controller) Form() Form {
	return c.form
}

// SetForm replaces the form fields
func (c *Controller) SetForm(f Form) {
	c.form = f
}

// SetCursor places the insertion point; out-of-range clamps
func (c *Controller) SetCursor(pos int) error {
	if c.active == nil {
		return ErrNoInstance
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(c.active.content) {
		pos = len(c.active.content)
	}
	c.active.cursor = pos
	return nil
}

// ClearSelection drops the insertion point; inserts append from here on
func (c *Controller) ClearSelection() {
	if c.active != nil {
		c.active.cursor = -1
	}
}

// InsertFragment splices an HTML fragment at the cursor, or appends
// when no selection exists
func (c *Controller) InsertFragment(html string) error {
	if c.active == nil {
		return ErrNoInstance
	}
	inst := c.active
	if inst.cursor < 0 || inst.cursor > len(inst.content) {
		inst.content += html
		return nil
	}
	inst.content = inst.content[:inst.cursor] + html + inst.content[inst.cursor:]
	inst.cursor += len(html)
	return nil
}

// Save validates and persists the session. An existing post ID chooses
// update over create.
func (c *Controller) Save(ctx context.Context) (*domain.PostResponse, error) {
	if c.active == nil {
		return nil, ErrNoInstance
	}
	if strings.TrimSpace(c.form.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(c.active.content) == "" {
		return nil, ErrEmptyContent
	}

	if c.active.postID == 0 {
		req := &domain.CreatePostRequest{
			Title:           c.form.Title,
			Content:         c.active.content,
			Excerpt:         c.form.Excerpt,
			FeaturedImage:   c.form.FeaturedImage,
			MetaTitle:       c.form.MetaTitle,
			MetaDescription: c.form.MetaDescription,
			IsPublished:     c.form.IsPublished,
			IsFeatured:      c.form.IsFeatured,
		}
		return c.saver.CreatePost(ctx, req)
	}

	title := c.form.Title
	content := c.active.content
	excerpt := c.form.Excerpt
	featured := c.form.FeaturedImage
	metaTitle := c.form.MetaTitle
	metaDesc := c.form.MetaDescription
	published := c.form.IsPublished
	isFeatured := c.form.IsFeatured
	req := &domain.UpdatePostRequest{
		Title:           &title,
		Content:         &content,
		Excerpt:         &excerpt,
		FeaturedImage:   &featured,
		MetaTitle:       &metaTitle,
		MetaDescription: &metaDesc,
		IsPublished:     &published,
		IsFeatured:      &isFeatured,
	}
	return c.saver.UpdatePost(ctx, c.active.postID, req)
}
