package web

import (
	"context"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minigolfeveryday/mged-site/internal/apiclient"
	"github.com/minigolfeveryday/mged-site/internal/domain"
	"github.com/minigolfeveryday/mged-site/internal/feed"
)

const pageLoadTimeout = 10 * time.Second

// VideoCard is one rendered archive entry
type VideoCard struct {
	VideoID   string
	URL       string
	Title     string
	Date      string
	DayNumber int
	Embed     template.HTML
}

// Section wraps a page section so one failed fetch degrades that
// section instead of the whole page
type Section struct {
	OK    bool
	Error string
}

func failedSection() Section {
	return Section{OK: false, Error: "This section could not be loaded right now."}
}

func okSection() Section {
	return Section{OK: true}
}

// renderHome shows the most recent videos plus the status banner.
// Each section loads independently.
func (s *Server) renderHome(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pageLoadTimeout)
	defer cancel()

	data := gin.H{"Page": PageHome}

	if status, err := s.api.GetStatus(ctx); err != nil {
		logSectionError(PageHome, "status", err)
		data["StatusSection"] = failedSection()
	} else {
		data["StatusSection"] = okSection()
		data["Status"] = status
	}

	if videos, err := s.api.GetVideos(ctx); err != nil {
		logSectionError(PageHome, "videos", err)
		data["VideoSection"] = failedSection()
	} else {
		ctrl := feed.NewController(videos)
		data["VideoSection"] = okSection()
		data["Cards"] = s.buildCards(ctx, ctrl.Visible())
		data["HasMore"] = ctrl.HasMore()
	}

	c.HTML(http.StatusOK, "home.html", data)
}

// renderWatch shows the filterable archive. Query, sort and page come
// from the URL so the view is linkable.
func (s *Server) renderWatch(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pageLoadTimeout)
	defer cancel()

	data := gin.H{
		"Page":  PageWatch,
		"Query": c.Query("q"),
		"Sort":  string(feed.ParseSortKey(c.Query("sort"))),
	}

	watch, err := s.api.LoadWatchData(ctx)
	if err != nil {
		logSectionError(PageWatch, "archive", err)
		data["VideoSection"] = failedSection()
		c.HTML(http.StatusOK, "watch.html", data)
		return
	}

	ctrl := feed.NewController(watch.Videos)
	ctrl.SetQuery(c.Query("q"))
	ctrl.SetSort(feed.ParseSortKey(c.Query("sort")))
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		ctrl.SetPage(page)
	}

	data["VideoSection"] = okSection()
	data["Cards"] = s.buildCards(ctx, ctrl.Visible())
	data["Matches"] = ctrl.Total()
	data["HasMore"] = ctrl.HasMore()
	data["NextPage"] = ctrl.Page() + 1
	data["Status"] = watch.Status

	c.HTML(http.StatusOK, "watch.html", data)
}

// renderAbout shows the streak stats
func (s *Server) renderAbout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pageLoadTimeout)
	defer cancel()

	data := gin.H{"Page": PageAbout}

	if status, err := s.api.GetStatus(ctx); err != nil {
		logSectionError(PageAbout, "status", err)
		data["StatusSection"] = failedSection()
	} else {
		data["StatusSection"] = okSection()
		data["Status"] = status
	}

	c.HTML(http.StatusOK, "about.html", data)
}

// renderBlog shows the post index, or a single post when ?post=<slug>
// is present
func (s *Server) renderBlog(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pageLoadTimeout)
	defer cancel()

	if slug := c.Query("post"); slug != "" {
		s.renderBlogPost(c, ctx, slug)
		return
	}

	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}

	data := gin.H{"Page": PageBlog}

	list, err := s.api.ListPosts(ctx, apiclient.PostListOptions{Page: page, Limit: 10})
	if err != nil {
		logSectionError(PageBlog, "posts", err)
		data["PostSection"] = failedSection()
	} else {
		data["PostSection"] = okSection()
		data["Posts"] = list.Posts
		data["Pagination"] = list.Pagination
		data["PrevPage"] = page - 1
		data["NextPage"] = page + 1
	}

	c.HTML(http.StatusOK, "blog.html", data)
}

func (s *Server) renderBlogPost(c *gin.Context, ctx context.Context, slug string) {
	post, err := s.api.GetPostBySlug(ctx, slug)
	if err != nil {
		c.HTML(http.StatusNotFound, "blog_post.html", gin.H{
			"Page":        PageBlog,
			"PostSection": failedSection(),
		})
		return
	}

	c.HTML(http.StatusOK, "blog_post.html", gin.H{
		"Page":        PageBlog,
		"PostSection": okSection(),
		"Post":        post,
		// content was sanitized server-side on write
		"Content": template.HTML(post.Content),
	})
}

// renderBlogAdmin shows the editor shell. The form posts back to
// /blog-admin/save with the admin token.
func (s *Server) renderBlogAdmin(c *gin.Context) {
	c.HTML(http.StatusOK, "blog_admin.html", gin.H{
		"Page":   PageBlogAdmin,
		"Mobile": IsMobileUA(c.Request.UserAgent()),
	})
}

// buildCards resolves embeds for the visible videos and renders one
// card each
func (s *Server) buildCards(ctx context.Context, videos []domain.Video) []VideoCard {
	embeds := s.embeds.renderAll(ctx, videos)

	cards := make([]VideoCard, len(videos))
	for i, v := range videos {
		day, _ := feed.ExtractDayNumber(v.Title)
		cards[i] = VideoCard{
			VideoID:   v.VideoID,
			URL:       v.URL,
			Title:     v.Title,
			Date:      feed.FormatDate(v.UploadDate),
			DayNumber: day,
			Embed:     embeds[v.VideoID],
		}
	}
	return cards
}
