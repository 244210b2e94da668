package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/minigolfeveryday/mged-site/internal/apiclient"
	"github.com/minigolfeveryday/mged-site/internal/domain"
	"github.com/minigolfeveryday/mged-site/internal/editor"
)

// handleAdminSave drives the editor controller from the admin form and
// saves through the API with the submitted token. Mobile clients get
// the shorter admin timeout.
func (s *Server) handleAdminSave(c *gin.Context) {
	token := c.PostForm("token")
	if token == "" {
		s.renderAdminResult(c, http.StatusUnauthorized, "A login token is required.")
		return
	}

	client := apiclient.New(s.cfg.Web.APIURL, nil, apiclient.NewStaticTokenStore(token))
	ed := editor.NewController(client)

	// Editing an existing post reopens it so unchanged fields survive
	if idStr := c.PostForm("post_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			s.renderAdminResult(c, http.StatusBadRequest, "Invalid post ID.")
			return
		}
		post, err := client.GetPublicPost(c.Request.Context(), uint(id))
		if err != nil {
			s.renderAdminResult(c, http.StatusBadGateway, "Could not load the post to edit.")
			return
		}
		ed.Open(post)
	} else {
		ed.Open(nil)
	}
	defer ed.Close()

	if content := c.PostForm("content"); content != "" || ed.EditingPostID() == 0 {
		if err := ed.SetContent(content); err != nil {
			s.renderAdminResult(c, http.StatusInternalServerError, "Editor error.")
			return
		}
	}

	ed.SetForm(editor.Form{
		Title:           c.PostForm("title"),
		Excerpt:         c.PostForm("excerpt"),
		FeaturedImage:   c.PostForm("featured_image"),
		MetaTitle:       c.PostForm("meta_title"),
		MetaDescription: c.PostForm("meta_description"),
		IsPublished:     c.PostForm("published") == "on",
		IsFeatured:      c.PostForm("featured") == "on",
	})

	if c.PostForm("insert_template") == "on" {
		day, _ := strconv.Atoi(c.PostForm("day"))
		par, _ := strconv.Atoi(c.PostForm("par"))
		strokes, _ := strconv.Atoi(c.PostForm("strokes"))
		if err := ed.InsertRoundTemplate(day, c.PostForm("course"), par, strokes); err != nil {
			s.renderAdminResult(c, http.StatusInternalServerError, "Editor error.")
			return
		}
	}

	if ytURL := c.PostForm("youtube_url"); ytURL != "" {
		if err := ed.InsertYouTube(ytURL); err != nil {
			s.renderAdminResult(c, http.StatusBadRequest, "That is not a valid YouTube URL.")
			return
		}
	}

	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			s.renderAdminResult(c, http.StatusBadRequest, "Could not read the uploaded image.")
			return
		}
		imgURL, err := client.UploadImage(c.Request.Context(), fh.Filename, f)
		f.Close()
		switch {
		case apiclient.IsUnauthorized(err):
			s.renderAdminResult(c, http.StatusUnauthorized, "Your session has expired, log in again.")
			return
		case err != nil:
			logSectionError(PageBlogAdmin, "upload", err)
			s.renderAdminResult(c, http.StatusBadGateway, "The image upload failed, the post was not saved.")
			return
		}
		if err := ed.InsertImage(imgURL, fh.Filename); err != nil {
			s.renderAdminResult(c, http.StatusInternalServerError, "Editor error.")
			return
		}
	}

	timeout := apiclient.AdminTimeout
	if IsMobileUA(c.Request.UserAgent()) {
		timeout = apiclient.AdminTimeoutMobile
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	post, err := ed.Save(ctx)
	switch {
	case errors.Is(err, editor.ErrEmptyTitle):
		s.renderAdminResult(c, http.StatusBadRequest, "The post needs a title.")
		return
	case errors.Is(err, editor.ErrEmptyContent):
		s.renderAdminResult(c, http.StatusBadRequest, "The post needs some content.")
		return
	case apiclient.IsUnauthorized(err):
		s.renderAdminResult(c, http.StatusUnauthorized, "Your session has expired, log in again.")
		return
	case err != nil:
		logSectionError(PageBlogAdmin, "save", err)
		s.renderAdminResult(c, http.StatusBadGateway, "Saving failed, the post was not lost: copy your text and retry.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/blog?post="+post.Slug)
}

// handleAdminVideos runs the archive maintenance actions: pulling new
// videos from the channel feed or reimporting the legacy flat file.
func (s *Server) handleAdminVideos(c *gin.Context) {
	token := c.PostForm("token")
	if token == "" {
		s.renderAdminResult(c, http.StatusUnauthorized, "A login token is required.")
		return
	}

	client := apiclient.New(s.cfg.Web.APIURL, nil, apiclient.NewStaticTokenStore(token))
	mobile := IsMobileUA(c.Request.UserAgent())

	var result *domain.PullResult
	var err error
	switch action := c.PostForm("action"); action {
	case "pull":
		result, err = client.PullVideos(c.Request.Context(), mobile)
	case "reimport":
		result, err = client.UpdateDatabase(c.Request.Context(), mobile)
	default:
		s.renderAdminResult(c, http.StatusBadRequest, "Unknown action.")
		return
	}

	switch {
	case apiclient.IsUnauthorized(err):
		s.renderAdminResult(c, http.StatusUnauthorized, "Your session has expired, log in again.")
	case err != nil:
		logSectionError(PageBlogAdmin, "videos", err)
		s.renderAdminResult(c, http.StatusBadGateway, "The update did not finish, the archive is unchanged.")
	default:
		s.renderAdminResult(c, http.StatusOK,
			fmt.Sprintf("%s (%d videos, %d new)", result.Message, result.TotalVideos, result.NewVideos))
	}
}

func (s *Server) renderAdminResult(c *gin.Context, status int, message string) {
	c.HTML(status, "blog_admin.html", gin.H{
		"Page":    PageBlogAdmin,
		"Mobile":  IsMobileUA(c.Request.UserAgent()),
		"Message": message,
	})
}
