// Package apiclient is the typed client for the site's REST API. Every
// method issues exactly one HTTP call, treats any non-2xx status as a
// failure, and propagates decode errors; retry policy belongs to the
// caller.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/minigolfeveryday/mged-site/internal/domain"
)

// Timeouts for the long-running admin operations. Mobile networks get a
// shorter leash so the request dies before the radio does.
const (
	AdminTimeout       = 5 * time.Minute
	AdminTimeoutMobile = 90 * time.Second
)

// APIError is a non-2xx response from the API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// IsUnauthorized reports whether err is a 401, the signal that the
// stored session is no longer valid.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client talks to the site API
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

// New creates a Client. tokens may be nil for anonymous-only use.
func New(baseURL string, httpClient *http.Client, tokens TokenStore) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if tokens == nil {
		tokens = NewStaticTokenStore("")
	}
	return &Client{baseURL: baseURL, http: httpClient, tokens: tokens}
}

// do issues one request and decodes the JSON response into dest.
// The bearer token is read fresh from the store on every call.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, authed bool, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authed {
		token, err := c.tokens.Token()
		if err != nil && !errors.Is(err, ErrNoToken) {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, authed bool, dest interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, "", authed, dest)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload interface{}, authed bool, dest interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, bytes.NewReader(data), "application/json", authed, dest)
}

func decodeErrorMessage(r io.Reader) string {
	var body struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil || body.Error == nil {
		return ""
	}
	return body.Error.Message
}

// GetStatus fetches the site stats block
func (c *Client) GetStatus(ctx context.Context) (*domain.SiteStatus, error) {
	var status domain.SiteStatus
	if err := c.getJSON(ctx, "/api/status", false, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetVideos fetches the full video collection
func (c *Client) GetVideos(ctx context.Context) ([]domain.Video, error) {
	var body struct {
		Videos []domain.Video `json:"videos"`
	}
	if err := c.getJSON(ctx, "/api/videos", false, &body); err != nil {
		return nil, err
	}
	return body.Videos, nil
}

// WatchData is everything the watch page needs
type WatchData struct {
	Status *domain.SiteStatus
	Videos []domain.Video
}

// LoadWatchData issues the status and video-list requests concurrently
// and merges the results, failing as a unit if either fails.
func (c *Client) LoadWatchData(ctx context.Context) (*WatchData, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type statusResult struct {
		status *domain.SiteStatus
		err    error
	}
	type videosResult struct {
		videos []domain.Video
		err    error
	}

	statusCh := make(chan statusResult, 1)
	videosCh := make(chan videosResult, 1)

	go func() {
		s, err := c.GetStatus(ctx)
		statusCh <- statusResult{s, err}
	}()
	go func() {
		v, err := c.GetVideos(ctx)
		videosCh <- videosResult{v, err}
	}()

	st := <-statusCh
	vd := <-videosCh
	if st.err != nil {
		return nil, fmt.Errorf("load watch data: %w", st.err)
	}
	if vd.err != nil {
		return nil, fmt.Errorf("load watch data: %w", vd.err)
	}

	return &WatchData{Status: st.status, Videos: vd.videos}, nil
}

// PostList is one page of blog posts
type PostList struct {
	Posts      []domain.PostResponse `json:"posts"`
	Pagination struct {
		Page    int   `json:"page"`
		PerPage int   `json:"per_page"`
		Total   int64 `json:"total"`
		Pages   int   `json:"pages"`
		HasPrev bool  `json:"has_prev"`
		HasNext bool  `json:"has_next"`
	} `json:"pagination"`
}

// PostListOptions narrows ListPosts
type PostListOptions struct {
	Page          int
	Limit         int
	PublishedOnly *bool
	AuthorID      uint
}

// ListPosts fetches one page of posts
func (c *Client) ListPosts(ctx context.Context, opts PostListOptions) (*PostList, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.PublishedOnly != nil {
		q.Set("published", strconv.FormatBool(*opts.PublishedOnly))
	}
	if opts.AuthorID > 0 {
		q.Set("author_id", strconv.FormatUint(uint64(opts.AuthorID), 10))
	}

	path := "/api/blog/posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var list PostList
	if err := c.getJSON(ctx, path, true, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetPostBySlug fetches one post by slug (published, or own draft when
// authenticated)
func (c *Client) GetPostBySlug(ctx context.Context, slug string) (*domain.PostResponse, error) {
	var body struct {
		Post *domain.PostResponse `json:"post"`
	}
	if err := c.getJSON(ctx, "/api/blog/posts/"+url.PathEscape(slug), true, &body); err != nil {
		return nil, err
	}
	return body.Post, nil
}

// GetPublicPost fetches one post by numeric ID. Anonymous callers see
// published posts only; a stored token also surfaces drafts, which the
// editor needs when resuming one.
func (c *Client) GetPublicPost(ctx context.Context, id uint) (*domain.PostResponse, error) {
	var body struct {
		Post *domain.PostResponse `json:"post"`
	}
	path := fmt.Sprintf("/api/blog/posts/%d/public", id)
	if err := c.getJSON(ctx, path, true, &body); err != nil {
		return nil, err
	}
	return body.Post, nil
}

// CreatePost creates a post (authenticated)
func (c *Client) CreatePost(ctx context.Context, req *domain.CreatePostRequest) (*domain.PostResponse, error) {
	var body struct {
		Post *domain.PostResponse `json:"post"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/api/blog/posts", req, true, &body); err != nil {
		return nil, err
	}
	return body.Post, nil
}

// UpdatePost updates a post (authenticated)
func (c *Client) UpdatePost(ctx context.Context, id uint, req *domain.UpdatePostRequest) (*domain.PostResponse, error) {
	var body struct {
		Post *domain.PostResponse `json:"post"`
	}
	path := fmt.Sprintf("/api/blog/posts/%d", id)
	if err := c.sendJSON(ctx, http.MethodPut, path, req, true, &body); err != nil {
		return nil, err
	}
	return body.Post, nil
}

// DeletePost deletes a post (authenticated)
func (c *Client) DeletePost(ctx context.Context, id uint) error {
	path := fmt.Sprintf("/api/blog/posts/%d", id)
	return c.do(ctx, http.MethodDelete, path, nil, "", true, nil)
}

// LoginResult token plus user info
type LoginResult struct {
	Token string               `json:"token"`
	User  *domain.UserResponse `json:"user"`
}

// Login authenticates and persists the returned token in the store
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	payload := map[string]string{"username": username, "password": password}
	var result LoginResult
	if err := c.sendJSON(ctx, http.MethodPost, "/api/auth/login", payload, false, &result); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(result.Token); err != nil {
		return nil, fmt.Errorf("login succeeded but token store failed: %w", err)
	}
	return &result, nil
}

// Me fetches the current session's user
func (c *Client) Me(ctx context.Context) (*domain.UserResponse, error) {
	var body struct {
		User *domain.UserResponse `json:"user"`
	}
	if err := c.getJSON(ctx, "/api/auth/me", true, &body); err != nil {
		return nil, err
	}
	return body.User, nil
}

// Logout tells the API goodbye and drops the stored token either way
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, "", true, nil)
	if clearErr := c.tokens.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

// UploadImage uploads one image via multipart form; returns the public URL
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/upload/image", &buf, mw.FormDataContentType(), true, &body); err != nil {
		return "", err
	}
	return body.URL, nil
}

// PullVideos triggers the upstream feed pull. Long-running; the timeout
// shrinks for mobile callers.
func (c *Client) PullVideos(ctx context.Context, mobile bool) (*domain.PullResult, error) {
	ctx, cancel := context.WithTimeout(ctx, adminTimeout(mobile))
	defer cancel()

	var result domain.PullResult
	if err := c.do(ctx, http.MethodPost, "/api/admin/pull-videos", nil, "", true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateDatabase triggers the legacy-file reimport. Long-running.
func (c *Client) UpdateDatabase(ctx context.Context, mobile bool) (*domain.PullResult, error) {
	ctx, cancel := context.WithTimeout(ctx, adminTimeout(mobile))
	defer cancel()

	var result domain.PullResult
	if err := c.do(ctx, http.MethodPost, "/api/admin/update-database", nil, "", true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func adminTimeout(mobile bool) time.Duration {
	if mobile {
		return AdminTimeoutMobile
	}
	return AdminTimeout
}
