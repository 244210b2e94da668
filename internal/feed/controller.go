package feed

import (
	"sort"
	"strings"
	"time"

	"github.com/minigolfeveryday/mged-site/internal/domain"
)

// DefaultPageSize videos revealed per "load more" step
const DefaultPageSize = 6

// SortKey selects the comparator for the displayed feed
type SortKey string

// Supported sort keys
const (
	SortNewest     SortKey = "newest"
	SortOldest     SortKey = "oldest"
	SortTitle      SortKey = "title"
	SortViews      SortKey = "views"
	SortLikes      SortKey = "likes"
	SortEngagement SortKey = "engagement"
)

// ParseSortKey maps a query-param value to a SortKey, defaulting to newest
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortOldest, SortTitle, SortViews, SortLikes, SortEngagement:
		return SortKey(s)
	default:
		return SortNewest
	}
}

// Controller owns the in-memory video collection and derives the visible
// subset from (query x sort x page). It is confined to a single goroutine;
// the web layer builds one per request from the fetched collection.
type Controller struct {
	all       []domain.Video
	displayed []domain.Video
	query     string
	sortKey   SortKey
	page      int
	pageSize  int
	gen       uint64
	now       func() time.Time
}

// Option configures a Controller
type Option func(*Controller)

// WithPageSize overrides the default page size
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithClock overrides the clock used for popularity scoring
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a controller over the fetched collection
func NewController(videos []domain.Video, opts ...Option) *Controller {
	c := &Controller{
		all:      videos,
		sortKey:  SortNewest,
		page:     1,
		pageSize: DefaultPageSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Recompute()
	return c
}

// SetVideos replaces the collection wholesale and recomputes
func (c *Controller) SetVideos(videos []domain.Video) {
	c.all = videos
	c.Recompute()
}

// SetQuery sets the free-text filter and recomputes.
// Matching is a case-insensitive substring test against the title;
// the empty query matches everything.
func (c *Controller) SetQuery(query string) {
	c.query = query
	c.Recompute()
}

// SetSort sets the sort key and recomputes
func (c *Controller) SetSort(key SortKey) {
	c.sortKey = key
	c.Recompute()
}

// Recompute filters then sorts, and resets paging to the first page
func (c *Controller) Recompute() {
	needle := strings.ToLower(strings.TrimSpace(c.query))

	filtered := make([]domain.Video, 0, len(c.all))
	for _, v := range c.all {
		if needle == "" || strings.Contains(strings.ToLower(v.Title), needle) {
			filtered = append(filtered, v)
		}
	}

	c.sortVideos(filtered)
	c.displayed = filtered
	c.page = 1
	c.gen++
}

func (c *Controller) sortVideos(videos []domain.Video) {
	now := c.now()
	switch c.sortKey {
	case SortNewest:
		// YYYYMMDD is fixed-width zero-padded, so lexicographic order
		// is date order.
		sort.SliceStable(videos, func(i, j int) bool {
			return videos[i].UploadDate > videos[j].UploadDate
		})
	case SortOldest:
		sort.SliceStable(videos, func(i, j int) bool {
			return videos[i].UploadDate < videos[j].UploadDate
		})
	case SortTitle:
		sort.SliceStable(videos, func(i, j int) bool {
			return strings.ToLower(videos[i].Title) < strings.ToLower(videos[j].Title)
		})
	case SortViews:
		sort.SliceStable(videos, func(i, j int) bool {
			return PopularityScore(&videos[i], now) > PopularityScore(&videos[j], now)
		})
	case SortLikes:
		sort.SliceStable(videos, func(i, j int) bool {
			if videos[i].LikeCount != videos[j].LikeCount {
				return videos[i].LikeCount > videos[j].LikeCount
			}
			return videos[i].ViewCount > videos[j].ViewCount
		})
	case SortEngagement:
		sort.SliceStable(videos, func(i, j int) bool {
			return EngagementScore(&videos[i]) > EngagementScore(&videos[j])
		})
	}
}

// LoadMore reveals the next page. Filter and sort are untouched, so the
// visible slice only ever grows.
func (c *Controller) LoadMore() {
	if c.HasMore() {
		c.page++
		c.gen++
	}
}

// SetPage jumps to an absolute page count (used when the page number
// round-trips through a query parameter)
func (c *Controller) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	maxPage := (len(c.displayed) + c.pageSize - 1) / c.pageSize
	if maxPage < 1 {
		maxPage = 1
	}
	if page > maxPage {
		page = maxPage
	}
	c.page = page
	c.gen++
}

// Visible returns the currently revealed prefix of the displayed sequence
func (c *Controller) Visible() []domain.Video {
	end := c.page * c.pageSize
	if end > len(c.displayed) {
		end = len(c.displayed)
	}
	return c.displayed[:end]
}

// HasMore reports whether more videos remain beyond the visible slice
func (c *Controller) HasMore() bool {
	return c.page*c.pageSize < len(c.displayed)
}

// Len is the size of the filtered (not just visible) sequence
func (c *Controller) Len() int {
	return len(c.displayed)
}

// Total is the size of the unfiltered collection
func (c *Controller) Total() int {
	return len(c.all)
}

// Page is the current page count
func (c *Controller) Page() int {
	return c.page
}

// Query returns the active filter text
func (c *Controller) Query() string {
	return c.query
}

// Sort returns the active sort key
func (c *Controller) Sort() SortKey {
	return c.sortKey
}

// Generation increments on every state change. A render scheduled from a
// timer can compare generations and drop itself if the state moved on.
func (c *Controller) Generation() uint64 {
	return c.gen
}
