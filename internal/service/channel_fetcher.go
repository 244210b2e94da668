package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/minigolfeveryday/mged-site/internal/domain"
)

// feedEntry is one video in the channel feed document
type feedEntry struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	UploadDate   string `json:"upload_date"`
	ViewCount    int64  `json:"view_count"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
}

// httpChannelFetcher pulls the channel feed over HTTP
type httpChannelFetcher struct {
	feedURL    string
	channelURL string
	client     *http.Client
}

// NewHTTPChannelFetcher creates a fetcher for the given feed endpoint.
// channelURL fills in the video URL when the feed omits it.
func NewHTTPChannelFetcher(feedURL, channelURL string) ChannelFetcher {
	return &httpChannelFetcher{
		feedURL:    feedURL,
		channelURL: channelURL,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

func (f *httpChannelFetcher) FetchVideos(ctx context.Context) ([]*domain.Video, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.feedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch channel feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("channel feed returned %d", resp.StatusCode)
	}

	var entries []feedEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode channel feed: %w", err)
	}

	videos := make([]*domain.Video, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		url := e.URL
		if url == "" {
			url = fmt.Sprintf("%s/video/%s", f.channelURL, e.ID)
		}
		videos = append(videos, &domain.Video{
			VideoID:      e.ID,
			URL:          url,
			Title:        e.Title,
			UploadDate:   e.UploadDate,
			ViewCount:    e.ViewCount,
			LikeCount:    e.LikeCount,
			CommentCount: e.CommentCount,
		})
	}
	return videos, nil
}
