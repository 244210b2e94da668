package domain

import "time"

// Video is one short-form video in the daily challenge feed.
// The row is immutable once pulled; reloads replace the set wholesale.
type Video struct {
	ID           uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	VideoID      string    `json:"video_id" gorm:"uniqueIndex;size:64;not null"`
	URL          string    `json:"url" gorm:"size:500;not null"`
	Title        string    `json:"title" gorm:"size:500"`
	UploadDate   string    `json:"upload_date" gorm:"size:8;index"` // YYYYMMDD
	ViewCount    int64     `json:"view_count,omitempty"`
	LikeCount    int64     `json:"like_count,omitempty"`
	CommentCount int64     `json:"comment_count,omitempty"`
	CreatedAt    time.Time `json:"-"`
}

// TableName gorm table name
func (Video) TableName() string {
	return "videos"
}

// HasMetrics reports whether real engagement numbers came with the video.
// The upstream feed omits them for older pulls, in which case ranking
// falls back to a synthetic score.
func (v *Video) HasMetrics() bool {
	return v.ViewCount > 0 || v.LikeCount > 0 || v.CommentCount > 0
}

// SiteStatus is the stats block on the home and watch pages
type SiteStatus struct {
	VideoCount  int    `json:"video_count"`
	TotalVideos int    `json:"total_videos"`
	DaysRunning int    `json:"days_running"`
	LatestVideo *Video `json:"latest_video,omitempty"`
	LastUpdated string `json:"last_updated"`
}

// PullResult summarizes one feed pull
type PullResult struct {
	Message     string   `json:"message"`
	TotalVideos int      `json:"total_videos"`
	NewVideos   int      `json:"new_videos"`
	NewVideoIDs []string `json:"new_video_ids"`
}
