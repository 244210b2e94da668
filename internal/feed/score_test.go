package feed

import (
	"testing"
	"time"

	"github.com/minigolfeveryday/mged-site/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "March 1, 2024", FormatDate("20240301"))
	assert.Equal(t, "Unknown", FormatDate(""))
	assert.Equal(t, "Unknown", FormatDate("2024-03-01"))
	assert.Equal(t, "Unknown", FormatDate("garbage"))
}

func TestExtractDayNumber(t *testing.T) {
	tests := []struct {
		title string
		day   int
		ok    bool
	}{
		{"Day 5 hole in one!", 5, true},
		{"day 123 of mini golf every day", 123, true},
		{"DAY 77", 77, true},
		{"no day number here", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		day, ok := ExtractDayNumber(tt.title)
		assert.Equal(t, tt.ok, ok, tt.title)
		assert.Equal(t, tt.day, day, tt.title)
	}
}

func TestPopularityScoreRealMetrics(t *testing.T) {
	v := &domain.Video{
		VideoID:      "v1",
		Title:        "Day 10",
		ViewCount:    1000,
		LikeCount:    10,
		CommentCount: 2,
	}

	// 1000 + 10*10 + 2*50 = 1200
	assert.Equal(t, float64(1200), PopularityScore(v, time.Now()))
}

func TestPopularityScoreSyntheticProxy(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	v := &domain.Video{
		VideoID:    "v2",
		Title:      "Day 5 hole in one!",
		UploadDate: "20240520", // 12 days old at `now`
	}

	score := PopularityScore(v, now)

	// day term 5*10, recency 90-12, title length, "hole in one" +30
	want := 50.0 + 78.0 + float64(len(v.Title)) + 30.0
	assert.Equal(t, want, score)
}

func TestPopularityScoreOldVideoNoRecency(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	v := &domain.Video{
		Title:      "Day 2",
		UploadDate: "20230101",
	}

	// only day term + title length remain after the recency window
	assert.Equal(t, 20.0+float64(len(v.Title)), PopularityScore(v, now))
}

func TestEngagementScore(t *testing.T) {
	v := &domain.Video{ViewCount: 100, LikeCount: 5, CommentCount: 1}
	assert.Equal(t, float64(100+50+50), EngagementScore(v))
}
