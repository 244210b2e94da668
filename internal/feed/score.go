// Package feed holds the video collection logic for the watch page:
// date/day helpers, popularity ranking and the filter/sort/paginate
// controller that decides what subset of the feed is visible.
package feed

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/minigolfeveryday/mged-site/internal/domain"
)

// Engagement weights. Likes and comments count for more than raw views
// because they are much rarer on short-form video.
const (
	likeWeight    = 10
	commentWeight = 50
)

// Synthetic score terms used when no real metrics came with the video.
const (
	dayNumberWeight = 10
	recencyWindow   = 90 // days of linear recency bonus
)

// keywordBonuses rewards titles that historically drew clicks
var keywordBonuses = []struct {
	phrase string
	bonus  float64
}{
	{"hole in one", 30},
	{"ace", 20},
	{"trick shot", 15},
	{"birthday", 10},
}

var dayNumberRe = regexp.MustCompile(`(?i)day (\d+)`)

// FormatDate renders a YYYYMMDD date string for display.
// Returns "Unknown" for anything unparseable.
func FormatDate(dateString string) string {
	t, err := time.Parse("20060102", dateString)
	if err != nil {
		return "Unknown"
	}
	return t.Format("January 2, 2006")
}

// ExtractDayNumber pulls the challenge day number out of a video title
// ("Day 123 of mini golf every day" -> 123).
func ExtractDayNumber(title string) (int, bool) {
	m := dayNumberRe.FindStringSubmatch(title)
	if m == nil {
		return 0, false
	}
	var day int
	if _, err := fmt.Sscanf(m[1], "%d", &day); err != nil {
		return 0, false
	}
	return day, true
}

// EngagementScore is the weighted real-metrics ranking:
// views + likes*10 + comments*50.
func EngagementScore(v *domain.Video) float64 {
	return float64(v.ViewCount) + float64(v.LikeCount)*likeWeight + float64(v.CommentCount)*commentWeight
}

// PopularityScore ranks a video for the "views" sort. Real engagement
// metrics win when present; otherwise a synthetic proxy combines the
// challenge day number, a linear recency bonus, title length and
// keyword bonuses. The proxy is a best-effort ordering, nothing more.
func PopularityScore(v *domain.Video, now time.Time) float64 {
	if v.HasMetrics() {
		return EngagementScore(v)
	}

	var score float64

	if day, ok := ExtractDayNumber(v.Title); ok {
		score += float64(day) * dayNumberWeight
	}

	if uploaded, err := time.Parse("20060102", v.UploadDate); err == nil {
		ageDays := now.Sub(uploaded).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		if ageDays < recencyWindow {
			score += recencyWindow - ageDays
		}
	}

	score += float64(len(v.Title))

	lower := strings.ToLower(v.Title)
	for _, kw := range keywordBonuses {
		if strings.Contains(lower, kw.phrase) {
			score += kw.bonus
		}
	}

	return score
}
