package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageFromPath(t *testing.T) {
	cases := []struct {
		path string
		want Page
	}{
		{"/", PageHome},
		{"", PageHome},
		{"/home", PageHome},
		{"/index.html", PageHome},
		{"/watch", PageWatch},
		{"/watch/", PageWatch},
		{"/about.html", PageAbout},
		{"/blog", PageBlog},
		{"/blog-admin", PageBlogAdmin},
		{"/site/deep/watch", PageWatch},
		{"/something-else", PageUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PageFromPath(tc.path), tc.path)
	}
}

func TestIsMobileUA(t *testing.T) {
	mobile := []string{
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15",
		"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Mobile Safari/537.36",
		"Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)",
	}
	for _, ua := range mobile {
		assert.True(t, IsMobileUA(ua), ua)
	}

	desktop := []string{
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		"curl/8.0.1",
		"",
	}
	for _, ua := range desktop {
		assert.False(t, IsMobileUA(ua), ua)
	}
}
