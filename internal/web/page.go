package web

import (
	"regexp"
	"strings"
)

// Page identifies which view a request resolves to
type Page string

// Site pages
const (
	PageHome      Page = "home"
	PageWatch     Page = "watch"
	PageAbout     Page = "about"
	PageBlog      Page = "blog"
	PageBlogAdmin Page = "blog-admin"
	PageUnknown   Page = "unknown"
)

// PageFromPath resolves the page from the last URL segment. The root and
// an explicit /home or /index both land on home.
func PageFromPath(path string) Page {
	path = strings.TrimSuffix(path, "/")
	last := path[strings.LastIndex(path, "/")+1:]
	last = strings.TrimSuffix(last, ".html")

	switch last {
	case "", "home", "index":
		return PageHome
	case "watch":
		return PageWatch
	case "about":
		return PageAbout
	case "blog":
		return PageBlog
	case "blog-admin":
		return PageBlogAdmin
	default:
		return PageUnknown
	}
}

var mobileUARe = regexp.MustCompile(`(?i)mobile|android|iphone|ipad|ipod|opera mini|iemobile`)

// IsMobileUA reports whether the user agent looks like a phone or
// tablet. Mobile clients get shorter admin operation timeouts since
// their radios drop long-held connections.
func IsMobileUA(userAgent string) bool {
	return mobileUARe.MatchString(userAgent)
}
