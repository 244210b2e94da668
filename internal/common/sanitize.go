package common

import (
	"regexp"
	"strings"
)

// Domains whose iframes are allowed to survive sanitization.
// Everything else gets stripped.
var trustedIframeDomains = []string{
	"youtube.com",
	"youtube-nocookie.com",
	"vimeo.com",
	"player.vimeo.com",
	"soundcloud.com",
	"w.soundcloud.com",
	"tiktok.com",
}

var (
	dangerousTagRe = regexp.MustCompile(`(?i)<(script|object|embed|link|meta)[^>]*>`)
	iframeRe       = regexp.MustCompile(`(?i)<iframe[^>]*src=["']([^"']+)["'][^>]*>`)
)

// SanitizeContent strips dangerous HTML from user-authored post content
// while keeping iframe embeds from trusted providers.
func SanitizeContent(content string) string {
	if content == "" {
		return ""
	}

	content = dangerousTagRe.ReplaceAllString(content, "")

	content = iframeRe.ReplaceAllStringFunc(content, func(tag string) string {
		m := iframeRe.FindStringSubmatch(tag)
		if len(m) < 2 {
			return ""
		}
		src := m[1]
		for _, domain := range trustedIframeDomains {
			if strings.Contains(src, domain) {
				return tag
			}
		}
		return ""
	})

	return strings.TrimSpace(content)
}
