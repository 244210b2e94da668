package editor

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidVideoURL means the media dialog got something that is not a
// recognizable YouTube watch, share, or shorts URL
var ErrInvalidVideoURL = errors.New("not a valid YouTube video URL")

var youtubeIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)

// roundTemplate is the fixed day-post scaffold the template button inserts
const roundTemplate = `<h2>Day %d</h2>
<p><strong>Course:</strong> %s</p>
<p><strong>Par:</strong> %d &middot; <strong>Strokes:</strong> %d</p>
<p>How it went:</p>
<p></p>`

// InsertRoundTemplate splices the standard daily-round scaffold into the
// document at the cursor
func (c *Controller) InsertRoundTemplate(day int, course string, par, strokes int) error {
	frag := fmt.Sprintf(roundTemplate, day, html.EscapeString(course), par, strokes)
	return c.InsertFragment(frag)
}

// InsertYouTube validates the URL, normalizes it to an embed URL and
// splices a responsive iframe into the document
func (c *Controller) InsertYouTube(rawURL string) error {
	if c.active == nil {
		return ErrNoInstance
	}
	embedURL, err := YouTubeEmbedURL(rawURL)
	if err != nil {
		return err
	}
	frag := fmt.Sprintf(
		`<div class="video-embed"><iframe src="%s" frameborder="0" allowfullscreen></iframe></div>`,
		embedURL)
	return c.InsertFragment(frag)
}

// InsertImage splices an img tag for an already-uploaded image into the
// document at the cursor
func (c *Controller) InsertImage(src, alt string) error {
	if c.active == nil {
		return ErrNoInstance
	}
	if strings.TrimSpace(src) == "" {
		return errors.New("image URL is empty")
	}
	frag := fmt.Sprintf(`<img src="%s" alt="%s">`,
		html.EscapeString(src), html.EscapeString(alt))
	return c.InsertFragment(frag)
}

// YouTubeEmbedURL converts watch, youtu.be and shorts URLs into the
// canonical embed form
func YouTubeEmbedURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", ErrInvalidVideoURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidVideoURL
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	var id string
	switch host {
	case "youtube.com", "youtube-nocookie.com", "m.youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		}
	case "youtu.be":
		id = strings.TrimPrefix(u.Path, "/")
	default:
		return "", ErrInvalidVideoURL
	}

	id = strings.Trim(id, "/")
	if !youtubeIDRe.MatchString(id) {
		return "", ErrInvalidVideoURL
	}
	return "https://www.youtube.com/embed/" + id, nil
}
