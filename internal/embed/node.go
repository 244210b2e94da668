// Package embed turns tagged placeholder nodes into working third-party
// video embeds and guarantees every node ends in a terminal,
// non-flickering state. The provider renders asynchronously and is not
// ours, so the reconciler classifies each node's markup after a settle
// delay instead of trusting any callback.
package embed

import (
	"errors"
	"strings"
)

// State classifies a node's embed lifecycle
type State string

// Node states. Success and Fallback are terminal.
const (
	StateUnprocessed State = "unprocessed"
	StateSuccess     State = "success"
	StateFallback    State = "fallback"
)

// ErrTerminal the node already reached a terminal state and refuses writes
var ErrTerminal = errors.New("embed node is terminal")

// Markup the provider injects on a successful render. Either the player
// frame itself or the processed wrapper the renderer adds.
const processedMarker = `data-embed="processed"`

// minPlaceholderText is the smallest visible-text length that still
// counts as a meaningful placeholder (title plus outbound links).
const minPlaceholderText = 20

// Node is one embed placeholder, tagged with the video it should render.
// Content writes go through SetContent so a terminal node can never be
// overwritten, which replaces the old mutation-observer workaround.
type Node struct {
	VideoID string
	URL     string
	Title   string

	state   State
	content string
}

// NewNode creates an unprocessed node with its initial placeholder markup
func NewNode(videoID, url, title, placeholder string) *Node {
	return &Node{
		VideoID: videoID,
		URL:     url,
		Title:   title,
		state:   StateUnprocessed,
		content: placeholder,
	}
}

// State returns the node's classification
func (n *Node) State() State {
	return n.state
}

// Terminal reports whether the node may never change again
func (n *Node) Terminal() bool {
	return n.state == StateSuccess || n.state == StateFallback
}

// Content returns the node's current markup
func (n *Node) Content() string {
	return n.content
}

// SetContent replaces the node's markup. Refused once terminal.
func (n *Node) SetContent(html string) error {
	if n.Terminal() {
		return ErrTerminal
	}
	n.content = html
	return nil
}

// markSuccess pins the node as successfully embedded
func (n *Node) markSuccess() {
	n.state = StateSuccess
}

// markFallback replaces the content with the fallback card and pins the
// node. Bypasses SetContent deliberately: this is the one legal final write.
func (n *Node) markFallback(card string) {
	if n.Terminal() {
		return
	}
	n.content = card
	n.state = StateFallback
}

// hasPlayerMarkup detects the structural marker a successful render
// injects into the node
func (n *Node) hasPlayerMarkup() bool {
	return strings.Contains(n.content, "<iframe") ||
		strings.Contains(n.content, processedMarker)
}

// hasMeaningfulPlaceholder reports whether the node still shows usable
// placeholder content (title text and outbound links). Such nodes are
// left alone rather than clobbered with a fallback.
func (n *Node) hasMeaningfulPlaceholder() bool {
	return len(strings.TrimSpace(stripTags(n.content))) >= minPlaceholderText
}

// stripTags removes markup so only visible text length is judged
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
