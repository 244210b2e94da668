package web

import (
	"context"
	"fmt"
	"html/template"
	"sync"

	"github.com/minigolfeveryday/mged-site/internal/domain"
	wembed "github.com/minigolfeveryday/mged-site/internal/embed"
)

// embedRenderer caches terminal embed markup per video so page loads
// don't re-run the provider cycle for videos already resolved. When a
// cycle is refused (one already in flight) or a node stays pending, the
// card falls back to a plain outbound link for this render only; the
// next load tries again.
type embedRenderer struct {
	rec   *wembed.Reconciler
	mu    sync.RWMutex
	cache map[string]string
}

func newEmbedRenderer(rec *wembed.Reconciler) *embedRenderer {
	return &embedRenderer{rec: rec, cache: make(map[string]string)}
}

// renderAll returns embed markup for every video, resolving uncached
// ones through one reconciler cycle
func (e *embedRenderer) renderAll(ctx context.Context, videos []domain.Video) map[string]template.HTML {
	out := make(map[string]template.HTML, len(videos))

	e.mu.RLock()
	var misses []domain.Video
	for _, v := range videos {
		if html, ok := e.cache[v.VideoID]; ok {
			out[v.VideoID] = template.HTML(html)
		} else {
			misses = append(misses, v)
		}
	}
	e.mu.RUnlock()

	if len(misses) == 0 {
		return out
	}

	nodes := make([]*wembed.Node, len(misses))
	for i, v := range misses {
		nodes[i] = wembed.NewNode(v.VideoID, v.URL, v.Title, "")
	}
	e.rec.Run(ctx, nodes)

	e.mu.Lock()
	for i, v := range misses {
		if nodes[i].Terminal() {
			e.cache[v.VideoID] = nodes[i].Content()
			out[v.VideoID] = template.HTML(nodes[i].Content())
		} else {
			out[v.VideoID] = linkCard(v)
		}
	}
	e.mu.Unlock()

	return out
}

// linkCard is the plain outbound card shown while an embed is unresolved
func linkCard(v domain.Video) template.HTML {
	return template.HTML(fmt.Sprintf(
		`<div class="embed-pending"><a href="%s" target="_blank" rel="noopener noreferrer">🎥 Watch on TikTok</a></div>`,
		template.HTMLEscapeString(v.URL)))
}
