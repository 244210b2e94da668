package embed

import (
	"context"
	"fmt"
	"html/template"
	"sync/atomic"
	"time"

	"github.com/minigolfeveryday/mged-site/pkg/logger"
)

// Provider is the third-party embed integration: a one-time script load,
// a readiness check for its processing entry point, and per-node
// rendering of player markup.
type Provider interface {
	LoadScript(ctx context.Context) error
	Ready(ctx context.Context) bool
	Render(ctx context.Context, node *Node) (string, error)
}

// Config tunes a Reconciler
type Config struct {
	// Hostname of the serving site; dev hosts skip embedding entirely.
	Hostname string
	// SettleDelay waited after processing before classification, because
	// the provider renders asynchronously.
	SettleDelay time.Duration
	// PollInterval between readiness checks.
	PollInterval time.Duration
	// MaxPollAttempts bounds the readiness wait.
	MaxPollAttempts int
	// FallbackCard renders the static card for a failed node.
	FallbackCard func(node *Node) string
}

// DefaultConfig returns the tuning the production site runs with
func DefaultConfig(hostname string) Config {
	return Config{
		Hostname:        hostname,
		SettleDelay:     3 * time.Second,
		PollInterval:    500 * time.Millisecond,
		MaxPollAttempts: 20,
		FallbackCard:    defaultFallbackCard,
	}
}

// Reconciler drives one provider through inject -> ready -> process ->
// settle -> classify cycles. A cycle that fails anywhere ends silently:
// nodes keep whatever state they had, and only an explicit re-run tries
// again. Classification only ever narrows a node toward a terminal
// state, so a late classify pass racing a fresh cycle is harmless.
type Reconciler struct {
	provider Provider
	cfg      Config
	loading  atomic.Bool
}

// NewReconciler creates a Reconciler over the given provider
func NewReconciler(provider Provider, cfg Config) *Reconciler {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 3 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = 20
	}
	if cfg.FallbackCard == nil {
		cfg.FallbackCard = defaultFallbackCard
	}
	return &Reconciler{provider: provider, cfg: cfg}
}

// Run executes one full reconciliation cycle over the given nodes.
// Errors are logged, never returned: embed failure must not take a page
// down, and a fallback is only applied to nodes that are genuinely dead
// after the settle delay.
func (r *Reconciler) Run(ctx context.Context, nodes []*Node) {
	log := logger.WithComponent("embed")

	if IsDevHost(r.cfg.Hostname) {
		log.Debug().Str("hostname", r.cfg.Hostname).Msg("dev host, skipping embed processing")
		return
	}

	// Single-flight: overlapping injection cycles are refused. A classify
	// pass from an earlier cycle may still land; that is fine because it
	// can only narrow node state.
	if !r.loading.CompareAndSwap(false, true) {
		log.Debug().Msg("embed cycle already in flight")
		return
	}
	defer r.loading.Store(false)

	if err := r.provider.LoadScript(ctx); err != nil {
		log.Warn().Err(err).Msg("embed script load failed")
		return
	}

	if err := r.awaitReady(ctx); err != nil {
		// Conservative: exhausting the wait ends the cycle without
		// touching any node. A late-arriving success must not be
		// clobbered by a premature fallback.
		log.Warn().Err(err).Msg("embed processing entry point never became ready")
		return
	}

	r.process(ctx, nodes)

	select {
	case <-time.After(r.cfg.SettleDelay):
	case <-ctx.Done():
		log.Debug().Msg("embed cycle cancelled while settling")
		return
	}

	r.Classify(nodes)
}

// awaitReady polls the provider's entry point a bounded number of
// times. Each probe may itself take a while (an HTTP round-trip), so
// the bound is the attempt count alone; a hard deadline, if any, comes
// in on the caller's context.
func (r *Reconciler) awaitReady(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < r.cfg.MaxPollAttempts; attempt++ {
		if r.provider.Ready(ctx) {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("not ready after %d attempts", r.cfg.MaxPollAttempts)
}

// process invokes the provider's rendering on every non-terminal node
func (r *Reconciler) process(ctx context.Context, nodes []*Node) {
	log := logger.WithComponent("embed")

	for _, node := range nodes {
		if node.Terminal() {
			continue
		}
		html, err := r.provider.Render(ctx, node)
		if err != nil {
			// Leave the placeholder; classification decides later.
			log.Debug().Err(err).Str("video_id", node.VideoID).Msg("embed render failed")
			continue
		}
		if err := node.SetContent(html); err != nil {
			log.Debug().Str("video_id", node.VideoID).Msg("refused write to terminal node")
		}
	}
}

// Classify runs the idempotent per-node classification pass. Terminal
// nodes are never revisited; pending nodes are left untouched until an
// explicit later pass.
func (r *Reconciler) Classify(nodes []*Node) {
	log := logger.WithComponent("embed")

	for _, node := range nodes {
		if node.Terminal() {
			continue
		}
		switch {
		case node.hasPlayerMarkup():
			node.markSuccess()
		case node.hasMeaningfulPlaceholder():
			// Pending: partial placeholder, no player yet. No reschedule
			// here; re-scan happens on the next explicit cycle.
		default:
			node.markFallback(r.cfg.FallbackCard(node))
			log.Info().Str("video_id", node.VideoID).Msg("embed failed, fallback card applied")
		}
	}
}

// IsDevHost reports whether embeds should be skipped for this hostname.
// The provider's script is known not to function on local hosting.
func IsDevHost(hostname string) bool {
	return hostname == "" || hostname == "localhost" || hostname == "127.0.0.1"
}

// defaultFallbackCard is the static brand card linking out to the
// original video. The URL and id come from the feed pull or the legacy
// import, so they are escaped before landing in cached markup.
func defaultFallbackCard(node *Node) string {
	return fmt.Sprintf(`<div class="embed-fallback" data-video-id="%s">
  <div class="embed-fallback-brand">⛳</div>
  <h3>Mini Golf Every Day</h3>
  <p>Watch this one on TikTok instead.</p>
  <a href="%s" target="_blank" rel="noopener noreferrer">🎥 Watch on TikTok</a>
  <p class="embed-fallback-handle">@minigolfeveryday</p>
</div>`, template.HTMLEscapeString(node.VideoID), template.HTMLEscapeString(node.URL))
}
