package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"
)

const (
	defaultScriptURL = "https://www.tiktok.com/embed.js"
	oembedEndpoint   = "https://www.tiktok.com/oembed"
)

// TikTokProvider resolves embed markup through TikTok's oEmbed endpoint.
// Script "injection" is an availability probe of the embed script: if the
// script cannot be fetched, browsers will not be able to hydrate the
// embeds either, and the cycle stops before touching any node.
type TikTokProvider struct {
	client    *http.Client
	scriptURL string
	ready     atomic.Bool
}

// NewTikTokProvider creates a provider; scriptURL falls back to the
// public embed.js when empty.
func NewTikTokProvider(client *http.Client, scriptURL string) *TikTokProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if scriptURL == "" {
		scriptURL = defaultScriptURL
	}
	return &TikTokProvider{client: client, scriptURL: scriptURL}
}

// LoadScript probes the embed script once per cycle
func (p *TikTokProvider) LoadScript(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.scriptURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("embed script fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embed script fetch: status %d", resp.StatusCode)
	}
	return nil
}

// Ready checks the oEmbed entry point. The result is sticky: once the
// endpoint answered, later polls are free.
func (p *TikTokProvider) Ready(ctx context.Context) bool {
	if p.ready.Load() {
		return true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oembedEndpoint, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	// Without a url param the endpoint answers 400, which still proves
	// it is up. Only transport failures and 5xx count as not ready.
	if resp.StatusCode >= 500 {
		return false
	}
	p.ready.Store(true)
	return true
}

type oembedResponse struct {
	HTML string `json:"html"`
}

// Render fetches the processed embed markup for one node
func (p *TikTokProvider) Render(ctx context.Context, node *Node) (string, error) {
	endpoint := fmt.Sprintf("%s?url=%s", oembedEndpoint, url.QueryEscape(node.URL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("oembed fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oembed fetch: status %d", resp.StatusCode)
	}

	var body oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("oembed decode: %w", err)
	}
	if body.HTML == "" {
		return "", fmt.Errorf("oembed returned no markup for %s", node.VideoID)
	}

	return fmt.Sprintf(`<div class="tiktok-player" %s>%s</div>`, processedMarker, body.HTML), nil
}
