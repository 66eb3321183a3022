package ai

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pedrovi35/EduSync-Pro/internal/config"
)

// HealthTTL is how long a probe result is reused.
const HealthTTL = 30 * time.Second

// Health probes the inference backend and caches the answer for HealthTTL.
type Health struct {
	url     string
	headers map[string]string
	client  *http.Client
	now     func() time.Time

	mu      sync.Mutex
	checked time.Time
	ok      bool
	models  []string
}

// NewHealth returns a prober for the configured provider, or nil when the
// provider is disabled.
func NewHealth(cfg *config.Config) *Health {
	base := strings.TrimRight(cfg.AI.BaseURL, "/")
	h := &Health{
		client: &http.Client{Timeout: 2 * time.Second},
		now:    time.Now,
	}
	switch cfg.AI.Provider {
	case "ollama":
		if base == "" {
			base = "http://localhost:11434"
		}
		h.url = base + "/api/tags"
	case "openai", "openrouter":
		if cfg.AI.Provider == "openrouter" && (base == "" || base == config.Default().AI.BaseURL) {
			base = "https://openrouter.ai/api/v1"
		} else if base == "" || base == config.Default().AI.BaseURL {
			base = "https://api.openai.com/v1"
		}
		h.url = base + "/models"
		h.headers = map[string]string{"Authorization": "Bearer " + cfg.AI.APIKey}
	default:
		return nil
	}
	return h
}

// WithClock replaces the clock used for cache expiry.
func (h *Health) WithClock(now func() time.Time) *Health {
	h.now = now
	return h
}

// Check reports whether the backend answered its listing endpoint. Results
// are cached for HealthTTL. A nil Health is never healthy.
func (h *Health) Check(ctx context.Context) bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.checked.IsZero() && h.now().Sub(h.checked) < HealthTTL {
		return h.ok
	}

	var resp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	err := getJSON(ctx, h.client, h.url, h.headers, &resp)
	h.checked = h.now()
	h.ok = err == nil
	h.models = h.models[:0]
	if h.ok {
		for _, m := range resp.Models {
			h.models = append(h.models, m.Name)
		}
		for _, m := range resp.Data {
			h.models = append(h.models, m.ID)
		}
	}
	return h.ok
}

// Models returns the model names seen by the last successful probe.
func (h *Health) Models() []string {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.models))
	copy(out, h.models)
	return out
}

// HasModel reports whether model (with or without a :tag) was listed.
func (h *Health) HasModel(model string) bool {
	target := normalizeModelName(model)
	for _, m := range h.Models() {
		if normalizeModelName(m) == target {
			return true
		}
	}
	return false
}

// normalizeModelName strips the :tag suffix (e.g. "mistral:latest" → "mistral").
func normalizeModelName(name string) string {
	if idx := strings.IndexByte(name, ':'); idx >= 0 {
		return name[:idx]
	}
	return name
}
