package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/pedrovi35/EduSync-Pro/internal/ai"
	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
	"github.com/pedrovi35/EduSync-Pro/internal/config"
)

// newOllamaChatServer starts a test server answering /api/chat with reply and
// recording the model each request asked for.
func newOllamaChatServer(t *testing.T, reply string, models *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if models != nil {
			*models = append(*models, req.Model)
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":      req.Model,
			"created_at": "2024-01-01T00:00:00Z",
			"message":    map[string]string{"role": "assistant", "content": reply},
			"done":       true,
		})
	}))
}

func ollamaConfig(url string) *config.Config {
	cfg := config.Default()
	cfg.AI.BaseURL = url
	cfg.AI.Timeout = 2 * time.Second
	return cfg
}

// ---------------------------------------------------------------------------
// NewGenerator
// ---------------------------------------------------------------------------

func TestNewGenerator_HappyPath(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		name     string
		provider string
		apiKey   string
	}{
		{"ollama", "ollama", ""},
		{"openai", "openai", "sk-test"},
		{"openrouter", "openrouter", "or-test"},
		{"none", "none", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			cfg := config.Default()
			cfg.AI.Provider = tt.provider
			cfg.AI.APIKey = tt.apiKey
			g, err := ai.NewGenerator(cfg, nil)
			c.Assert(err, qt.IsNil)
			c.Assert(g, qt.IsNotNil)
		})
	}
}

func TestNewGenerator_FailurePath(t *testing.T) {
	c := qt.New(t)

	cfg := config.Default()
	cfg.AI.Provider = "watson"
	_, err := ai.NewGenerator(cfg, nil)
	c.Assert(err, qt.ErrorMatches, "unknown ai provider: watson")
}

// ---------------------------------------------------------------------------
// Generate
// ---------------------------------------------------------------------------

func TestGenerate_HappyPath(t *testing.T) {
	c := qt.New(t)

	var models []string
	srv := newOllamaChatServer(t, "  Paris is the capital.\n", &models)
	defer srv.Close()

	g, err := ai.NewGenerator(ollamaConfig(srv.URL), nil)
	c.Assert(err, qt.IsNil)

	out, err := g.Generate(context.Background(), "Capital of France?", "mistral")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Equals, "Paris is the capital.")

	_, err = g.Generate(context.Background(), "Explain", "llama3:8b")
	c.Assert(err, qt.IsNil)
	c.Assert(models, qt.DeepEquals, []string{"mistral", "llama3:8b"})
}

func TestGenerate_FailurePath(t *testing.T) {
	c := qt.New(t)

	c.Run("server error is unavailable", func(c *qt.C) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"model not loaded"}` + "\n"))
		}))
		defer srv.Close()

		g, err := ai.NewGenerator(ollamaConfig(srv.URL), nil)
		c.Assert(err, qt.IsNil)
		_, err = g.Generate(context.Background(), "hi", "mistral")
		c.Assert(apperr.IsUnavailable(err), qt.IsTrue)
	})

	c.Run("unreachable backend is unavailable", func(c *qt.C) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		g, err := ai.NewGenerator(ollamaConfig(url), nil)
		c.Assert(err, qt.IsNil)
		_, err = g.Generate(context.Background(), "hi", "mistral")
		c.Assert(apperr.IsUnavailable(err), qt.IsTrue)
	})

	c.Run("slow backend times out", func(c *qt.C) {
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		cfg := ollamaConfig(srv.URL)
		cfg.AI.Timeout = 50 * time.Millisecond
		g, err := ai.NewGenerator(cfg, nil)
		c.Assert(err, qt.IsNil)

		start := time.Now()
		_, err = g.Generate(context.Background(), "hi", "mistral")
		c.Assert(apperr.IsUnavailable(err), qt.IsTrue)
		c.Assert(time.Since(start) < time.Second, qt.IsTrue)
	})

	c.Run("blank reply is unavailable", func(c *qt.C) {
		srv := newOllamaChatServer(t, "   ", nil)
		defer srv.Close()

		g, err := ai.NewGenerator(ollamaConfig(srv.URL), nil)
		c.Assert(err, qt.IsNil)
		_, err = g.Generate(context.Background(), "hi", "mistral")
		c.Assert(apperr.IsUnavailable(err), qt.IsTrue)
	})

	c.Run("disabled provider is unavailable", func(c *qt.C) {
		_, err := ai.Disabled{}.Generate(context.Background(), "hi", "mistral")
		c.Assert(apperr.IsUnavailable(err), qt.IsTrue)
		c.Assert(err, qt.ErrorIs, ai.ErrDisabled)
	})
}

// ---------------------------------------------------------------------------
// Modes
// ---------------------------------------------------------------------------

func TestModes(t *testing.T) {
	c := qt.New(t)

	want := map[string]string{
		"summarize": "gemma:2b",
		"answer":    "mistral",
		"explain":   "llama3:8b",
		"quick":     "phi3:mini",
	}
	c.Assert(ai.Modes, qt.HasLen, len(want))
	for key, model := range want {
		m, ok := ai.LookupMode(key)
		c.Assert(ok, qt.IsTrue)
		c.Assert(m.Model, qt.Equals, model)
		c.Assert(m.Label, qt.Not(qt.Equals), "")
	}

	_, ok := ai.LookupMode("poetry")
	c.Assert(ok, qt.IsFalse)
}
