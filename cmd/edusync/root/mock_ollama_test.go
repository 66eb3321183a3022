package rootcmd_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newOllamaMockServer starts a test HTTP server that mimics the Ollama API.
// It responds to:
//   - GET /api/tags lists models
//   - POST /api/chat streams reply as a single finished NDJSON line
//
// Cleanup is registered on tb automatically.
func newOllamaMockServer(tb testing.TB, reply string, models ...string) *httptest.Server {
	tb.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		list := make([]map[string]string, 0, len(models))
		for _, m := range models {
			list = append(list, map[string]string{"name": m})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"models": list})
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/x-ndjson")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":      req.Model,
			"created_at": "2024-01-01T00:00:00Z",
			"message":    map[string]string{"role": "assistant", "content": reply},
			"done":       true,
		})
	})

	srv := httptest.NewServer(mux)
	tb.Cleanup(srv.Close)
	return srv
}
