// Package ai talks to the inference backend used for study assistance and
// flashcard generation.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
	"github.com/pedrovi35/EduSync-Pro/internal/config"
)

// Generator produces text for a prompt with the named model.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// ErrDisabled is the cause reported when no AI provider is configured.
var ErrDisabled = errors.New("ai provider disabled")

// NewGenerator constructs a Generator from the given config.
// Provider "" or "none" yields a generator that always fails with
// ResourceUnavailable.
func NewGenerator(cfg *config.Config, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.AI.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	switch cfg.AI.Provider {
	case "ollama":
		baseURL := cfg.AI.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		m, err := ollama.New(
			ollama.WithModel(cfg.AI.DefaultModel),
			ollama.WithServerURL(strings.TrimRight(baseURL, "/")),
			ollama.WithHTTPClient(client),
		)
		if err != nil {
			return nil, fmt.Errorf("ollama client: %w", err)
		}
		return NewLLM("ollama", m, timeout, logger), nil

	case "openai", "openrouter":
		baseURL := cfg.AI.BaseURL
		if cfg.AI.Provider == "openrouter" && (baseURL == "" || baseURL == config.Default().AI.BaseURL) {
			baseURL = "https://openrouter.ai/api/v1"
		}
		opts := []openai.Option{
			openai.WithToken(cfg.AI.APIKey),
			openai.WithModel(cfg.AI.DefaultModel),
			openai.WithHTTPClient(client),
		}
		if baseURL != "" && baseURL != config.Default().AI.BaseURL {
			opts = append(opts, openai.WithBaseURL(strings.TrimRight(baseURL, "/")))
		}
		m, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("openai client: %w", err)
		}
		return NewLLM(cfg.AI.Provider, m, timeout, logger), nil

	case "", "none":
		return Disabled{}, nil

	default:
		return nil, fmt.Errorf("unknown ai provider: %s", cfg.AI.Provider)
	}
}

// LLM adapts a langchaingo model to Generator.
type LLM struct {
	provider string
	model    llms.Model
	timeout  time.Duration
	logger   *zap.Logger
}

// NewLLM wraps model; every Generate call is bounded by timeout.
func NewLLM(provider string, model llms.Model, timeout time.Duration, logger *zap.Logger) *LLM {
	return &LLM{provider: provider, model: model, timeout: timeout, logger: logger}
}

// Generate sends prompt as a single user message. Transport failures and
// timeouts are reported as ResourceUnavailable.
func (l *LLM) Generate(ctx context.Context, prompt, model string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	out, err := llms.GenerateFromSinglePrompt(ctx, l.model, prompt, llms.WithModel(model))
	if err != nil {
		l.logger.Warn("ai generate failed",
			zap.String("provider", l.provider),
			zap.String("model", model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", apperr.NewUnavailableError(l.provider, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", apperr.NewUnavailableError(l.provider, errors.New("empty response from model"))
	}
	l.logger.Debug("ai generate",
		zap.String("provider", l.provider),
		zap.String("model", model),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// Disabled is the Generator used when no provider is configured.
type Disabled struct{}

// Generate always fails with ResourceUnavailable.
func (Disabled) Generate(context.Context, string, string) (string, error) {
	return "", apperr.NewUnavailableError("ai", ErrDisabled)
}
