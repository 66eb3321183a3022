// Package service wires configuration, logging, persistence, the AI
// collaborator and the active session for one study home.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/pedrovi35/EduSync-Pro/internal/ai"
	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
	"github.com/pedrovi35/EduSync-Pro/internal/config"
	"github.com/pedrovi35/EduSync-Pro/internal/db"
	"github.com/pedrovi35/EduSync-Pro/internal/logging"
	"github.com/pedrovi35/EduSync-Pro/internal/markdown"
	"github.com/pedrovi35/EduSync-Pro/internal/metrics"
	"github.com/pedrovi35/EduSync-Pro/internal/redaction"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
	"github.com/pedrovi35/EduSync-Pro/internal/store"
)

// Options tunes New.
type Options struct {
	// LogWriter receives log output; stderr when nil.
	LogWriter io.Writer
	// Identity overrides storage.identity from the config.
	Identity string
	// Password authenticates Identity when the backend manages accounts.
	Password string
}

// Service owns every long-lived collaborator of a study home.
type Service struct {
	Home      string
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	Generator ai.Generator
	Health    *ai.Health

	identity  string
	password  string
	backend   store.Backend
	sanitizer *redaction.Sanitizer

	mu   sync.Mutex
	sess *session.Session
}

// New initialises a Service rooted at home.
// If home is empty it is resolved via config.GetHome.
func New(home string, opts Options) (*Service, error) {
	if home == "" {
		home = config.GetHome()
	}
	if err := os.MkdirAll(home, 0o755); err != nil {
		return nil, fmt.Errorf("service.New: create home: %w", err)
	}

	cfg, err := config.Load(filepath.Join(home, "config.yaml"))
	if err != nil {
		return nil, fmt.Errorf("service.New: load config: %w", err)
	}

	var logOpts []zap.Option
	if cfg.Log.Development {
		logOpts = append(logOpts, zap.Development())
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, opts.LogWriter, logOpts...)
	if err != nil {
		return nil, fmt.Errorf("service.New: %w", err)
	}

	sanitizer, err := redaction.Load(filepath.Join(home, redaction.IgnoreFile))
	if err != nil {
		return nil, fmt.Errorf("service.New: %w", err)
	}

	gen, err := ai.NewGenerator(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("service.New: %w", err)
	}

	backend, err := store.Open(cfg, home, logger)
	if err != nil {
		return nil, fmt.Errorf("service.New: open store: %w", err)
	}

	identity := cfg.Storage.Identity
	if opts.Identity != "" {
		identity = opts.Identity
	}

	return &Service{
		Home:      home,
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics.New(),
		Generator: gen,
		Health:    ai.NewHealth(cfg),
		identity:  identity,
		password:  opts.Password,
		backend:   backend,
		sanitizer: sanitizer,
	}, nil
}

// Close releases the backend and flushes the logger.
func (s *Service) Close() error {
	_ = s.Logger.Sync()
	return s.backend.Close()
}

// Identity returns the snapshot name or account email sessions open with.
func (s *Service) Identity() string { return s.identity }

// Session returns the active session, loading it on first use. With the
// sqlite backend the identity must authenticate first.
func (s *Service) Session(ctx context.Context) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess != nil {
		return s.sess, nil
	}
	if accounts, ok := s.backend.(store.Accounts); ok {
		if _, err := accounts.Authenticate(ctx, s.identity, s.password); err != nil {
			return nil, fmt.Errorf("service.Session: %w", err)
		}
	}
	sess, err := session.Open(ctx, s.backend, s.identity, session.Options{
		Logger:    s.Logger,
		Metrics:   s.Metrics,
		Sanitizer: s.sanitizer,
	})
	if err != nil {
		return nil, err
	}
	s.sess = sess
	return sess, nil
}

// Register creates an account. Only the sqlite backend manages accounts.
func (s *Service) Register(ctx context.Context, name, email, password string) (*db.Account, error) {
	accounts, ok := s.backend.(store.Accounts)
	if !ok {
		return nil, apperr.NewValidationError("accounts need the sqlite backend (storage.backend: sqlite)")
	}
	acct, err := accounts.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("account registered", zap.String("email", acct.Email))
	return acct, nil
}

// Export writes the session snapshot as markdown under <home>/exports.
func (s *Service) Export(ctx context.Context) (string, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return "", err
	}
	path, err := markdown.WriteExport(filepath.Join(s.Home, "exports"), sess.Snapshot, sess.Now())
	if err != nil {
		return "", fmt.Errorf("Export: %w", err)
	}
	return path, nil
}
