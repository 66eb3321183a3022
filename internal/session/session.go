// Package session holds the state of one active user and applies every
// user action as a command: the mutation and the save that must follow it.
//
// A Session is not safe for concurrent use; callers serialise access.
package session

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pedrovi35/EduSync-Pro/internal/metrics"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
	"github.com/pedrovi35/EduSync-Pro/internal/progression"
	"github.com/pedrovi35/EduSync-Pro/internal/redaction"
	"github.com/pedrovi35/EduSync-Pro/internal/store"
)

// Options carries the optional collaborators of a Session.
type Options struct {
	Clock     func() time.Time
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	Sanitizer *redaction.Sanitizer
}

// Session is the explicit per-user context passed to every action.
type Session struct {
	Identity string
	Snapshot *models.Snapshot

	backend   store.Backend
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics
	sanitizer *redaction.Sanitizer
	chats     map[string][]ChatTurn
}

// Open loads the snapshot for identity. When nothing is stored yet the
// session starts from first-run defaults without saving them.
func Open(ctx context.Context, backend store.Backend, identity string, opts Options) (*Session, error) {
	s := &Session{
		Identity:  identity,
		backend:   backend,
		now:       opts.Clock,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		sanitizer: opts.Sanitizer,
		chats:     map[string][]ChatTurn{},
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.sanitizer == nil {
		s.sanitizer = redaction.New()
	}

	snap, err := backend.Load(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("session.Open: %w", err)
	}
	if snap == nil {
		s.logger.Info("no saved progress, starting fresh", zap.String("identity", identity))
		snap = models.NewSnapshot(s.now())
	}
	s.Snapshot = snap
	return s, nil
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time { return s.now() }

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

// Outcome reports what a command did.
type Outcome struct {
	// Changed is false for no-ops; nothing is saved then.
	Changed bool
	// ID of the entity a command created, if any.
	ID        string
	Created   int
	Event     progression.EventKind
	XPAwarded int
	LevelUps  []progression.LevelUp
	Unlocks   []progression.Achievement
	Message   string
}

// Command bundles a state mutation with its name. Execute adds the save.
type Command struct {
	Name  string
	Apply func(*Session) (Outcome, error)
}

// Execute applies cmd and, when it changed anything, saves the snapshot
// before returning. A failed save is returned as an error but the in-memory
// mutation stays applied, so a retry of the save is enough.
func (s *Session) Execute(ctx context.Context, cmd Command) (Outcome, error) {
	out, err := cmd.Apply(s)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	if !out.Changed {
		return out, nil
	}
	if err := progression.CheckInvariants(&s.Snapshot.UserProgress); err != nil {
		s.logger.DPanic("progression invariant violated", zap.String("command", cmd.Name), zap.Error(err))
	}

	if err := s.Save(ctx); err != nil {
		return out, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	s.observe(cmd.Name, out)
	return out, nil
}

// Save writes the current snapshot through the backend.
func (s *Session) Save(ctx context.Context) error {
	start := time.Now()
	err := s.backend.Save(ctx, s.Identity, s.Snapshot)
	s.metrics.ObserveSave(time.Since(start), err)
	if err != nil {
		s.logger.Error("save failed", zap.String("identity", s.Identity), zap.Error(err))
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Reset deletes the stored snapshot and returns the session to first-run
// defaults. Chat history is cleared too.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.backend.Reset(ctx, s.Identity); err != nil {
		return fmt.Errorf("session.Reset: %w", err)
	}
	s.Snapshot = models.NewSnapshot(s.now())
	s.chats = map[string][]ChatTurn{}
	s.logger.Info("progress reset", zap.String("identity", s.Identity))
	return nil
}

func (s *Session) observe(name string, out Outcome) {
	s.metrics.ObserveXP(out.XPAwarded, len(out.LevelUps))
	switch out.Event {
	case progression.EventTaskCompleted:
		s.metrics.ObserveTaskCompleted()
	case progression.EventPomodoroCompleted:
		s.metrics.ObservePomodoro()
	case progression.EventFlashcardCreated:
		s.metrics.ObserveFlashcards(out.Created)
	}

	for _, up := range out.LevelUps {
		s.logger.Info("level up", zap.Int("level", up.To), zap.String("rank", up.Name))
	}
	for _, a := range out.Unlocks {
		s.metrics.ObserveUnlock(a.ID)
		s.logger.Info("achievement unlocked", zap.String("achievement", a.ID))
	}
	s.logger.Debug("command applied", zap.String("command", name), zap.Int("xp", s.Snapshot.XP))
}
