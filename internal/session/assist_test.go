package session_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
	"github.com/pedrovi35/EduSync-Pro/internal/metrics"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

// scriptedGen returns reply or err and records every call.
type scriptedGen struct {
	reply   string
	err     error
	prompts []string
	models  []string
}

func (g *scriptedGen) Generate(_ context.Context, prompt, model string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	g.models = append(g.models, model)
	return g.reply, g.err
}

// ---------------------------------------------------------------------------
// GenerateFlashcards
// ---------------------------------------------------------------------------

func TestGenerateFlashcards_HappyPath(t *testing.T) {
	c := qt.New(t)

	m := metrics.New()
	s, b := openSession(t, session.Options{Metrics: m})
	gen := &scriptedGen{reply: "Question: What is ATP? | Answer: Energy currency\n" +
		"Here you go\n" +
		"Question: Where is DNA? | Answer: Nucleus"}

	out, err := s.GenerateFlashcards(context.Background(), gen, "mistral",
		"Cells store energy as ATP. Contact prof at bio.dept@uni.edu")
	c.Assert(err, qt.IsNil)
	c.Assert(out.Created, qt.Equals, 2)
	c.Assert(s.Snapshot.Flashcards, qt.HasLen, 3)
	c.Assert(s.Snapshot.Flashcards[1].Front, qt.Equals, "What is ATP?")
	c.Assert(s.Snapshot.Flashcards[2].Back, qt.Equals, "Nucleus")
	c.Assert(b.saves, qt.HasLen, 1)

	c.Assert(gen.models, qt.DeepEquals, []string{"mistral"})
	c.Assert(strings.Contains(gen.prompts[0], "Cells store energy as ATP."), qt.IsTrue)
	c.Assert(strings.Contains(gen.prompts[0], "bio.dept@uni.edu"), qt.IsFalse)
	c.Assert(strings.Contains(gen.prompts[0], "[REDACTED]"), qt.IsTrue)
	c.Assert(testutil.ToFloat64(m.AIRequests.WithLabelValues("mistral", "ok")), qt.Equals, 1.0)
}

func TestGenerateFlashcards_FailurePath(t *testing.T) {
	c := qt.New(t)

	c.Run("ai unavailable leaves snapshot untouched", func(c *qt.C) {
		m := metrics.New()
		s, b := openSession(c, session.Options{Metrics: m})
		before := clone(s.Snapshot)
		gen := &scriptedGen{err: apperr.NewUnavailableError("ollama", errors.New("connection refused"))}

		_, err := s.GenerateFlashcards(context.Background(), gen, "mistral", "some text")
		c.Assert(apperr.IsUnavailable(err), qt.IsTrue)
		c.Assert(clone(s.Snapshot), qt.DeepEquals, before)
		c.Assert(b.saves, qt.HasLen, 0)
		c.Assert(testutil.ToFloat64(m.AIRequests.WithLabelValues("mistral", "error")), qt.Equals, 1.0)
	})

	c.Run("plain errors become unavailable", func(c *qt.C) {
		s, _ := openSession(c, session.Options{})
		_, err := s.GenerateFlashcards(context.Background(), &scriptedGen{err: errors.New("boom")}, "mistral", "text")
		c.Assert(apperr.IsUnavailable(err), qt.IsTrue)
	})

	c.Run("no parsable lines carries the raw reply", func(c *qt.C) {
		s, b := openSession(c, session.Options{})
		gen := &scriptedGen{reply: "I am unable to help with that."}

		_, err := s.GenerateFlashcards(context.Background(), gen, "mistral", "some text")
		c.Assert(apperr.IsValidation(err), qt.IsTrue)
		c.Assert(apperr.GetAppError(err).Details["reply"], qt.Equals, "I am unable to help with that.")
		c.Assert(s.Snapshot.Flashcards, qt.HasLen, 1)
		c.Assert(b.saves, qt.HasLen, 0)
	})

	c.Run("empty text is rejected before calling the ai", func(c *qt.C) {
		s, _ := openSession(c, session.Options{})
		gen := &scriptedGen{reply: "Question: a | Answer: b"}

		_, err := s.GenerateFlashcards(context.Background(), gen, "mistral", "   ")
		c.Assert(apperr.IsValidation(err), qt.IsTrue)
		c.Assert(gen.prompts, qt.HasLen, 0)
	})
}

// ---------------------------------------------------------------------------
// Chat
// ---------------------------------------------------------------------------

func TestChat_HappyPath(t *testing.T) {
	c := qt.New(t)

	s, b := openSession(t, session.Options{})
	gen := &scriptedGen{reply: "Photosynthesis turns light into sugar."}

	reply, err := s.Chat(context.Background(), gen, "explain", "What is photosynthesis?")
	c.Assert(err, qt.IsNil)
	c.Assert(reply, qt.Equals, "Photosynthesis turns light into sugar.")
	c.Assert(gen.models, qt.DeepEquals, []string{"llama3:8b"})

	c.Assert(s.History("explain"), qt.DeepEquals, []session.ChatTurn{
		{Role: "user", Content: "What is photosynthesis?"},
		{Role: "assistant", Content: "Photosynthesis turns light into sugar."},
	})
	c.Assert(s.History("quick"), qt.HasLen, 0)
	c.Assert(b.saves, qt.HasLen, 0)
}

func TestChat_FailurePath(t *testing.T) {
	c := qt.New(t)

	c.Run("ai failure records an inline reply", func(c *qt.C) {
		s, _ := openSession(c, session.Options{})
		gen := &scriptedGen{err: apperr.NewUnavailableError("ollama", errors.New("timeout"))}

		_, err := s.Chat(context.Background(), gen, "quick", "hello")
		c.Assert(apperr.IsUnavailable(err), qt.IsTrue)
		c.Assert(s.History("quick"), qt.DeepEquals, []session.ChatTurn{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: session.UnavailableReply, Failed: true},
		})
	})

	c.Run("unknown mode", func(c *qt.C) {
		s, _ := openSession(c, session.Options{})
		_, err := s.Chat(context.Background(), &scriptedGen{}, "poetry", "hello")
		c.Assert(apperr.IsValidation(err), qt.IsTrue)
	})

	c.Run("empty prompt", func(c *qt.C) {
		s, _ := openSession(c, session.Options{})
		gen := &scriptedGen{}
		_, err := s.Chat(context.Background(), gen, "answer", " ")
		c.Assert(apperr.IsValidation(err), qt.IsTrue)
		c.Assert(gen.prompts, qt.HasLen, 0)
		c.Assert(s.History("answer"), qt.HasLen, 0)
	})

	c.Run("reset clears history", func(c *qt.C) {
		s, _ := openSession(c, session.Options{})
		_, err := s.Chat(context.Background(), &scriptedGen{reply: "hi"}, "answer", "hello")
		c.Assert(err, qt.IsNil)
		c.Assert(s.Reset(context.Background()), qt.IsNil)
		c.Assert(s.History("answer"), qt.HasLen, 0)
	})
}
