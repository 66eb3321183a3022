package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pedrovi35/EduSync-Pro/internal/ai"
	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
)

// UnavailableReply is shown in the chat when the AI backend fails.
const UnavailableReply = "Could not reach the AI service. Check that it is running and try again."

// ChatTurn is one message of an assistant conversation.
type ChatTurn struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
	Failed  bool   `json:"failed,omitempty"`
}

// History returns the conversation held for mode. Histories live only as
// long as the session.
func (s *Session) History(mode string) []ChatTurn {
	return append([]ChatTurn(nil), s.chats[mode]...)
}

// Chat sends prompt to the model bound to mode and records both turns. On AI
// failure an explanatory assistant turn is recorded and the error returned;
// the snapshot is never touched.
func (s *Session) Chat(ctx context.Context, gen ai.Generator, mode, prompt string) (string, error) {
	m, ok := ai.LookupMode(mode)
	if !ok {
		return "", apperr.NewValidationError("unknown assistant mode " + mode)
	}
	prompt, err := required("prompt", prompt)
	if err != nil {
		return "", err
	}

	s.chats[m.Key] = append(s.chats[m.Key], ChatTurn{Role: "user", Content: prompt})
	reply, err := s.generate(ctx, gen, s.clean(prompt), m.Model)
	if err != nil {
		s.chats[m.Key] = append(s.chats[m.Key], ChatTurn{Role: "assistant", Content: UnavailableReply, Failed: true})
		return "", err
	}
	s.chats[m.Key] = append(s.chats[m.Key], ChatTurn{Role: "assistant", Content: reply})
	return reply, nil
}

// GenerateFlashcards asks model for flashcards about text and adds every
// parsable card as one batch. When the reply holds no usable line the
// Validation error carries the raw reply under Details["reply"].
func (s *Session) GenerateFlashcards(ctx context.Context, gen ai.Generator, model, text string) (Outcome, error) {
	text, err := required("text", text)
	if err != nil {
		return Outcome{}, err
	}
	reply, err := s.generate(ctx, gen, ai.FlashcardPrompt(s.clean(text)), model)
	if err != nil {
		return Outcome{}, err
	}
	cards := ai.ParseFlashcards(reply)
	if len(cards) == 0 {
		s.logger.Warn("ai reply had no flashcards", zap.String("model", model), zap.Int("reply_len", len(reply)))
		return Outcome{}, apperr.NewValidationError("the AI did not return flashcards in the expected format, try again").
			WithDetails(map[string]any{"reply": reply})
	}
	return s.Execute(ctx, AddFlashcards(cards))
}

func (s *Session) generate(ctx context.Context, gen ai.Generator, prompt, model string) (string, error) {
	start := time.Now()
	reply, err := gen.Generate(ctx, prompt, model)
	s.metrics.ObserveAI(model, time.Since(start), err)
	if err != nil {
		if apperr.GetAppError(err) == nil {
			err = apperr.NewUnavailableError("ai", err)
		}
		return "", err
	}
	return reply, nil
}

func (s *Session) clean(text string) string {
	out, n := s.sanitizer.Clean(text)
	if n > 0 {
		s.logger.Info("redacted text before sending to ai", zap.Int("spans", n))
	}
	return out
}
