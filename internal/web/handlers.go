package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

type profileRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type taskRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

type moveRequest struct {
	Status string `json:"status" validate:"required,oneof=todo doing done"`
}

type cardRequest struct {
	Front string `json:"front" validate:"required,max=1000"`
	Back  string `json:"back" validate:"required,max=4000"`
}

type generateRequest struct {
	Text string `json:"text" validate:"required,max=20000"`
}

type notesRequest struct {
	Notes string `json:"notes" validate:"max=100000"`
}

type eventRequest struct {
	Title  string     `json:"title" validate:"required,max=200"`
	Start  time.Time  `json:"start"`
	End    *time.Time `json:"end"`
	AllDay bool       `json:"all_day"`
}

type chatRequest struct {
	Mode   string `json:"mode" validate:"required,oneof=summarize answer explain quick"`
	Prompt string `json:"prompt" validate:"required,max=20000"`
}

type chatResponse struct {
	Mode  string `json:"mode"`
	Reply string `json:"reply"`
	Error string `json:"error,omitempty"`
}

type statusResponse struct {
	Online bool     `json:"online"`
	Models []string `json:"models"`
}

// run executes cmd against the session and writes the outcome.
func (s *Server) run(w http.ResponseWriter, r *http.Request, status int, cmd session.Command) {
	out, err := s.sess.Execute(r.Context(), cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, envelope{Outcome: newOutcomeView(out)})
}

func (s *Server) postProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.run(w, r, http.StatusOK, session.SetName(req.Name))
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

func (s *Server) postTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.run(w, r, http.StatusCreated, session.AddTask(req.Content))
}

func (s *Server) moveTask(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.run(w, r, http.StatusOK, session.MoveTask(chi.URLParam(r, "id"), models.Status(req.Status)))
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, http.StatusOK, session.DeleteTask(chi.URLParam(r, "id")))
}

// ---------------------------------------------------------------------------
// Flashcards
// ---------------------------------------------------------------------------

func (s *Server) postFlashcard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.run(w, r, http.StatusCreated, session.AddFlashcard(req.Front, req.Back))
}

func (s *Server) generateFlashcards(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.sess.GenerateFlashcards(r.Context(), s.gen, s.flashcardModel, req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Outcome: newOutcomeView(out)})
}

func (s *Server) deleteFlashcard(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, http.StatusOK, session.DeleteFlashcard(chi.URLParam(r, "id")))
}

// ---------------------------------------------------------------------------
// Tools
// ---------------------------------------------------------------------------

func (s *Server) completePomodoro(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, http.StatusOK, session.CompletePomodoro())
}

func (s *Server) putNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.run(w, r, http.StatusOK, session.UpdateNotes(req.Notes))
}

func (s *Server) postEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.run(w, r, http.StatusCreated, session.AddCalendarEvent(req.Title, req.Start, req.End, req.AllDay))
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, http.StatusOK, session.DeleteCalendarEvent(chi.URLParam(r, "id")))
}

// ---------------------------------------------------------------------------
// Assistant
// ---------------------------------------------------------------------------

// chat answers 200 even when the AI fails so the page can show the inline
// message next to the conversation.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	reply, err := s.sess.Chat(r.Context(), s.gen, req.Mode, req.Prompt)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, envelope{Data: chatResponse{Mode: req.Mode, Reply: reply}})
	case apperr.IsUnavailable(err):
		s.logger.Warn("assistant unavailable", zap.String("mode", req.Mode), zap.Error(err))
		writeJSON(w, http.StatusOK, envelope{Data: chatResponse{
			Mode:  req.Mode,
			Reply: session.UnavailableReply,
			Error: apperr.GetAppError(err).Message,
		}})
	default:
		s.writeError(w, r, err)
	}
}

func (s *Server) aiStatus(w http.ResponseWriter, r *http.Request) {
	online := s.health.Check(r.Context())
	list := s.health.Models()
	if list == nil {
		list = []string{}
	}
	writeJSON(w, http.StatusOK, envelope{Data: statusResponse{Online: online, Models: list}})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.Reset(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Outcome: &outcomeView{Message: "Progress reset."}})
}
