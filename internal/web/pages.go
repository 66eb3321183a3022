package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pedrovi35/EduSync-Pro/internal/ai"
	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
	"github.com/pedrovi35/EduSync-Pro/internal/progression"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

// Page identifies one screen of the app.
type Page string

const (
	PageDashboard Page = "dashboard"
	PageTasks     Page = "tasks"
	PageTools     Page = "tools"
	PageAssistant Page = "assistant"
)

// Pages lists the screens in navigation order.
var Pages = []Page{PageDashboard, PageTasks, PageTools, PageAssistant}

// pageHandler builds the view model of a page from the session.
type pageHandler func(s *Server, r *http.Request) any

var pageTable = map[Page]pageHandler{
	PageDashboard: (*Server).dashboardView,
	PageTasks:     (*Server).tasksView,
	PageTools:     (*Server).toolsView,
	PageAssistant: (*Server).assistantView,
}

func (s *Server) getPage(w http.ResponseWriter, r *http.Request) {
	page := Page(chi.URLParam(r, "page"))
	h, ok := pageTable[page]
	if !ok {
		s.writeError(w, r, apperr.NewNotFoundError("page "+string(page)))
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: h(s, r)})
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

type achievementView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

type progressView struct {
	Name         string            `json:"name"`
	XP           int               `json:"xp"`
	Level        int               `json:"level"`
	Rank         string            `json:"rank"`
	Fraction     float64           `json:"fraction"`
	NextXP       int               `json:"next_xp,omitempty"`
	MaxLevel     bool              `json:"max_level"`
	Achievements []achievementView `json:"achievements"`
}

type dashboardView struct {
	Progress  progressView          `json:"progress"`
	Counts    map[models.Status]int `json:"counts"`
	Pomodoros int                   `json:"pomodoros"`
	NeedsName bool                  `json:"needs_name"`
}

type columnView struct {
	Status  models.Status `json:"status"`
	Heading string        `json:"heading"`
	Tasks   []models.Task `json:"tasks"`
}

type toolsView struct {
	Flashcards []models.Flashcard     `json:"flashcards"`
	Notes      string                 `json:"notes"`
	Pomodoros  int                    `json:"pomodoros"`
	Calendar   []models.CalendarEvent `json:"calendar"`
}

type modeView struct {
	Key     string             `json:"key"`
	Label   string             `json:"label"`
	Model   string             `json:"model"`
	History []session.ChatTurn `json:"history"`
}

type assistantView struct {
	Modes []modeView `json:"modes"`
}

func (s *Server) progress() progressView {
	snap := s.sess.Snapshot
	frac, next, isMax := progression.Progress(snap.XP, snap.Level)
	v := progressView{
		Name:     snap.Name,
		XP:       snap.XP,
		Level:    snap.Level,
		Rank:     progression.LevelName(snap.Level),
		Fraction: frac,
		NextXP:   next,
		MaxLevel: isMax,
	}
	for _, a := range progression.Catalog() {
		st := snap.Achievements[a.ID]
		v.Achievements = append(v.Achievements, achievementView{
			ID: a.ID, Name: a.Name, Description: a.Description, Icon: a.Icon,
			Unlocked: st.Unlocked, UnlockedAt: st.UnlockedAt,
		})
	}
	return v
}

func (s *Server) dashboardView(*http.Request) any {
	snap := s.sess.Snapshot
	counts := make(map[models.Status]int, len(models.Statuses))
	for _, st := range models.Statuses {
		counts[st] = len(*snap.TaskLists.Column(st))
	}
	return dashboardView{
		Progress:  s.progress(),
		Counts:    counts,
		Pomodoros: snap.PomodoroSessionsDone,
		NeedsName: snap.Name == "",
	}
}

func (s *Server) tasksView(*http.Request) any {
	cols := make([]columnView, 0, len(models.Statuses))
	for _, st := range models.Statuses {
		cols = append(cols, columnView{
			Status:  st,
			Heading: models.StatusHeadings[st],
			Tasks:   *s.sess.Snapshot.TaskLists.Column(st),
		})
	}
	return cols
}

func (s *Server) toolsView(*http.Request) any {
	snap := s.sess.Snapshot
	return toolsView{
		Flashcards: snap.Flashcards,
		Notes:      snap.Notes,
		Pomodoros:  snap.PomodoroSessionsDone,
		Calendar:   snap.CalendarEvents,
	}
}

func (s *Server) assistantView(*http.Request) any {
	v := assistantView{Modes: make([]modeView, 0, len(ai.Modes))}
	for _, m := range ai.Modes {
		hist := s.sess.History(m.Key)
		if hist == nil {
			hist = []session.ChatTurn{}
		}
		v.Modes = append(v.Modes, modeView{Key: m.Key, Label: m.Label, Model: m.Model, History: hist})
	}
	return v
}
