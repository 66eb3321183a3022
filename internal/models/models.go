// Package models defines the core data types for the study app.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the kanban column a task lives in.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Statuses lists the columns in board order.
var Statuses = []Status{StatusTodo, StatusDoing, StatusDone}

// StatusHeadings maps columns to display text.
var StatusHeadings = map[Status]string{
	StatusTodo:  "To Do",
	StatusDoing: "Doing",
	StatusDone:  "Done",
}

// ParseStatus accepts a column key ("todo", "doing", "done").
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Task is a single kanban card.
type Task struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	// CompletedOnce latches the first arrival in Done; XP is only awarded then.
	CompletedOnce bool `json:"completed_once"`
}

// Flashcard is a front/back study card.
type Flashcard struct {
	ID        string    `json:"id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	CreatedAt time.Time `json:"created_at"`
}

// CalendarEvent is a study calendar entry.
type CalendarEvent struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Start  time.Time  `json:"start"`
	End    *time.Time `json:"end,omitempty"`
	AllDay bool       `json:"all_day"`
}

// AchievementState is the per-user flag for one catalogue entry.
type AchievementState struct {
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// UserProgress is the gamification state of one user.
type UserProgress struct {
	Name         string                      `json:"name"`
	XP           int                         `json:"xp"`
	Level        int                         `json:"level"`
	Achievements map[string]AchievementState `json:"achievements"`
}

// Unlocked reports whether achievement id has been unlocked.
func (p *UserProgress) Unlocked(id string) bool {
	return p.Achievements[id].Unlocked
}

// TaskLists holds the three kanban columns.
type TaskLists struct {
	Todo  []Task `json:"todo"`
	Doing []Task `json:"doing"`
	Done  []Task `json:"done"`
}

// Column returns a pointer to the slice backing status.
func (l *TaskLists) Column(status Status) *[]Task {
	switch status {
	case StatusDoing:
		return &l.Doing
	case StatusDone:
		return &l.Done
	default:
		return &l.Todo
	}
}

// Find locates a task by id.
func (l *TaskLists) Find(id string) (Status, int, bool) {
	for _, st := range Statuses {
		for i, t := range *l.Column(st) {
			if t.ID == id {
				return st, i, true
			}
		}
	}
	return "", 0, false
}

// Len returns the number of tasks across all columns.
func (l *TaskLists) Len() int {
	return len(l.Todo) + len(l.Doing) + len(l.Done)
}

// Snapshot is the complete persisted state of one user.
type Snapshot struct {
	UserProgress
	PomodoroSessionsDone int             `json:"pomodoro_sessions_done"`
	TaskLists            TaskLists       `json:"task_lists"`
	CalendarEvents       []CalendarEvent `json:"calendar_events"`
	Flashcards           []Flashcard     `json:"flashcards"`
	Notes                string          `json:"notes"`
}

// Normalize replaces nil collections with empty ones and aligns each
// task's status with the column holding it. Tasks found in Done are marked
// CompletedOnce so they never award XP again.
func (s *Snapshot) Normalize() {
	if s.Achievements == nil {
		s.Achievements = map[string]AchievementState{}
	}
	for _, st := range Statuses {
		col := s.TaskLists.Column(st)
		if *col == nil {
			*col = []Task{}
		}
		for i := range *col {
			(*col)[i].Status = st
			if st == StatusDone {
				(*col)[i].CompletedOnce = true
			}
		}
	}
	if s.CalendarEvents == nil {
		s.CalendarEvents = []CalendarEvent{}
	}
	if s.Flashcards == nil {
		s.Flashcards = []Flashcard{}
	}
}

// Default text shown in the notes pad on first run.
const DefaultNotes = "Write your notes here..."

// NewSnapshot returns the first-run state.
func NewSnapshot(now time.Time) *Snapshot {
	s := &Snapshot{
		TaskLists: TaskLists{
			Todo: []Task{
				NewTask("Set up local environment", now),
				NewTask("Study the web stack", now),
			},
		},
		Flashcards: []Flashcard{
			NewFlashcard("Capital of France", "Paris", now),
		},
		Notes: DefaultNotes,
	}
	s.Normalize()
	return s
}

// NewTask creates a task in the Todo column.
func NewTask(content string, now time.Time) Task {
	return Task{ID: NewID(), Content: content, Status: StatusTodo, CreatedAt: now.UTC()}
}

// NewFlashcard creates a flashcard.
func NewFlashcard(front, back string, now time.Time) Flashcard {
	return Flashcard{ID: NewID(), Front: front, Back: back, CreatedAt: now.UTC()}
}

// NewID returns a random identifier for tasks, cards and events.
func NewID() string {
	return uuid.NewString()
}
