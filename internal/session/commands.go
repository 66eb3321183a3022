package session

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pedrovi35/EduSync-Pro/internal/ai"
	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
	"github.com/pedrovi35/EduSync-Pro/internal/progression"
)

func required(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperr.NewValidationError(field + " is required")
	}
	return value, nil
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

// SetName sets the display name shown on the dashboard.
func SetName(name string) Command {
	return Command{Name: "SetName", Apply: func(s *Session) (Outcome, error) {
		name, err := required("name", name)
		if err != nil {
			return Outcome{}, err
		}
		if s.Snapshot.Name == name {
			return Outcome{}, nil
		}
		s.Snapshot.Name = name
		return Outcome{Changed: true, Message: fmt.Sprintf("Welcome, %s!", name)}, nil
	}}
}

// UpdateNotes replaces the notes pad.
func UpdateNotes(notes string) Command {
	return Command{Name: "UpdateNotes", Apply: func(s *Session) (Outcome, error) {
		if s.Snapshot.Notes == notes {
			return Outcome{}, nil
		}
		s.Snapshot.Notes = notes
		return Outcome{Changed: true, Message: "Notes saved."}, nil
	}}
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

// AddTask appends a task to To Do.
func AddTask(content string) Command {
	return Command{Name: "AddTask", Apply: func(s *Session) (Outcome, error) {
		content, err := required("task content", content)
		if err != nil {
			return Outcome{}, err
		}
		t := models.NewTask(content, s.now())
		s.Snapshot.TaskLists.Todo = append(s.Snapshot.TaskLists.Todo, t)
		return Outcome{Changed: true, ID: t.ID, Message: fmt.Sprintf("Task %q added!", content)}, nil
	}}
}

// MoveTask moves a task to another column. Every arrival in Done evaluates
// the task achievements; only the first one awards TaskCompletedXP.
func MoveTask(id string, to models.Status) Command {
	return Command{Name: "MoveTask", Apply: func(s *Session) (Outcome, error) {
		if _, ok := models.ParseStatus(string(to)); !ok {
			return Outcome{}, apperr.NewValidationError(fmt.Sprintf("unknown column %q", to))
		}
		lists := &s.Snapshot.TaskLists
		from, idx, ok := lists.Find(id)
		if !ok {
			return Outcome{}, apperr.NewNotFoundError("task " + id)
		}
		if from == to {
			return Outcome{}, nil
		}

		src := lists.Column(from)
		task := (*src)[idx]
		*src = slices.Delete(*src, idx, idx+1)
		task.Status = to

		out := Outcome{Changed: true, ID: id, Message: fmt.Sprintf("Moved to %s.", models.StatusHeadings[to])}
		if to != models.StatusDone {
			*lists.Column(to) = append(*lists.Column(to), task)
			return out, nil
		}

		first := !task.CompletedOnce
		task.CompletedOnce = true
		lists.Done = append(lists.Done, task)

		if first {
			out.Event = progression.EventTaskCompleted
			out.XPAwarded = progression.TaskCompletedXP
			out.LevelUps = progression.AwardXP(&s.Snapshot.UserProgress, progression.TaskCompletedXP)
			out.Message = fmt.Sprintf("Task completed! +%d XP", progression.TaskCompletedXP)
		}
		out.Unlocks = progression.RecordEvent(&s.Snapshot.UserProgress, progression.EventTaskCompleted,
			progression.ContextFor(s.Snapshot, s.now()))
		return out, nil
	}}
}

// DeleteTask removes a task permanently.
func DeleteTask(id string) Command {
	return Command{Name: "DeleteTask", Apply: func(s *Session) (Outcome, error) {
		st, idx, ok := s.Snapshot.TaskLists.Find(id)
		if !ok {
			return Outcome{}, apperr.NewNotFoundError("task " + id)
		}
		col := s.Snapshot.TaskLists.Column(st)
		*col = slices.Delete(*col, idx, idx+1)
		return Outcome{Changed: true, ID: id, Message: "Task removed."}, nil
	}}
}

// ---------------------------------------------------------------------------
// Flashcards
// ---------------------------------------------------------------------------

// AddFlashcard appends one card.
func AddFlashcard(front, back string) Command {
	return AddFlashcards([]ai.CardText{{Front: front, Back: back}})
}

// AddFlashcards appends a batch of cards and evaluates the flashcard
// achievements once for the whole batch.
func AddFlashcards(cards []ai.CardText) Command {
	return Command{Name: "AddFlashcards", Apply: func(s *Session) (Outcome, error) {
		if len(cards) == 0 {
			return Outcome{}, apperr.NewValidationError("no flashcards to add")
		}
		now := s.now()
		added := make([]models.Flashcard, 0, len(cards))
		for _, c := range cards {
			front, err := required("card front", c.Front)
			if err != nil {
				return Outcome{}, err
			}
			back, err := required("card back", c.Back)
			if err != nil {
				return Outcome{}, err
			}
			added = append(added, models.NewFlashcard(front, back, now))
		}
		s.Snapshot.Flashcards = append(s.Snapshot.Flashcards, added...)

		out := Outcome{
			Changed: true,
			Created: len(added),
			Event:   progression.EventFlashcardCreated,
			Unlocks: progression.RecordEvent(&s.Snapshot.UserProgress, progression.EventFlashcardCreated,
				progression.ContextFor(s.Snapshot, now)),
			Message: "Card added!",
		}
		if len(added) == 1 {
			out.ID = added[0].ID
		} else {
			out.Message = fmt.Sprintf("%d flashcards added!", len(added))
		}
		return out, nil
	}}
}

// DeleteFlashcard removes a card.
func DeleteFlashcard(id string) Command {
	return Command{Name: "DeleteFlashcard", Apply: func(s *Session) (Outcome, error) {
		idx := slices.IndexFunc(s.Snapshot.Flashcards, func(f models.Flashcard) bool { return f.ID == id })
		if idx < 0 {
			return Outcome{}, apperr.NewNotFoundError("flashcard " + id)
		}
		s.Snapshot.Flashcards = slices.Delete(s.Snapshot.Flashcards, idx, idx+1)
		return Outcome{Changed: true, ID: id, Message: "Card removed."}, nil
	}}
}

// ---------------------------------------------------------------------------
// Pomodoro
// ---------------------------------------------------------------------------

// CompletePomodoro counts one finished focus session.
func CompletePomodoro() Command {
	return Command{Name: "CompletePomodoro", Apply: func(s *Session) (Outcome, error) {
		s.Snapshot.PomodoroSessionsDone++
		return Outcome{
			Changed: true,
			Event:   progression.EventPomodoroCompleted,
			Unlocks: progression.RecordEvent(&s.Snapshot.UserProgress, progression.EventPomodoroCompleted,
				progression.ContextFor(s.Snapshot, s.now())),
			Message: fmt.Sprintf("Session %d complete. Take a break!", s.Snapshot.PomodoroSessionsDone),
		}, nil
	}}
}

// ---------------------------------------------------------------------------
// Calendar
// ---------------------------------------------------------------------------

// AddCalendarEvent schedules an event. end may be nil.
func AddCalendarEvent(title string, start time.Time, end *time.Time, allDay bool) Command {
	return Command{Name: "AddCalendarEvent", Apply: func(s *Session) (Outcome, error) {
		title, err := required("event title", title)
		if err != nil {
			return Outcome{}, err
		}
		if start.IsZero() {
			return Outcome{}, apperr.NewValidationError("event start is required")
		}
		if end != nil && end.Before(start) {
			return Outcome{}, apperr.NewValidationError("event ends before it starts")
		}
		ev := models.CalendarEvent{ID: models.NewID(), Title: title, Start: start.UTC(), AllDay: allDay}
		if end != nil {
			e := end.UTC()
			ev.End = &e
		}
		s.Snapshot.CalendarEvents = append(s.Snapshot.CalendarEvents, ev)
		return Outcome{Changed: true, ID: ev.ID, Message: "Event added."}, nil
	}}
}

// DeleteCalendarEvent removes an event.
func DeleteCalendarEvent(id string) Command {
	return Command{Name: "DeleteCalendarEvent", Apply: func(s *Session) (Outcome, error) {
		idx := slices.IndexFunc(s.Snapshot.CalendarEvents, func(e models.CalendarEvent) bool { return e.ID == id })
		if idx < 0 {
			return Outcome{}, apperr.NewNotFoundError("event " + id)
		}
		s.Snapshot.CalendarEvents = slices.Delete(s.Snapshot.CalendarEvents, idx, idx+1)
		return Outcome{Changed: true, ID: id, Message: "Event removed."}, nil
	}}
}
