package progression

import (
	"time"

	"github.com/pedrovi35/EduSync-Pro/internal/models"
)

// EventKind names a domain event that can unlock achievements.
type EventKind string

const (
	EventTaskCompleted     EventKind = "task_completed"
	EventPomodoroCompleted EventKind = "pomodoro_completed"
	EventFlashcardCreated  EventKind = "flashcard_created"
)

// EventContext carries the counts achievement predicates look at.
type EventContext struct {
	DoneCount      int
	PomodorosDone  int
	FlashcardCount int
	At             time.Time
}

// ContextFor builds the EventContext for snap at time at.
func ContextFor(snap *models.Snapshot, at time.Time) EventContext {
	return EventContext{
		DoneCount:      len(snap.TaskLists.Done),
		PomodorosDone:  snap.PomodoroSessionsDone,
		FlashcardCount: len(snap.Flashcards),
		At:             at,
	}
}

// Achievement is a catalogue entry.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Event       EventKind

	earned func(EventContext) bool
}

var catalog = []Achievement{
	countAchievement("first_task", "First Step", "Complete your first task.", "✅",
		EventTaskCompleted, 1, func(ec EventContext) int { return ec.DoneCount }),
	countAchievement("ten_tasks", "Marathoner", "Complete 10 tasks.", "🏃",
		EventTaskCompleted, 10, func(ec EventContext) int { return ec.DoneCount }),
	nightOwlAchievement("night_owl", "Night Owl", "Complete a task between midnight and 4am.", "🦉"),
	countAchievement("pomodoro_pro", "Absolute Focus", "Complete 5 Pomodoro sessions.", "🎯",
		EventPomodoroCompleted, 5, func(ec EventContext) int { return ec.PomodorosDone }),
	countAchievement("card_creator", "Content Creator", "Create 10 flashcards.", "🧠",
		EventFlashcardCreated, 10, func(ec EventContext) int { return ec.FlashcardCount }),
}

// Catalog returns every achievement in display order.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalogue entry for id.
func Lookup(id string) (Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// RecordEvent evaluates the achievements bound to kind and unlocks those
// whose predicate now holds. Already-unlocked entries are skipped, so the
// returned slice only holds new unlocks. Unknown kinds are no-ops.
func RecordEvent(p *models.UserProgress, kind EventKind, ec EventContext) []Achievement {
	var unlocked []Achievement
	for _, a := range catalog {
		if a.Event != kind || p.Unlocked(a.ID) || !a.earned(ec) {
			continue
		}
		if p.Achievements == nil {
			p.Achievements = map[string]models.AchievementState{}
		}
		at := ec.At.UTC()
		p.Achievements[a.ID] = models.AchievementState{Unlocked: true, UnlockedAt: &at}
		unlocked = append(unlocked, a)
	}
	return unlocked
}

func countAchievement(id, name, desc, icon string, event EventKind, n int, count func(EventContext) int) Achievement {
	return Achievement{
		ID: id, Name: name, Description: desc, Icon: icon, Event: event,
		earned: func(ec EventContext) bool { return count(ec) >= n },
	}
}

func nightOwlAchievement(id, name, desc, icon string) Achievement {
	return Achievement{
		ID: id, Name: name, Description: desc, Icon: icon, Event: EventTaskCompleted,
		earned: func(ec EventContext) bool {
			return !ec.At.IsZero() && ec.At.Hour() < 4
		},
	}
}
