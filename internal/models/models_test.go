package models_test

import (
	"encoding/json"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/pedrovi35/EduSync-Pro/internal/models"
)

func TestNewSnapshot_FirstRunDefaults(t *testing.T) {
	c := qt.New(t)

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := models.NewSnapshot(now)

	c.Assert(s.Name, qt.Equals, "")
	c.Assert(s.XP, qt.Equals, 0)
	c.Assert(s.Level, qt.Equals, 0)
	c.Assert(s.Achievements, qt.HasLen, 0)
	c.Assert(s.PomodoroSessionsDone, qt.Equals, 0)
	c.Assert(s.TaskLists.Todo, qt.HasLen, 2)
	c.Assert(s.TaskLists.Doing, qt.HasLen, 0)
	c.Assert(s.TaskLists.Done, qt.HasLen, 0)
	c.Assert(s.TaskLists.Todo[0].Content, qt.Equals, "Set up local environment")
	c.Assert(s.TaskLists.Todo[0].Status, qt.Equals, models.StatusTodo)
	c.Assert(s.Flashcards, qt.HasLen, 1)
	c.Assert(s.Flashcards[0].Front, qt.Equals, "Capital of France")
	c.Assert(s.Flashcards[0].Back, qt.Equals, "Paris")
	c.Assert(s.CalendarEvents, qt.HasLen, 0)
	c.Assert(s.Notes, qt.Equals, models.DefaultNotes)
}

func TestSnapshot_JSONKeys(t *testing.T) {
	c := qt.New(t)

	data, err := json.Marshal(models.NewSnapshot(time.Now()))
	c.Assert(err, qt.IsNil)

	var raw map[string]json.RawMessage
	c.Assert(json.Unmarshal(data, &raw), qt.IsNil)

	want := []string{
		"name", "xp", "level", "achievements", "pomodoro_sessions_done",
		"task_lists", "calendar_events", "flashcards", "notes",
	}
	c.Assert(raw, qt.HasLen, len(want))
	for _, k := range want {
		_, ok := raw[k]
		c.Assert(ok, qt.IsTrue, qt.Commentf("missing key %q", k))
	}

	var lists map[string]json.RawMessage
	c.Assert(json.Unmarshal(raw["task_lists"], &lists), qt.IsNil)
	c.Assert(lists, qt.HasLen, 3)
}

func TestSnapshot_Normalize(t *testing.T) {
	c := qt.New(t)

	s := &models.Snapshot{}
	s.TaskLists.Done = []models.Task{{ID: "a", Content: "moved by hand", Status: models.StatusTodo}}
	s.Normalize()

	c.Assert(s.Achievements, qt.IsNotNil)
	c.Assert(s.TaskLists.Todo, qt.IsNotNil)
	c.Assert(s.TaskLists.Doing, qt.IsNotNil)
	c.Assert(s.Flashcards, qt.IsNotNil)
	c.Assert(s.CalendarEvents, qt.IsNotNil)
	c.Assert(s.TaskLists.Done[0].Status, qt.Equals, models.StatusDone)
	c.Assert(s.TaskLists.Done[0].CompletedOnce, qt.IsTrue)
}

func TestTaskLists_Find(t *testing.T) {
	c := qt.New(t)

	lists := models.TaskLists{
		Todo:  []models.Task{{ID: "t1"}},
		Doing: []models.Task{{ID: "t2"}, {ID: "t3"}},
	}

	tests := []struct {
		id         string
		wantStatus models.Status
		wantIdx    int
		wantOK     bool
	}{
		{"t1", models.StatusTodo, 0, true},
		{"t3", models.StatusDoing, 1, true},
		{"missing", "", 0, false},
	}
	for _, tt := range tests {
		c.Run(tt.id, func(c *qt.C) {
			st, idx, ok := lists.Find(tt.id)
			c.Assert(ok, qt.Equals, tt.wantOK)
			c.Assert(st, qt.Equals, tt.wantStatus)
			c.Assert(idx, qt.Equals, tt.wantIdx)
		})
	}
	c.Assert(lists.Len(), qt.Equals, 3)
}

func TestParseStatus(t *testing.T) {
	c := qt.New(t)

	st, ok := models.ParseStatus("doing")
	c.Assert(ok, qt.IsTrue)
	c.Assert(st, qt.Equals, models.StatusDoing)

	_, ok = models.ParseStatus("Done")
	c.Assert(ok, qt.IsFalse)
}

func TestNewID_Unique(t *testing.T) {
	c := qt.New(t)

	seen := map[string]bool{}
	for range 100 {
		id := models.NewID()
		c.Assert(seen[id], qt.IsFalse)
		seen[id] = true
	}
}
