package markdown_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/pedrovi35/EduSync-Pro/internal/markdown"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
)

var exportTime = time.Date(2024, 5, 10, 18, 30, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// RenderCard
// ---------------------------------------------------------------------------

func TestRenderCard(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name string
		card models.Flashcard
		want string
	}{
		{"plain", models.Flashcard{Front: "Capital of France", Back: "Paris"}, "### Capital of France\nParis"},
		{"multiline front collapsed", models.Flashcard{Front: "What is\nDNA?", Back: " A molecule. "}, "### What is DNA?\nA molecule."},
		{"multiline back kept", models.Flashcard{Front: "Steps", Back: "1. one\n2. two"}, "### Steps\n1. one\n2. two"},
	}
	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(markdown.RenderCard(tc.card), qt.Equals, tc.want)
		})
	}
}

// ---------------------------------------------------------------------------
// RenderSnapshot
// ---------------------------------------------------------------------------

func TestRenderSnapshot_Full(t *testing.T) {
	c := qt.New(t)

	at := exportTime.Add(-time.Hour)
	end := time.Date(2024, 5, 11, 10, 0, 0, 0, time.UTC)
	snap := &models.Snapshot{
		UserProgress: models.UserProgress{
			Name:  "Ana",
			XP:    260,
			Level: 2,
			Achievements: map[string]models.AchievementState{
				"ten_tasks":  {Unlocked: true, UnlockedAt: &at},
				"first_task": {Unlocked: true, UnlockedAt: &at},
				"night_owl":  {},
			},
		},
		PomodoroSessionsDone: 3,
		TaskLists: models.TaskLists{
			Todo: []models.Task{{ID: "1", Content: "Read chapter 4"}},
			Done: []models.Task{{ID: "2", Content: "Lab report"}},
		},
		CalendarEvents: []models.CalendarEvent{
			{ID: "e1", Title: "Exam", Start: time.Date(2024, 5, 11, 9, 0, 0, 0, time.UTC), End: &end},
			{ID: "e2", Title: "Holiday", Start: time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC), AllDay: true},
		},
		Flashcards: []models.Flashcard{{ID: "f1", Front: "Capital of France", Back: "Paris"}},
		Notes:      "Review enzymes.",
	}

	want := `---
name: Ana
level: 2
rank: Master Student
xp: 260
pomodoros: 3
achievements: [first_task, ten_tasks]
exported: 2024-05-10T18:30:00Z
---

# Ana's study notes

## Flashcards

### Capital of France
Paris

## Tasks

### To Do

- [ ] Read chapter 4

### Done

- [x] Lab report

## Calendar

- 2024-05-11 09:00–10:00 Exam
- 2024-05-12 Holiday

## Notes

Review enzymes.
`
	c.Assert(markdown.RenderSnapshot(snap, exportTime), qt.Equals, want)
}

func TestRenderSnapshot_FirstRunOmitsEmptySections(t *testing.T) {
	c := qt.New(t)

	snap := models.NewSnapshot(exportTime)
	snap.Flashcards = nil
	snap.TaskLists = models.TaskLists{}

	got := markdown.RenderSnapshot(snap, exportTime)
	c.Assert(strings.HasPrefix(got, "---\nlevel: 0\nrank: Knowledge Novice\nxp: 0\n"), qt.IsTrue)
	c.Assert(got, qt.Contains, "achievements: []\n")
	c.Assert(got, qt.Contains, "# Study notes\n")
	for _, section := range []string{"## Flashcards", "## Tasks", "## Calendar", "## Notes"} {
		c.Assert(strings.Contains(got, section), qt.IsFalse, qt.Commentf("unexpected %s", section))
	}
}

// ---------------------------------------------------------------------------
// WriteExport
// ---------------------------------------------------------------------------

func TestWriteExport(t *testing.T) {
	c := qt.New(t)

	dir := filepath.Join(c.TempDir(), "exports")
	snap := models.NewSnapshot(exportTime)

	path, err := markdown.WriteExport(dir, snap, exportTime)
	c.Assert(err, qt.IsNil)
	c.Assert(path, qt.Equals, filepath.Join(dir, "2024-05-10-edusync.md"))

	data, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, markdown.RenderSnapshot(snap, exportTime))
}

func TestWriteExport_FailurePath(t *testing.T) {
	c := qt.New(t)

	// A regular file where the directory should be.
	blocker := filepath.Join(c.TempDir(), "exports")
	c.Assert(os.WriteFile(blocker, []byte("x"), 0o600), qt.IsNil)

	_, err := markdown.WriteExport(blocker, models.NewSnapshot(exportTime), exportTime)
	c.Assert(err, qt.IsNotNil)
}
