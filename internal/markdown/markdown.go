// Package markdown renders a study snapshot as an Obsidian-compatible
// markdown note.
package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pedrovi35/EduSync-Pro/internal/models"
	"github.com/pedrovi35/EduSync-Pro/internal/progression"
)

// RenderCard produces a single ### heading block for a flashcard.
func RenderCard(f models.Flashcard) string {
	var sb strings.Builder
	sb.WriteString("### ")
	sb.WriteString(oneLine(f.Front))
	sb.WriteString("\n")
	sb.WriteString(strings.TrimSpace(f.Back))
	return sb.String()
}

// RenderSnapshot renders the whole snapshot: frontmatter, flashcards, the
// task board, calendar and notes.
func RenderSnapshot(snap *models.Snapshot, now time.Time) string {
	var sb strings.Builder
	writeFrontmatter(&sb, snap, now)

	title := "Study notes"
	if snap.Name != "" {
		title = snap.Name + "'s study notes"
	}
	sb.WriteString("\n# ")
	sb.WriteString(title)
	sb.WriteString("\n")

	if len(snap.Flashcards) > 0 {
		sb.WriteString("\n## Flashcards\n")
		for _, f := range snap.Flashcards {
			sb.WriteString("\n")
			sb.WriteString(RenderCard(f))
			sb.WriteString("\n")
		}
	}

	if snap.TaskLists.Len() > 0 {
		sb.WriteString("\n## Tasks\n")
		for _, st := range models.Statuses {
			col := *snap.TaskLists.Column(st)
			if len(col) == 0 {
				continue
			}
			sb.WriteString("\n### ")
			sb.WriteString(models.StatusHeadings[st])
			sb.WriteString("\n\n")
			box := "[ ]"
			if st == models.StatusDone {
				box = "[x]"
			}
			for _, t := range col {
				fmt.Fprintf(&sb, "- %s %s\n", box, oneLine(t.Content))
			}
		}
	}

	if len(snap.CalendarEvents) > 0 {
		sb.WriteString("\n## Calendar\n\n")
		for _, ev := range snap.CalendarEvents {
			sb.WriteString("- ")
			sb.WriteString(eventWhen(ev))
			sb.WriteString(" ")
			sb.WriteString(oneLine(ev.Title))
			sb.WriteString("\n")
		}
	}

	if notes := strings.TrimSpace(snap.Notes); notes != "" && notes != models.DefaultNotes {
		sb.WriteString("\n## Notes\n\n")
		sb.WriteString(notes)
		sb.WriteString("\n")
	}
	return sb.String()
}

// WriteExport writes RenderSnapshot into dir as <date>-edusync.md and
// returns the file path. The directory is created when missing.
func WriteExport(dir string, snap *models.Snapshot, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, now.UTC().Format("2006-01-02")+"-edusync.md")
	if err := os.WriteFile(path, []byte(RenderSnapshot(snap, now)), 0o644); err != nil { // #nosec G306 -- exported study notes are meant to be shared
		return "", err
	}
	return path, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func writeFrontmatter(sb *strings.Builder, snap *models.Snapshot, now time.Time) {
	sb.WriteString("---\n")
	if snap.Name != "" {
		fmt.Fprintf(sb, "name: %s\n", oneLine(snap.Name))
	}
	fmt.Fprintf(sb, "level: %d\n", snap.Level)
	fmt.Fprintf(sb, "rank: %s\n", progression.LevelName(snap.Level))
	fmt.Fprintf(sb, "xp: %d\n", snap.XP)
	fmt.Fprintf(sb, "pomodoros: %d\n", snap.PomodoroSessionsDone)
	sb.WriteString("achievements: [")
	sb.WriteString(strings.Join(unlockedIDs(snap), ", "))
	sb.WriteString("]\n")
	sb.WriteString("exported: ")
	sb.WriteString(now.UTC().Format(time.RFC3339))
	sb.WriteString("\n---\n")
}

func unlockedIDs(snap *models.Snapshot) []string {
	ids := make([]string, 0, len(snap.Achievements))
	for id, st := range snap.Achievements {
		if st.Unlocked {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func eventWhen(ev models.CalendarEvent) string {
	if ev.AllDay {
		return ev.Start.Format("2006-01-02")
	}
	s := ev.Start.Format("2006-01-02 15:04")
	if ev.End != nil {
		s += "–" + ev.End.Format("15:04")
	}
	return s
}

// oneLine collapses newlines so headings and list items stay on one line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
