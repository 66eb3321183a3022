// Package statuscmd implements the `edusync status` command.
package statuscmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
	"github.com/pedrovi35/EduSync-Pro/internal/progression"
)

const barWidth = 20

// Command implements `edusync status`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the status command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "status",
		Short: "Show level, XP, achievements and the task board summary",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	svc, err := c.ctx.Open(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	sess, err := svc.Session(cmd.Context())
	if err != nil {
		return err
	}
	snap := sess.Snapshot
	out := cmd.OutOrStdout()

	name := snap.Name
	if name == "" {
		name = "(no name yet, run `edusync profile set-name`)"
	}
	fmt.Fprintf(out, "Student: %s\n", name)
	fmt.Fprintf(out, "Rank:    %s\n", shared.RankLine(snap.Level))

	frac, next, isMax := progression.Progress(snap.XP, snap.Level)
	if isMax {
		fmt.Fprintf(out, "XP:      %d (max level)\n", snap.XP)
	} else {
		fmt.Fprintf(out, "XP:      %d / %d %s\n", snap.XP, next, bar(frac))
	}

	fmt.Fprintln(out, "\nAchievements:")
	for _, a := range progression.Catalog() {
		mark := "  "
		if snap.Achievements[a.ID].Unlocked {
			mark = a.Icon
		}
		fmt.Fprintf(out, "  [%s] %s: %s\n", mark, a.Name, a.Description)
	}

	fmt.Fprintln(out, "\nTasks:")
	for _, st := range models.Statuses {
		fmt.Fprintf(out, "  %-6s %d\n", models.StatusHeadings[st], len(*snap.TaskLists.Column(st)))
	}
	fmt.Fprintf(out, "\nPomodoros: %d\n", snap.PomodoroSessionsDone)
	fmt.Fprintf(out, "Flashcards: %d\n", len(snap.Flashcards))
	return nil
}

func bar(frac float64) string {
	filled := int(frac * barWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}
