// Package pomodorocmd implements the `edusync pomodoro` command group.
package pomodorocmd

import (
	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

// Command implements `edusync pomodoro`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the pomodoro command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "pomodoro",
		Short: "Track Pomodoro focus sessions",
	}
	c.cmd.AddCommand(&cobra.Command{
		Use:   "complete",
		Short: "Record one completed focus session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := ctx.Execute(cmd, session.CompletePomodoro())
			return err
		},
	})
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }
