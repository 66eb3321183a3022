// Package profilecmd implements the `edusync profile` command group.
package profilecmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

// Command implements `edusync profile`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the profile command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "profile",
		Short: "Manage the student profile",
	}
	c.cmd.AddCommand(&cobra.Command{
		Use:   "set-name <name>",
		Short: "Set the name shown on the dashboard",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.Execute(cmd, session.SetName(strings.Join(args, " ")))
			return err
		},
	})
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }
