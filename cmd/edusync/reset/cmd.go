// Package resetcmd implements the `edusync reset` command.
package resetcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
)

// Command implements `edusync reset`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	yes bool
}

// New creates the reset command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "reset",
		Short: "Delete all saved progress and start over",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().BoolVar(&c.yes, "yes", false, "Confirm the reset")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	if !c.yes {
		return fmt.Errorf("reset deletes XP, achievements, tasks, flashcards and notes; pass --yes to confirm")
	}
	svc, err := c.ctx.Open(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	sess, err := svc.Session(cmd.Context())
	if err != nil {
		return err
	}
	if err := sess.Reset(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
	return nil
}
