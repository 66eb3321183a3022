// Package exportcmd implements the `edusync export` command.
package exportcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
)

// Command implements `edusync export`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the export command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "export",
		Short: "Write flashcards, tasks, calendar and notes to a markdown file",
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

	path, err := svc.Export(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}
