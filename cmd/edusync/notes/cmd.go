// Package notescmd implements the `edusync notes` command group.
package notescmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

// Command implements `edusync notes`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the notes command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "notes",
		Short: "Show or replace the notes pad",
		Args:  cobra.NoArgs,
		RunE:  c.runShow,
	}
	c.cmd.AddCommand(c.newSet())
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	svc, err := c.ctx.Open(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	sess, err := svc.Session(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), sess.Snapshot.Notes)
	return nil
}

func (c *Command) newSet() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "set [text]",
		Short: "Replace the notes pad",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read %q: %w", file, err)
				}
				text = string(data)
			}
			_, err := c.ctx.Execute(cmd, session.UpdateNotes(text))
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read the notes from a file")
	return cmd
}
