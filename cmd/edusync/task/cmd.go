// Package taskcmd implements the `edusync task` command group.
package taskcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

// Command implements `edusync task`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the task command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "task",
		Short: "Manage the kanban task board",
	}
	c.cmd.AddCommand(
		c.newAdd(),
		c.newMove(),
		c.newDelete(),
		c.newList(),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) newAdd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <content>",
		Short: "Add a task to To Do",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.ctx.Execute(cmd, session.AddTask(strings.Join(args, " ")))
			return err
		},
	}
}

func (c *Command) newMove() *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <todo|doing|done>",
		Short: "Move a task to another column; first arrival in done awards XP",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.ctx.Execute(cmd, session.MoveTask(args[0], models.Status(args[1])))
			return err
		},
	}
}

func (c *Command) newDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Remove a task from the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.ctx.Execute(cmd, session.DeleteTask(args[0]))
			return err
		},
	}
}

func (c *Command) newList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks by column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.ctx.Open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			sess, err := svc.Session(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, st := range models.Statuses {
				col := *sess.Snapshot.TaskLists.Column(st)
				fmt.Fprintf(out, "%s (%d)\n", models.StatusHeadings[st], len(col))
				for _, t := range col {
					fmt.Fprintf(out, "  %s  %s\n", t.ID, t.Content)
				}
			}
			return nil
		},
	}
}
