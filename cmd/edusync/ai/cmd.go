// Package aicmd implements the `edusync ai` command group.
package aicmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
	"github.com/pedrovi35/EduSync-Pro/internal/ai"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

// Command implements `edusync ai`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the ai command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "ai",
		Short: "Talk to the local AI tutor",
	}
	c.cmd.AddCommand(c.newAsk(), c.newStatus())
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func modeKeys() []string {
	keys := make([]string, 0, len(ai.Modes))
	for _, m := range ai.Modes {
		keys = append(keys, m.Key)
	}
	return keys
}

func (c *Command) newAsk() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Ask the tutor a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.ctx.Open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			sess, err := svc.Session(cmd.Context())
			if err != nil {
				return err
			}
			reply, err := sess.Chat(cmd.Context(), svc.Generator, mode, strings.Join(args, " "))
			if err != nil {
				if h := sess.History(mode); len(h) > 0 && h[len(h)-1].Failed {
					fmt.Fprintln(cmd.OutOrStdout(), session.UnavailableReply)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "answer", "Assistant mode: "+strings.Join(modeKeys(), ", "))
	return cmd
}

func (c *Command) newStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the AI backend is reachable and list its models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.ctx.Open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Provider: %s\n", svc.Config.AI.Provider)
			if !svc.Health.Check(cmd.Context()) {
				fmt.Fprintln(out, "Status:   offline")
				return nil
			}
			fmt.Fprintln(out, "Status:   online")
			for _, m := range ai.Modes {
				mark := "missing"
				if svc.Health.HasModel(m.Model) {
					mark = "ok"
				}
				fmt.Fprintf(out, "  %-10s %-12s %s\n", m.Key, m.Model, mark)
			}
			return nil
		},
	}
}
