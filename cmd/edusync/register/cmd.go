// Package registercmd implements the `edusync register` command.
package registercmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
)

// Command implements `edusync register`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	name  string
	email string
}

// New creates the register command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "register",
		Short: "Create an account (sqlite backend only)",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	f := c.cmd.Flags()
	f.StringVar(&c.name, "name", "", "Display name (required)")
	f.StringVar(&c.email, "email", "", "Account email (required)")
	_ = c.cmd.MarkFlagRequired("name")
	_ = c.cmd.MarkFlagRequired("email")
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

	acct, err := svc.Register(cmd.Context(), c.name, c.email, c.ctx.ResolvePassword())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Registered %s <%s> (id: %s)\n", acct.Name, acct.Email, acct.ID)
	fmt.Fprintf(out, "Use --user %s --password ... (or storage.identity and $EDUSYNC_PASSWORD) to study as this account.\n", acct.Email)
	return nil
}
