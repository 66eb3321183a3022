// Package mcpcmd implements the `edusync mcp` command.
package mcpcmd

import (
	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
	internalmcp "github.com/pedrovi35/EduSync-Pro/internal/mcp"
)

// Command implements `edusync mcp`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the mcp command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "mcp",
		Short: "Start the EduSync MCP server (stdio transport)",
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
	return internalmcp.Serve(cmd.Context(), sess)
}
