// Package initcmd implements the `edusync init` command.
package initcmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
	"github.com/pedrovi35/EduSync-Pro/internal/config"
)

// Command implements `edusync init`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the init command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "init",
		Short: "Create the study home and a default config.yaml",
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	home, _ := c.ctx.ResolveHome()
	if err := os.MkdirAll(filepath.Join(home, "data"), 0o755); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	cfgPath := filepath.Join(home, "config.yaml")
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		data, err := config.Default().Marshal()
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}
		if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
			return fmt.Errorf("init: %w", err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Study home initialized at %s\n", home)
	return nil
}
