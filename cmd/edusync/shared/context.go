// Package shared holds the context passed to all CLI commands.
package shared

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/internal/config"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
	"github.com/pedrovi35/EduSync-Pro/internal/progression"
	"github.com/pedrovi35/EduSync-Pro/internal/service"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

// Context carries global CLI state (flags set on the root command).
type Context struct {
	// Home overrides the study home directory.
	// When empty, resolution falls through to EDUSYNC_HOME env → persisted config → ~/.edusync.
	Home string
	// Identity overrides storage.identity (snapshot name or account email).
	Identity string
	// Password authenticates Identity with the sqlite backend.
	// When empty, EDUSYNC_PASSWORD is used.
	Password string
}

// ResolveHome returns the study home and where it came from.
func (c *Context) ResolveHome() (home, source string) {
	if c.Home != "" {
		return c.Home, "flag"
	}
	return config.ResolveHome()
}

// ResolvePassword returns the --password flag or $EDUSYNC_PASSWORD.
func (c *Context) ResolvePassword() string {
	if c.Password != "" {
		return c.Password
	}
	return os.Getenv("EDUSYNC_PASSWORD")
}

// Open builds the service for the resolved home. Logs go to the command's
// stderr so stdout stays clean for output and the MCP transport.
func (c *Context) Open(cmd *cobra.Command) (*service.Service, error) {
	home, _ := c.ResolveHome()
	return service.New(home, service.Options{
		Identity:  c.Identity,
		Password:  c.ResolvePassword(),
		LogWriter: cmd.ErrOrStderr(),
	})
}

// Execute opens the session, applies command and prints its outcome.
func (c *Context) Execute(cmd *cobra.Command, command session.Command) (session.Outcome, error) {
	svc, err := c.Open(cmd)
	if err != nil {
		return session.Outcome{}, err
	}
	defer svc.Close()

	sess, err := svc.Session(cmd.Context())
	if err != nil {
		return session.Outcome{}, err
	}
	out, err := sess.Execute(cmd.Context(), command)
	if err != nil {
		return out, err
	}
	PrintOutcome(cmd.OutOrStdout(), out, sess.Snapshot)
	return out, nil
}

// PrintOutcome writes the user-facing result of a command.
func PrintOutcome(w io.Writer, out session.Outcome, snap *models.Snapshot) {
	if !out.Changed {
		fmt.Fprintln(w, "Nothing changed.")
		return
	}
	if out.Message != "" {
		fmt.Fprintln(w, out.Message)
	}
	if out.ID != "" {
		fmt.Fprintf(w, "id: %s\n", out.ID)
	}
	if out.XPAwarded > 0 {
		fmt.Fprintf(w, "XP: %d\n", snap.XP)
	}
	for _, up := range out.LevelUps {
		fmt.Fprintf(w, "Level up! You are now a %s (level %d).\n", up.Name, up.To)
	}
	for _, a := range out.Unlocks {
		fmt.Fprintf(w, "Achievement unlocked: %s %s\n", a.Icon, a.Name)
	}
}

// RankLine formats level and rank, e.g. "Focused Apprentice (level 1)".
func RankLine(level int) string {
	return fmt.Sprintf("%s (level %d)", progression.LevelName(level), level)
}
