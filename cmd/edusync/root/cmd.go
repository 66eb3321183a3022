// Package rootcmd wires the root cobra.Command for the edusync CLI binary.
package rootcmd

import (
	"github.com/spf13/cobra"

	aicmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/ai"
	calendarcmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/calendar"
	cardcmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/card"
	configcmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/config"
	exportcmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/export"
	initcmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/init"
	mcpcmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/mcp"
	notescmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/notes"
	pomodorocmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/pomodoro"
	profilecmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/profile"
	registercmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/register"
	resetcmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/reset"
	servecmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/serve"
	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
	statuscmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/status"
	taskcmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/task"
	versioncmd "github.com/pedrovi35/EduSync-Pro/cmd/edusync/version"
)

// New creates and returns the root cobra.Command for the edusync CLI.
func New() *cobra.Command {
	ctx := &shared.Context{}

	root := &cobra.Command{
		Use:           "edusync",
		Short:         "EduSync: gamified study companion with a local AI tutor",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	root.PersistentFlags().StringVar(
		&ctx.Home, "home", "",
		"Override study home directory (default: $EDUSYNC_HOME env → persisted config → ~/.edusync)",
	)
	root.PersistentFlags().StringVar(
		&ctx.Identity, "user", "",
		"Snapshot name (file backend) or account email (sqlite backend); overrides storage.identity",
	)
	root.PersistentFlags().StringVar(
		&ctx.Password, "password", "",
		"Account password for the sqlite backend (default: $EDUSYNC_PASSWORD)",
	)

	root.AddCommand(
		initcmd.New(ctx).Cmd(),
		servecmd.New(ctx).Cmd(),
		statuscmd.New(ctx).Cmd(),
		profilecmd.New(ctx).Cmd(),
		taskcmd.New(ctx).Cmd(),
		cardcmd.New(ctx).Cmd(),
		pomodorocmd.New(ctx).Cmd(),
		notescmd.New(ctx).Cmd(),
		calendarcmd.New(ctx).Cmd(),
		aicmd.New(ctx).Cmd(),
		exportcmd.New(ctx).Cmd(),
		resetcmd.New(ctx).Cmd(),
		registercmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
		mcpcmd.New(ctx).Cmd(),
		versioncmd.New(ctx).Cmd(),
	)

	return root
}
