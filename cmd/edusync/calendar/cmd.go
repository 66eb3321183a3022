// Package calendarcmd implements the `edusync calendar` command group.
package calendarcmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

// Accepted --start / --end layouts, tried in order.
var layouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

// Command implements `edusync calendar`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the calendar command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "calendar",
		Short: "Manage study calendar events",
		Args:  cobra.NoArgs,
		RunE:  c.runList,
	}
	c.cmd.AddCommand(c.newAdd(), c.newDelete())
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runList(cmd *cobra.Command, _ []string) error {
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
	for _, ev := range sess.Snapshot.CalendarEvents {
		when := ev.Start.Local().Format("2006-01-02 15:04")
		if ev.AllDay {
			when = ev.Start.Local().Format("2006-01-02") + " (all day)"
		}
		fmt.Fprintf(out, "%s  %s  %s\n", ev.ID, when, ev.Title)
	}
	return nil
}

func (c *Command) newAdd() *cobra.Command {
	var title, start, end string
	var allDay bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a calendar event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			startAt, err := parseTime(start)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			var endAt *time.Time
			if end != "" {
				t, err := parseTime(end)
				if err != nil {
					return fmt.Errorf("--end: %w", err)
				}
				endAt = &t
			}
			_, err = c.ctx.Execute(cmd, session.AddCalendarEvent(title, startAt, endAt, allDay))
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "Event title (required)")
	f.StringVar(&start, "start", "", "Start time, RFC3339 or 2006-01-02[ 15:04] in local time (required)")
	f.StringVar(&end, "end", "", "End time, same formats as --start")
	f.BoolVar(&allDay, "all-day", false, "Mark the event as lasting all day")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func (c *Command) newDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Remove a calendar event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.ctx.Execute(cmd, session.DeleteCalendarEvent(args[0]))
			return err
		},
	}
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date or time", s)
}
