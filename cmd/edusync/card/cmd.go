// Package cardcmd implements the `edusync card` command group.
package cardcmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

// Command implements `edusync card`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the card command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "card",
		Short: "Manage flashcards",
	}
	c.cmd.AddCommand(
		c.newAdd(),
		c.newDelete(),
		c.newList(),
		c.newGenerate(),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) newAdd() *cobra.Command {
	var front, back string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a flashcard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := c.ctx.Execute(cmd, session.AddFlashcard(front, back))
			return err
		},
	}
	cmd.Flags().StringVar(&front, "front", "", "Question (required)")
	cmd.Flags().StringVar(&back, "back", "", "Answer (required)")
	_ = cmd.MarkFlagRequired("front")
	_ = cmd.MarkFlagRequired("back")
	return cmd
}

func (c *Command) newDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <card-id>",
		Short: "Remove a flashcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.ctx.Execute(cmd, session.DeleteFlashcard(args[0]))
			return err
		},
	}
}

func (c *Command) newList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List flashcards",
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
			for _, f := range sess.Snapshot.Flashcards {
				fmt.Fprintf(out, "%s\n  Q: %s\n  A: %s\n", f.ID, f.Front, f.Back)
			}
			fmt.Fprintf(out, "%d flashcards\n", len(sess.Snapshot.Flashcards))
			return nil
		},
	}
}

func (c *Command) newGenerate() *cobra.Command {
	var file, model string
	cmd := &cobra.Command{
		Use:   "generate [text]",
		Short: "Ask the AI to turn study text into flashcards",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if file != "" {
				if text != "" {
					return fmt.Errorf("use either text arguments or --file, not both")
				}
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read %q: %w", file, err)
				}
				text = string(data)
			}

			svc, err := c.ctx.Open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			sess, err := svc.Session(cmd.Context())
			if err != nil {
				return err
			}
			if model == "" {
				model = svc.Config.AI.FlashcardModel
			}
			out, err := sess.GenerateFlashcards(cmd.Context(), svc.Generator, model, text)
			if err != nil {
				return err
			}
			shared.PrintOutcome(cmd.OutOrStdout(), out, sess.Snapshot)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read the study text from a file")
	cmd.Flags().StringVar(&model, "model", "", "Model to use (default: ai.flashcard_model)")
	return cmd
}
