// Package servecmd implements the `edusync serve` command.
package servecmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pedrovi35/EduSync-Pro/cmd/edusync/shared"
	"github.com/pedrovi35/EduSync-Pro/internal/web"
)

const shutdownTimeout = 5 * time.Second

// Command implements `edusync serve`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	addr string
}

// New creates the serve command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the study pages and actions over HTTP",
		RunE:  c.run,
	}
	c.cmd.Flags().StringVar(&c.addr, "addr", "", "Listen address (default: server.addr from config)")
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

	ctx := cmd.Context()
	sess, err := svc.Session(ctx)
	if err != nil {
		return err
	}

	addr := c.addr
	if addr == "" {
		addr = svc.Config.Server.Addr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	handler := web.New(web.Deps{
		Session:        sess,
		Generator:      svc.Generator,
		Health:         svc.Health,
		FlashcardModel: svc.Config.AI.FlashcardModel,
		Logger:         svc.Logger,
		Metrics:        svc.Metrics,
	}).Handler()

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Generation calls may take as long as the AI timeout.
		WriteTimeout: svc.Config.AI.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Serving EduSync on http://%s\n", ln.Addr())
	svc.Logger.Info("http server started", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	svc.Logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve shutdown: %w", err)
	}
	return nil
}
