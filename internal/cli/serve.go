package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/polls/internal/web"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string // overrides server.addr from config
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the polls web pages and JSON API",
		Long: `Start the HTTP server.

The server opens (or creates) the SQLite database, then serves the poll
index, detail, results and vote pages until interrupted.

Example:
  polls serve --db ./polls.db
  polls serve --config ./polls.yaml --addr 127.0.0.1:8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	sess, err := opts.openSession(cmd, f)
	if err != nil {
		return err
	}
	defer sess.Close()

	addr := sess.cfg.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	srv, err := web.NewServer(sess.store, web.Options{
		Clock:        sess.clock,
		Logger:       sess.logger,
		LatestLimit:  sess.cfg.Index.LatestLimit,
		ReadTimeout:  sess.cfg.Server.ReadTimeout(),
		WriteTimeout: sess.cfg.Server.WriteTimeout(),
	})
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to build server", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, addr)
	})
	g.Go(func() error {
		select {
		case sig := <-sigChan:
			sess.logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	fmt.Fprintf(cmd.OutOrStdout(), "Serving polls on %s. Press Ctrl-C to stop.\n", addr)

	if err := g.Wait(); err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "server error", err)
	}

	sess.logger.Info("server stopped gracefully")
	return nil
}
