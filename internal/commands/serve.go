package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-extractor/internal/api"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(get func() *env) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP extraction API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			if cmd.Flags().Changed("port") {
				e.cfg.Server.Port = port
			}
			return runServe(cmd.Context(), e)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	return cmd
}

func runServe(ctx context.Context, e *env) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := &api.Handler{Pipeline: e.pipeline, Logger: e.logger}
	app := api.NewApp(h, e.cfg.Server)

	addr := fmt.Sprintf(":%d", e.cfg.Server.Port)
	errc := make(chan error, 1)
	go func() {
		e.logger.Info("api listening", "addr", addr, "banks", e.pipeline.Registry().SupportedBanks())
		errc <- app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	e.logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}
