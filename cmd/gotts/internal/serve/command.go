package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/manusawe00z/go-bot/cmd/gotts/internal"
	"github.com/manusawe00z/go-bot/pkg/gateway"
)

func NewServeCommand() *cobra.Command {
	var debug bool
	var addr string

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve text-to-speech over HTTP",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return serveCmd(cmd.Context(), envFile, debug, addr)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides GOTTS_SERVER_ADDR)")

	return cmd
}

func serveCmd(ctx context.Context, envFile string, debug bool, addr string) error {
	cfg, err := internal.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	log, err := internal.NewLogger(cfg, os.Stderr, debug)
	if err != nil {
		return err
	}
	defer log.Close()

	pub, err := internal.NewPublisher(cfg, log)
	if err != nil {
		return err
	}

	srv := gateway.NewServer(cfg.Server, cfg.Language, internal.FormatVersion(), pub, log)
	if err := srv.Start(); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.InfoC("gateway", "Received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
