package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/echosign/internal/reflection"
	"github.com/mesh-intelligence/echosign/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the signature-wall HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reflector, closeReflector, err := reflection.New(ctx, settings.Reflection, a.logger)
			if err != nil {
				return err
			}
			defer closeReflector()

			cfg := settings.Server
			if addr != "" {
				cfg.Addr = addr
			}
			a.logger.Info("starting echosign",
				zap.String("backend", settings.Backend),
				zap.String("dev_suffix", cfg.DevSuffix))
			return sysError(server.New(a.dir, reflector, cfg, a.logger).Run(ctx))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
