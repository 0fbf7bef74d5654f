package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pyme-backend/internal/auth"
	"pyme-backend/internal/config"
	"pyme-backend/internal/database"
	"pyme-backend/internal/logger"
	"pyme-backend/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "API de gestión para pequeñas empresas",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

// bootstrap loads the configuration, the logger and the database connection.
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Environment, cfg.LogLevel)

	if err := database.Init(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.L().Sync()

			if !skipMigrate {
				if err := database.Migrate(database.DB); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			limiter := auth.NewRateLimiter(cfg.AuthRatePerSecond, cfg.AuthRateBurst)
			go limiter.CleanupLoop(ctx)

			app := server.New(cfg, limiter)

			errCh := make(chan error, 1)
			go func() {
				logger.L().Info("servidor escuchando", zap.String("port", cfg.HTTPPort))
				errCh <- app.Listen(":" + cfg.HTTPPort)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.L().Info("apagando servidor")
				return app.ShutdownWithContext(context.Background())
			}
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "no ejecutar AutoMigrate al iniciar")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones de la base de datos",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := bootstrap(); err != nil {
				return err
			}
			defer logger.L().Sync()

			return database.Migrate(database.DB)
		},
	}
}
