package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kndndrj/nvim-dbedit/dbedit/adapters"
	"github.com/kndndrj/nvim-dbedit/dbedit/server"
)

var (
	flags      Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "dbedit-serve",
	Short: "Serve a database table over the dbedit JSON protocol",
	Long: `Serves the records of a single table so that the editor can use it as
an http endpoint.

Example:
  dbedit-serve --type sqlite --url ./data.db --table entries --addr :8080`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &Config{}
		if configPath != "" {
			loaded, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		cfg.override(&flags, cmd.Flags().Changed)
		if err := cfg.validate(); err != nil {
			return err
		}

		logger, err := newLogger(cfg.Debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.Flags().StringVar(&flags.Type, "type", "", "endpoint type (sqlite, postgres, mysql, redis, http)")
	rootCmd.Flags().StringVar(&flags.URL, "url", "", "connection url of the endpoint")
	rootCmd.Flags().StringVar(&flags.Table, "table", "", "table holding the records")
	rootCmd.Flags().StringVar(&flags.Addr, "addr", defaultAddr, "listen address")
	rootCmd.Flags().BoolVar(&flags.Debug, "debug", false, "log at debug level")
	rootCmd.Flags().StringVar(&configPath, "config", "", "yaml config file")
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func serve(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	endpoint, err := adapters.NewEndpoint(cfg.endpointParams())
	if err != nil {
		return fmt.Errorf("adapters.NewEndpoint: %w", err)
	}
	defer endpoint.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(endpoint, logger.Sugar()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("type", cfg.Type), zap.String("table", cfg.Table))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
