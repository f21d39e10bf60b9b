package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/aazan/internal/adapter/llm"
	"github.com/xiaot623/aazan/internal/adapter/pdf"
	"github.com/xiaot623/aazan/internal/config"
	"github.com/xiaot623/aazan/internal/logging"
	"github.com/xiaot623/aazan/internal/policy"
	"github.com/xiaot623/aazan/internal/repository"
	"github.com/xiaot623/aazan/internal/service"
	httpserver "github.com/xiaot623/aazan/internal/transport/http"
	v1 "github.com/xiaot623/aazan/internal/transport/http/v1"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:           "aazan",
		Short:         "Aazan learn-by-teaching chat backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("env", "", "path to an env file (default ./.env when present)")
	rootCmd.PersistentFlags().String("db", "", "database DSN, overrides DATABASE_URL")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("aazan failed")
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.HTTPPort, _ = cmd.Flags().GetInt("port")
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().Int("port", 0, "listen port, overrides HTTP_PORT")

	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := repository.NewSQLiteStore(cfg.DatabaseURL, repository.Options{MaxOpenConns: cfg.DBMaxConns})
			if err != nil {
				return errors.Wrap(err, "failed to migrate database")
			}
			log.Info().Msg("database schema is up to date")
			return db.Close()
		},
	}
}

// loadConfig reads the configuration, applies the shared flag overrides and
// sets up the global logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		cfg.DatabaseURL = dsn
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Int("port", cfg.HTTPPort).
		Str("model", cfg.GeminiModel).
		Bool("mock", cfg.IsMock()).
		Msg("starting aazan")

	// Initialize store
	db, err := repository.NewSQLiteStore(cfg.DatabaseURL, repository.Options{MaxOpenConns: cfg.DBMaxConns})
	if err != nil {
		return errors.Wrap(err, "failed to initialize store")
	}
	defer db.Close()

	// Initialize policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		return errors.Wrap(err, "failed to initialize policy engine")
	}

	// Initialize model gateway
	gateway := llm.NewGateway(cfg.Mode, llm.Config{
		BaseURL: cfg.GeminiBaseURL,
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.LLMTimeout(),
	})

	svc := service.New(db, gateway, policyEngine, service.Options{MaxContentChars: cfg.MaxContentChars})

	e := httpserver.NewServer(svc, httpserver.ServerOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
		Handler: v1.Options{
			KeepAlive:      cfg.StreamKeepAlive(),
			MaxUploadBytes: cfg.MaxUploadBytes,
			ExtractPDF:     pdf.ExtractText,
		},
	})

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		log.Info().Str("addr", cfg.Addr()).Msg("API listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "failed to start server")
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		log.Info().Msg("shutting down aazan")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("failed to shut down server gracefully")
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	log.Info().Msg("aazan stopped")
	return nil
}
