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

	"infogrid-backend-go/internal/config"
	"infogrid-backend-go/internal/db"
	httpapi "infogrid-backend-go/internal/http"
	"infogrid-backend-go/internal/logging"
	"infogrid-backend-go/internal/migrations"
	"infogrid-backend-go/internal/repository"
	"infogrid-backend-go/internal/services"
	"infogrid-backend-go/internal/storage"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func main() {
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "infogrid",
		Short:         "Digital signage content server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server and board hub",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending database migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return migrate(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "seed-admin",
			Short: "Create the initial admin account from ADMIN_SEED_USERNAME/ADMIN_SEED_PASSWORD",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return seedAdmin(cmd.Context())
			},
		},
	)
	return root
}

type app struct {
	cfg     config.Config
	log     *zap.Logger
	db      *sqlx.DB
	repos   repository.Repositories
	cleanup func()
}

func setup(ctx context.Context) (*app, error) {
	cfg := config.Load()
	logger, closeLogs, err := logging.New(logging.Options{
		Dir:           cfg.LogDir,
		RetentionDays: cfg.LogRetentionDays,
		Level:         cfg.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	rt := &app{cfg: cfg, log: logger, cleanup: closeLogs}

	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL is not set, content is kept in memory and lost on restart")
		rt.repos = repository.NewMemory()
		return rt, nil
	}
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		closeLogs()
		return nil, fmt.Errorf("db: %w", err)
	}
	rt.db = database
	rt.repos = repository.NewPostgres(database)
	rt.cleanup = func() {
		_ = database.Close()
		closeLogs()
	}
	return rt, nil
}

func (rt *app) migrate() error {
	if rt.db == nil {
		return nil
	}
	applied, err := migrations.Apply(rt.db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	for _, version := range applied {
		rt.log.Info("migration applied", zap.String("version", version))
	}
	return nil
}

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.cleanup()
	if err := rt.migrate(); err != nil {
		return err
	}

	store, err := storage.New(rt.cfg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	hub := services.NewBoardHub(rt.repos, services.BoardIntervals{
		NewsSeconds:         rt.cfg.NewsSlideSeconds,
		EventSeconds:        rt.cfg.EventSlideSeconds,
		PosterScrollSeconds: rt.cfg.PosterScrollSeconds,
	}, rt.log)
	go hub.Run(ctx)

	server, err := httpapi.NewServer(rt.cfg, rt.repos, store, hub, rt.log)
	if err != nil {
		return err
	}
	if rt.cfg.AdminSeedPassword != "" {
		if res, err := server.Auth.Seed(ctx, rt.cfg.AdminSeedUsername, rt.cfg.AdminSeedPassword); err != nil {
			rt.log.Warn("admin seed failed", zap.Error(err))
		} else if res.Created {
			rt.log.Info(res.Message)
		}
	}

	httpServer := &http.Server{
		Addr:              ":" + rt.cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		rt.log.Info("listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		rt.log.Warn("shutdown", zap.Error(err))
	}
	rt.log.Info("shutdown complete")
	return nil
}

func migrate(ctx context.Context) error {
	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.cleanup()
	if rt.db == nil {
		return errors.New("DATABASE_URL is required to run migrations")
	}
	return rt.migrate()
}

func seedAdmin(ctx context.Context) error {
	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.cleanup()
	if rt.db == nil {
		return errors.New("DATABASE_URL is required to seed an admin")
	}
	if err := rt.migrate(); err != nil {
		return err
	}
	auth := services.NewAuthService(rt.repos.Admins, rt.log)
	res, err := auth.Seed(ctx, rt.cfg.AdminSeedUsername, rt.cfg.AdminSeedPassword)
	if err != nil {
		return err
	}
	fmt.Println(res.Message)
	return nil
}
