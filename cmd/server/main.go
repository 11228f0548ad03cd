package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/quizdeck/backend/internal/auth"
	"github.com/quizdeck/backend/internal/config"
	"github.com/quizdeck/backend/internal/database"
	"github.com/quizdeck/backend/internal/generator"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/store"
	"github.com/quizdeck/backend/internal/store/memory"
	"github.com/quizdeck/backend/internal/store/postgres"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const devJWTSecret = "dev-secret-change-me"

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file")
	migrateOnly := pflag.Bool("migrate-only", false, "apply database migrations and exit")
	pflag.Parse()

	if err := run(*configPath, *migrateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "server exited: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, migrateOnly bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	if migrateOnly {
		log.Info("migrations applied")
		return nil
	}

	secret := cfg.JWTSecret
	if secret == "" {
		log.Warn("JWT_SECRET not set, using development secret")
		secret = devJWTSecret
	}

	drafter := generator.FromConfig(cfg.Generator, log)
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: newRouter(deps{
			store:       st,
			tokens:      auth.NewTokens(secret, cfg.TokenTTL),
			drafter:     drafter,
			adminEmails: cfg.AdminEmails,
			corsOrigins: cfg.CORSOrigins,
			log:         log,
		}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "port", cfg.Port, "store", cfg.Store, "generator", drafter.ModelName())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore returns the configured store. For postgres it connects and
// applies pending migrations first.
func openStore(cfg *config.Config, log *logger.Logger) (store.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store, data is lost on restart")
		return memory.New(), func() {}, nil
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	if v, dirty, err := database.Version(db); err == nil {
		log.Info("database ready", "schema_version", v, "dirty", dirty)
	}
	return postgres.New(db), func() { db.Close() }, nil
}
