package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	airiqadapter "github.com/rgdservices/opsboard/internal/adapter/driven/airiq"
	jobberadapter "github.com/rgdservices/opsboard/internal/adapter/driven/jobber"
	"github.com/rgdservices/opsboard/internal/adapter/driven/memory"
	mondayadapter "github.com/rgdservices/opsboard/internal/adapter/driven/monday"
	openphoneadapter "github.com/rgdservices/opsboard/internal/adapter/driven/openphone"
	sqliteadapter "github.com/rgdservices/opsboard/internal/adapter/driven/sqlite"
	httphandler "github.com/rgdservices/opsboard/internal/adapter/driving/http"
	webhandler "github.com/rgdservices/opsboard/internal/adapter/driving/web"
	"github.com/rgdservices/opsboard/internal/application"
	"github.com/rgdservices/opsboard/internal/config"
	"github.com/rgdservices/opsboard/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration. Missing provider credentials are not fatal:
	// they surface as panel-level errors on the board instead.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"jobber_configured", cfg.HasJobberCredentials(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	noteStore := sqliteadapter.NewNoteRepo(db)
	statsArchive := sqliteadapter.NewStatsArchiveRepo(db)
	tokenStore := memory.NewTokenStore(cfg.JobberAccessToken, slog.Default())

	jobberAuth := jobberadapter.NewOAuth(
		cfg.JobberClientID,
		cfg.JobberClientSecret,
		cfg.JobberRefreshToken,
		cfg.JobberRedirectURI,
		slog.Default(),
	)
	jobberClient := jobberadapter.NewClient(jobberAuth, tokenStore, slog.Default())
	openphoneClient := openphoneadapter.NewClient(cfg.OpenPhoneAPIKey, slog.Default())
	mondayClient := mondayadapter.NewClient(cfg.MondayAPIToken, slog.Default())
	airiqClient := airiqadapter.NewClient(cfg.AirIQUsername, cfg.AirIQPassword, slog.Default())

	// 6. Create the call stats aggregator.
	statsSvc := application.NewCallStatsService(statsArchive, slog.Default())

	// 7. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(
		jobberClient,
		openphoneClient,
		mondayClient,
		airiqClient,
		statsSvc,
		noteStore,
		statsArchive,
		tokenStore,
		slog.Default(),
	)
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	// 7b. Register the dashboard and operator OAuth pages.
	webHandler := webhandler.NewHandler(jobberAuth, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// 7c. Prometheus scrape endpoint.
	mux.Handle("GET /metrics", metrics.Handler())

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("opsboard started", "listen_addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s timeout for HTTP server drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
