package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/app"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-ledger-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/jwt"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	response.SetDevelopment(cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	services, err := app.NewServices(cfg, stores)
	if err != nil {
		return err
	}

	// The memory store starts empty; give it something to look at.
	if cfg.Database.Driver == config.StorageDriverMemory {
		if _, err := app.SeedDemo(ctx, stores, services.Attendance, time.Now().UTC()); err != nil {
			return err
		}
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	scheduler := cron.NewScheduler(ctx)
	cron.NewSummaryJobs(services.Reports, cfg.Ledger.SummaryRecomputeInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		appHTTP.NewAttendanceHandler(services.Attendance, cfg.Ledger.ImportMaxBytes),
		appHTTP.NewWorksheetHandler(services.Worksheet),
		appHTTP.NewReportHandler(services.Reports),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "storage", cfg.Database.Driver)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
