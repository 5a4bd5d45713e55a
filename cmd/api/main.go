package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/app"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/clock"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/platform/config"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/platform/metrics"
	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/storage/postgres"
	transporthttp "github.com/jesseadams/waterwaycleanups.org-sub003/internal/transport/http"
	"github.com/jesseadams/waterwaycleanups.org-sub003/migrations"
)

func main() {
	logger := log.Default()

	cfg, err := config.Load(logger)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), cfg.StartupTimeout)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	m := metrics.New()
	clk := clock.NewSystem()
	reservationRepo := postgres.NewReservationRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)
	minorRepo := postgres.NewMinorRepository(pool)

	eventSvc := app.NewEventService(eventRepo, clk)
	rsvpSvc := app.NewRSVPService(reservationRepo, minorRepo, clk, m)
	cancelSvc := app.NewCancelService(reservationRepo, clk, m)

	handler := transporthttp.NewRouter(transporthttp.RouterDeps{
		RSVP:        rsvpSvc,
		Cancel:      cancelSvc,
		Reader:      eventSvc,
		Admin:       eventSvc,
		Verifier:    transporthttp.NewTokenVerifier(cfg.SessionSigningKey),
		Logger:      logger,
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Printf("rsvp api listening on :%s", cfg.Port)

	g, gctx := errgroup.WithContext(stopCtx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
	logger.Printf("server stopped")
}
