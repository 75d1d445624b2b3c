package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cambiatec/fiat-notification-reconciler/internal/adapter/gateway/orders"
	"github.com/cambiatec/fiat-notification-reconciler/internal/adapter/http/controller"
	"github.com/cambiatec/fiat-notification-reconciler/internal/adapter/http/middleware"
	"github.com/cambiatec/fiat-notification-reconciler/internal/adapter/http/router"
	"github.com/cambiatec/fiat-notification-reconciler/internal/adapter/repository/postgres"
	"github.com/cambiatec/fiat-notification-reconciler/internal/bankprofile"
	"github.com/cambiatec/fiat-notification-reconciler/internal/config"
	"github.com/cambiatec/fiat-notification-reconciler/internal/matcher"
	"github.com/cambiatec/fiat-notification-reconciler/internal/parser"
	"github.com/cambiatec/fiat-notification-reconciler/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.RunMigrations(startupCtx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	db, err := postgres.Open(startupCtx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	profiles := bankprofile.Builtin()
	if cfg.BankProfileFile != "" {
		extra, err := bankprofile.LoadFile(cfg.BankProfileFile)
		if err != nil {
			log.Fatalf("load bank profiles: %v", err)
		}
		profiles = bankprofile.Merge(profiles, extra)
	}
	paymentParser := parser.New(bankprofile.NewRegistry(profiles))

	policy := matcher.Policy{
		Tolerance:       cfg.MatchTolerance,
		ClockSkew:       cfg.MatchClockSkew,
		PreferPayerHint: cfg.PreferPayerHint,
		PreferOldest:    cfg.PreferOldest,
	}

	notificationRepo := postgres.NewNotificationRepository(db)
	deviceRepo := postgres.NewDeviceRepository(db)
	orderGateway := orders.NewClient(cfg.OrderGatewayURL, cfg.OrderGatewayID, cfg.OrderGatewayKey, cfg.OrderGatewayTimeout)

	reconciler := services.NewReconciliationService(notificationRepo, orderGateway, policy, cfg.SweepInterval, cfg.SweepBatchSize)
	ingestionService := services.NewIngestionService(notificationRepo, paymentParser, reconciler, cfg.DedupeWindow)
	notificationService := services.NewNotificationService(notificationRepo)
	deviceService := services.NewDeviceService(deviceRepo)

	mux := router.New(
		controller.NewIngestionController(ingestionService),
		controller.NewNotificationController(notificationService),
		controller.NewDeviceController(deviceService),
		middleware.DeviceAuth(deviceService),
		middleware.BasicAuth(cfg.InternalID, cfg.InternalKey),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Printf("http server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		return reconciler.Run(groupCtx)
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("server exited: %v", err)
	}

	log.Println("server stopped")
}
