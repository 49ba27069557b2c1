package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pitstop-erp/pitstop-erp/internal/aging"
	"github.com/pitstop-erp/pitstop-erp/internal/app"
	"github.com/pitstop-erp/pitstop-erp/internal/appointments"
	"github.com/pitstop-erp/pitstop-erp/internal/directory"
	"github.com/pitstop-erp/pitstop-erp/internal/ledger"
	"github.com/pitstop-erp/pitstop-erp/internal/observability"
	"github.com/pitstop-erp/pitstop-erp/internal/parts"
	"github.com/pitstop-erp/pitstop-erp/internal/platform/cache"
	"github.com/pitstop-erp/pitstop-erp/internal/platform/db"
	"github.com/pitstop-erp/pitstop-erp/internal/procurement"
	"github.com/pitstop-erp/pitstop-erp/internal/vehicles"
	"github.com/pitstop-erp/pitstop-erp/internal/workshop"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, contact cache disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	contactCache := directory.NewContactCache(redisClient, cfg.DirectoryCacheTTL)

	directoryRepo := directory.NewRepository(pool)
	directoryService := directory.NewService(directoryRepo, contactCache, logger)
	directoryHandler := directory.NewHandler(logger, directoryService)

	vehiclesRepo := vehicles.NewRepository(pool)
	vehiclesService := vehicles.NewService(vehiclesRepo)
	vehiclesHandler := vehicles.NewHandler(logger, vehiclesService)

	partsRepo := parts.NewRepository(pool)
	partsService := parts.NewService(partsRepo)
	partsHandler := parts.NewHandler(logger, partsService)

	appointmentsRepo := appointments.NewRepository(pool)
	appointmentsService := appointments.NewService(appointmentsRepo, logger)
	appointmentsHandler := appointments.NewHandler(logger, appointmentsService)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	workshopRepo := workshop.NewRepository(pool)
	workshopService := workshop.NewService(workshopRepo, ledgerService)
	workshopHandler := workshop.NewHandler(logger, workshopService)

	procurementRepo := procurement.NewRepository(pool)
	procurementService := procurement.NewService(procurementRepo, ledgerService)
	procurementHandler := procurement.NewHandler(logger, procurementService)

	agingRepo := aging.NewPostgresRepository(pool)
	agingLookup := directory.NewAgingLookup(directoryRepo, contactCache)
	agingService := aging.NewService(agingRepo, agingLookup, aging.DefaultLedgerPolicy, logger)
	agingHandler := aging.NewHandler(logger, agingService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		DirectoryHandler:    directoryHandler,
		VehiclesHandler:     vehiclesHandler,
		PartsHandler:        partsHandler,
		AppointmentsHandler: appointmentsHandler,
		WorkshopHandler:     workshopHandler,
		ProcurementHandler:  procurementHandler,
		LedgerHandler:       ledgerHandler,
		AgingHandler:        agingHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
