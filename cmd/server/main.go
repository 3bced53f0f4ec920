package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbooking "github.com/openaccounting/backend/internal/application/booking"
	appcatalog "github.com/openaccounting/backend/internal/application/catalog"
	appidentity "github.com/openaccounting/backend/internal/application/identity"
	"github.com/openaccounting/backend/internal/application/payments"
	"github.com/openaccounting/backend/internal/application/reporting"
	"github.com/openaccounting/backend/internal/infrastructure/config"
	"github.com/openaccounting/backend/internal/infrastructure/importer"
	"github.com/openaccounting/backend/internal/infrastructure/logger"
	"github.com/openaccounting/backend/internal/infrastructure/persistence"
	"github.com/openaccounting/backend/internal/infrastructure/printing"
	"github.com/openaccounting/backend/internal/infrastructure/storage"
	"github.com/openaccounting/backend/internal/infrastructure/telemetry"
	"github.com/openaccounting/backend/internal/interfaces/http/dto"
	"github.com/openaccounting/backend/internal/interfaces/http/handler"
	"github.com/openaccounting/backend/internal/interfaces/http/middleware"
	"github.com/openaccounting/backend/internal/interfaces/http/router"
)

const localBillDir = "data/bills"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting OpenAccounting Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// The booking time zone decides which accounting month a
	// timestamp belongs to. Validated in config.Load.
	timeZone, err := time.LoadLocation(cfg.Booking.TimeZone)
	if err != nil {
		log.Fatal("Failed to load booking time zone", zap.Error(err))
	}

	// Telemetry (no-op providers when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Database with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database schema migrated")

	// All writes of one use case run inside a single transaction
	scope := persistence.NewGormTransactionScope(db.DB)

	// PDF rendering and bill archive are optional
	var renderer reporting.PDFRenderer
	if cfg.Printing.Enabled {
		chromedpRenderer := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			RenderTimeout: cfg.Printing.RenderTimeout,
			RemoteURL:     cfg.Printing.RemoteChrome,
			NoSandbox:     true,
			Logger:        log,
		})
		defer chromedpRenderer.Close()
		renderer = chromedpRenderer
		log.Info("PDF rendering enabled", zap.String("remote_chrome", cfg.Printing.RemoteChrome))
	}

	var archive reporting.BillArchive
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3BillArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize bill archive", zap.Error(err))
		}
		archive = s3Archive
		log.Info("Bill archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	} else if cfg.Printing.Enabled {
		localArchive, err := storage.NewLocalBillArchive(localBillDir)
		if err != nil {
			log.Fatal("Failed to initialize local bill archive", zap.Error(err))
		}
		archive = localArchive
		log.Info("Bill archive on local disk", zap.String("dir", localBillDir))
	}

	// Activity importers by payment service code
	parsers := map[string]payments.ActivityParser{
		"paypal": importer.NewPayPalActivityCSVParser(),
	}

	// Application services
	monthService := appbooking.NewAccountingMonthService(scope, timeZone, log)
	itemService := appbooking.NewItemService(scope, log)
	associationService := appbooking.NewAssociationService(scope, log)
	paymentService := payments.NewPaymentService(scope, timeZone, log)
	importService := payments.NewImportService(scope, parsers, log)
	identityService := appidentity.NewIdentityService(scope, log)
	catalogService := appcatalog.NewCatalogService(scope, log)
	billingService := reporting.NewBillingService(scope, renderer, archive, timeZone, log)
	distributionService := reporting.NewDistributionService(scope, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dto.RegisterValidations()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS(&cfg.HTTP))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}

	r := router.New(engine, log)
	r.Register(
		handler.NewSystemHandler(db, cfg.App.Name, log),
		handler.NewAccountingMonthHandler(monthService, log),
		handler.NewItemHandler(itemService, timeZone, cfg.Booking.NativeCurrency, log),
		handler.NewPaymentHandler(paymentService, associationService, importService,
			timeZone, cfg.Booking.NativeCurrency, log),
		handler.NewIdentityHandler(identityService, log),
		handler.NewCatalogHandler(catalogService, cfg.Booking.NativeCurrency, log),
		handler.NewReportHandler(billingService, distributionService, log),
	)
	r.Setup("v1")

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
