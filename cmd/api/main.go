package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/lamnguyendev/talentbridge-backend/api/routes"
	"github.com/lamnguyendev/talentbridge-backend/internal/contracts"
	"github.com/lamnguyendev/talentbridge-backend/internal/documents"
	"github.com/lamnguyendev/talentbridge-backend/internal/exchange"
	"github.com/lamnguyendev/talentbridge-backend/internal/invoices"
	"github.com/lamnguyendev/talentbridge-backend/internal/payments"
	"github.com/lamnguyendev/talentbridge-backend/pkg/config"
	"github.com/lamnguyendev/talentbridge-backend/pkg/db"
	"github.com/lamnguyendev/talentbridge-backend/pkg/logger"
	"github.com/lamnguyendev/talentbridge-backend/pkg/metrics"
	"github.com/lamnguyendev/talentbridge-backend/pkg/migrate"
	"github.com/lamnguyendev/talentbridge-backend/pkg/redis"
	"github.com/lamnguyendev/talentbridge-backend/pkg/storage/gcs"
)

// Reference rates served when no external rate feed is configured. Contract
// submissions always carry their own negotiated rate.
var defaultReferenceRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(25000),
	"JPY": decimal.NewFromInt(170),
	"EUR": decimal.NewFromInt(27500),
	"SGD": decimal.NewFromInt(19000),
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	transitionMetrics := metrics.NewTransitionMetrics(prometheus.DefaultRegisterer)

	contractRepo := contracts.NewRepository(dbClient.DB())
	documentRepo := documents.NewRepository(dbClient.DB())

	documentService, err := documents.NewService(documentRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create document service", err)
		os.Exit(1)
	}

	contractService, err := contracts.NewService(contractRepo, documentRepo, dbClient, logg, transitionMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create contract payment service", err)
		os.Exit(1)
	}

	invoiceService, err := invoices.NewService(contractRepo, documentRepo, dbClient, gcsClient, cfg.Invoice, logg, transitionMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(contractRepo, logg, transitionMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	rateSource, err := exchange.NewCachedSource(
		exchange.NewStaticSource(defaultReferenceRates),
		redisClient,
		cfg.Exchange.CacheTTL,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create exchange rate source", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			contractService,
			documentService,
			invoiceService,
			paymentService,
			rateSource,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
