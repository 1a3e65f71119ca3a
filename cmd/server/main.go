package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/retail-core/internal/middleware"
	producthttp "github.com/tair/retail-core/internal/product/delivery/http"
	productdomain "github.com/tair/retail-core/internal/product/domain"
	productrepository "github.com/tair/retail-core/internal/product/repository"
	productcommand "github.com/tair/retail-core/internal/product/usecase/command"
	productquery "github.com/tair/retail-core/internal/product/usecase/query"
	"github.com/tair/retail-core/internal/sale"
	salehttp "github.com/tair/retail-core/internal/sale/delivery/http"
	saledomain "github.com/tair/retail-core/internal/sale/domain"
	salecommand "github.com/tair/retail-core/internal/sale/usecase/command"
	stockdomain "github.com/tair/retail-core/internal/stock/domain"
	stockrepository "github.com/tair/retail-core/internal/stock/repository"
	stockcommand "github.com/tair/retail-core/internal/stock/usecase/command"
	stockquery "github.com/tair/retail-core/internal/stock/usecase/query"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
	tenantrepository "github.com/tair/retail-core/internal/tenant/repository"
	"github.com/tair/retail-core/kafka"
	"github.com/tair/retail-core/pkg/auth"
	"github.com/tair/retail-core/pkg/config"
	"github.com/tair/retail-core/pkg/database"
	"github.com/tair/retail-core/pkg/logger"
	"github.com/tair/retail-core/pkg/tracing"
)

func main() {
	cfg, err := config.Load("retail-core")
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)
	auth.Init(cfg.JWT.SigningKey)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Server.Env).
		Str("log_level", cfg.LogLevel).
		Msg("Starting retail core service")

	tp, err := tracing.InitTracer(cfg.ServiceName)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to shut down tracer")
		}
	}()

	db, err := database.NewGormConnection(database.Config{
		Host:            cfg.DB.Host,
		Port:            cfg.DB.Port,
		User:            cfg.DB.User,
		Password:        cfg.DB.Password,
		DBName:          cfg.DB.DBName,
		SSLMode:         cfg.DB.SSLMode,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	err = db.AutoMigrate(
		&tenantdomain.Tenant{},
		&productdomain.Product{},
		&saledomain.Sale{},
		&saledomain.SaleItem{},
		&stockdomain.StockTransaction{},
	)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Kafka is optional; without it the service runs with events disabled
	var events salecommand.EventPublisher
	if cfg.Kafka.Enabled {
		publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize Kafka publisher")
		}
		defer publisher.Close()
		events = publisher
	} else {
		logger.Logger.Warn().Msg("Kafka disabled, events will not be published")
	}

	tenants := tenantrepository.NewGormTenantRepository(db)
	policy := tenantdomain.NewPolicy(tenants)

	saleHandler, err := sale.InitializeSaleHandler(db, tenants, events)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize sale handler")
	}

	products := productrepository.NewGormProductRepository(db)
	ledger := stockrepository.NewGormLedger(db)
	productHandler := producthttp.NewProductHandler(
		productcommand.NewCreateProductHandler(products, policy),
		productquery.NewGetProductHandler(products),
		productquery.NewListProductsHandler(products),
		stockcommand.NewRestockHandler(ledger),
		stockcommand.NewAdjustStockHandler(ledger),
		stockquery.NewListMovementsHandler(ledger),
	)

	// Setup router
	router := mux.NewRouter()
	salehttp.RegisterHealthCheck(router, sqlDB)
	router.Handle("/metrics", promhttp.Handler())

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequestID)
	api.Use(middleware.Metrics)
	api.Use(middleware.Auth)
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		limiter := middleware.NewRateLimiter(redisClient, 100, time.Minute)
		api.Use(limiter.Middleware)
		logger.Logger.Info().Str("addr", cfg.Redis.Addr).Msg("Rate limiter enabled")
	}

	saleHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      otelhttp.NewHandler(c.Handler(router), "retail-core"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info().
			Str("port", cfg.Server.Port).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Forced shutdown")
	}
}
