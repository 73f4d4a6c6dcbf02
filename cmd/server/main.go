package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pharmapool.backend/internal/config"
	"pharmapool.backend/internal/infrastructure/events"
	"pharmapool.backend/internal/infrastructure/gateway"
	"pharmapool.backend/internal/infrastructure/jobs"
	"pharmapool.backend/internal/infrastructure/models"
	"pharmapool.backend/internal/infrastructure/repositories"
	"pharmapool.backend/internal/interfaces/http/handlers"
	"pharmapool.backend/internal/interfaces/http/middleware"
	"pharmapool.backend/internal/usecases"
	"pharmapool.backend/pkg/jwt"
	"pharmapool.backend/pkg/logger"
	"pharmapool.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(driver, dsn string) (*gorm.DB, error) {
		gormCfg := &gorm.Config{TranslateError: true}
		if driver == config.DriverSQLite {
			return gorm.Open(sqlite.Open(dsn), gormCfg)
		}
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), gormCfg)
	}
	newGateway = gateway.New
	runServer  = func(ctx context.Context, r *gin.Engine, port string) error {
		return serveHTTP(ctx, r, ":"+port, shutdownTimeout)
	}
	getStdDB   = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.Driver, cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if cfg.Database.Driver == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info(ctx, "Database ready", zap.String("driver", cfg.Database.Driver))

	provider, err := newGateway(gatewayConfig(cfg.Gateway))
	if err != nil {
		return fmt.Errorf("failed to initialize payment gateway: %w", err)
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	walletRepo := repositories.NewWalletRepository(db)
	conversationRepo := repositories.NewConversationRepository(db)
	userRepo := repositories.NewUserRepository(db)
	eventRepo := repositories.NewWalletEventRepository(db)
	uow := repositories.NewUnitOfWork(db)

	var publisher usecases.EventPublisher = events.NewLogPublisher()
	if cfg.Events.Enabled {
		publisher = events.NewRedisPublisher(cfg.Events.Channel)
	}

	escrowUsecase := usecases.NewEscrowUsecase(
		walletRepo,
		conversationRepo,
		userRepo,
		eventRepo,
		uow,
		provider,
		publisher,
		usecases.EscrowConfig{
			DefaultRequiredPartners: cfg.Escrow.DefaultRequiredPartners,
			LockRetries:             cfg.Escrow.LockRetries,
			GatewayTimeout:          cfg.Gateway.Timeout,
		},
	)

	// Paystack signs its callbacks with the secret key, whichever provider
	// is active for new checkouts.
	webhookVerifier := gateway.NewPaystackClient(gatewayConfig(cfg.Gateway).Paystack)

	walletHandler := handlers.NewWalletHandler(escrowUsecase)
	webhookHandler := handlers.NewWebhookHandler(webhookVerifier, escrowUsecase)
	adminHandler := handlers.NewAdminHandler(escrowUsecase)

	reconcileJob := jobs.NewPendingPledgeReconcileJob(
		escrowUsecase,
		cfg.Escrow.ReconcileInterval,
		cfg.Escrow.ReconcileAge,
		cfg.Escrow.ReconcileBatch,
	)
	go reconcileJob.Start(ctx)
	defer reconcileJob.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		walletHandler:  walletHandler,
		webhookHandler: webhookHandler,
		adminHandler:   adminHandler,
		authMiddleware: middleware.AuthMiddleware(jwtService),
	})

	logger.Info(ctx, "Pharmapool backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("gateway", provider.Name()),
		zap.Int("routes", len(r.Routes())),
	)

	if err := runServer(ctx, r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(ctx, "Server stopped")
	return nil
}

func gatewayConfig(c config.GatewayConfig) gateway.Config {
	return gateway.Config{
		Provider: c.Provider,
		Paystack: gateway.PaystackConfig{
			SecretKey:        c.PaystackSecretKey,
			BaseURL:          c.PaystackBaseURL,
			SettlementBank:   c.PaystackSettlementBank,
			AccountNumber:    c.PaystackAccountNumber,
			PercentageCharge: c.PaystackPercentageCharge,
			Currency:         c.Currency,
			Timeout:          c.Timeout,
		},
		Razorpay: gateway.RazorpayConfig{
			KeyID:     c.RazorpayKeyID,
			KeySecret: c.RazorpayKeySecret,
			Currency:  c.Currency,
			Timeout:   c.Timeout,
		},
	}
}
