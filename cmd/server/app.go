package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"propdesk.backend/internal/config"
	"propdesk.backend/internal/infrastructure/cache"
	"propdesk.backend/internal/infrastructure/events"
	"propdesk.backend/internal/infrastructure/jobs"
	"propdesk.backend/internal/infrastructure/mailer"
	"propdesk.backend/internal/infrastructure/metrics"
	"propdesk.backend/internal/infrastructure/pricefeed"
	"propdesk.backend/internal/infrastructure/repositories"
	"propdesk.backend/internal/interfaces/http/handlers"
	"propdesk.backend/internal/interfaces/http/middleware"
	"propdesk.backend/internal/usecases"
	"propdesk.backend/pkg/crypto"
	"propdesk.backend/pkg/jwt"
	"propdesk.backend/pkg/logger"
	"propdesk.backend/pkg/redis"
)

var newPublisher = func(url, exchange string) (eventPublisher, error) {
	return events.NewPublisher(url, exchange)
}

type eventPublisher interface {
	usecases.EventPublisher
	Close()
}

// application is the wired HTTP service.
type application struct {
	handler      http.Handler
	engine       *gin.Engine
	publisher    eventPublisher
	priceRefresh *jobs.PriceRefreshJob
}

// Close releases broker connections.
func (a *application) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
}

// buildApplication wires stores, usecases and routes on top of db.
func buildApplication(cfg *config.Config, db *gorm.DB) (*application, error) {
	ctx := context.Background()

	sealer, err := crypto.NewSealer(cfg.Security.CredentialsEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials encryption key: %w", err)
	}

	var planEntries []config.PlanEntry
	if cfg.Plans.CatalogFile != "" {
		planEntries, err = config.LoadPlanFile(cfg.Plans.CatalogFile)
		if err != nil {
			return nil, err
		}
	}
	catalog, err := usecases.NewPlanCatalog(planEntries)
	if err != nil {
		return nil, fmt.Errorf("invalid plan catalog: %w", err)
	}
	logger.Info(ctx, "Plan catalog loaded", zap.Int("plans", len(catalog.All())))

	publisher, err := newPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to message broker: %w", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	purchaseRepo := repositories.NewPurchaseRepository(db)
	accountRepo := repositories.NewTradingAccountRepository(db, sealer)
	kycRepo := repositories.NewKYCRepository(db)
	withdrawalRepo := repositories.NewWithdrawalRepository(db)
	ledgerRepo := repositories.NewWebhookEventRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Shared stores fall back to process memory without Redis.
	var (
		priceCache usecases.PriceCache
		challenges usecases.ChallengeStore
	)
	if redis.Enabled() {
		priceCache = cache.NewRedisPriceCache(redis.GetClient())
		challenges = cache.NewRedisChallengeStore(redis.GetClient())
	} else {
		logger.Warn(ctx, "REDIS_URL not set, using in-memory price cache and quote store")
		priceCache = cache.NewMemoryPriceCache()
		challenges = cache.NewMemoryChallengeStore()
	}

	var sender usecases.EmailSender = mailer.LogSender{}
	if cfg.Email.ResendAPIKey != "" {
		sender = mailer.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.From)
	} else {
		logger.Warn(ctx, "RESEND_API_KEY not set, emails will only be logged")
	}

	stats := metrics.New()

	// Usecases
	notificationUsecase := usecases.NewNotificationUsecase(sender, nil, cfg.Email.AdminEmail, cfg.Email.DashboardURL, stats)
	priceOracle := usecases.NewPriceOracle(
		pricefeed.NewClient(cfg.Prices.APIURL, cfg.Prices.APIKey, cfg.Prices.UserAgent, cfg.Prices.HTTPTimeout),
		priceCache,
		stats,
		usecases.PriceOracleConfig{FreshFor: cfg.Prices.CacheTTL},
	)
	userUsecase := usecases.NewUserUsecase(userRepo, accountRepo)
	accountUsecase := usecases.NewAccountUsecase(accountRepo, purchaseRepo, userRepo, notificationUsecase)
	kycUsecase := usecases.NewKYCUsecase(kycRepo, userRepo, uow, notificationUsecase)
	withdrawalUsecase := usecases.NewWithdrawalUsecase(withdrawalRepo, accountRepo, userRepo, uow, notificationUsecase)
	orderUsecase := usecases.NewOrderUsecase(priceOracle, challenges, purchaseRepo, catalog, notificationUsecase, publisher, cfg.Crypto.Wallets, cfg.Crypto.QuoteTTL)
	webhookUsecase := usecases.NewWebhookUsecase(cfg.Webhook.Secret, userRepo, purchaseRepo, accountRepo, ledgerRepo, uow, catalog, notificationUsecase, publisher, stats)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware(stats))

	registerHealthRoute(r)
	registerMetricsRoute(r, stats.Handler())
	registerAPIV1Routes(r, routeDeps{
		webhookHandler: handlers.NewWebhookHandler(webhookUsecase),
		priceHandler:   handlers.NewPriceHandler(priceOracle),
		orderHandler:   handlers.NewOrderHandler(orderUsecase, userUsecase),
		profileHandler: handlers.NewProfileHandler(userUsecase, accountUsecase, kycUsecase, withdrawalUsecase),
		adminHandler:   handlers.NewAdminHandler(userUsecase, accountUsecase, kycUsecase, withdrawalUsecase, notificationUsecase),

		authMiddleware:        middleware.AuthMiddleware(jwtService),
		optionalAuth:          middleware.OptionalAuth(jwtService),
		resolveUser:           middleware.ResolveUser(userUsecase),
		idempotencyMiddleware: middleware.IdempotencyMiddleware(),
	})

	return &application{
		handler:      withCORS(r, cfg.Server.CORSAllowedOrigins),
		engine:       r,
		publisher:    publisher,
		priceRefresh: jobs.NewPriceRefreshJob(priceOracle, cfg.Prices.RefreshInterval),
	}, nil
}
