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
	"github.com/shopspring/decimal"
	billingapp "github.com/wagginmeals/backend/internal/application/billing"
	catalogapp "github.com/wagginmeals/backend/internal/application/catalog"
	checkoutapp "github.com/wagginmeals/backend/internal/application/checkout"
	consultationapp "github.com/wagginmeals/backend/internal/application/consultation"
	contentapp "github.com/wagginmeals/backend/internal/application/content"
	identityapp "github.com/wagginmeals/backend/internal/application/identity"
	integrationapp "github.com/wagginmeals/backend/internal/application/integration"
	inventoryapp "github.com/wagginmeals/backend/internal/application/inventory"
	marketingapp "github.com/wagginmeals/backend/internal/application/marketing"
	orderapp "github.com/wagginmeals/backend/internal/application/order"
	paymentapp "github.com/wagginmeals/backend/internal/application/payment"
	promotionapp "github.com/wagginmeals/backend/internal/application/promotion"
	shippingapp "github.com/wagginmeals/backend/internal/application/shipping"
	subscriptionapp "github.com/wagginmeals/backend/internal/application/subscription"
	taxapp "github.com/wagginmeals/backend/internal/application/tax"
	"github.com/wagginmeals/backend/internal/infrastructure/auth"
	"github.com/wagginmeals/backend/internal/infrastructure/cache"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"github.com/wagginmeals/backend/internal/infrastructure/event"
	"github.com/wagginmeals/backend/internal/infrastructure/logger"
	"github.com/wagginmeals/backend/internal/infrastructure/payment"
	"github.com/wagginmeals/backend/internal/infrastructure/persistence"
	"github.com/wagginmeals/backend/internal/infrastructure/scheduler"
	"github.com/wagginmeals/backend/internal/infrastructure/telemetry"
	"github.com/wagginmeals/backend/internal/interfaces/http/handler"
	"github.com/wagginmeals/backend/internal/interfaces/http/middleware"
	"github.com/wagginmeals/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/wagginmeals/backend/docs"
)

const version = "1.0.0"

//	@title			Waggin Meals API
//	@version		1.0
//	@description	Storefront, subscription billing and back-office API for Waggin Meals.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Customer bearer token. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Waggin Meals backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	telCfg := telemetry.ConfigFromSettings(cfg.Telemetry, version)
	tp, err := telemetry.NewTracerProvider(context.Background(), telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	mp, err := telemetry.NewMeterProvider(context.Background(), telCfg, cfg.Telemetry.MetricsInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	lp, err := telemetry.NewLoggerProvider(context.Background(), telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	defer func() {
		if err := lp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	if lp.IsEnabled() {
		bridged, err := logger.New(&logger.Config{
			Level:       cfg.Log.Level,
			Format:      cfg.Log.Format,
			Output:      cfg.Log.Output,
			MaxSizeMB:   cfg.Log.MaxSizeMB,
			MaxBackups:  cfg.Log.MaxBackups,
			MaxAgeDays:  cfg.Log.MaxAgeDays,
			OTel:        lp.Provider(),
			ServiceName: cfg.Telemetry.ServiceName,
		})
		if err != nil {
			log.Fatal("Failed to bridge logger to OpenTelemetry", zap.Error(err))
		}
		log = bridged
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.Open(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFromSettings(cfg.Telemetry), log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	variantRepo := persistence.NewGormVariantRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	historyRepo := persistence.NewGormSubscriptionHistoryRepository(db.DB)
	methodRepo := persistence.NewGormPaymentMethodRepository(db.DB)
	taxRepo := persistence.NewGormTaxRateRepository(db.DB)
	discountRepo := persistence.NewGormDiscountRepository(db.DB)
	inventoryTxRepo := persistence.NewGormInventoryTransactionRepository(db.DB)
	subscriberRepo := persistence.NewGormSubscriberRepository(db.DB)
	consultationRepo := persistence.NewGormConsultationRepository(db.DB)
	caseStudyRepo := persistence.NewGormCaseStudyRepository(db.DB)
	archiveRepo := persistence.NewGormArchiveRepository(db.DB)

	// Locks and token revocation share Redis when it is available
	lockStore, redisClient, err := cache.NewLockStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize lock store", zap.Error(err))
	}
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
	}

	gateway, err := payment.NewGateway(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}
	gw := newGateways(cfg, log)
	defer gw.Close()

	eventBus := event.NewInMemoryEventBus(log)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	adminAuthService := identityapp.NewAdminAuthService(identityapp.AdminAuthServiceConfig{
		Username:     cfg.Admin.Username,
		PasswordHash: cfg.Admin.PasswordHash,
	}, jwtService, blacklist, log)
	customerAuthService := identityapp.NewCustomerAuthService(jwtService, customerRepo, log)
	productService := catalogapp.NewProductService(productRepo, variantRepo, log)
	inventoryService := inventoryapp.NewInventoryService(persistence.NewGormTransactionScope(db.DB), variantRepo, inventoryTxRepo, log)
	taxService := taxapp.NewTaxService(taxRepo, log)
	discountService := promotionapp.NewDiscountService(discountRepo)
	shippingService := shippingapp.NewShippingService(gw.rates, log)
	paymentMethodService := paymentapp.NewPaymentMethodService(gateway, methodRepo, customerRepo, subscriptionRepo, log)
	pricer := catalogapp.NewPricer(productRepo, variantRepo)
	subscriptionService := subscriptionapp.NewSubscriptionService(subscriptionRepo, invoiceRepo, historyRepo, methodRepo, pricer, log)
	orderService := orderapp.NewOrderService(orderRepo, gw.pdf, log)
	contactService := integrationapp.NewContactService(gw.crm, customerRepo, log)
	newsletterService := marketingapp.NewNewsletterService(subscriberRepo, contactService, log)
	caseStudyService := contentapp.NewCaseStudyService(caseStudyRepo, log)
	archiveService := contentapp.NewArchiveService(archiveRepo, log)
	uploadService := contentapp.NewUploadService(gw.storage, log)
	consultationService := consultationapp.NewConsultationService(consultationapp.ConsultationServiceConfig{
		Repo:      consultationRepo,
		Customers: customerRepo,
		Payments:  paymentMethodService,
		Mailer:    gw.mailer,
		Contacts:  contactService,
		Fee:       consultationFee(cfg.Consultation, log),
		Logger:    log,
	})
	checkoutService := checkoutapp.NewCheckoutService(checkoutapp.CheckoutServiceConfig{
		Customers:      customerRepo,
		Orders:         orderRepo,
		Subscriptions:  subscriptionRepo,
		Invoices:       invoiceRepo,
		History:        historyRepo,
		Payments:       paymentMethodService,
		Shipping:       shippingService,
		Tax:            taxService,
		Discounts:      discountService,
		Stock:          inventoryService,
		Catalog:        pricer,
		EventPublisher: eventBus,
		Logger:         log,
	})
	billingMetrics, err := telemetry.NewBillingMetrics(mp.Meter("wagginmeals/billing"))
	if err != nil {
		log.Fatal("Failed to register billing metrics", zap.Error(err))
	}
	billingService := billingapp.NewBillingService(billingapp.BillingServiceConfig{
		Subscriptions:  subscriptionRepo,
		Invoices:       invoiceRepo,
		History:        historyRepo,
		Orders:         orderRepo,
		Customers:      customerRepo,
		Methods:        methodRepo,
		Gateway:        gateway,
		Tax:            taxService,
		Stock:          inventoryService,
		Locks:          lockStore,
		Metrics:        billingMetrics,
		EventPublisher: eventBus,
		MaxAttempts:    cfg.Billing.MaxAttempts,
		LockTTL:        cfg.Billing.LockTTL,
		Logger:         log,
	})

	// Event handlers
	crmHandler := integrationapp.NewCRMEventHandler(gw.crm, contactService, customerRepo, log)
	stockLowHandler := inventoryapp.NewStockLowHandler(log)
	eventBus.Subscribe(crmHandler)
	eventBus.Subscribe(stockLowHandler)
	if gw.mailer != nil {
		eventBus.Subscribe(integrationapp.NewEmailEventHandler(gw.mailer, customerRepo, orderRepo, log))
	}
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	log.Info("Event handlers registered",
		zap.Strings("crm_events", crmHandler.EventTypes()),
		zap.Strings("stock_events", stockLowHandler.EventTypes()),
		zap.Bool("email_enabled", gw.mailer != nil),
	)

	if cfg.Billing.SchedulerEnabled {
		billingScheduler, err := scheduler.NewBillingScheduler(scheduler.ConfigFromSettings(cfg.Billing), billingService, log)
		if err != nil {
			log.Fatal("Failed to create billing scheduler", zap.Error(err))
		}
		if err := billingScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start billing scheduler", zap.Error(err))
		}
		defer func() {
			if err := billingScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping billing scheduler", zap.Error(err))
			}
		}()
		log.Info("Billing scheduler started",
			zap.Int("hour", cfg.Billing.DailyHour),
			zap.Int("minute", cfg.Billing.DailyMinute),
		)
	}

	handlers := router.Handlers{
		AdminAuth:     handler.NewAdminAuthHandler(adminAuthService, cfg.Cookie),
		Billing:       handler.NewBillingHandler(billingService),
		Checkout:      handler.NewCheckoutHandler(checkoutService),
		Consultation:  handler.NewConsultationHandler(consultationService),
		Content:       handler.NewContentHandler(caseStudyService, archiveService, uploadService),
		Discount:      handler.NewDiscountHandler(discountService),
		GHL:           handler.NewGHLHandler(contactService),
		Inventory:     handler.NewInventoryHandler(inventoryService),
		Newsletter:    handler.NewNewsletterHandler(newsletterService),
		Order:         handler.NewOrderHandler(orderService),
		PaymentMethod: handler.NewPaymentMethodHandler(paymentMethodService),
		Product:       handler.NewProductHandler(productService),
		Shipping:      handler.NewShippingHandler(shippingService),
		Subscription:  handler.NewSubscriptionHandler(subscriptionService),
		Tax:           handler.NewTaxHandler(taxService),
	}
	guards := router.Guards{
		Admin:            middleware.AdminAuth(adminAuthService, cfg.Cookie.Name),
		Customer:         middleware.CustomerAuth(customerAuthService),
		OptionalCustomer: middleware.OptionalCustomer(customerAuthService),
		Caller:           middleware.CallerAuth(adminAuthService, cfg.Cookie.Name, customerAuthService),
		Cron:             middleware.CronAuth(cfg.Billing.CronSecret),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure(middleware.DefaultSecurityConfig(cfg.App.IsProduction())))
	engine.Use(middleware.CORS(cfg.HTTP))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.GET("/health", handler.NewHealthHandler(db.SQL()).Health)
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(router.Groups(handlers, guards)...).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// consultationFee parses the configured fee, falling back to the standard price
func consultationFee(cfg config.ConsultationConfig, log *zap.Logger) decimal.Decimal {
	fallback := decimal.NewFromInt(395)
	if cfg.Fee == "" {
		return fallback
	}
	fee, err := decimal.NewFromString(cfg.Fee)
	if err != nil || !fee.IsPositive() {
		log.Warn("Invalid consultation fee, using default", zap.String("fee", cfg.Fee), zap.String("default", fallback.String()))
		return fallback
	}
	return fee
}
