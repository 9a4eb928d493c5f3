package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wetech/config"
	"wetech/cron"
	"wetech/database"
	clientRepo "wetech/database/repository/client"
	invoiceRepo "wetech/database/repository/invoice"
	productRepo "wetech/database/repository/product"
	"wetech/handlers"
	"wetech/middleware"
	"wetech/routes"
	"wetech/services/gateway"
	"wetech/services/gateway/azampay"
	"wetech/services/gateway/pesapal"
	"wetech/services/invoice"
	"wetech/services/lead"
	"wetech/services/payment"
	"wetech/services/product"
	"wetech/services/tasks"
	"wetech/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	flashTTL            = 10 * time.Minute
	verifyMaxRetry      = 6
	workerConcurrency   = 5
	healthCheckInterval = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := utils.NewLogger(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	mongoClient, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("main: database connection failed", zap.Error(err))
	}
	db := mongoClient.Database(cfg.DatabaseName)
	logger.Info("Connected to MongoDB", zap.String("database", cfg.DatabaseName))

	flashRedis, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisFlashDB)
	if err != nil {
		logger.Fatal("main: redis connection failed", zap.Error(err))
	}

	// Metrics.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := utils.NewMetrics(registry)

	// Repositories.
	invoices := invoiceRepo.NewMongoInvoiceRepo(db, logger)
	clients := clientRepo.NewMongoClientRepo(db, logger)
	products := productRepo.NewMongoProductRepo(db, logger)
	transactor := database.NewMongoTransactor(mongoClient)

	// Gateways. A vendor without credentials stays disabled.
	retry := gateway.RetryPolicy{MaxAttempts: cfg.RetryMaxAttempts, BaseDelay: cfg.RetryBaseDelay}
	var pesapalGW payment.PesapalGateway
	pp, err := pesapal.NewClient(pesapal.Config{
		BaseURL:        cfg.PesapalBaseURL,
		ConsumerKey:    cfg.PesapalConsumerKey,
		ConsumerSecret: cfg.PesapalConsumerSecret,
		Timeout:        cfg.GatewayTimeout,
		Retry:          retry,
	}, logger, metrics)
	if err != nil {
		logger.Warn("Pesapal disabled", zap.Error(err))
	} else {
		pesapalGW = pp
	}

	var azamGW payment.AzamPayGateway
	az, err := azampay.NewClient(azampay.Config{
		AppName:      cfg.AzamPayAppName,
		ClientID:     cfg.AzamPayClientID,
		ClientSecret: cfg.AzamPayClientSecret,
		Sandbox:      cfg.AzamPaySandbox,
		Timeout:      cfg.GatewayTimeout,
		Retry:        retry,
	}, logger, metrics)
	if err != nil {
		logger.Warn("AzamPay disabled", zap.Error(err))
	} else {
		azamGW = az
	}

	// Background verification queue.
	queueOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisQueueDB}
	queue := asynq.NewClient(queueOpts)
	defer queue.Close()
	scheduler := tasks.NewScheduler(queue, cfg.VerifyDelay, verifyMaxRetry, logger)

	// Services.
	paymentService := payment.NewService(payment.Deps{
		Invoices:  invoices,
		Clients:   clients,
		Pesapal:   pesapalGW,
		AzamPay:   azamGW,
		Scheduler: scheduler,
		Metrics:   metrics,
		Logger:    logger,
	}, payment.Options{RespectManualOverride: cfg.RespectManualOverride})
	leadService := lead.NewService(transactor, clients, products, invoices, logger)
	invoiceService := invoice.NewService(invoices, clients, products, logger)
	productService := product.NewService(products, logger)

	worker := cron.NewVerificationWorker(queueOpts, workerConcurrency, paymentService, logger)
	worker.Start()

	monitor := utils.NewHealthMonitor(map[string]utils.Pinger{
		"mongodb": utils.MongoPinger(mongoClient),
		"redis":   utils.RedisPinger(flashRedis),
	})
	rootCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	monitor.Start(rootCtx, healthCheckInterval)

	var issuer *utils.TokenIssuer
	if issuer, err = utils.NewTokenIssuer(cfg.JWTSecret); err != nil {
		logger.Warn("Admin API disabled", zap.Error(err))
	}

	// Handlers.
	flasher := handlers.NewFlasher(utils.NewRedisFlashStore(flashRedis, flashTTL), cfg.IsProduction(), logger)
	urls := handlers.NewURLBuilder(cfg.SiteURL)
	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewPaymentHandler(paymentService, flasher, urls, logger),
		handlers.NewLeadHandler(leadService, urls, logger),
		handlers.NewInvoiceHandler(invoiceService, flasher, logger),
		handlers.NewProductHandler(productService, logger),
		handlers.NewAdminHandler(cfg.AdminUsername, cfg.AdminPasswordHash, issuer, logger),
		handlers.NewHealthHandler(monitor, logger),
	)

	router := gin.New()
	// Without trusted proxies ClientIP is the peer address, never a forwarded header.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Fatal("main: invalid trusted proxies", zap.Error(err))
	}
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))

	var allowedOrigins []string
	if cfg.SiteURL != "" {
		allowedOrigins = []string{cfg.SiteURL}
	}
	routes.RegisterRoutes(router, handlerBundle, routes.Options{
		AllowedOrigins:    allowedOrigins,
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
		TokenIssuer:       issuer,
		MetricsHandler:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:            logger,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	if err := flashRedis.Close(); err != nil {
		logger.Warn("main: redis close failed", zap.Error(err))
	}
	if err := mongoClient.Disconnect(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
