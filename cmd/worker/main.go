package main

import (
	"context"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/app/drivers/browser"
	"labbridge-service/internal/app/drivers/database"
	"labbridge-service/internal/app/drivers/logger"
	"labbridge-service/internal/app/drivers/messaging"
	"labbridge-service/internal/app/drivers/storage"
	"labbridge-service/internal/app/services/core/orders"
	"labbridge-service/internal/app/services/portal/agent"
	"labbridge-service/internal/app/services/portal/audit"
	"labbridge-service/internal/app/services/portal/authflow"
	"labbridge-service/internal/app/services/portal/navigator"
	"labbridge-service/internal/app/services/portal/reconciler"
	"labbridge-service/internal/app/services/portal/resolver"
	"labbridge-service/internal/app/services/portal/retrypolicy"
	"labbridge-service/internal/app/services/portal/sweeper"
	"labbridge-service/internal/app/services/shared/adaptive"
	"labbridge-service/internal/app/services/shared/eligibility"
	"labbridge-service/internal/app/services/shared/notifier"
	"labbridge-service/internal/app/services/shared/sessions"
	sharedstorage "labbridge-service/internal/app/services/shared/storage"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	logger.InitLogrus(internalConfig)
	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)

	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig)
	minioClient := storage.NewMinio(driverConfig)
	storage.EnsureBucket(context.Background(), minioClient, driverConfig.Minio.BucketName)

	portalBrowser, err := browser.NewPlaywrightBrowser(driverConfig)
	if err != nil {
		log.Fatalf("Failed to start browser: %v", err)
	}

	queueService, err := notifier.NewQueueService(rabbitMQ, zapLogger)
	if err != nil {
		log.Fatalf("Failed to set up escalation queues: %v", err)
	}

	orderRepository := orders.NewOrderMongoRepository(mongoDB, driverConfig.MongoDB.DbName)
	sessionStore := sessions.NewRedisSessionStore(redisClient, internalConfig, zapLogger)
	auditStorage := sharedstorage.NewMinioStorage(minioClient, driverConfig)

	var oracle contracts.EligibilityClient
	if internalConfig.Eligibility.BaseURL != "" {
		oracle = eligibility.NewEligibilityClient(internalConfig)
	}

	elementResolver := resolver.NewResolver(
		resolver.DefaultCatalog(internalConfig.Portal.Name),
		adaptive.NewAdaptiveClient(internalConfig),
		internalConfig,
		zapLogger,
	)
	popupSweeper := sweeper.NewSweeper(zapLogger)
	auditRecorder := audit.NewRecorder(auditStorage, orderRepository, zapLogger)

	portalAgent := agent.NewAgent(
		portalBrowser,
		sessionStore,
		orderRepository,
		auditStorage,
		queueService,
		queueService,
		authflow.NewAuthFlow(elementResolver, popupSweeper, sessionStore, internalConfig, zapLogger),
		navigator.NewNavigator(elementResolver, popupSweeper, auditRecorder, internalConfig, zapLogger),
		reconciler.NewReconciler(oracle, zapLogger),
		retrypolicy.NewPolicy(internalConfig),
		internalConfig,
		zapLogger,
	)

	runCtx, stop := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		portalAgent.Run(runCtx)
	}()

	bootstrap := config.Bootstrap{
		MongoDB:        mongoDB,
		Redis:          redisClient,
		RabbitMQ:       rabbitMQ,
		Logger:         zapLogger,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
		WorkerStop: func() {
			stop()
			wg.Wait()
			if err := portalBrowser.Close(); err != nil {
				log.Printf("Error closing browser: %v", err)
			}
			if err := queueService.Close(); err != nil {
				log.Printf("Error closing queue channel: %v", err)
			}
		},
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Println("Stopping portal agent..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer cancel()

	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Worker exiting")
}
