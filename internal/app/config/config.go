package config

import (
	"labbridge-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "labbridge"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "defaultPassword"),
		},
		Minio: Minio{
			Port:       utils.GetEnvString("MINIO_PORT", "9000"),
			Host:       utils.GetEnvString("MINIO_HOST", "localhost"),
			Username:   utils.GetEnvString("MINIO_USERNAME", "defaultUsername"),
			Password:   utils.GetEnvString("MINIO_PASSWORD", "defaultPassword"),
			BucketName: utils.GetEnvString("MINIO_BUCKET_NAME", "labbridge-audit"),
			UseSSL:     utils.GetEnvBool("MINIO_USE_SSL", false),
		},
		Playwright: Playwright{
			Headless:                 utils.GetEnvBool("PLAYWRIGHT_HEADLESS", true),
			BrowserName:              utils.GetEnvString("PLAYWRIGHT_BROWSER", "chromium"),
			SlowMoMs:                 utils.GetEnvInt("PLAYWRIGHT_SLOW_MO_MS", 0),
			NavigationTimeoutSeconds: utils.GetEnvInt("PLAYWRIGHT_NAVIGATION_TIMEOUT_SECONDS", 30),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                    utils.GetEnvString("APP_ENV", "development"),
			Port:                   utils.GetEnvString("APP_PORT", ":8080"),
			Version:                utils.GetEnvString("APP_VERSION", "v1"),
			EndpointPrefix:         utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			Timezone:               utils.GetEnvString("APP_TIMEZONE", "America/New_York"),
			MaxRequests:            utils.GetEnvInt("APP_MAX_REQUEST", 10),
			ShutdownTimeout:        utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			APIKey:                 utils.GetEnvString("APP_API_KEY", ""),
			PreviewTokenSecret:     utils.GetEnvString("APP_PREVIEW_TOKEN_SECRET", ""),
			PreviewTokenTTLMinutes: utils.GetEnvInt("APP_PREVIEW_TOKEN_TTL_MINUTES", 240),
		},
		Portal: Portal{
			Name:                      utils.GetEnvString("PORTAL_NAME", "labcorp-link"),
			BaseURL:                   utils.GetEnvString("PORTAL_BASE_URL", "https://portal.example.com"),
			LoginURL:                  utils.GetEnvString("PORTAL_LOGIN_URL", "https://portal.example.com/login"),
			OrderEntryURL:             utils.GetEnvString("PORTAL_ORDER_ENTRY_URL", "https://portal.example.com/orders/new"),
			Username:                  utils.GetEnvString("PORTAL_USERNAME", ""),
			Password:                  utils.GetEnvString("PORTAL_PASSWORD", ""),
			InteractionTimeoutSeconds: utils.GetEnvInt("PORTAL_INTERACTION_TIMEOUT_SECONDS", 15),
			InteractionsPerSecond:     utils.GetEnvFloat("PORTAL_INTERACTIONS_PER_SECOND", 2),
			PollIntervalSeconds:       utils.GetEnvInt("PORTAL_POLL_INTERVAL_SECONDS", 5),
		},
		Session: Session{
			TTLMinutes:    utils.GetEnvInt("SESSION_TTL_MINUTES", 14),
			EncryptionKey: utils.GetEnvString("SESSION_ENCRYPTION_KEY", ""),
		},
		Retry: Retry{
			MaxAttempts:   utils.GetEnvInt("RETRY_MAX_ATTEMPTS", 3),
			BackoffBaseMs: utils.GetEnvInt("RETRY_BACKOFF_BASE_MS", 2000),
			BackoffCapMs:  utils.GetEnvInt("RETRY_BACKOFF_CAP_MS", 60000),
		},
		Eligibility: Eligibility{
			BaseURL:        utils.GetEnvString("ELIGIBILITY_BASE_URL", "http://localhost:5560"),
			APIKey:         utils.GetEnvString("ELIGIBILITY_API_KEY", ""),
			TimeoutSeconds: utils.GetEnvInt("ELIGIBILITY_TIMEOUT_SECONDS", 10),
		},
		Adaptive: Adaptive{
			Enabled:         utils.GetEnvBool("ADAPTIVE_LOOKUP_ENABLED", false),
			BaseURL:         utils.GetEnvString("ADAPTIVE_LOOKUP_BASE_URL", "http://localhost:5561"),
			APIKey:          utils.GetEnvString("ADAPTIVE_LOOKUP_API_KEY", ""),
			TimeoutSeconds:  utils.GetEnvInt("ADAPTIVE_LOOKUP_TIMEOUT_SECONDS", 20),
			MaxExcerptBytes: utils.GetEnvInt("ADAPTIVE_LOOKUP_MAX_EXCERPT_BYTES", 16384),
			MinConfidence:   utils.GetEnvFloat("ADAPTIVE_LOOKUP_MIN_CONFIDENCE", 0.5),
		},
	}
}
