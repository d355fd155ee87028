package config

type (
	DriverConfig struct {
		MongoDB    MongoDB
		Redis      Redis
		RabbitMQ   RabbitMQ
		Minio      Minio
		Playwright Playwright
		Logger     Logger
	}

	MongoDB struct {
		Port     string
		Host     string
		DbName   string
		Username string
		Password string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
	}
	RabbitMQ struct {
		Port     string
		Host     string
		Username string
		Password string
	}
	Minio struct {
		Port       string
		Host       string
		Username   string
		Password   string
		BucketName string
		UseSSL     bool
	}
	Playwright struct {
		Headless                 bool
		BrowserName              string
		SlowMoMs                 int
		NavigationTimeoutSeconds int
	}
	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}

	InternalConfig struct {
		App         App
		Portal      Portal
		Session     Session
		Retry       Retry
		Eligibility Eligibility
		Adaptive    Adaptive
	}

	App struct {
		Env                    string
		Port                   string
		Version                string
		EndpointPrefix         string
		Timezone               string
		MaxRequests            int
		ShutdownTimeout        int
		APIKey                 string
		PreviewTokenSecret     string
		PreviewTokenTTLMinutes int
	}

	Portal struct {
		Name                      string
		BaseURL                   string
		LoginURL                  string
		OrderEntryURL             string
		Username                  string
		Password                  string
		InteractionTimeoutSeconds int
		InteractionsPerSecond     float64
		PollIntervalSeconds       int
	}

	Session struct {
		// TTLMinutes stays below the portal's own idle timeout so a reused
		// session never dies mid-order.
		TTLMinutes    int
		EncryptionKey string
	}

	Retry struct {
		MaxAttempts   int
		BackoffBaseMs int
		BackoffCapMs  int
	}

	Eligibility struct {
		BaseURL        string
		APIKey         string
		TimeoutSeconds int
	}

	Adaptive struct {
		Enabled         bool
		BaseURL         string
		APIKey          string
		TimeoutSeconds  int
		MaxExcerptBytes int
		MinConfidence   float64
	}
)
