package constvars

const (
	LoggingRequestIDKey     = "request_id"
	LoggingOrderIDKey       = "order_id"
	LoggingCorrelationIDKey = "correlation_id"
	LoggingPortalKey        = "portal"
	LoggingStageKey         = "stage"
	LoggingFieldKey         = "field"
	LoggingStrategyKey      = "strategy"
	LoggingSelectorKey      = "selector"
	LoggingAttemptKey       = "attempt"
	LoggingBackoffKey       = "backoff"
	LoggingDurationKey      = "duration"
	LoggingMethodKey        = "method"
	LoggingEndpointKey      = "endpoint"
	LoggingRemoteAddrKey    = "remote_addr"
	LoggingUserAgentKey     = "user_agent"
	LoggingQueryKey         = "query"
	LoggingStatusCodeKey    = "status_code"
	LoggingSuccessKey       = "success"
	LoggingErrorCodeKey     = "error_code"
	LoggingErrorMessageKey  = "error_message"
	LoggingReferenceKey     = "reference"
	LoggingDismissedKey     = "dismissed"
	LoggingClassKey         = "failure_class"
)
