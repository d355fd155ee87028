package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_API_KEY_AUTH             ContextKey = "api_key_auth"
)

const (
	ResourceOrders = "orders"
)

const (
	// MongoCollectionOrders holds order documents and their audit trails.
	MongoCollectionOrders = "orders"
)

const (
	// RedisKeyPortalSessionFormat is the single session slot per portal.
	RedisKeyPortalSessionFormat = "labbridge:portal:%s:session"
)

const (
	// Queue names consumed by out-of-process collaborators.
	QueueEscalations      = "labbridge.escalations"
	QueueDocumentFallback = "labbridge.document-fallback"
)

const (
	// MinioAuditObjectFormat is orderID, sequence, stage, unix timestamp.
	MinioAuditObjectFormat = "orders/%s/%03d_%s_%d.png"
)
