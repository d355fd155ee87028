package constvars

const (
	// Generic messages
	ResponseUnknown = "unknown"
	ResponseSuccess = "success"
	ResponseError   = "error"

	// Order-related messages
	CreateOrderSuccessMessage     = "order queued for submission"
	GetOrderSuccessMessage        = "get order successfully"
	ConfirmPreviewSuccessMessage  = "preview approved, order released for submission"
	RejectPreviewSuccessMessage   = "preview rejected, order routed for manual review"
	HealthCheckSuccessMessage     = "service healthy"
)
