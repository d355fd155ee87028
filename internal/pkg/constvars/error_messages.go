package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required":     "is required",
	"min":          "must be at least %s characters long",
	"max":          "maximum at %s characters long",
	"len":          "must be %s characters long",
	"oneof":        "must be one of [%s]",
	"numeric":      "must be a number",
	"datetime":     "must be a valid date",
	"phone_number": "must be a valid phone number with country code, e.g. +15551234567",
	"test_code":    "must be a valid lab test code",
	"dx_code":      "must be a valid ICD-10 diagnosis code",
	"npi":          "must be a valid 10-digit NPI",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"len":   true,
	"oneof": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientOrderNotFound                 = "order not found"
	ErrClientOrderNotInPreview             = "order is not awaiting preview approval"
	ErrClientPreviewTokenInvalid           = "preview token is invalid or expired"
	ErrClientPortalLoginFailed             = "portal login failed, order routed for manual review"
	ErrClientPortalRejectedOrder           = "the portal rejected the order data"
)

// Error messages for developers
const (
	ErrDevValidationFailed     = "request validation failed"
	ErrDevInvalidInput         = "invalid input"
	ErrDevCannotParseJSON      = "cannot parse JSON"
	ErrDevCannotMarshalJSON    = "cannot marshal JSON"
	ErrDevServerDeadline       = "server deadline exceeded"
	ErrDevAPIKeyMissing        = "api key missing"
	ErrDevAPIKeyInvalid        = "api key does not match"
	ErrDevPreviewTokenInvalid  = "preview token rejected"
	ErrDevOrderNotFound        = "order document not found"
	ErrDevOrderWrongStatus     = "order is not in an actionable status"
	ErrDevAuthNoSuccessSignal  = "no authenticated-area signal after login submit"
	ErrDevAuthCredentialsWrong = "portal rejected credentials"
	ErrDevElementNotFound      = "element resolver exhausted all strategies"
	ErrDevElementAmbiguous     = "heuristic scan produced an ambiguous match"
	ErrDevControlDisabled      = "required control present but disabled"
	ErrDevPortalValidation     = "portal reported validation errors"
	ErrDevNoConfirmationID     = "no confirmation identifier found on success page"
	ErrDevInteractionTimeout   = "page interaction timed out"
	ErrDevStaleElement         = "element detached before interaction completed"
	ErrDevNavigationFailed     = "page navigation failed"
	ErrDevOracleUnreachable    = "eligibility oracle unreachable"
	ErrDevOracleBadResponse    = "eligibility oracle returned an unreadable response"
	ErrDevSessionDecrypt       = "cannot decrypt stored session blob"
	ErrDevSessionEncrypt       = "cannot encrypt session blob"

	// Driver messages
	ErrDevDBFailedToFindDocument   = "failed to find document"
	ErrDevDBFailedToInsertDocument = "failed to insert document"
	ErrDevDBFailedToUpdateDocument = "failed to update document"
	ErrDevRedisSet                 = "failed to set redis key"
	ErrDevRedisGet                 = "failed to get redis key"
	ErrDevRedisDelete              = "failed to delete redis key"
	ErrDevMinioCreateObject        = "failed to store object in bucket"
	ErrDevMinioPresignObject       = "failed to presign object url"
	ErrDevRabbitMQPublish          = "failed to publish message"
	ErrDevBrowserLaunch            = "failed to launch browser"
	ErrDevBrowserPage              = "failed to open browser page"
	ErrDevBrowserStateExport       = "failed to export browser storage state"
)
