package exceptions

import (
	"fmt"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/pkg/constvars"
)

// Portal engine failure taxonomy. The classification carried by each builder is
// what the retry policy consults; nothing else inspects error types.
var (
	// ErrAuthenticationFailed covers rejected credentials and absent
	// authenticated-area signals after login submit. Structural: retrying the
	// same credentials cannot succeed.
	ErrAuthenticationFailed = func(err error, devMessage string) *CustomError {
		return buildClassifiedError(err, constvars.StatusUnauthorized, models.FailureStructural, constvars.ErrClientPortalLoginFailed, devMessage)
	}
	// ErrElementNotFound means the resolver exhausted all strategies for a field.
	ErrElementNotFound = func(fieldName string) *CustomError {
		return buildClassifiedError(nil, constvars.StatusUnprocessableEntity, models.FailureStructural, constvars.ErrClientCannotProcessRequest, fmt.Sprintf("%s: %s", constvars.ErrDevElementNotFound, fieldName))
	}
	ErrControlDisabled = func(fieldName string) *CustomError {
		return buildClassifiedError(nil, constvars.StatusUnprocessableEntity, models.FailureStructural, constvars.ErrClientCannotProcessRequest, fmt.Sprintf("%s: %s", constvars.ErrDevControlDisabled, fieldName))
	}
	// ErrPortalValidation is the portal itself rejecting the entered data.
	// Never retried blindly: unchanged input cannot pass on a second attempt.
	ErrPortalValidation = func(portalMessage string) *CustomError {
		customError := buildClassifiedError(nil, constvars.StatusUnprocessableEntity, models.FailureStructural, constvars.ErrClientPortalRejectedOrder, fmt.Sprintf("%s: %s", constvars.ErrDevPortalValidation, portalMessage))
		customError.IsPortalValidation = true
		return customError
	}
	ErrNoConfirmationID = func() *CustomError {
		return buildClassifiedError(nil, constvars.StatusBadGateway, models.FailureStructural, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevNoConfirmationID)
	}
	// Transient interaction failures: timeouts, stale elements, timing races.
	ErrInteractionTimeout = func(err error, operation string) *CustomError {
		return buildClassifiedError(err, constvars.StatusGatewayTimeout, models.FailureTransient, constvars.ErrClientServerLongRespond, fmt.Sprintf("%s: %s", constvars.ErrDevInteractionTimeout, operation))
	}
	ErrStaleElement = func(err error, fieldName string) *CustomError {
		return buildClassifiedError(err, constvars.StatusBadGateway, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("%s: %s", constvars.ErrDevStaleElement, fieldName))
	}
	ErrNavigationFailed = func(err error, url string) *CustomError {
		return buildClassifiedError(err, constvars.StatusBadGateway, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("%s: %s", constvars.ErrDevNavigationFailed, url))
	}
	// ErrOracleUnavailable is soft: the reconciler absorbs it and passes the
	// original demographics through flagged as unverified.
	ErrOracleUnavailable = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusServiceUnavailable, models.FailureSoft, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevOracleUnreachable)
	}
	ErrOracleBadResponse = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusBadGateway, models.FailureSoft, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevOracleBadResponse)
	}
)

// Session store
var (
	ErrSessionEncrypt = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureStructural, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevSessionEncrypt)
	}
	ErrSessionDecrypt = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureStructural, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevSessionDecrypt)
	}
)

// API surface auth
var (
	ErrMissingAPIKey = func() *CustomError {
		return buildClassifiedError(nil, constvars.StatusUnauthorized, models.FailureStructural, constvars.ErrClientNotAuthorized, constvars.ErrDevAPIKeyMissing)
	}
	ErrInvalidAPIKey = func() *CustomError {
		return buildClassifiedError(nil, constvars.StatusUnauthorized, models.FailureStructural, constvars.ErrClientNotAuthorized, constvars.ErrDevAPIKeyInvalid)
	}
)

// Validation / parsing
var (
	ErrInputValidation = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusBadRequest, models.FailureStructural, FormatFirstValidationError(err), constvars.ErrDevValidationFailed)
	}
	ErrCannotParseJSON = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusBadRequest, models.FailureStructural, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseJSON)
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureStructural, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCannotMarshalJSON)
	}
)

// Order lifecycle
var (
	ErrOrderNotFound = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusNotFound, models.FailureStructural, constvars.ErrClientOrderNotFound, constvars.ErrDevOrderNotFound)
	}
	ErrOrderNotInPreview = func() *CustomError {
		return buildClassifiedError(nil, constvars.StatusConflict, models.FailureStructural, constvars.ErrClientOrderNotInPreview, constvars.ErrDevOrderWrongStatus)
	}
	ErrPreviewTokenInvalid = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusUnauthorized, models.FailureStructural, constvars.ErrClientPreviewTokenInvalid, constvars.ErrDevPreviewTokenInvalid)
	}
)

// Drivers. Infra errors are transient by default: the backing services are
// expected to come back, and the order stays claimable.
var (
	ErrMongoDBFindDocument = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToFindDocument)
	}
	ErrMongoDBInsertDocument = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToInsertDocument)
	}
	ErrMongoDBUpdateDocument = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToUpdateDocument)
	}
	ErrRedisSet = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisSet)
	}
	ErrRedisGet = func(err error, key string) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("%s: %s", constvars.ErrDevRedisGet, key))
	}
	ErrRedisDelete = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisDelete)
	}
	ErrMinioCreateObject = func(err error, bucketName string) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("%s: %s", constvars.ErrDevMinioCreateObject, bucketName))
	}
	ErrMinioPresignObject = func(err error, objectName string) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("%s: %s", constvars.ErrDevMinioPresignObject, objectName))
	}
	ErrRabbitMQPublish = func(err error, queueName string) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf("%s: %s", constvars.ErrDevRabbitMQPublish, queueName))
	}
	ErrBrowserLaunch = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevBrowserLaunch)
	}
	ErrBrowserPage = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevBrowserPage)
	}
	ErrBrowserStateExport = func(err error) *CustomError {
		return buildClassifiedError(err, constvars.StatusInternalServerError, models.FailureTransient, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevBrowserStateExport)
	}
)
