package utils

import (
	"errors"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/dto/responses"
	"labbridge-service/internal/pkg/exceptions"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

func BuildSuccessResponse(w http.ResponseWriter, code int, message string, data interface{}) {
	response := responses.ResponseDTO{
		Success: true,
		Message: message,
		Data:    data,
	}
	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}

func BuildErrorResponse(logger *zap.Logger, w http.ResponseWriter, err error) {
	var customError *exceptions.CustomError
	if !errors.As(err, &customError) {
		customError = exceptions.WrapWithError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevInvalidInput)
	}

	logger.Error("request failed",
		zap.Int(constvars.LoggingStatusCodeKey, customError.StatusCode),
		zap.String(constvars.LoggingErrorMessageKey, customError.DevMessage),
	)

	response := responses.ResponseDTO{
		Success: false,
		Message: customError.ClientMessage,
	}
	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(customError.StatusCode)
	json.NewEncoder(w).Encode(response)
}
