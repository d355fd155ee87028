package exceptions

import (
	"errors"
	"fmt"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/pkg/constvars"
	"runtime"
)

type CustomError struct {
	StatusCode     int                 `json:"status_code"`
	Success        bool                `json:"success"`
	ClientMessage  string              `json:"message"`
	DevMessage     string              `json:"-"`
	Classification models.FailureClass `json:"-"`
	Location       Location            `json:"-"`

	// IsPortalValidation marks the portal's own rejection of the order data,
	// which the retry policy routes to the document fallback.
	IsPortalValidation bool `json:"-"`
}

type Location struct {
	File         string
	Line         int
	FunctionName string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%s (%s:%d %s)", e.DevMessage, e.Location.File, e.Location.Line, e.Location.FunctionName)
}

func WrapWithoutError(statusCode int, clientMessage, devMessage string) *CustomError {
	location := getLocation(2)
	return &CustomError{
		StatusCode:     statusCode,
		ClientMessage:  clientMessage,
		DevMessage:     devMessage,
		Classification: models.FailureStructural,
		Location:       location,
	}
}

func WrapWithError(err error, statusCode int, clientMessage, devMessage string) *CustomError {
	location := getLocation(2)
	return &CustomError{
		StatusCode:     statusCode,
		ClientMessage:  clientMessage,
		DevMessage:     fmt.Sprintf("%s: %s", devMessage, err.Error()),
		Classification: models.FailureStructural,
		Location:       location,
	}
}

func buildClassifiedError(err error, statusCode int, class models.FailureClass, clientMessage, devMessage string) *CustomError {
	location := getLocation(3)
	if err != nil {
		devMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}
	return &CustomError{
		StatusCode:     statusCode,
		ClientMessage:  clientMessage,
		DevMessage:     devMessage,
		Classification: class,
		Location:       location,
	}
}

// AsCustomError unwraps err to a CustomError when one is in the chain.
func AsCustomError(err error) (*CustomError, bool) {
	var customError *CustomError
	if errors.As(err, &customError) {
		return customError, true
	}
	return nil, false
}

// ClassOf extracts the failure classification from any error. Errors that did
// not come from this package are treated as transient: unexpected breakage
// (network drops, driver hiccups) is exactly what a bounded retry may absorb.
func ClassOf(err error) models.FailureClass {
	var customError *CustomError
	if errors.As(err, &customError) {
		return customError.Classification
	}
	return models.FailureTransient
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{
			File:         constvars.ResponseUnknown,
			Line:         0,
			FunctionName: constvars.ResponseUnknown,
		}
	}
	function := runtime.FuncForPC(pc).Name()
	return Location{
		File:         file,
		Line:         line,
		FunctionName: function,
	}
}
