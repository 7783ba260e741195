package apierror

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrorCode classifies a service error so the HTTP layer can pick a status
// without inspecting storage errors.
type ErrorCode string

const (
	ErrNotFound ErrorCode = "NOT_FOUND"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	logrus.Error(details)
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// MapErrorToHTTPStatus resolves the status code for a service error. Anything
// not classified as an APIError is a 500.
func MapErrorToHTTPStatus(err error) int {
	if apiErr, ok := err.(APIError); ok {
		switch apiErr.Code {
		case ErrNotFound:
			return http.StatusNotFound
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
