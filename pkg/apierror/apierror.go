package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// Unauthorized returns the generic 401 error. All authentication
// failures share one message so callers cannot probe which check failed.
func Unauthorized() *APIError {
	return New("UNAUTHORIZED", "could not validate credentials", "", http.StatusUnauthorized)
}

// Validation returns a 422 with a field-level message.
func Validation(field string, message string) *APIError {
	return New("VALIDATION_ERROR", message, field, http.StatusUnprocessableEntity)
}
