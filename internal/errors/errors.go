package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation is returned when input is malformed or missing. Nothing is mutated.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated is returned when the request carries no valid token.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when a verified identity lacks the required role.
	ErrForbidden = errors.New("access denied")
	// ErrIPNotAllowed is returned when the caller address is outside the allowlist.
	ErrIPNotAllowed = errors.New("IP not allowed")
	// ErrCaseNotFound is returned when a referenced case does not exist.
	ErrCaseNotFound = errors.New("case not found")
	// ErrUsernameTaken is returned when creating a user with an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrAdminExists is returned when bootstrapping an admin after one exists.
	ErrAdminExists = errors.New("admin already exists")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDecryption is returned when a stored ciphertext cannot be read with the current key.
	ErrDecryption = errors.New("stored value could not be decrypted")
)

// Validation wraps ErrValidation with a short reason.
func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// IsServerError reports whether err maps to a 5xx response.
func IsServerError(err error) bool {
	return MapErrorToHTTP(err).StatusCode >= http.StatusInternalServerError
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unclassified
// becomes a generic 500 so internal details are not leaked.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrIPNotAllowed):
		return NewHTTPError(http.StatusForbidden, ErrIPNotAllowed.Error(), "IP_NOT_ALLOWED")
	case errors.Is(err, ErrCaseNotFound):
		return NewHTTPError(http.StatusNotFound, ErrCaseNotFound.Error(), "CASE_NOT_FOUND")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, ErrUsernameTaken.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrAdminExists):
		return NewHTTPError(http.StatusConflict, ErrAdminExists.Error(), "ADMIN_EXISTS")
	case errors.Is(err, ErrDecryption):
		return NewHTTPError(http.StatusInternalServerError, ErrDecryption.Error(), "DECRYPTION_FAILED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
