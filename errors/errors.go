package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for categorization and handling

var (
	// ErrNotFound indicates a requested resource was not found, or belongs
	// to another tenant. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrDatabaseOperation indicates a database operation failed
	ErrDatabaseOperation = errors.New("database operation failed")

	// ErrLLMCommunication indicates LLM communication failed
	ErrLLMCommunication = errors.New("llm communication failed")
)

// LLMError reports a failed extraction or answer-generation call. Status
// follows gateway semantics: 503 when credentials are missing, 502 for a
// bad or unparseable upstream response, 504 on timeout.
type LLMError struct {
	Status  int
	Message string
	Err     error
}

func (e *LLMError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm error %d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("llm error %d: %s", e.Status, e.Message)
}

func (e *LLMError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrLLMCommunication
}

// NewLLMError builds an LLMError with the given gateway status.
func NewLLMError(status int, message string, err error) *LLMError {
	return &LLMError{Status: status, Message: message, Err: err}
}

// LLMMissingCredentials is returned before any network call when no API key is configured.
func LLMMissingCredentials() *LLMError {
	return NewLLMError(http.StatusServiceUnavailable, "llm credentials are not configured", nil)
}

// LLMBadGateway covers non-2xx responses, empty content and unexpected shapes.
func LLMBadGateway(message string, err error) *LLMError {
	return NewLLMError(http.StatusBadGateway, message, err)
}

// LLMTimeout is returned when the request deadline expires.
func LLMTimeout(err error) *LLMError {
	return NewLLMError(http.StatusGatewayTimeout, "llm request timed out", err)
}

// Validation wraps ErrInvalidInput with a caller-facing message.
func Validation(message string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, message)
}

// WrapError wraps an error with context message and stack
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsDatabaseOperation checks if error came from the persistence layer
func IsDatabaseOperation(err error) bool {
	return errors.Is(err, ErrDatabaseOperation)
}

// AsLLMError extracts an LLMError from the chain.
func AsLLMError(err error) (*LLMError, bool) {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr, true
	}
	return nil, false
}

// HTTPStatus maps an error to the status code the web layer should return.
func HTTPStatus(err error) int {
	if llmErr, ok := AsLLMError(err); ok {
		return llmErr.Status
	}
	switch {
	case IsInvalidInput(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
