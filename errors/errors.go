package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Component returns the component name recorded on the error, if any.
func (e *AppError) Component() string {
	s, _ := e.Details["component"].(string)
	return s
}

// Operation returns the operation key recorded on the error, if any.
func (e *AppError) Operation() string {
	s, _ := e.Details["operation"].(string)
	return s
}

// Phase returns the phase recorded on the error, if any.
func (e *AppError) Phase() Phase {
	p, _ := e.Details["phase"].(Phase)
	return p
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// --- Resolution errors ---

// ConfigInvalid reports that a component's configuration slice (or the
// aggregate blob, when component is empty) failed validation.
func ConfigInvalid(component string, cause error) *AppError {
	msg := "Configuration is invalid."
	if component != "" {
		msg = fmt.Sprintf("Configuration for component %q is invalid.", component)
	}
	e := &AppError{
		Code: ErrCodeConfigInvalid, Message: msg,
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
		Details: map[string]any{"phase": PhaseValidation},
	}
	if component != "" {
		e.Details["component"] = component
	}
	return e
}

// ConstructionFailed wraps an error raised by a component's construction function.
func ConstructionFailed(component string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConstructionFailed, Message: fmt.Sprintf("Component %q could not be constructed.", component),
		HTTPStatus: http.StatusInternalServerError, Retryable: true, Cause: cause,
		Details: map[string]any{"component": component, "phase": PhaseConstruction},
	}
}

// CyclicDependency reports a dependency cycle. path lists the component
// names from the first visit of the repeated component up to it again.
func CyclicDependency(path []string) *AppError {
	return &AppError{
		Code: ErrCodeCyclicDependency, Message: "Dependency cycle: " + strings.Join(path, " -> "),
		HTTPStatus: http.StatusInternalServerError,
		Details: map[string]any{
			"component": path[len(path)-1],
			"path":      path,
			"phase":     PhaseConstruction,
		},
	}
}

// --- Invocation errors ---

// InvalidInput reports an operation input that failed its shape.
func InvalidInput(operation string, cause error) *AppError {
	return invocation(ErrCodeInvalidInput, "Input is invalid.", http.StatusBadRequest, operation, PhaseInput, cause)
}

// OutputInvalid reports a handler result that failed the operation's output shape.
func OutputInvalid(operation string, cause error) *AppError {
	return invocation(ErrCodeOutputInvalid, "Output is invalid.", http.StatusInternalServerError, operation, PhaseOutput, cause)
}

// HandlerFailed wraps an error returned by an operation handler. When the
// cause is itself an AppError its HTTP status and retryability are kept.
func HandlerFailed(operation string, cause error) *AppError {
	e := invocation(ErrCodeHandlerFailed, "Operation failed.", http.StatusInternalServerError, operation, PhaseHandler, cause)
	if inner, ok := AsAppError(cause); ok {
		e.HTTPStatus = inner.HTTPStatus
		e.Retryable = inner.Retryable
	}
	return e
}

func invocation(code ErrorCode, msg string, status int, operation string, phase Phase, cause error) *AppError {
	if operation != "" {
		msg = fmt.Sprintf("Operation %q: %s", operation, strings.ToLower(msg[:1])+msg[1:])
	}
	e := &AppError{
		Code: code, Message: msg, HTTPStatus: status, Cause: cause,
		Details: map[string]any{"phase": phase},
	}
	if operation != "" {
		e.Details["operation"] = operation
	}
	return e
}

// --- Generic errors ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
