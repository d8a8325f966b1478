package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resolution errors
const (
	// ErrCodeConfigInvalid indicates a configuration slice failed its shape.
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
	// ErrCodeConstructionFailed indicates a component's construction function failed.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
	// ErrCodeCyclicDependency indicates a component depends on itself transitively.
	ErrCodeCyclicDependency ErrorCode = "CYCLIC_DEPENDENCY"
)

// Invocation errors
const (
	// ErrCodeInvalidInput indicates an operation input failed its shape.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeOutputInvalid indicates an operation handler returned a value outside its shape.
	ErrCodeOutputInvalid ErrorCode = "OUTPUT_INVALID"
	// ErrCodeHandlerFailed indicates an operation handler returned an error.
	ErrCodeHandlerFailed ErrorCode = "HANDLER_FAILED"
)

// Generic errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Phase names the step of resolution or invocation an error belongs to.
type Phase string

const (
	PhaseValidation   Phase = "validation"
	PhaseConstruction Phase = "construction"
	PhaseInput        Phase = "input"
	PhaseOutput       Phase = "output"
	PhaseHandler      Phase = "handler"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConstructionFailed: true,
	ErrCodeConfigInvalid:      false,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
