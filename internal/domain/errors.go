package domain

import "errors"

// OrderErrorKind tags the failure category of the execution pipeline so
// callers can switch on it without string matching.
type OrderErrorKind int

const (
	ErrKindValidation OrderErrorKind = iota + 1
	ErrKindRiskLimit
	ErrKindInsufficientBalance
	ErrKindExecution
)

// String returns the human-readable kind name used in logs.
func (k OrderErrorKind) String() string {
	switch k {
	case ErrKindValidation:
		return "validation"
	case ErrKindRiskLimit:
		return "risk_limit"
	case ErrKindInsufficientBalance:
		return "insufficient_balance"
	case ErrKindExecution:
		return "execution"
	default:
		return "unknown"
	}
}

// OrderError is a pipeline failure with a user-correctable message.
type OrderError struct {
	Kind OrderErrorKind
	Msg  string
	Err  error // underlying technical detail, may be nil
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// NewValidationError reports a structural problem in order parameters.
func NewValidationError(msg string) *OrderError {
	return &OrderError{Kind: ErrKindValidation, Msg: msg}
}

// NewRiskLimitError reports a violated, explicitly configured risk rule.
func NewRiskLimitError(msg string) *OrderError {
	return &OrderError{Kind: ErrKindRiskLimit, Msg: msg}
}

// NewInsufficientBalanceError reports margin exceeding free balance.
func NewInsufficientBalanceError(msg string) *OrderError {
	return &OrderError{Kind: ErrKindInsufficientBalance, Msg: msg}
}

// NewExecutionError reports a failure while talking to the venue.
func NewExecutionError(msg string, err error) *OrderError {
	return &OrderError{Kind: ErrKindExecution, Msg: msg, Err: err}
}

// ErrorKind extracts the kind from an error chain. Returns 0 when the error
// carries no kind (unexpected failure).
func ErrorKind(err error) OrderErrorKind {
	var oe *OrderError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return 0
}

// RetriableError marks errors that callers may retry, typically transient
// network failures at the gateway boundary.
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable.
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a network-related error that may be retriable.
type NetworkError struct {
	Op        string // operation that failed (e.g., "connect", "read")
	Err       error
	Retriable bool
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error.
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error.
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

var (
	// ErrInvalidSymbol is returned when a symbol is not supported or malformed.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrNoPrice is returned when no usable market price can be obtained.
	ErrNoPrice = errors.New("no usable price")

	// ErrConfigNotFound is returned when the configuration file is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)
