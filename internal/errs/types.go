package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

// NotFoundError maps to 404.
type NotFoundError struct {
	ErrorMessage
}

// AlreadyExistsError maps to 409.
type AlreadyExistsError struct {
	ErrorMessage
}

// ValidationError maps to 400.
type ValidationError struct {
	ErrorMessage
}

// WindowClosedError is returned when a prediction is submitted outside its
// type's submission window. Maps to 403.
type WindowClosedError struct {
	ErrorMessage
}

// LimitExceededError is returned when a per-day or rate limit is hit. Maps
// to 429.
type LimitExceededError struct {
	ErrorMessage
}

// UnauthorizedError maps to 401.
type UnauthorizedError struct {
	ErrorMessage
}

// ForbiddenError maps to 403.
type ForbiddenError struct {
	ErrorMessage
}

// DatabaseError wraps a Firestore failure with the operation that caused it.
type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// ExternalServiceError marks a failure of an upstream dependency (market
// data, Vertex, Kafka). Transient failures map to 503, the rest to 502.
type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Transient bool
	Err       error
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewAlreadyExistsError(message string) *AlreadyExistsError {
	return &AlreadyExistsError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewWindowClosedError(message string) *WindowClosedError {
	return &WindowClosedError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewLimitExceededError(message string) *LimitExceededError {
	return &LimitExceededError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{ErrorMessage: ErrorMessage{Message: message}}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewExternalServiceError(service, message string, transient bool, err error) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		Transient:    transient,
		Err:          err,
	}
}
