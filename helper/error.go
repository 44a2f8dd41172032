package helper

import "fmt"

// OperationError wraps an error with the operation that produced it.
type OperationError struct {
	Operation string
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("error in %s: %v", e.Operation, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewError wraps err with the name of the failed operation.
func NewError(operation string, err error) error {
	return &OperationError{Operation: operation, Err: err}
}
