// package repository provides data access and error types
package repository

import (
	"fmt"
)

// ErrInvalidTodo is returned when a todo cannot be written as given
type ErrInvalidTodo struct {
	Reason string
}

// Error implements the error interface
func (e ErrInvalidTodo) Error() string {
	return fmt.Sprintf("invalid todo: %s", e.Reason)
}
