package repository

import "errors"

// Common repository errors
var (
	// ErrCardNotFound is returned when a card is absent or belongs to
	// another owner
	ErrCardNotFound = errors.New("card not found")

	// ErrTodoNotFound is returned when a todo is not found
	ErrTodoNotFound = errors.New("todo not found")

	// ErrStaleOrder is returned when a reorder's id set is not a
	// permutation of the column's current membership
	ErrStaleOrder = errors.New("stale order: id set does not match column membership")
)
