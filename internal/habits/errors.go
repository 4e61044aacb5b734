package habits

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation names a habit id that is not in the collection
	ErrNotFound = errors.New("habit not found")
	// ErrInvalidLevel is returned for levels outside 0..3
	ErrInvalidLevel = errors.New("invalid level")
	// ErrInvalidDate is returned for record keys that are not YYYY-MM-DD dates
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidHabit is returned when a create or update would leave a habit without a name
	ErrInvalidHabit = errors.New("invalid habit")
	// ErrInvalidSettings is returned for settings holding malformed colors
	ErrInvalidSettings = errors.New("invalid settings")
	// ErrPersistence matches every *PersistenceError
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError reports a document read or write that did not complete
type PersistenceError struct {
	Op   string
	Name string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
