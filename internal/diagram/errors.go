package diagram

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrCancelled   = errors.New("cancelled by user")
	ErrQueueClosed = errors.New("store is closed")
)

// ValidationError reports a missing or invalid field. It is returned before
// any backend call and leaves the store untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a failed backend create, update or delete call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// LoadError is returned when the diagram cannot be fetched.
type LoadError struct {
	DiagramID string
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load diagram %s: %v", e.DiagramID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SchemaError is a schema regeneration failure. After a successful
// structural change it is only logged and the previous schema text stays.
type SchemaError struct {
	DiagramID string
	Err       error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("generate schema for diagram %s: %v", e.DiagramID, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }
