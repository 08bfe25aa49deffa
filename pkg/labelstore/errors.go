package labelstore

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrObjectNotFound indicates an object does not exist in storage
	ErrObjectNotFound = errors.New("object not found")

	// ErrStoreUnreachable indicates the object store failed the startup probe
	ErrStoreUnreachable = errors.New("object store unreachable")

	// ErrIngestionNotFound indicates an ingestion record was not found
	ErrIngestionNotFound = errors.New("ingestion record not found")
)

// StorageError represents an error from an object-store operation
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConfigError represents a fatal startup failure loading a required source
// (category table, label-ID table). No partially loaded state is usable
// after it.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
