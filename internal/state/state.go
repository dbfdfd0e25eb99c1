// Package state provides the durable key-value slot wsprofile keeps its user
// profiles in. A value is an opaque JSON document; callers decode it.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrKeyNotFound is returned by Get when nothing was ever stored under a key.
var ErrKeyNotFound = errors.New("state key not found")

// Memento is a durable key-value store of JSON documents.
type Memento interface {
	// Get returns the document stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (json.RawMessage, error)
	// Update replaces the document stored under key. The write is durable
	// when Update returns nil.
	Update(ctx context.Context, key string, value json.RawMessage) error
	// Close releases underlying resources.
	Close() error
}

// Backend names a Memento implementation.
type Backend string

const (
	// BackendFile stores every key in a single JSON file.
	BackendFile Backend = "file"
	// BackendSQLite stores keys in a SQLite table.
	BackendSQLite Backend = "sqlite"
)

// IsValid returns true if the backend is recognized.
func (b Backend) IsValid() bool {
	switch b {
	case BackendFile, BackendSQLite:
		return true
	default:
		return false
	}
}

// ParseBackend parses a backend name, case-insensitively.
func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	if !b.IsValid() {
		return "", fmt.Errorf("unsupported state backend %q (valid: file, sqlite)", s)
	}
	return b, nil
}

// Open opens the Memento for backend at path.
func Open(backend Backend, path string) (Memento, error) {
	switch backend {
	case BackendFile:
		return NewFile(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported state backend %q", backend)
	}
}
