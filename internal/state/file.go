package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauern/wsprofile/internal/logging"
)

// errCorrupt marks a state file that exists but is not a JSON object.
var errCorrupt = errors.New("state file is corrupt")

// File is a Memento backed by one JSON object on disk, keyed by state key.
// Every Get reads the file so a reload always reflects what was persisted.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a File memento at path. The file is created on first Update.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Get implements Memento.
func (f *File) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	value, ok := doc[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return value, nil
}

// Update implements Memento.
func (f *File) Update(ctx context.Context, key string, value json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("state value for %q is not valid JSON", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	switch {
	case errors.Is(err, errCorrupt):
		logging.WithContext(ctx).Warn("state file is corrupt, rebuilding it; other keys are lost",
			logging.Path(f.path), slog.String("key", key), logging.Err(err))
		doc = map[string]json.RawMessage{}
	case err != nil:
		return err
	}
	doc[key] = value
	return f.writeAtomic(doc)
}

// Close implements Memento.
func (f *File) Close() error {
	return nil
}

func (f *File) read() (map[string]json.RawMessage, error) {
	// #nosec G304 - path comes from wsprofile configuration
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", errCorrupt, f.path, err)
	}
	return doc, nil
}

// writeAtomic writes to a temp file then renames it over the state file.
func (f *File) writeAtomic(doc map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}
