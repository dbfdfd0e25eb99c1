package apply

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/klauern/wsprofile/internal/model"
	"github.com/klauern/wsprofile/internal/util"
)

// ErrInvalidSetting marks a key or value the settings writer refuses.
var ErrInvalidSetting = errors.New("invalid setting")

// SettingsWriter updates one workspace-scoped setting.
type SettingsWriter interface {
	Update(ctx context.Context, key string, value any) error
}

// FileSettingsWriter edits a workspace's .vscode/settings.json. Each Update
// re-reads the file so edits made between calls are kept.
type FileSettingsWriter struct {
	mu     sync.Mutex
	path   string
	indent string
}

// NewFileSettingsWriter returns a writer for root's settings.json.
func NewFileSettingsWriter(root, indent string) *FileSettingsWriter {
	if indent == "" {
		indent = DefaultIndent
	}
	return &FileSettingsWriter{path: util.SettingsFile(root), indent: indent}
}

// Path returns the settings file being edited.
func (w *FileSettingsWriter) Path() string {
	return w.path
}

// Update sets key to value and rewrites the file.
func (w *FileSettingsWriter) Update(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := CheckSetting(key, value); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	doc, err := readJSONObject(w.path)
	if err != nil {
		return err
	}
	doc[key] = value

	data, err := encodeJSON(doc, w.indent)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return writeFileAtomic(w.path, data)
}

// CheckSetting applies the rules a workspace configuration update enforces:
// a non-empty key without whitespace, an object value for language overrides,
// and a value that encodes as JSON.
func CheckSetting(key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidSetting)
	}
	if strings.ContainsFunc(key, unicode.IsSpace) {
		return fmt.Errorf("%w: key %q contains whitespace", ErrInvalidSetting, key)
	}
	if (model.KeySetting{Key: key}).IsLanguageScoped() {
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("%w: language override %s must be an object", ErrInvalidSetting, key)
		}
	}
	if _, err := json.Marshal(value); err != nil {
		return fmt.Errorf("%w: value for %s is not JSON: %w", ErrInvalidSetting, key, err)
	}
	return nil
}
