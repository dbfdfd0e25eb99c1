package e2e

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Fixture provides helpers for creating test fixtures in E2E tests.
type Fixture struct {
	t       *testing.T
	baseDir string
}

// NewFixture creates a new fixture helper rooted at the given directory.
func NewFixture(t *testing.T, baseDir string) *Fixture {
	t.Helper()
	return &Fixture{
		t:       t,
		baseDir: baseDir,
	}
}

// Root returns the fixture base directory.
func (f *Fixture) Root() string {
	return f.baseDir
}

// WriteFile writes content to a file relative to the fixture base directory.
// It creates parent directories as needed.
func (f *Fixture) WriteFile(relPath, content string) string {
	f.t.Helper()
	fullPath := f.Path(relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		f.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}

	return fullPath
}

// WriteSettings writes .vscode/settings.json. The content is written as
// given so tests can use comments and trailing commas.
func (f *Fixture) WriteSettings(content string) string {
	f.t.Helper()
	return f.WriteFile(filepath.Join(".vscode", "settings.json"), content)
}

// WriteExtensions writes .vscode/extensions.json.
func (f *Fixture) WriteExtensions(content string) string {
	f.t.Helper()
	return f.WriteFile(filepath.Join(".vscode", "extensions.json"), content)
}

// Path returns the full path for a relative path.
func (f *Fixture) Path(relPath string) string {
	return filepath.Join(f.baseDir, filepath.FromSlash(relPath))
}

// Exists returns true if the file or directory exists.
func (f *Fixture) Exists(relPath string) bool {
	f.t.Helper()
	_, err := os.Stat(f.Path(relPath))
	return err == nil
}

// ReadFile reads and returns the content of a file.
func (f *Fixture) ReadFile(relPath string) string {
	f.t.Helper()
	fullPath := f.Path(relPath)

	// #nosec G304 - fullPath is constructed from trusted test fixture base and test-provided path
	data, err := os.ReadFile(fullPath)
	if err != nil {
		f.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}

	return string(data)
}

// ReadJSON decodes a JSON object file.
func (f *Fixture) ReadJSON(relPath string) map[string]any {
	f.t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(f.ReadFile(relPath)), &out); err != nil {
		f.t.Fatalf("failed to parse %s: %v", relPath, err)
	}
	return out
}

// Settings decodes the workspace's .vscode/settings.json.
func (f *Fixture) Settings() map[string]any {
	f.t.Helper()
	return f.ReadJSON(".vscode/settings.json")
}

// Recommendations returns the recommendations array of .vscode/extensions.json.
func (f *Fixture) Recommendations() []string {
	f.t.Helper()
	raw, _ := f.ReadJSON(".vscode/extensions.json")["recommendations"].([]any)
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// WorkspaceFixture creates an empty workspace folder under the harness home.
func (h *Harness) WorkspaceFixture(name string) *Fixture {
	h.t.Helper()

	dir := filepath.Join(h.homeDir, "workspaces", name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		h.t.Fatalf("failed to create workspace %s: %v", dir, err)
	}
	return NewFixture(h.t, dir)
}

// TempFixture creates a fixture helper for a new temporary directory.
func (h *Harness) TempFixture() *Fixture {
	h.t.Helper()
	return NewFixture(h.t, h.t.TempDir())
}
