// Package model defines the workspace profile types shared by the store,
// the applier and the session protocol.
package model

import "strings"

// RecommendedExtension is a VS Code extension a profile suggests installing.
type RecommendedExtension struct {
	// ID is the marketplace identifier, "publisher.name".
	ID   string `json:"id" yaml:"id" toml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
}

// KeySetting is a single settings.json entry. Key may be a dotted path such as
// "editor.formatOnSave" or a language scope such as "[python]".
type KeySetting struct {
	Key         string `json:"key" yaml:"key" toml:"key"`
	Value       any    `json:"value" yaml:"value" toml:"value"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

// IsLanguageScoped reports whether the key is a language override like
// "[javascript][typescript]".
func (s KeySetting) IsLanguageScoped() bool {
	return strings.HasPrefix(s.Key, "[") && strings.HasSuffix(s.Key, "]")
}

// ConfigFile is an extra file written verbatim when a profile scaffolds a new
// workspace. Path is relative to the workspace root and slash separated.
type ConfigFile struct {
	Path    string `json:"path" yaml:"path" toml:"path"`
	Content string `json:"content" yaml:"content" toml:"content"`
}

// WorkspaceProfile is a named bundle of recommended extensions and settings.
type WorkspaceProfile struct {
	ID                    string                 `json:"id" yaml:"id" toml:"id"`
	Name                  string                 `json:"name" yaml:"name" toml:"name"`
	Description           string                 `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	RecommendedExtensions []RecommendedExtension `json:"recommendedExtensions" yaml:"recommendedExtensions" toml:"recommendedExtensions"`
	KeySettingsSnippet    []KeySetting           `json:"keySettingsSnippet" yaml:"keySettingsSnippet" toml:"keySettingsSnippet"`
	Files                 []ConfigFile           `json:"files,omitempty" yaml:"files,omitempty" toml:"files,omitempty"`

	// IsUserDefined is assigned when profiles are read back from the store.
	// It is never persisted.
	IsUserDefined bool `json:"-" yaml:"-" toml:"-"`
}

// ExtensionIDs returns the non-empty extension ids in declaration order.
func (p WorkspaceProfile) ExtensionIDs() []string {
	ids := make([]string, 0, len(p.RecommendedExtensions))
	for _, ext := range p.RecommendedExtensions {
		if id := strings.TrimSpace(ext.ID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// SettingsMap folds the key settings into a settings.json object. When a key
// appears twice the later entry wins.
func (p WorkspaceProfile) SettingsMap() map[string]any {
	settings := make(map[string]any, len(p.KeySettingsSnippet))
	for _, s := range p.KeySettingsSnippet {
		settings[s.Key] = s.Value
	}
	return settings
}

// Clone returns a deep copy of the slices so callers can mutate the result
// without touching cached store state. Setting values are shared.
func (p WorkspaceProfile) Clone() WorkspaceProfile {
	out := p
	out.RecommendedExtensions = append([]RecommendedExtension(nil), p.RecommendedExtensions...)
	out.KeySettingsSnippet = append([]KeySetting(nil), p.KeySettingsSnippet...)
	if p.Files != nil {
		out.Files = append([]ConfigFile(nil), p.Files...)
	}
	return out
}

// DisplayKind returns "user" or "built-in".
func (p WorkspaceProfile) DisplayKind() string {
	if p.IsUserDefined {
		return "user"
	}
	return "built-in"
}
