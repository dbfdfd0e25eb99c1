package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func sampleProfile() WorkspaceProfile {
	return WorkspaceProfile{
		ID:          "python-backend-django",
		Name:        "Python Backend (Django)",
		Description: "Django backend",
		RecommendedExtensions: []RecommendedExtension{
			{ID: "ms-python.python", Name: "Python"},
			{ID: "  "},
			{ID: "batisteo.vscode-django"},
		},
		KeySettingsSnippet: []KeySetting{
			{Key: "editor.formatOnSave", Value: true},
			{Key: "[python]", Value: map[string]any{"editor.defaultFormatter": "ms-python.black-formatter"}},
			{Key: "editor.formatOnSave", Value: false},
		},
		IsUserDefined: true,
	}
}

func TestExtensionIDs_SkipsBlank(t *testing.T) {
	got := sampleProfile().ExtensionIDs()
	want := []string{"ms-python.python", "batisteo.vscode-django"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ExtensionIDs() = %v, want %v", got, want)
	}
}

func TestSettingsMap_LaterKeyWins(t *testing.T) {
	settings := sampleProfile().SettingsMap()
	if len(settings) != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", len(settings), settings)
	}
	if settings["editor.formatOnSave"] != false {
		t.Errorf("editor.formatOnSave = %v, want false", settings["editor.formatOnSave"])
	}
	if _, ok := settings["[python]"].(map[string]any); !ok {
		t.Errorf("[python] has type %T, want map", settings["[python]"])
	}
}

func TestIsLanguageScoped(t *testing.T) {
	tests := map[string]bool{
		"[python]":                 true,
		"[javascript][typescript]": true,
		"editor.formatOnSave":      false,
		"[python":                  false,
		"python]":                  false,
	}
	for key, want := range tests {
		if got := (KeySetting{Key: key}).IsLanguageScoped(); got != want {
			t.Errorf("IsLanguageScoped(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestClone_Independent(t *testing.T) {
	orig := sampleProfile()
	clone := orig.Clone()
	clone.RecommendedExtensions[0].ID = "changed"
	clone.KeySettingsSnippet = append(clone.KeySettingsSnippet, KeySetting{Key: "x"})

	if orig.RecommendedExtensions[0].ID != "ms-python.python" {
		t.Error("mutating clone extensions changed the original")
	}
	if len(orig.KeySettingsSnippet) != 3 {
		t.Error("appending to clone settings changed the original")
	}
}

func TestIsUserDefined_NotSerialized(t *testing.T) {
	data, err := json.Marshal(sampleProfile())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "isUserDefined") || strings.Contains(string(data), "IsUserDefined") {
		t.Errorf("persisted form should not carry the user-defined tag: %s", data)
	}
	if !strings.Contains(string(data), `"keySettingsSnippet"`) || !strings.Contains(string(data), `"recommendedExtensions"`) {
		t.Errorf("expected camelCase field names: %s", data)
	}
}

func TestDisplayKind(t *testing.T) {
	p := sampleProfile()
	if p.DisplayKind() != "user" {
		t.Errorf("DisplayKind() = %q, want user", p.DisplayKind())
	}
	p.IsUserDefined = false
	if p.DisplayKind() != "built-in" {
		t.Errorf("DisplayKind() = %q, want built-in", p.DisplayKind())
	}
}
