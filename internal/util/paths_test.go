package util

import (
	"path/filepath"
	"testing"
)

func TestHomeDir(t *testing.T) {
	home := HomeDir()
	if home == "" {
		t.Error("HomeDir() returned empty string")
	}

	// Verify it's an absolute path
	if !filepath.IsAbs(home) {
		t.Errorf("HomeDir() returned relative path: %s", home)
	}
}

func TestWsprofileConfigPath(t *testing.T) {
	t.Run("default under home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		expected := filepath.Join(HomeDir(), ".config", "wsprofile")
		if got := WsprofileConfigPath(); got != expected {
			t.Errorf("WsprofileConfigPath() = %q, want %q", got, expected)
		}
	})

	t.Run("honors XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		if got := WsprofileConfigPath(); got != "/tmp/xdg/wsprofile" {
			t.Errorf("WsprofileConfigPath() = %q, want %q", got, "/tmp/xdg/wsprofile")
		}
	})
}

func TestWorkspaceFilePaths(t *testing.T) {
	root := "/test/project"

	if got := VSCodeDir(root); got != "/test/project/.vscode" {
		t.Errorf("VSCodeDir(%q) = %q", root, got)
	}
	if got := SettingsFile(root); got != "/test/project/.vscode/settings.json" {
		t.Errorf("SettingsFile(%q) = %q", root, got)
	}
	if got := ExtensionsFile(root); got != "/test/project/.vscode/extensions.json" {
		t.Errorf("ExtensionsFile(%q) = %q", root, got)
	}
}

func TestExpandPath(t *testing.T) {
	tests := map[string]struct {
		path    string
		baseDir string
		want    string
	}{
		"empty":         {path: "", baseDir: "/base", want: ""},
		"tilde only":    {path: "~", baseDir: "/base", want: HomeDir()},
		"tilde prefix":  {path: "~/state.json", baseDir: "/base", want: filepath.Join(HomeDir(), "state.json")},
		"absolute":      {path: "/etc/wsprofile/", baseDir: "/base", want: "/etc/wsprofile"},
		"relative":      {path: "data/state.db", baseDir: "/base", want: "/base/data/state.db"},
		"relative bare": {path: "state.db", baseDir: "", want: "state.db"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ExpandPath(tt.path, tt.baseDir); got != tt.want {
				t.Errorf("ExpandPath(%q, %q) = %q, want %q", tt.path, tt.baseDir, got, tt.want)
			}
		})
	}
}
