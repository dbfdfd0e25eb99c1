package util

import (
	"os"
	"path/filepath"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// WsprofileConfigPath returns the directory holding wsprofile's config and state.
// XDG_CONFIG_HOME is honored when set.
func WsprofileConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wsprofile")
	}
	return filepath.Join(HomeDir(), ".config", "wsprofile")
}

// WsprofileBackupsPath returns the directory where pre-apply backups are stored
func WsprofileBackupsPath() string {
	return filepath.Join(WsprofileConfigPath(), "backups")
}

// VSCodeDir returns the .vscode directory of a workspace root
func VSCodeDir(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ".vscode")
}

// SettingsFile returns the workspace settings.json path
func SettingsFile(workspaceRoot string) string {
	return filepath.Join(VSCodeDir(workspaceRoot), "settings.json")
}

// ExtensionsFile returns the workspace extensions.json path
func ExtensionsFile(workspaceRoot string) string {
	return filepath.Join(VSCodeDir(workspaceRoot), "extensions.json")
}

// ExpandPath expands a leading ~ and resolves relative paths against baseDir.
// An empty path stays empty.
func ExpandPath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		return HomeDir()
	}
	if len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator) {
		return filepath.Join(HomeDir(), path[2:])
	}
	if filepath.IsAbs(path) || baseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}
