package apply

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauern/wsprofile/internal/logging"
	"github.com/klauern/wsprofile/internal/model"
	"github.com/klauern/wsprofile/internal/util"
	"github.com/klauern/wsprofile/internal/validation"
)

// ScaffoldWorkspace creates a new workspace at dest populated from profile.
// Every extra file path is checked before anything is written; after that the
// first failed write aborts the scaffold and is returned.
func (a *Applier) ScaffoldWorkspace(ctx context.Context, profile model.WorkspaceProfile, dest string) error {
	log := logging.WithContext(ctx).With(logging.Profile(profile.ID), logging.Workspace(dest))

	if dest == "" {
		return fmt.Errorf("destination folder is required")
	}
	for _, f := range profile.Files {
		if err := validation.ValidateRelativeFile(f.Path); err != nil {
			return err
		}
	}
	if info, err := os.Stat(dest); err == nil && !info.IsDir() {
		return fmt.Errorf("destination is not a directory: %s", dest)
	}

	if err := os.MkdirAll(util.VSCodeDir(dest), dirPerm); err != nil {
		return fmt.Errorf("failed to create .vscode directory: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	settings, err := encodeJSON(profile.SettingsMap(), a.indent)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := writeFileAtomic(util.SettingsFile(dest), settings); err != nil {
		return err
	}

	if ids := profile.ExtensionIDs(); len(ids) > 0 {
		doc := map[string]any{}
		if _, err := mergeRecommendations(doc, ids); err != nil {
			return err
		}
		data, err := encodeJSON(doc, a.indent)
		if err != nil {
			return fmt.Errorf("failed to encode recommendations: %w", err)
		}
		if err := writeFileAtomic(util.ExtensionsFile(dest), data); err != nil {
			return err
		}
	}

	for _, f := range profile.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(dest, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
		}
		// #nosec G306 - workspace files are meant to be shared with the project
		if err := os.WriteFile(target, []byte(f.Content), filePerm); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
	}

	log.Info("workspace scaffolded", logging.Count(len(profile.Files)))
	return nil
}
