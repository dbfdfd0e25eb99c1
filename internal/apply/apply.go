package apply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/klauern/wsprofile/internal/backup"
	"github.com/klauern/wsprofile/internal/logging"
	"github.com/klauern/wsprofile/internal/model"
	"github.com/klauern/wsprofile/internal/progress"
	"github.com/klauern/wsprofile/internal/util"
	"github.com/klauern/wsprofile/internal/validation"
)

const (
	// DefaultIndent matches the four-space layout VS Code uses for generated files.
	DefaultIndent = "    "

	// ExtensionsFileName is the recommendations file under .vscode.
	ExtensionsFileName = "extensions.json"
)

// ErrNoWorkspace is returned when the in-place target is not an open workspace folder.
var ErrNoWorkspace = errors.New("no workspace folder is open")

// ProgressFunc creates a reporter for an apply with total steps.
type ProgressFunc func(total int64, description string) progress.Reporter

// Applier writes profiles into workspace folders.
type Applier struct {
	indent    string
	backups   *backup.Manager
	progress  ProgressFunc
	newWriter func(root string) SettingsWriter
}

// Option configures an Applier.
type Option func(*Applier)

// WithIndent sets the indentation used for generated JSON files.
func WithIndent(indent string) Option {
	return func(a *Applier) {
		if indent != "" {
			a.indent = indent
		}
	}
}

// WithBackups snapshots existing settings files before an in-place apply.
func WithBackups(m *backup.Manager) Option {
	return func(a *Applier) {
		a.backups = m
	}
}

// WithProgress reports in-place apply steps.
func WithProgress(fn ProgressFunc) Option {
	return func(a *Applier) {
		if fn != nil {
			a.progress = fn
		}
	}
}

// WithSettingsWriter replaces the settings.json writer.
func WithSettingsWriter(fn func(root string) SettingsWriter) Option {
	return func(a *Applier) {
		if fn != nil {
			a.newWriter = fn
		}
	}
}

// New returns an Applier.
func New(opts ...Option) *Applier {
	a := &Applier{
		indent: DefaultIndent,
		progress: func(int64, string) progress.Reporter {
			return progress.Nop{}
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.newWriter == nil {
		indent := a.indent
		a.newWriter = func(root string) SettingsWriter {
			return NewFileSettingsWriter(root, indent)
		}
	}
	return a
}

// ApplyToWorkspace writes profile's settings and recommendations into root.
//
// The only errors returned are a missing workspace (ErrNoWorkspace), a failed
// backup, or a canceled context; in each case no further file is written.
// Individual setting and recommendation failures are recorded in the Report.
func (a *Applier) ApplyToWorkspace(ctx context.Context, profile model.WorkspaceProfile, root string) (*Report, error) {
	log := logging.WithContext(ctx).With(logging.Profile(profile.ID), logging.Workspace(root))

	if err := validation.ValidateWorkspaceRoot(root); err != nil {
		log.Warn("apply aborted", logging.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrNoWorkspace, err)
	}

	report := &Report{ProfileID: profile.ID, ProfileName: profile.Name, Root: root}

	if a.backups != nil {
		ids, err := a.backupExisting(profile, root)
		report.Backups = ids
		if err != nil {
			log.Error("backup failed", logging.Err(err))
			return report, fmt.Errorf("failed to back up workspace settings: %w", err)
		}
	}

	bar := a.progress(int64(len(profile.KeySettingsSnippet)+1), fmt.Sprintf("Applying %s", profile.Name))
	defer func() {
		_ = bar.Finish()
	}()

	bar.Describe("Updating settings...")
	writer := a.newWriter(root)
	for _, setting := range profile.KeySettingsSnippet {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		outcome := Outcome{Key: setting.Key, Status: StatusApplied}
		if err := writer.Update(ctx, setting.Key, setting.Value); err != nil {
			outcome.Status = StatusFailed
			outcome.Err = err
			log.Warn("failed to apply setting", logging.Setting(setting.Key), logging.Err(err))
		} else {
			log.Debug("applied setting", logging.Setting(setting.Key))
		}
		report.Settings = append(report.Settings, outcome)
		_ = bar.Add(1)
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	bar.Describe("Updating workspace recommendations...")
	report.Recommendations, report.RecommendationIDs = a.writeRecommendations(root, profile.ExtensionIDs())
	if report.Recommendations.Failed() {
		log.Warn("failed to update recommendations", logging.Err(report.Recommendations.Err))
	}
	_ = bar.Add(1)

	log.Info("profile applied",
		logging.Count(len(report.Applied())),
		slog.Int("failed", len(report.Failed())))

	return report, nil
}

func (a *Applier) writeRecommendations(root string, ids []string) (Outcome, []string) {
	outcome := Outcome{Key: ExtensionsFileName, Status: StatusApplied}
	path := util.ExtensionsFile(root)

	doc, err := readJSONObject(path)
	if err != nil {
		outcome.Status, outcome.Err = StatusFailed, err
		return outcome, nil
	}

	merged, err := mergeRecommendations(doc, ids)
	if err != nil {
		outcome.Status, outcome.Err = StatusFailed, fmt.Errorf("failed to parse %s: %w", ExtensionsFileName, err)
		return outcome, nil
	}

	data, err := encodeJSON(doc, a.indent)
	if err != nil {
		outcome.Status, outcome.Err = StatusFailed, err
		return outcome, nil
	}
	if err := writeFileAtomic(path, data); err != nil {
		outcome.Status, outcome.Err = StatusFailed, err
		return outcome, nil
	}

	return outcome, merged
}

func (a *Applier) backupExisting(profile model.WorkspaceProfile, root string) ([]string, error) {
	var ids []string
	for _, path := range []string{util.SettingsFile(root), util.ExtensionsFile(root)} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		meta, err := a.backups.CreateBackup(path, backup.Options{
			Workspace:   root,
			ProfileID:   profile.ID,
			Description: fmt.Sprintf("before applying %s", profile.Name),
		})
		if err != nil {
			return ids, err
		}
		logging.Debug("backed up workspace file", logging.Path(path), slog.String("backup_id", meta.ID))
		ids = append(ids, meta.ID)
	}
	return ids, nil
}
