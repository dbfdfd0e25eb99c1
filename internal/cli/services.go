package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/klauern/wsprofile/internal/apply"
	"github.com/klauern/wsprofile/internal/backup"
	"github.com/klauern/wsprofile/internal/builtin"
	"github.com/klauern/wsprofile/internal/config"
	"github.com/klauern/wsprofile/internal/logging"
	"github.com/klauern/wsprofile/internal/progress"
	"github.com/klauern/wsprofile/internal/state"
	"github.com/klauern/wsprofile/internal/store"
)

// services bundles the components a command works against.
type services struct {
	cfg     *config.Config
	state   state.Memento
	store   *store.Store
	backups *backup.Manager
}

// openServices loads the config and opens the profile store.
func openServices(ctx context.Context, cmd *cli.Command) (*services, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cmd.String("config") == "" && !config.Exists() {
		logging.Debug("no config file, using defaults", logging.Path(config.FilePath()))
	}

	st, err := state.Open(cfg.GetBackend(), cfg.GetStatePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open profile storage: %w", err)
	}
	logging.Debug("profile storage opened",
		logging.Backend(string(cfg.GetBackend())),
		logging.Path(cfg.GetStatePath()),
	)

	return &services{
		cfg:     cfg,
		state:   st,
		store:   store.New(ctx, st, builtin.New()),
		backups: backup.New(cfg.GetBackupLocation()),
	}, nil
}

// Close releases the storage backend.
func (s *services) Close() {
	if err := s.state.Close(); err != nil {
		logging.Warn("failed to close profile storage", logging.Err(err))
	}
}

type applierOptions struct {
	skipBackup bool
	quiet      bool
}

// applier builds an Applier from the config. Backups are taken when
// backup.enabled is set and the progress bar follows apply.progress.
func (s *services) applier(opts applierOptions) *apply.Applier {
	applyOpts := []apply.Option{apply.WithIndent(s.cfg.GetIndent())}
	if s.cfg.Backup.Enabled && !opts.skipBackup {
		applyOpts = append(applyOpts, apply.WithBackups(s.backups))
	}
	if s.cfg.Apply.Progress && !opts.quiet {
		applyOpts = append(applyOpts, apply.WithProgress(func(total int64, desc string) progress.Reporter {
			return progress.New(progress.Options{Max: total, Description: desc})
		}))
	}
	return apply.New(applyOpts...)
}

// pruneBackups enforces the configured retention after an apply created new backups.
func (s *services) pruneBackups() {
	opts := backup.DefaultCleanupOptions()
	opts.MaxBackups = s.cfg.Backup.MaxBackups
	opts.MaxAge = s.cfg.Backup.MaxAge

	deleted, err := s.backups.Cleanup(opts)
	if err != nil {
		logging.Warn("backup cleanup failed", logging.Err(err))
		return
	}
	if len(deleted) > 0 {
		logging.Info("pruned old backups", logging.Count(len(deleted)))
	}
}

// stdinIsTerminal reports whether interactive pickers can be shown.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// workspaceRoot resolves the --workspace flag, defaulting to the current directory.
func workspaceRoot(cmd *cli.Command) (string, error) {
	if root := cmd.String("workspace"); root != "" {
		return root, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine current directory: %w", err)
	}
	return wd, nil
}
