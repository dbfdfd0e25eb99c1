package backup

import (
	"fmt"
	"time"
)

// CleanupOptions configures backup cleanup behavior
type CleanupOptions struct {
	// MaxBackups limits the number of backups kept per source file (0 = unlimited)
	MaxBackups int

	// MaxAge is the maximum age of backups to keep (0 = unlimited)
	MaxAge time.Duration

	// KeepAtLeastOne ensures at least one backup is kept per source file
	KeepAtLeastOne bool

	// DryRun previews what would be deleted without actually deleting
	DryRun bool
}

// DefaultCleanupOptions returns sensible defaults for cleanup
func DefaultCleanupOptions() CleanupOptions {
	return CleanupOptions{
		MaxBackups:     10,
		MaxAge:         30 * 24 * time.Hour,
		KeepAtLeastOne: true,
	}
}

// Cleanup removes old backups based on the specified options and returns the
// ids that were (or in dry-run mode would be) deleted.
func (m *Manager) Cleanup(opts CleanupOptions) ([]string, error) {
	index, err := m.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	groups := make(map[string][]Metadata)
	for _, b := range index.Backups {
		groups[b.SourcePath] = append(groups[b.SourcePath], b)
	}

	var toDelete []string
	now := time.Now()

	for _, group := range groups {
		sortNewestFirst(group)

		var doomed []string
		for i, b := range group {
			expired := opts.MaxAge > 0 && now.Sub(b.CreatedAt) > opts.MaxAge
			overflow := opts.MaxBackups > 0 && i >= opts.MaxBackups
			if expired || overflow {
				doomed = append(doomed, b.ID)
			}
		}

		// group[0] is the newest
		if opts.KeepAtLeastOne && len(doomed) == len(group) && len(doomed) > 0 {
			doomed = doomed[1:]
		}
		toDelete = append(toDelete, doomed...)
	}

	if opts.DryRun {
		return toDelete, nil
	}

	var deleted []string
	for _, id := range toDelete {
		if err := m.DeleteBackup(id); err != nil {
			return deleted, fmt.Errorf("failed to delete backup %q: %w", id, err)
		}
		deleted = append(deleted, id)
	}

	return deleted, nil
}

// Stats contains statistics about backups
type Stats struct {
	TotalBackups       int
	TotalSize          int64
	BackupsByWorkspace map[string]int
	OldestBackup       time.Time
	NewestBackup       time.Time
}

// GetStats returns statistics about backups
func (m *Manager) GetStats() (*Stats, error) {
	index, err := m.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	stats := &Stats{
		TotalBackups:       len(index.Backups),
		BackupsByWorkspace: make(map[string]int),
	}

	for _, b := range index.Backups {
		stats.TotalSize += b.Size
		stats.BackupsByWorkspace[b.Workspace]++

		if stats.OldestBackup.IsZero() || b.CreatedAt.Before(stats.OldestBackup) {
			stats.OldestBackup = b.CreatedAt
		}
		if b.CreatedAt.After(stats.NewestBackup) {
			stats.NewestBackup = b.CreatedAt
		}
	}

	return stats, nil
}
