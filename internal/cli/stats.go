package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/klauern/wsprofile/internal/logging"
	"github.com/klauern/wsprofile/internal/ui"
)

// Stats holds overall statistics.
type Stats struct {
	BuiltInProfiles int        `json:"builtin_profiles"`
	UserProfiles    int        `json:"user_profiles"`
	Extensions      int        `json:"distinct_extensions"`
	StateBackend    string     `json:"state_backend"`
	StatePath       string     `json:"state_path"`
	BackupsEnabled  bool       `json:"backups_enabled"`
	Backups         int        `json:"backups"`
	BackupSize      int64      `json:"backup_size_bytes"`
	Workspaces      int        `json:"backed_up_workspaces"`
	LastBackup      *time.Time `json:"last_backup,omitempty"`
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Display profile and backup statistics",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format for scripting",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Debug("collecting statistics")

			svc, err := openServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			stats, err := collectStats(ctx, svc)
			if err != nil {
				return fmt.Errorf("failed to collect statistics: %w", err)
			}

			if cmd.Bool("json") {
				return outputAnyJSON(stats)
			}
			return outputStatsTable(stats)
		},
	}
}

// collectStats gathers statistics from the profile store and backup index.
func collectStats(ctx context.Context, svc *services) (*Stats, error) {
	builtIns, users := svc.store.List(ctx)

	extensions := make(map[string]struct{})
	for _, p := range append(builtIns, users...) {
		for _, id := range p.ExtensionIDs() {
			extensions[id] = struct{}{}
		}
	}

	stats := &Stats{
		BuiltInProfiles: len(builtIns),
		UserProfiles:    len(users),
		Extensions:      len(extensions),
		StateBackend:    string(svc.cfg.GetBackend()),
		StatePath:       svc.cfg.GetStatePath(),
		BackupsEnabled:  svc.cfg.Backup.Enabled,
	}

	backupStats, err := svc.backups.GetStats()
	if err != nil {
		return nil, err
	}
	stats.Backups = backupStats.TotalBackups
	stats.BackupSize = backupStats.TotalSize
	stats.Workspaces = len(backupStats.BackupsByWorkspace)
	if !backupStats.NewestBackup.IsZero() {
		newest := backupStats.NewestBackup
		stats.LastBackup = &newest
	}

	return stats, nil
}

// outputStatsTable outputs statistics in human-readable table format.
func outputStatsTable(stats *Stats) error {
	fmt.Println(ui.Bold("wsprofile Statistics"))
	fmt.Println()

	fmt.Println(ui.Bold("Profiles:"))
	fmt.Printf("  Built-in:   %d\n", stats.BuiltInProfiles)
	fmt.Printf("  User:       %d\n", stats.UserProfiles)
	fmt.Printf("  Extensions: %d distinct\n", stats.Extensions)
	fmt.Println()

	fmt.Println(ui.Bold("Storage:"))
	fmt.Printf("  Backend: %s\n", stats.StateBackend)
	fmt.Printf("  Path:    %s\n", stats.StatePath)
	fmt.Println()

	fmt.Println(ui.Bold("Backups:"))
	if stats.BackupsEnabled {
		fmt.Printf("  Status:      %s\n", ui.Success("Enabled"))
	} else {
		fmt.Printf("  Status:      %s\n", ui.Warning("Disabled"))
	}
	fmt.Printf("  Count:       %d (%d workspace(s))\n", stats.Backups, stats.Workspaces)
	fmt.Printf("  Disk Usage:  %s\n", formatBytes(stats.BackupSize))
	if stats.LastBackup != nil {
		fmt.Printf("  Last Backup: %s (%s)\n",
			stats.LastBackup.Format("2006-01-02 15:04:05"),
			formatDuration(time.Since(*stats.LastBackup)))
	} else {
		fmt.Println("  Last Backup: None")
	}

	return nil
}

// formatBytes formats byte count in human-readable format.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats duration in human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		return plural(int(d.Minutes()), "minute")
	}
	if d < 24*time.Hour {
		return plural(int(d.Hours()), "hour")
	}
	days := int(d.Hours() / 24)
	if days < 30 {
		return plural(days, "day")
	}
	return plural(days/30, "month")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
