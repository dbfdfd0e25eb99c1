package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/klauern/wsprofile/internal/backup"
	"github.com/klauern/wsprofile/internal/ui"
	"github.com/klauern/wsprofile/internal/ui/tui"
)

func backupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backups",
		Usage: "Manage settings backups taken before an apply",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List backups, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "workspace",
						Aliases: []string{"w"},
						Usage:   "Only list backups of this workspace folder",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: table, json, yaml",
					},
				},
				Action: runBackupList,
			},
			{
				Name:   "browse",
				Usage:  "Interactively restore, verify or delete backups",
				Action: runBackupBrowse,
			},
			{
				Name:      "restore",
				Usage:     "Restore a backup to its original location",
				ArgsUsage: "<backup-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "target",
						Usage: "Restore to this path instead of the original location",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withBackupID(ctx, cmd, func(m *backup.Manager, id string) error {
						if err := m.RestoreBackup(id, cmd.String("target")); err != nil {
							return err
						}
						fmt.Println(ui.StatusSuccess("Restored backup " + id))
						return nil
					})
				},
			},
			{
				Name:      "verify",
				Usage:     "Check a backup against its recorded hash",
				ArgsUsage: "<backup-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withBackupID(ctx, cmd, func(m *backup.Manager, id string) error {
						if err := m.VerifyBackup(id); err != nil {
							return err
						}
						fmt.Println(ui.StatusSuccess("Backup " + id + " is intact"))
						return nil
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a backup",
				ArgsUsage: "<backup-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withBackupID(ctx, cmd, func(m *backup.Manager, id string) error {
						if err := m.DeleteBackup(id); err != nil {
							return err
						}
						fmt.Println(ui.StatusSuccess("Deleted backup " + id))
						return nil
					})
				},
			},
			{
				Name:  "cleanup",
				Usage: "Remove backups beyond backup.max_backups or older than backup.max_age",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"d"},
						Usage:   "Show what would be removed",
					},
				},
				Action: runBackupCleanup,
			},
		},
	}
}

func withBackupID(ctx context.Context, cmd *cli.Command, fn func(m *backup.Manager, id string) error) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("%s requires exactly 1 argument: <backup-id>", cmd.Name)
	}

	svc, err := openServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	return fn(svc.backups, cmd.Args().First())
}

func runBackupList(ctx context.Context, cmd *cli.Command) error {
	svc, err := openServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	format, err := outputFormat(cmd.String("format"), svc.cfg.Output.Format)
	if err != nil {
		return err
	}

	backups, err := svc.backups.ListBackups(cmd.String("workspace"))
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return outputAnyJSON(backups)
	case "yaml":
		return outputAnyYAML(backups)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found.")
		return nil
	}

	fmt.Printf("%-26s %-24s %-16s %8s  %s\n", "ID", "PROFILE", "CREATED", "SIZE", "SOURCE")
	fmt.Printf("%-26s %-24s %-16s %8s  %s\n",
		strings.Repeat("-", 26),
		strings.Repeat("-", 24),
		strings.Repeat("-", 16),
		strings.Repeat("-", 8),
		strings.Repeat("-", 6))
	for _, b := range backups {
		fmt.Printf("%-26s %-24s %-16s %8s  %s\n",
			b.ID,
			truncateStr(b.ProfileID, 24),
			b.CreatedAt.Format("2006-01-02 15:04"),
			formatBytes(b.Size),
			b.SourcePath)
	}
	fmt.Printf("\nTotal: %d backup(s)\n", len(backups))
	return nil
}

func runBackupBrowse(ctx context.Context, cmd *cli.Command) error {
	if !stdinIsTerminal() {
		return errors.New("backups browse requires a terminal; use 'backups list' instead")
	}

	svc, err := openServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	backups, err := svc.backups.ListBackups("")
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Println("No backups found.")
		return nil
	}

	result, err := tui.RunBackupList(backups)
	if err != nil {
		return fmt.Errorf("backup browser failed: %w", err)
	}

	switch result.Action {
	case tui.ActionRestore:
		if err := svc.backups.RestoreBackup(result.BackupID, ""); err != nil {
			return err
		}
		fmt.Println(ui.StatusSuccess(fmt.Sprintf("Restored %s to %s", result.BackupID, result.Backup.SourcePath)))
	case tui.ActionDelete:
		if err := svc.backups.DeleteBackup(result.BackupID); err != nil {
			return err
		}
		fmt.Println(ui.StatusSuccess("Deleted backup " + result.BackupID))
	case tui.ActionVerify:
		if err := svc.backups.VerifyBackup(result.BackupID); err != nil {
			fmt.Println(ui.StatusError(fmt.Sprintf("Backup %s failed verification: %v", result.BackupID, err)))
			return err
		}
		fmt.Println(ui.StatusSuccess("Backup " + result.BackupID + " is intact"))
	}
	return nil
}

func runBackupCleanup(ctx context.Context, cmd *cli.Command) error {
	svc, err := openServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	opts := backup.DefaultCleanupOptions()
	opts.MaxBackups = svc.cfg.Backup.MaxBackups
	opts.MaxAge = svc.cfg.Backup.MaxAge
	opts.DryRun = cmd.Bool("dry-run")

	deleted, err := svc.backups.Cleanup(opts)
	if err != nil {
		return err
	}

	verb := "Removed"
	if opts.DryRun {
		verb = "Would remove"
	}
	for _, id := range deleted {
		fmt.Printf("  %s\n", id)
	}
	fmt.Printf("%s %d backup(s)\n", verb, len(deleted))
	return nil
}
