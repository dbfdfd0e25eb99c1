package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/klauern/wsprofile/internal/apply"
	"github.com/klauern/wsprofile/internal/model"
	"github.com/klauern/wsprofile/internal/ui"
	"github.com/klauern/wsprofile/internal/ui/tui"
)

// errNoSelection is returned when the interactive picker is closed without a choice.
var errNoSelection = errors.New("no profile selected")

func applyCommand() *cli.Command {
	return &cli.Command{
		Name:      "apply",
		Usage:     "Apply a profile to an existing workspace folder",
		ArgsUsage: "[profile-id]",
		Description: `Write a profile's key settings into .vscode/settings.json and merge its
   recommended extensions into .vscode/extensions.json.

   Settings are applied one by one; a setting that cannot be written is
   reported and the rest are still applied. Without a profile id an
   interactive picker is shown when running in a terminal.

   Examples:
     wsprofile apply python-backend-django
     wsprofile apply --workspace ~/src/site web-frontend
     wsprofile apply`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "Workspace folder to configure (default: current directory)",
			},
			&cli.BoolFlag{
				Name:  "skip-backup",
				Usage: "Skip the pre-apply backup of existing settings",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root, err := workspaceRoot(cmd)
			if err != nil {
				return err
			}

			svc, err := openServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			profile, err := resolveProfile(ctx, svc, cmd.Args().First(), "Apply a Workspace Profile")
			if err != nil {
				return err
			}

			report, err := svc.applier(applierOptions{skipBackup: cmd.Bool("skip-backup")}).
				ApplyToWorkspace(ctx, profile, root)
			if err != nil {
				if errors.Is(err, apply.ErrNoWorkspace) {
					return fmt.Errorf("no workspace folder is open at %s; use --workspace or 'wsprofile new' to create one", root)
				}
				return err
			}
			if len(report.Backups) > 0 {
				svc.pruneBackups()
			}

			printReport(report)
			return nil
		},
	}
}

// printReport prints the outcome of an apply.
func printReport(report *apply.Report) {
	name := report.ProfileName
	if name == "" {
		name = report.ProfileID
	}

	if report.Success() {
		fmt.Println(ui.StatusSuccess(fmt.Sprintf("Workspace configuration %q applied successfully!", name)))
	} else {
		fmt.Println(ui.StatusWarning(fmt.Sprintf("Workspace configuration %q applied with warnings", name)))
	}

	for _, o := range report.Settings {
		switch o.Status {
		case apply.StatusApplied:
			fmt.Printf("  %s\n", ui.StatusSuccess(o.Key))
		case apply.StatusFailed:
			fmt.Printf("  %s\n", ui.StatusError(fmt.Sprintf("%s: %v", o.Key, o.Err)))
		default:
			fmt.Printf("  %s\n", ui.StatusSkipped(o.Key))
		}
	}

	switch report.Recommendations.Status {
	case apply.StatusApplied:
		fmt.Printf("  %s\n", ui.StatusSuccess(fmt.Sprintf("%s (%d recommendations)", apply.ExtensionsFileName, len(report.RecommendationIDs))))
	case apply.StatusFailed:
		fmt.Printf("  %s\n", ui.StatusError(fmt.Sprintf("%s: %v", apply.ExtensionsFileName, report.Recommendations.Err)))
	}

	if len(report.Backups) > 0 {
		fmt.Printf("\n%s %d file(s) backed up\n", ui.Dim("Backup:"), len(report.Backups))
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a new workspace folder from a profile",
		ArgsUsage: "[profile-id] <directory>",
		Description: `Create <directory> with .vscode/settings.json, .vscode/extensions.json
   and any starter files the profile defines. Nothing is written when a
   starter file path is invalid; any write failure aborts the command.

   Examples:
     wsprofile new javascript-frontend-react ./my-app
     wsprofile new ./my-app`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var id, dest string
			switch cmd.Args().Len() {
			case 1:
				dest = cmd.Args().Get(0)
			case 2:
				id, dest = cmd.Args().Get(0), cmd.Args().Get(1)
			default:
				return errors.New("new requires arguments: [profile-id] <directory>")
			}

			svc, err := openServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			profile, err := resolveProfile(ctx, svc, id, "Create a Workspace From Profile")
			if err != nil {
				return err
			}

			if err := svc.applier(applierOptions{skipBackup: true}).ScaffoldWorkspace(ctx, profile, dest); err != nil {
				return fmt.Errorf("failed to create workspace: %w", err)
			}

			fmt.Println(ui.StatusSuccess(fmt.Sprintf("Created workspace %s from %q", dest, profile.Name)))
			fmt.Printf("\nNext: open it with %s\n", ui.Info("code "+dest))
			return nil
		},
	}
}

// resolveProfile looks up id, or shows the picker when id is empty and stdin
// is a terminal.
func resolveProfile(ctx context.Context, svc *services, id, title string) (model.WorkspaceProfile, error) {
	if id != "" {
		profile, err := svc.store.Get(ctx, id)
		if err != nil {
			return model.WorkspaceProfile{}, fmt.Errorf("profile with ID %q not found", id)
		}
		return profile, nil
	}

	if !stdinIsTerminal() {
		return model.WorkspaceProfile{}, errors.New("a profile id is required when not running in a terminal")
	}

	builtIns, users := svc.store.List(ctx)
	result, err := tui.RunProfilePicker(title, builtIns, users)
	if err != nil {
		return model.WorkspaceProfile{}, fmt.Errorf("profile picker failed: %w", err)
	}
	if result.Action != tui.PickerActionSelect {
		return model.WorkspaceProfile{}, errNoSelection
	}
	return result.Profile, nil
}
