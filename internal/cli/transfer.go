package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/wsprofile/internal/export"
	"github.com/klauern/wsprofile/internal/logging"
	"github.com/klauern/wsprofile/internal/model"
	"github.com/klauern/wsprofile/internal/ui"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export profiles to JSON, YAML, TOML or Markdown",
		Description: `Export built-in and user profiles.

   The format defaults to the --output file extension, or JSON on stdout.

   Examples:
     wsprofile export --user-only --output profiles.yaml
     wsprofile export --format markdown`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, yaml, toml, markdown",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "user-only",
				Usage: "Only export user profiles",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Disable pretty printing for JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := exportFormat(cmd.String("format"), cmd.String("output"))
			if err != nil {
				return err
			}

			svc, err := openServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			builtIns, users := svc.store.List(ctx)
			opts := export.DefaultOptions()
			opts.Format = format
			opts.Pretty = !cmd.Bool("compact")
			opts.UserOnly = cmd.Bool("user-only")

			var w io.Writer = os.Stdout
			if path := cmd.String("output"); path != "" {
				// #nosec G304 - path is provided by the user
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", path, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			if err := export.New(opts).Export(append(builtIns, users...), w); err != nil {
				return fmt.Errorf("failed to export profiles: %w", err)
			}

			if path := cmd.String("output"); path != "" {
				fmt.Fprintln(os.Stderr, ui.StatusSuccess(fmt.Sprintf("Exported profiles to %s", path)))
			}
			return nil
		},
	}
}

// exportFormat picks the export format from --format, then the output path.
func exportFormat(flag, output string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if output != "" {
		return export.FormatFromPath(output)
	}
	return export.FormatJSON, nil
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import user profiles from a file",
		ArgsUsage: "<file>",
		Description: `Import one or more profiles as user profiles.

   Each profile is saved on its own; a rejected profile (for example a
   duplicate id) is reported and the rest are still imported. With
   --overwrite an existing user profile with the same id is replaced.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Input format: json, yaml, toml (default: from file extension)",
			},
			&cli.BoolFlag{
				Name:  "overwrite",
				Usage: "Replace user profiles that already exist",
			},
			&cli.BoolFlag{
				Name:  "allow-secrets",
				Usage: "Import profiles even if they appear to contain credentials",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("import requires exactly 1 argument: <file>")
			}
			path := cmd.Args().First()

			profiles, err := readProfileFile(path, cmd.String("format"))
			if err != nil {
				return err
			}

			svc, err := openServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			failed := importProfiles(ctx, svc, profiles, cmd.Bool("overwrite"), cmd.Bool("allow-secrets"))
			fmt.Printf("\nImported %d of %d profile(s)\n", len(profiles)-failed, len(profiles))
			if failed > 0 {
				return fmt.Errorf("%d profile(s) could not be imported", failed)
			}
			return nil
		},
	}
}

// importProfiles saves each profile and returns how many were rejected.
func importProfiles(ctx context.Context, svc *services, profiles []model.WorkspaceProfile, overwrite, allowSecrets bool) int {
	failed := 0
	for _, p := range profiles {
		label := p.ID
		if label == "" {
			label = p.Name
		}
		err := checkSecrets(p, allowSecrets)
		var saved model.WorkspaceProfile
		if err == nil {
			saved, err = svc.store.Save(ctx, p, overwrite)
		}
		if err != nil {
			failed++
			logging.Warn("profile import failed", logging.Profile(label), logging.Err(err))
			fmt.Println(ui.StatusError(fmt.Sprintf("%s: %v", label, err)))
			continue
		}
		fmt.Println(ui.StatusSuccess(saved.ID))
	}
	return failed
}
