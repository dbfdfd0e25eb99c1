package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/klauern/wsprofile/internal/export"
	"github.com/klauern/wsprofile/internal/logging"
	"github.com/klauern/wsprofile/internal/model"
	"github.com/klauern/wsprofile/internal/security"
	"github.com/klauern/wsprofile/internal/store"
	"github.com/klauern/wsprofile/internal/ui"
)

// profileListing is the machine-readable form of the list command.
type profileListing struct {
	BuiltIn []model.WorkspaceProfile `json:"builtIn" yaml:"builtIn"`
	User    []model.WorkspaceProfile `json:"user" yaml:"user"`
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List built-in and user profiles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: table, json, yaml (default: output.format)",
			},
			&cli.BoolFlag{
				Name:  "user",
				Usage: "Only list user profiles",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := openServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			format, err := outputFormat(cmd.String("format"), svc.cfg.Output.Format)
			if err != nil {
				return err
			}

			builtIns, users := svc.store.List(ctx)
			if cmd.Bool("user") {
				builtIns = nil
			}

			switch format {
			case "json":
				return outputAnyJSON(profileListing{BuiltIn: nonNil(builtIns), User: nonNil(users)})
			case "yaml":
				return outputAnyYAML(profileListing{BuiltIn: nonNil(builtIns), User: nonNil(users)})
			}

			if len(builtIns)+len(users) == 0 {
				fmt.Println("No profiles found.")
				return nil
			}
			printProfileTable(append(builtIns, users...))
			return nil
		},
	}
}

func nonNil(profiles []model.WorkspaceProfile) []model.WorkspaceProfile {
	if profiles == nil {
		return []model.WorkspaceProfile{}
	}
	return profiles
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a profile's extensions and settings",
		ArgsUsage: "<profile-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: table, json, yaml",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("show requires exactly 1 argument: <profile-id>")
			}

			svc, err := openServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			format, err := outputFormat(cmd.String("format"), "table")
			if err != nil {
				return err
			}

			profile, err := svc.store.Get(ctx, cmd.Args().First())
			if err != nil {
				return fmt.Errorf("profile with ID %q not found", cmd.Args().First())
			}

			switch format {
			case "json":
				return outputAnyJSON(profile)
			case "yaml":
				return outputAnyYAML(profile)
			}
			printProfileDetail(profile)
			return nil
		},
	}
}

func saveCommand() *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Create or update a user profile",
		Description: `Save a user profile from a file or from flags.

   A profile is created unless --edit is given and a user profile with the
   same id already exists. An empty --id is derived from --name.

   Examples:
     wsprofile save --file my-profile.yaml
     wsprofile save --name "Go Service" --ext golang.go --set 'editor.formatOnSave=true'
     wsprofile save --edit --id go-service --set '[go]={"editor.tabSize":4}'`,
		// Setting values are JSON and may contain commas.
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "Read the profile from a JSON, YAML or TOML file",
			},
			&cli.StringFlag{
				Name:  "id",
				Usage: "Profile id (derived from --name when empty)",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Profile display name",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Profile description",
			},
			&cli.StringSliceFlag{
				Name:  "ext",
				Usage: "Recommended extension id, optionally id=Display Name (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "Setting as key=value; value is parsed as JSON, else kept as a string (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "edit",
				Usage: "Overwrite an existing user profile with the same id",
			},
			&cli.BoolFlag{
				Name:  "allow-secrets",
				Usage: "Save even if settings or files appear to contain credentials",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			candidate, err := profileFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := checkSecrets(candidate, cmd.Bool("allow-secrets")); err != nil {
				return err
			}

			svc, err := openServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			saved, err := svc.store.Save(ctx, candidate, cmd.Bool("edit"))
			if err != nil {
				return fmt.Errorf("failed to save profile: %w", err)
			}

			fmt.Println(ui.StatusSuccess(fmt.Sprintf("Profile %q saved as %s", saved.Name, saved.ID)))
			return nil
		},
	}
}

// checkSecrets prints credential warnings for p and fails on likely
// credentials unless allow is set.
func checkSecrets(p model.WorkspaceProfile, allow bool) error {
	result := security.ScanProfile(p)
	for _, w := range result.Warnings {
		fmt.Println(ui.StatusWarning(w))
	}
	if !result.HasErrors() {
		return nil
	}
	if allow {
		for _, e := range result.Errors {
			fmt.Println(ui.StatusWarning(e.Error()))
		}
		return nil
	}
	return fmt.Errorf("profile appears to contain credentials (use --allow-secrets to save anyway): %w", result.Error())
}

// profileFromFlags builds the save candidate from --file or the individual flags.
func profileFromFlags(cmd *cli.Command) (model.WorkspaceProfile, error) {
	if path := cmd.String("file"); path != "" {
		profiles, err := readProfileFile(path, "")
		if err != nil {
			return model.WorkspaceProfile{}, err
		}
		if len(profiles) != 1 {
			return model.WorkspaceProfile{}, fmt.Errorf("%s contains %d profiles; use import for multiple profiles", path, len(profiles))
		}
		return profiles[0], nil
	}

	profile := model.WorkspaceProfile{
		ID:                    cmd.String("id"),
		Name:                  cmd.String("name"),
		Description:           cmd.String("description"),
		RecommendedExtensions: []model.RecommendedExtension{},
		KeySettingsSnippet:    []model.KeySetting{},
	}
	for _, raw := range cmd.StringSlice("ext") {
		id, name, _ := strings.Cut(raw, "=")
		profile.RecommendedExtensions = append(profile.RecommendedExtensions, model.RecommendedExtension{
			ID:   strings.TrimSpace(id),
			Name: strings.TrimSpace(name),
		})
	}
	for _, raw := range cmd.StringSlice("set") {
		setting, err := parseSetting(raw)
		if err != nil {
			return model.WorkspaceProfile{}, err
		}
		profile.KeySettingsSnippet = append(profile.KeySettingsSnippet, setting)
	}
	return profile, nil
}

// parseSetting parses "key=value". The value is decoded as JSON when it is
// valid JSON and kept as a plain string otherwise.
func parseSetting(raw string) (model.KeySetting, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return model.KeySetting{}, fmt.Errorf("invalid setting %q (expected key=value)", raw)
	}

	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		decoded = value
	}
	return model.KeySetting{Key: key, Value: decoded}, nil
}

// readProfileFile reads profiles from a file. An empty format is taken from
// the file extension.
func readProfileFile(path, format string) ([]model.WorkspaceProfile, error) {
	var (
		f   export.Format
		err error
	)
	if format != "" {
		f, err = export.ParseFormat(format)
	} else {
		f, err = export.FormatFromPath(path)
	}
	if err != nil {
		return nil, err
	}

	// #nosec G304 - path is provided by the user
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	profiles, err := export.Import(file, f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return profiles, nil
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a user profile",
		ArgsUsage: "<profile-id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("delete requires exactly 1 argument: <profile-id>")
			}
			id := cmd.Args().First()

			svc, err := openServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.store.Delete(ctx, id); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("user profile with ID %q not found for deletion", id)
				}
				return err
			}

			logging.Info("profile deleted", logging.Profile(id))
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("Profile %s deleted", id)))
			return nil
		},
	}
}
