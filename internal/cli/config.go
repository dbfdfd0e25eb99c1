package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/klauern/wsprofile/internal/config"
	"github.com/klauern/wsprofile/internal/ui"
	"github.com/klauern/wsprofile/internal/util"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display the effective configuration",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			path := configPath(cmd)
			status := ui.Dim("(not found, using defaults)")
			if util.FileExists(path) {
				status = ui.Success("(loaded)")
			}
			fmt.Printf("Config file: %s %s\n", path, status)
			fmt.Printf("State:       %s (%s)\n", cfg.GetStatePath(), cfg.GetBackend())
			fmt.Printf("Backups:     %s\n", cfg.GetBackupLocation())
			fmt.Println()

			if err := cfg.Validate(); err != nil {
				fmt.Println(ui.StatusWarning(err.Error()))
				fmt.Println()
			}
			return outputAnyYAML(cfg)
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a config file with the default settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					path := configPath(cmd)
					if util.FileExists(path) && !cmd.Bool("force") {
						return errors.New("config file already exists; use --force to overwrite")
					}
					if err := config.Default().SaveToPath(path); err != nil {
						return fmt.Errorf("failed to write config: %w", err)
					}
					fmt.Println(ui.StatusSuccess("Wrote " + path))
					return nil
				},
			},
			{
				Name:  "path",
				Usage: "Print the config file location",
				Action: func(_ context.Context, cmd *cli.Command) error {
					fmt.Println(configPath(cmd))
					return nil
				},
			},
		},
	}
}

// configPath is the --config flag or the default config file location.
func configPath(cmd *cli.Command) string {
	if path := cmd.String("config"); path != "" {
		return path
	}
	return config.FilePath()
}
