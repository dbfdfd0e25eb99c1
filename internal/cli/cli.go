// Package cli provides the command-line interface for wsprofile.
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/klauern/wsprofile/internal/config"
	"github.com/klauern/wsprofile/internal/logging"
	"github.com/klauern/wsprofile/internal/ui"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	app := &cli.Command{
		Name:    "wsprofile",
		Usage:   "Apply curated VS Code workspace profiles",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a config file (default: ~/.config/wsprofile/config.yaml)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			// An unreadable config falls back to defaults here. Commands that
			// need it load it again and report the error.
			cfg, err := loadConfig(cmd)
			if err != nil {
				cfg = config.Default()
			}
			configureColors(cmd, cfg)
			if logErr := configureLogging(cmd, cfg); logErr != nil {
				return ctx, logErr
			}
			if err != nil {
				logging.Debug("config not loaded", logging.Err(err))
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			versionCommand(),
			configCommand(),
			listCommand(),
			showCommand(),
			saveCommand(),
			deleteCommand(),
			applyCommand(),
			newCommand(),
			exportCommand(),
			importCommand(),
			marketplaceCommand(),
			sessionCommand(),
			backupCommand(),
			statsCommand(),
		},
	}
	return app.Run(ctx, args)
}

// loadConfig reads the file named by --config, or the default config file.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if path := cmd.String("config"); path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// configureColors sets up color output from the --no-color flag and output.color.
func configureColors(cmd *cli.Command, cfg *config.Config) {
	if cmd.Bool("no-color") {
		ui.DisableColors()
		return
	}
	ui.ConfigureColors(cfg.Output.Color)
}

// configureLogging sets up the logging level from CLI flags, falling back to
// log.level and output.verbose from the config.
func configureLogging(cmd *cli.Command, cfg *config.Config) error {
	opts := logging.DefaultOptions()
	opts.Level = logging.ParseLevel(cfg.Log.Level)

	switch {
	case cmd.Bool("debug"):
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	case cmd.Bool("verbose") || cfg.Output.Verbose:
		opts.Level = min(opts.Level, slog.LevelInfo)
	}

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))

	return nil
}
