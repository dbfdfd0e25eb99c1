package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/wsprofile/internal/logging"
	"github.com/klauern/wsprofile/internal/session"
)

func sessionCommand() *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Serve the JSON-lines profile protocol on stdin/stdout",
		Description: `Read one JSON request per line from stdin and write one JSON event per
   line to stdout. Requests are handled strictly in order. Logs go to stderr.

   Example:
     echo '{"command":"getProfiles"}' | wsprofile session`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "Workspace used by applyConfiguration requests without a workspaceRoot (default: current directory)",
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

			// stdout carries the protocol, so no progress bar.
			ctrl := session.NewController(svc.store, svc.applier(applierOptions{quiet: true}), session.WithWorkspace(root))
			logging.Info("session started",
				logging.Operation("session"),
				logging.Workspace(root),
				"session_id", ctrl.ID(),
			)

			err = ctrl.Serve(ctx, os.Stdin, os.Stdout)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("session ended: %w", err)
			}
			return nil
		},
	}
}

func marketplaceCommand() *cli.Command {
	return &cli.Command{
		Name:      "marketplace",
		Usage:     "Print the marketplace page URL of an extension",
		ArgsUsage: "<extension-id>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 || cmd.Args().First() == "" {
				return errors.New("marketplace requires exactly 1 argument: <extension-id>")
			}
			fmt.Println(session.MarketplacePage(cmd.Args().First()))
			return nil
		},
	}
}
