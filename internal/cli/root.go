// Package cli implements the importctl command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"property-import-backend/internal/app"
	"property-import-backend/internal/config"
)

// Version is set at build time.
var Version = "0.1.0"

// AppFactory builds the application for one command invocation.
type AppFactory func(ctx context.Context, level slog.Level) (*app.App, error)

type runtime struct {
	factory AppFactory
	verbose bool
	app     *app.App
}

// NewRootCommand wires every subcommand to apps built by factory.
func NewRootCommand(factory AppFactory) *cobra.Command {
	rt := &runtime{factory: factory}

	root := &cobra.Command{
		Use:   "importctl",
		Short: "Run property listing imports and media uploads",
		Long: `importctl drives the property import pipeline without the HTTP API.

It reads the same environment as the server: Cloudinary credentials, the
document store selection and the optional sources file.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			level := slog.LevelWarn
			if rt.verbose {
				level = slog.LevelDebug
			}
			a, err := rt.factory(cmd.Context(), level)
			if err != nil {
				return fmt.Errorf("initialise: %w", err)
			}
			rt.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if rt.app != nil {
				return rt.app.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(newSourcesCmd(rt))
	root.AddCommand(newScrapeCmd(rt))
	root.AddCommand(newRunCmd(rt))
	root.AddCommand(newUploadCmd(rt))
	root.AddCommand(newSnapshotsCmd(rt))
	return root
}

// Execute runs importctl against the environment configuration.
func Execute() error {
	return NewRootCommand(defaultFactory).ExecuteContext(context.Background())
}

func defaultFactory(ctx context.Context, level slog.Level) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// the log file, if any, stays open for the life of the process
	logger, _ := config.SetupLogger(cfg.LogFile, level)
	return app.New(ctx, cfg, logger, app.Options{})
}
