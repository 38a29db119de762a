// cmd/pi-builder/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pi-builder/internal/common/config"
	"pi-builder/internal/common/logger"
	"pi-builder/internal/common/observability"
	"pi-builder/internal/site"

	"github.com/spf13/cobra"
)

// app carries what every command needs once the root command has loaded
// settings.
type app struct {
	settingsPath string
	verbose      bool

	settings *config.Config
	log      logger.Logger
	obs      *observability.Observability
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pi-builder",
		Short: "Build location dashboards from industry templates",
		Long: `pi-builder generates static location dashboards: a 3D globe with a
marker per location, a sidebar of cards and a detail panel, themed by one
of the industry templates.

Settings are read from pi-builder.yaml (., ./configs, ~/.pi-builder) or
the file given with --settings. PI_* environment variables override them.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	root.PersistentFlags().StringVar(&a.settingsPath, "settings", "", "settings file (default: pi-builder.yaml search path)")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(
		newNewCmd(a),
		newTemplatesCmd(a),
		newPreviewCmd(a),
		newExportCmd(a),
		newForkCmd(a),
		newValidateCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	var err error
	if a.settingsPath != "" {
		a.settings, err = config.LoadFromFile(a.settingsPath)
	} else {
		a.settings, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	level := a.settings.Logging.Level
	if a.verbose {
		level = "debug"
	}
	a.log = logger.NewStructured(level, a.settings.Logging.Format, a.settings.Logging.Output)

	obs, err := observability.New(a.settings.App.Name)
	if err != nil {
		a.log.Debug("otel exporter unavailable, meters disabled", map[string]interface{}{"error": err.Error()})
	}
	a.obs = obs
	return nil
}

func (a *app) teardown() {
	if a.obs != nil {
		a.obs.Shutdown()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) builder() (*site.Builder, error) {
	return site.NewBuilder(a.settings, a.log, site.WithObservability(a.obs))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.err.Render("error: ")+err.Error())
		os.Exit(1)
	}
}
