package main

import (
	"fmt"

	"pi-builder/internal/preview"
	"pi-builder/internal/site"

	"github.com/spf13/cobra"
)

func newPreviewCmd(a *app) *cobra.Command {
	var (
		port  int
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "preview <site>",
		Short: "Serve a site locally with a JSON API over the dashboard",
		Long: `Serves the site directory and, under /api, the dashboard as the engine
renders it. With --watch, edits to config.json reload the dashboard.

Press Ctrl+C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := a.settings.Preview
			if cmd.Flags().Changed("port") {
				settings.Port = port
			}
			if cmd.Flags().Changed("watch") {
				settings.Watch = watch
			}

			b, err := a.builder()
			if err != nil {
				return err
			}
			mode := a.settings.Deployment.Mode
			if m, err := site.ReadManifest(args[0]); err == nil && m.Mode != "" {
				mode = m.Mode
			}
			store, err := b.NewStore(mode)
			if err != nil {
				return err
			}

			srv, err := preview.New(args[0], store, settings, a.log)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styles.title.Render("Preview"))
			fmt.Fprintln(out, styles.key.Render("url")+fmt.Sprintf("http://localhost:%d", settings.Port))
			fmt.Fprintln(out, styles.key.Render("api")+fmt.Sprintf("http://localhost:%d/api/snapshot", settings.Port))
			if settings.Watch {
				fmt.Fprintln(out, styles.muted.Render("watching config.json for changes"))
			}
			fmt.Fprintln(out, styles.muted.Render("Ctrl+C to stop"))

			return srv.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on (default: preview.port)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload when config.json changes (default: preview.watch)")
	return cmd
}
