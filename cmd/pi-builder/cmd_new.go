package main

import (
	"fmt"
	"path/filepath"

	"pi-builder/internal/site"

	"github.com/spf13/cobra"
)

func newNewCmd(a *app) *cobra.Command {
	var opts site.NewOptions

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a site from a template",
		Long: `Creates <output>/<name> with the base components, the template's
files, a config.json and an index.html wired for the chosen mode.

Example:
  pi-builder new -t restaurant -n corner-bistro
  pi-builder new -t tech -n ai-gateway -c ./providers.json -m cdn`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("mode") {
				opts.Mode = a.settings.Deployment.Mode
			}
			if !cmd.Flags().Changed("output") {
				opts.Output = a.settings.Paths.OutputDir
			}
			return runNew(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Template, "template", "t", "", "template key (see `pi-builder templates`)")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "site directory name")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "business config to copy into the site")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "local", "dependency mode: local or cdn")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "./sites", "parent directory for the site")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runNew(cmd *cobra.Command, a *app, opts site.NewOptions) error {
	b, err := a.builder()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	res, err := b.New(ctx, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.ok.Render("✓ site created"))
	fmt.Fprintln(out, styles.key.Render("path")+res.Path)
	fmt.Fprintln(out, styles.key.Render("template")+res.Manifest.Template)
	fmt.Fprintln(out, styles.key.Render("mode")+res.Manifest.Mode)
	fmt.Fprintln(out, styles.key.Render("files")+fmt.Sprint(res.Files))
	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.muted.Render("next:"))
	fmt.Fprintf(out, "  edit %s\n", filepath.Join(res.Path, site.ConfigFile))
	fmt.Fprintf(out, "  pi-builder preview %s\n", res.Path)
	return nil
}
