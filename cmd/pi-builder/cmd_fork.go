package main

import (
	"fmt"

	"pi-builder/internal/site"

	"github.com/spf13/cobra"
)

func newForkCmd(a *app) *cobra.Command {
	var opts site.ForkOptions

	cmd := &cobra.Command{
		Use:   "fork <site>",
		Short: "Turn a site's template into a new reusable template",
		Long: `Copies the site's template/ directory into the templates directory
under --as, renames the template script, writes an example config with a
single placeholder location and registers the new template.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.SitePath = args[0]

			b, err := a.builder()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			res, err := b.Fork(ctx, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styles.ok.Render("✓ template forked"))
			fmt.Fprintln(out, styles.key.Render("template")+res.Descriptor.ID)
			fmt.Fprintln(out, styles.key.Render("based on")+res.Descriptor.BasedOn)
			fmt.Fprintln(out, styles.key.Render("path")+res.Path)
			fmt.Fprintln(out)
			fmt.Fprintln(out, styles.muted.Render(fmt.Sprintf("use it with: pi-builder new -t %s -n <name>", res.Descriptor.ID)))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.As, "as", "", "name of the new template")
	cmd.Flags().StringVar(&opts.TemplatesDir, "templates-dir", "", "where to write the template (default: paths.templates_dir)")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}
