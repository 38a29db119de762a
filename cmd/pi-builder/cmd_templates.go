package main

import (
	"fmt"
	"strings"

	"pi-builder/pkg/registry"

	"github.com/spf13/cobra"
)

func newTemplatesCmd(a *app) *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.builder()
			if err != nil {
				return err
			}
			printTemplates(cmd, b.Registry().ListTemplates(), detailed)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&detailed, "detailed", "v", false, "show fields, metrics and colors")
	return cmd
}

func printTemplates(cmd *cobra.Command, templates []registry.TemplateDescriptor, detailed bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.title.Render("Available templates"))
	fmt.Fprintln(out)

	for _, t := range templates {
		status := styles.ok.Render(t.Status)
		if t.Status != registry.StatusReady {
			status = styles.warn.Render(t.Status)
		}
		fmt.Fprintf(out, "  %s %s  %s  [%s]\n", t.Icon, styles.key.Render(t.ID), t.Name, status)
		if !detailed {
			continue
		}
		fmt.Fprintf(out, "      %s\n", styles.muted.Render(t.Description))
		if len(t.DetailFields) > 0 {
			fmt.Fprintf(out, "      fields:  %s\n", strings.Join(t.DetailFields, ", "))
		}
		if len(t.Metrics) > 0 {
			fmt.Fprintf(out, "      metrics: %s\n", strings.Join(t.Metrics, ", "))
		}
		fmt.Fprintf(out, "      colors:  %s %s\n", t.Colors.Primary, t.Colors.Secondary)
		if t.BasedOn != "" {
			fmt.Fprintf(out, "      based on %s\n", t.BasedOn)
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.muted.Render("Usage: pi-builder new -t <template> -n <name>"))
}
