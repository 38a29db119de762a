package main

import (
	"fmt"
	"os"
	"strings"

	apperrors "pi-builder/internal/common/errors"
	"pi-builder/internal/common/validation"
	"pi-builder/internal/siteconfig"

	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <config.json>",
		Short: "Check a business config and show how it will be normalized",
		Long: `Checks a config.json against the business config schema, then runs the
same normalization the dashboard applies on load and reports every
warning: missing ids, colors filled in, duplicate ids renamed.

Schema errors fail the command. With --strict so do warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat normalization warnings as errors")
	return cmd
}

func runValidate(cmd *cobra.Command, path string, strict bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewConfigLoadError(path, err)
	}
	doc, err := siteconfig.ParseDocument(data)
	if err != nil {
		return apperrors.NewConfigParseError(path, err)
	}

	out := cmd.OutOrStdout()
	result := validation.ValidateBusinessConfig(doc)
	cfg, _, warnings := siteconfig.Normalize(doc)

	fmt.Fprintln(out, styles.title.Render(path))
	fmt.Fprintln(out, styles.key.Render("business")+cfg.Business.Name)
	fmt.Fprintln(out, styles.key.Render("industry")+cfg.Business.Industry)
	fmt.Fprintln(out, styles.key.Render("locations")+fmt.Sprint(len(cfg.Locations)))
	if cats := cfg.Categories(); len(cats) > 0 {
		fmt.Fprintln(out, styles.key.Render("categories")+strings.Join(cats, ", "))
	}
	fmt.Fprintln(out)

	for _, e := range result.Errors {
		fmt.Fprintln(out, styles.err.Render("✗ ")+fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	for _, w := range warnings {
		// schema problems were already listed above
		if strings.HasPrefix(w, "config schema: ") {
			continue
		}
		fmt.Fprintln(out, styles.warn.Render("! ")+w)
	}

	switch {
	case !result.Valid:
		return fmt.Errorf("%s: %d schema error(s)", path, len(result.Errors))
	case strict && len(warnings) > 0:
		return fmt.Errorf("%s: %d warning(s)", path, len(warnings))
	}
	fmt.Fprintln(out, styles.ok.Render("✓ config is valid"))
	return nil
}
