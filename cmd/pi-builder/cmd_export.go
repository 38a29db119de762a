package main

import (
	"fmt"

	"pi-builder/internal/site"

	"github.com/spf13/cobra"
)

type exportFlags struct {
	output string
	mode   string
	minify bool
	bucket string
	prefix string
	region string
}

func newExportCmd(a *app) *cobra.Command {
	var f exportFlags

	cmd := &cobra.Command{
		Use:   "export <site>",
		Short: "Export a site for static hosting",
		Long: `Copies the site to --output, switches script sources for the chosen
mode, optionally minifies, and writes data.json with the pre-rendered
dashboard. With --s3-bucket the result is uploaded as well.

Example:
  pi-builder export ./sites/corner-bistro -o ./dist -m cdn --minify
  pi-builder export ./sites/corner-bistro -o ./dist --s3-bucket my-sites --s3-prefix bistro`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("mode") {
				f.mode = a.settings.Deployment.Mode
			}
			if !cmd.Flags().Changed("s3-bucket") {
				f.bucket = a.settings.Publish.Bucket
			}
			if !cmd.Flags().Changed("s3-prefix") {
				f.prefix = a.settings.Publish.Prefix
			}
			if !cmd.Flags().Changed("region") {
				f.region = a.settings.Publish.Region
			}
			return runExport(cmd, a, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "export directory")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "local", "dependency mode: local or cdn")
	cmd.Flags().BoolVar(&f.minify, "minify", false, "minify css, js and html")
	cmd.Flags().StringVar(&f.bucket, "s3-bucket", "", "upload the export to this S3 bucket")
	cmd.Flags().StringVar(&f.prefix, "s3-prefix", "", "key prefix inside the bucket")
	cmd.Flags().StringVar(&f.region, "region", "us-east-1", "AWS region")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runExport(cmd *cobra.Command, a *app, sitePath string, f exportFlags) error {
	b, err := a.builder()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	res, err := b.Export(ctx, site.ExportOptions{
		SitePath: sitePath,
		Output:   f.output,
		Mode:     f.mode,
		Minify:   f.minify,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.ok.Render("✓ export complete"))
	fmt.Fprintln(out, styles.key.Render("output")+res.Output)
	fmt.Fprintln(out, styles.key.Render("mode")+f.mode)
	fmt.Fprintln(out, styles.key.Render("files")+fmt.Sprint(res.Files))
	fmt.Fprintln(out, styles.key.Render("size")+res.Size())
	if !res.Rendered {
		fmt.Fprintln(out, styles.warn.Render("no config.json, data.json was not written"))
	}

	if f.bucket == "" {
		return nil
	}
	client, err := site.NewS3Client(ctx, f.region)
	if err != nil {
		return fmt.Errorf("aws config: %w", err)
	}
	pub, err := b.Publish(ctx, client, site.PublishOptions{Dir: res.Output, Bucket: f.bucket, Prefix: f.prefix})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, styles.ok.Render("✓ published"))
	fmt.Fprintln(out, styles.key.Render("location")+fmt.Sprintf("s3://%s/%s", f.bucket, f.prefix))
	fmt.Fprintln(out, styles.key.Render("objects")+fmt.Sprint(pub.Objects))
	fmt.Fprintln(out, styles.key.Render("uploaded")+site.FormatBytes(pub.Bytes))
	return nil
}
