package site

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	apperrors "pi-builder/internal/common/errors"
	"pi-builder/internal/common/metrics"
	"pi-builder/internal/engine"
	"pi-builder/internal/formatter"
	"pi-builder/internal/siteconfig"
	"pi-builder/internal/snapshot"

	"github.com/dustin/go-humanize"
)

type ExportOptions struct {
	SitePath string
	Output   string
	Mode     string
	Minify   bool
}

type ExportResult struct {
	Output string
	Files  int
	Bytes  int64
	// Rendered reports whether data.json was written.
	Rendered bool
}

// Size is Bytes in human-readable form.
func (r *ExportResult) Size() string {
	return FormatBytes(r.Bytes)
}

// Export copies a site into Output ready for static hosting.
func (b *Builder) Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	start := time.Now()
	if opts.Mode == "" {
		opts.Mode = siteconfig.ModeLocal
	}
	store, err := b.NewStore(opts.Mode)
	if err != nil {
		return nil, err
	}

	sitePath, err := filepath.Abs(opts.SitePath)
	if err != nil {
		return nil, err
	}
	if !exists(sitePath) {
		return nil, apperrors.NewSiteNotFoundError(sitePath)
	}
	out, err := filepath.Abs(opts.Output)
	if err != nil {
		return nil, err
	}

	log := b.logger.WithFields(map[string]interface{}{"site": sitePath, "output": out, "mode": opts.Mode})
	log.Info("exporting site", nil)

	fail := func(err error) (*ExportResult, error) {
		b.obs.RecordOperation(ctx, "site.export", time.Since(start), "error")
		log.Error("export failed", map[string]interface{}{"error": err.Error()})
		return nil, apperrors.NewExportFailedError(err)
	}

	if within(sitePath, out) {
		return fail(fmt.Errorf("cannot export %s into itself: %s", sitePath, out))
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fail(err)
	}
	if _, err := copyTree(os.DirFS(sitePath), out); err != nil {
		return fail(err)
	}

	if opts.Mode == siteconfig.ModeCDN {
		if err := b.switchToCDN(out, store); err != nil {
			return fail(err)
		}
	}

	if opts.Minify {
		if err := minifyTree(out); err != nil {
			return fail(err)
		}
	}

	rendered, err := b.prerender(ctx, out)
	if err != nil {
		return fail(err)
	}

	res := &ExportResult{Output: out, Rendered: rendered}
	err = walkFiles(out, func(_ string, info fs.FileInfo) error {
		res.Files++
		res.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return fail(err)
	}

	metrics.ExportBytes.WithLabelValues(opts.Mode).Observe(float64(res.Bytes))
	b.obs.RecordOperation(ctx, "site.export", time.Since(start), "success")
	log.Info("export complete", map[string]interface{}{"files": res.Files, "size": res.Size()})
	return res, nil
}

// within reports whether p is dir or lies below it.
func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// switchToCDN points every local dependency script at its CDN location and
// drops the bundled copies.
func (b *Builder) switchToCDN(out string, store *siteconfig.Store) error {
	indexPath := filepath.Join(out, IndexFile)
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return err
	}
	html := string(data)
	cdn := store.Dependencies()
	for key, local := range b.deps.Local {
		remote := cdn[key]
		if remote == "" {
			continue
		}
		html = strings.ReplaceAll(html, `src="`+local+`"`, `src="`+remote+`"`)

		name := bundled[key]
		if name == "" {
			name = path.Base(local)
		}
		if err := os.Remove(filepath.Join(out, libDir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return os.WriteFile(indexPath, []byte(html), 0o644)
}

// DataDocument is the data.json written by export: the dashboard as the
// engine renders it, plus the detail panel of every location.
type DataDocument struct {
	GeneratedAt time.Time                   `json:"generatedAt"`
	Template    string                      `json:"template"`
	Snapshot    snapshot.State              `json:"snapshot"`
	Details     map[string]formatter.Detail `json:"details"`
}

// prerender runs the engine over out/config.json and writes data.json. A
// site without a config is exported without one.
func (b *Builder) prerender(ctx context.Context, out string) (bool, error) {
	cfgPath := filepath.Join(out, ConfigFile)
	if !exists(cfgPath) {
		b.logger.Warn("no config.json, skipping data.json", map[string]interface{}{"output": out})
		return false, nil
	}

	templateID := ""
	if m, err := ReadManifest(out); err == nil {
		templateID = m.Template
	}

	store, err := b.NewStore(siteconfig.ModeLocal)
	if err != nil {
		return false, err
	}
	view := snapshot.New()
	eng := engine.New(store, view, view, b.logger,
		engine.WithGlobeDelay(0),
		engine.WithClock(b.now),
		engine.WithObservability(b.obs),
	)
	defer eng.Close()

	if !eng.Init(ctx, engine.Options{ConfigPath: cfgPath, TemplateID: templateID}) {
		return false, fmt.Errorf("render %s: engine init failed", cfgPath)
	}
	if err := eng.WaitGlobe(ctx); err != nil {
		return false, err
	}

	doc := DataDocument{
		GeneratedAt: b.now().UTC(),
		Template:    eng.Template().ID,
		Snapshot:    view.Snapshot(),
		Details:     make(map[string]formatter.Detail),
	}
	for _, loc := range eng.Config().Locations {
		if d, ok := eng.Detail(loc.ID()); ok {
			doc.Details[loc.ID()] = d
		}
	}
	return true, writeJSON(filepath.Join(out, DataFile), doc)
}

// FormatBytes renders n in binary units, "0 B" for zero.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}
