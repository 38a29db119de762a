// Package site creates, forks, exports and publishes generated dashboard
// sites on disk.
package site

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"pi-builder/internal/common/config"
	apperrors "pi-builder/internal/common/errors"
	"pi-builder/internal/common/logger"
	"pi-builder/internal/common/metrics"
	"pi-builder/internal/common/observability"
	"pi-builder/internal/engine"
	"pi-builder/internal/siteconfig"
	"pi-builder/pkg/registry"

	"github.com/google/uuid"
)

const (
	ConfigFile   = "config.json"
	ExampleFile  = "config.example.json"
	ManifestFile = "site.json"
	IndexFile    = "index.html"
	DataFile     = "data.json"

	libDir      = "lib"
	templateDir = "template"
	assetsDir   = "assets"

	// DefaultTemplatesDir receives forked templates when settings name none.
	DefaultTemplatesDir = "./templates"
)

// bundled maps dependency keys to the file names copied into lib/ in local
// mode.
var bundled = map[string]string{
	"threejs": "three.min.js",
	"d3":      "d3.v7.min.js",
}

// Manifest is written to site.json by New.
type Manifest struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Template       string    `json:"template"`
	Mode           string    `json:"mode"`
	CreatedAt      time.Time `json:"createdAt"`
	BuilderVersion string    `json:"builderVersion"`
}

// ReadManifest loads dir/site.json.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	return &m, nil
}

// Builder runs site operations against one template source and settings.
type Builder struct {
	settings *config.Config
	logger   logger.Logger
	registry *registry.Registry
	assets   *Assets
	deps     siteconfig.DependencyConfig
	obs      *observability.Observability
	now      func() time.Time
}

type Option func(*Builder)

func WithRegistry(r *registry.Registry) Option {
	return func(b *Builder) { b.registry = r }
}

func WithAssets(a *Assets) Option {
	return func(b *Builder) { b.assets = a }
}

func WithObservability(o *observability.Observability) Option {
	return func(b *Builder) { b.obs = o }
}

func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder loads the template registry from the templates dir unless
// WithRegistry supplies one.
func NewBuilder(settings *config.Config, log logger.Logger, opts ...Option) (*Builder, error) {
	if settings == nil {
		settings = config.Default()
	}
	b := &Builder{
		settings: settings,
		logger:   log.WithFields(map[string]interface{}{"component": "site"}),
		deps:     siteconfig.DependenciesFromSettings(settings.Deployment),
		obs:      observability.NewNoop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.assets == nil {
		b.assets = NewAssets(b.templatesDir())
	}
	if b.registry == nil {
		reg, err := registry.LoadRegistry(b.templatesDir())
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		b.registry = reg
	}
	return b, nil
}

func (b *Builder) Registry() *registry.Registry {
	return b.registry
}

func (b *Builder) templatesDir() string {
	if b.settings.Paths.TemplatesDir != "" {
		return b.settings.Paths.TemplatesDir
	}
	return DefaultTemplatesDir
}

// NewStore returns a config store sharing the builder's registry and
// dependency table, switched to mode.
func (b *Builder) NewStore(mode string) (*siteconfig.Store, error) {
	store := siteconfig.NewStore(b.logger,
		siteconfig.WithRegistry(b.registry),
		siteconfig.WithDependencies(b.deps),
		siteconfig.WithClock(b.now),
	)
	if err := store.SetDeploymentMode(mode); err != nil {
		return nil, err
	}
	return store, nil
}

// ==========================
// new
// ==========================

type NewOptions struct {
	Template string
	Name     string
	// ConfigPath is copied to config.json. Empty uses the template's
	// config.example.json.
	ConfigPath string
	Mode       string
	Output     string
}

type NewResult struct {
	Path     string
	Files    int
	Manifest Manifest
}

// New creates Output/Name from a template.
func (b *Builder) New(ctx context.Context, opts NewOptions) (*NewResult, error) {
	start := time.Now()
	if opts.Mode == "" {
		opts.Mode = siteconfig.ModeLocal
	}
	if opts.Output == "" {
		opts.Output = b.settings.Paths.OutputDir
	}
	store, err := b.NewStore(opts.Mode)
	if err != nil {
		return nil, err
	}
	if opts.Name == "" || strings.ContainsAny(opts.Name, `/\`) {
		return nil, fmt.Errorf("invalid site name %q", opts.Name)
	}

	if !b.registry.Has(opts.Template) {
		return nil, apperrors.NewTemplateNotFoundError(opts.Template).
			WithMetadata("available", b.registry.Keys())
	}
	tmplFS, ok := b.assets.Template(opts.Template)
	if !ok {
		return nil, apperrors.NewTemplateNotFoundError(opts.Template)
	}

	sitePath, err := filepath.Abs(filepath.Join(opts.Output, opts.Name))
	if err != nil {
		return nil, err
	}
	if exists(sitePath) {
		return nil, apperrors.NewSiteExistsError(sitePath)
	}

	log := b.logger.WithFields(map[string]interface{}{
		"site":     sitePath,
		"template": opts.Template,
		"mode":     opts.Mode,
	})
	log.Info("creating site", nil)

	// a failed New leaves nothing behind, so a retry does not hit SITE_EXISTS
	fail := func(err error) (*NewResult, error) {
		if rmErr := os.RemoveAll(sitePath); rmErr != nil {
			log.Warn("failed to remove partial site", map[string]interface{}{"error": rmErr.Error()})
		}
		b.obs.RecordOperation(ctx, "site.new", time.Since(start), "error")
		log.Error("site creation failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	for _, dir := range []string{libDir, templateDir, assetsDir} {
		if err := os.MkdirAll(filepath.Join(sitePath, dir), 0o755); err != nil {
			return fail(err)
		}
	}

	files := 0
	n, err := copyTree(b.assets.Base(), filepath.Join(sitePath, libDir))
	if err != nil {
		return fail(fmt.Errorf("copy base components: %w", err))
	}
	files += n
	if n, err = copyTree(tmplFS, filepath.Join(sitePath, templateDir)); err != nil {
		return fail(fmt.Errorf("copy template files: %w", err))
	}
	files += n

	if err := b.writeSiteConfig(sitePath, opts.ConfigPath); err != nil {
		return fail(err)
	}
	files++

	if opts.Mode == siteconfig.ModeLocal {
		files += b.bundleDependencies(sitePath, log)
	}

	var index bytes.Buffer
	err = writeIndex(&index, indexData{
		Name:        opts.Name,
		Template:    opts.Template,
		ClassName:   ClassName(opts.Template),
		Mode:        opts.Mode,
		ThreeJS:     store.DependencyPath("threejs"),
		ContainerID: engine.DefaultContainerID,
	})
	if err != nil {
		return fail(fmt.Errorf("render %s: %w", IndexFile, err))
	}
	if err := os.WriteFile(filepath.Join(sitePath, IndexFile), index.Bytes(), 0o644); err != nil {
		return fail(err)
	}
	files++

	manifest := Manifest{
		ID:             uuid.NewString(),
		Name:           opts.Name,
		Template:       opts.Template,
		Mode:           opts.Mode,
		CreatedAt:      b.now().UTC(),
		BuilderVersion: b.settings.App.Version,
	}
	if err := writeJSON(filepath.Join(sitePath, ManifestFile), manifest); err != nil {
		return fail(err)
	}
	files++

	metrics.SitesCreated.WithLabelValues(opts.Template, opts.Mode).Inc()
	b.obs.RecordOperation(ctx, "site.new", time.Since(start), "success")
	log.Info("site created", map[string]interface{}{"files": files, "id": manifest.ID})

	return &NewResult{Path: sitePath, Files: files, Manifest: manifest}, nil
}

func (b *Builder) writeSiteConfig(sitePath, configPath string) error {
	target := filepath.Join(sitePath, ConfigFile)
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return apperrors.NewConfigLoadError(configPath, err)
		}
		if _, err := siteconfig.ParseDocument(data); err != nil {
			return apperrors.NewConfigParseError(configPath, err)
		}
		return os.WriteFile(target, data, 0o644)
	}

	example := filepath.Join(sitePath, templateDir, ExampleFile)
	data, err := os.ReadFile(example)
	if err != nil {
		// a template without an example still gets a loadable config
		return writeJSON(target, siteconfig.DefaultDocument())
	}
	return os.WriteFile(target, data, 0o644)
}

// bundleDependencies copies three.js and d3 from the configured lib dir.
// Missing files are skipped.
func (b *Builder) bundleDependencies(sitePath string, log logger.Logger) int {
	libSrc := b.settings.Paths.LibDir
	if libSrc == "" {
		log.Debug("no lib_dir configured, skipping dependency bundling", nil)
		return 0
	}
	n := 0
	for key, name := range bundled {
		src := filepath.Join(libSrc, name)
		if !exists(src) {
			log.Warn("dependency not found", map[string]interface{}{"dependency": key, "path": src})
			continue
		}
		if err := copyFile(os.DirFS(libSrc), name, filepath.Join(sitePath, libDir, name)); err != nil {
			log.Warn("failed to bundle dependency", map[string]interface{}{"dependency": key, "error": err.Error()})
			continue
		}
		n++
	}
	return n
}

// ==========================
// fork
// ==========================

type ForkOptions struct {
	SitePath string
	As       string
	// TemplatesDir receives the new template. Empty uses the settings'
	// templates dir.
	TemplatesDir string
}

type ForkResult struct {
	Path       string
	Descriptor *registry.TemplateDescriptor
}

var (
	templateClassPattern = regexp.MustCompile(`const\s+(\w+)\s*=\s*\(function\(\)`)
	templateIDPattern    = regexp.MustCompile(`TEMPLATE_ID\s*=\s*'[^']+'`)
	templateNamePattern  = regexp.MustCompile(`TEMPLATE_NAME\s*=\s*'[^']+'`)
	templateNamePart     = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

// Fork turns a site's template/ directory and config into a new custom
// template.
func (b *Builder) Fork(ctx context.Context, opts ForkOptions) (*ForkResult, error) {
	start := time.Now()
	sitePath, err := filepath.Abs(opts.SitePath)
	if err != nil {
		return nil, err
	}
	if !exists(sitePath) {
		return nil, apperrors.NewSiteNotFoundError(sitePath)
	}
	if !templateNamePart.MatchString(opts.As) {
		return nil, fmt.Errorf("invalid template name %q", opts.As)
	}

	dir := opts.TemplatesDir
	if dir == "" {
		dir = b.templatesDir()
	}
	newPath := filepath.Join(dir, opts.As)
	if b.registry.Has(opts.As) || exists(newPath) {
		return nil, apperrors.NewTemplateExistsError(opts.As)
	}

	log := b.logger.WithFields(map[string]interface{}{"site": sitePath, "template": opts.As})
	log.Info("forking site", nil)

	if err := os.MkdirAll(newPath, 0o755); err != nil {
		return nil, err
	}
	if src := filepath.Join(sitePath, templateDir); exists(src) {
		if _, err := copyTree(os.DirFS(src), newPath); err != nil {
			return nil, fmt.Errorf("copy template files: %w", err)
		}
	}

	source := registry.DefaultTemplate
	if m, err := ReadManifest(sitePath); err == nil && m.Template != "" {
		source = m.Template
	}

	if data, err := os.ReadFile(filepath.Join(sitePath, ConfigFile)); err == nil {
		doc, err := siteconfig.ParseDocument(data)
		if err != nil {
			return nil, apperrors.NewConfigParseError(ConfigFile, err)
		}
		if source == registry.DefaultTemplate {
			if biz, ok := doc["business"].(map[string]interface{}); ok {
				if ind, ok := biz["industry"].(string); ok && b.registry.Has(ind) {
					source = ind
				}
			}
		}
		if err := writeJSON(filepath.Join(newPath, ExampleFile), ExampleConfig(doc)); err != nil {
			return nil, err
		}
	}

	if err := renameTemplateScript(filepath.Join(newPath, "template.js"), opts.As); err != nil {
		return nil, err
	}

	base := *b.registry.GetTemplate(source)
	desc := &registry.TemplateDescriptor{
		ID:           opts.As,
		Name:         templateTitle(opts.As),
		Description:  base.Description,
		Icon:         base.Icon,
		DetailFields: base.DetailFields,
		Metrics:      base.Metrics,
		Colors:       base.Colors,
		Accent:       base.Accent,
		Status:       registry.StatusCustom,
		BasedOn:      base.Industry(),
	}
	if err := registry.WriteDescriptor(newPath, desc); err != nil {
		return nil, err
	}
	if err := b.registry.Register(desc); err != nil {
		return nil, apperrors.NewTemplateExistsError(opts.As)
	}

	b.obs.RecordOperation(ctx, "site.fork", time.Since(start), "success")
	log.Info("template created", map[string]interface{}{"path": newPath, "basedOn": desc.BasedOn})
	return &ForkResult{Path: newPath, Descriptor: b.registry.GetTemplate(opts.As)}, nil
}

// ExampleConfig strips business identity from doc and keeps only its first
// location, renamed. doc is not modified.
func ExampleConfig(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}

	biz := map[string]interface{}{}
	if src, ok := doc["business"].(map[string]interface{}); ok {
		for k, v := range src {
			biz[k] = v
		}
	}
	biz["name"] = "My Business"
	biz["tagline"] = "Your tagline here"
	biz["logo"] = nil
	out["business"] = biz

	if locs, ok := doc["locations"].([]interface{}); ok && len(locs) > 0 {
		first := map[string]interface{}{}
		if src, ok := locs[0].(map[string]interface{}); ok {
			for k, v := range src {
				first[k] = v
			}
		}
		first["name"] = "Example Location"
		first["id"] = "example-1"
		out["locations"] = []interface{}{first}
	}
	return out
}

func renameTemplateScript(path, id string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	content := string(data)
	m := templateClassPattern.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	content = strings.ReplaceAll(content, m[1], ClassName(id))
	content = templateIDPattern.ReplaceAllLiteralString(content, fmt.Sprintf("TEMPLATE_ID = '%s'", id))
	content = templateNamePattern.ReplaceAllLiteralString(content, fmt.Sprintf("TEMPLATE_NAME = '%s'", templateTitle(id)))
	return os.WriteFile(path, []byte(content), 0o644)
}

func templateTitle(id string) string {
	if id == "" {
		return "Template"
	}
	return strings.ToUpper(id[:1]) + id[1:] + " Template"
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
