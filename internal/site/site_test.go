package site

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"pi-builder/internal/common/config"
	apperrors "pi-builder/internal/common/errors"
	"pi-builder/internal/common/logger"
	"pi-builder/pkg/registry"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func createTestBuilder(t *testing.T, mutate ...func(*config.Config)) *Builder {
	t.Helper()
	settings := config.Default()
	settings.Paths.TemplatesDir = filepath.Join(t.TempDir(), "templates")
	settings.Paths.OutputDir = filepath.Join(t.TempDir(), "sites")
	for _, m := range mutate {
		m(settings)
	}
	b, err := NewBuilder(settings, logger.NewTestLogger(t), WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return b
}

func createTestSite(t *testing.T, b *Builder, template, mode string) string {
	t.Helper()
	res, err := b.New(context.Background(), NewOptions{Template: template, Name: "demo", Mode: mode})
	require.NoError(t, err)
	return res.Path
}

func readFile(t *testing.T, parts ...string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(parts...))
	require.NoError(t, err)
	return string(data)
}

func readJSON(t *testing.T, parts ...string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(readFile(t, parts...)), &out))
	return out
}

// ==========================
// New
// ==========================

func TestNew_CreatesSiteFromEmbeddedTemplate(t *testing.T) {
	b := createTestBuilder(t)

	res, err := b.New(context.Background(), NewOptions{Template: "restaurant", Name: "cafe"})
	require.NoError(t, err)

	for _, f := range []string{
		"lib/pi-template.js", "lib/globe.js", "lib/panels.js", "lib/config-loader.js", "lib/styles.css",
		"template/template.js", "template/styles.css", "template/config.example.json",
		"config.json", "index.html", "site.json",
	} {
		assert.FileExists(t, filepath.Join(res.Path, filepath.FromSlash(f)))
	}
	assert.DirExists(t, filepath.Join(res.Path, "assets"))

	assert.Equal(t,
		readFile(t, res.Path, "template", "config.example.json"),
		readFile(t, res.Path, "config.json"))

	index := readFile(t, res.Path, "index.html")
	assert.Contains(t, index, `<title>cafe - Powered by PI Builder</title>`)
	assert.Contains(t, index, `src="./lib/three.min.js"`)
	assert.Contains(t, index, `PIRestaurant.apply()`)
	assert.Contains(t, index, `<div id="pi-app"></div>`)

	m, err := ReadManifest(res.Path)
	require.NoError(t, err)
	assert.Equal(t, res.Manifest, *m)
	assert.Equal(t, "restaurant", m.Template)
	assert.Equal(t, "local", m.Mode)
	assert.Equal(t, testNow, m.CreatedAt)
	assert.Equal(t, "1.0.0", m.BuilderVersion)
	_, err = uuid.Parse(m.ID)
	assert.NoError(t, err)
}

func TestNew_CDNMode(t *testing.T) {
	b := createTestBuilder(t)
	path := createTestSite(t, b, "tech", "cdn")

	index := readFile(t, path, "index.html")
	assert.Contains(t, index, `src="`+config.DefaultCDNThreeJS+`"`)
	assert.Contains(t, index, "(cdn mode)")
	assert.NotContains(t, index, "./lib/three.min.js")
}

func TestNew_CopiesGivenConfig(t *testing.T) {
	b := createTestBuilder(t)
	cfgPath := filepath.Join(t.TempDir(), "mine.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"business":{"name":"Mine"}}`), 0o644))

	res, err := b.New(context.Background(), NewOptions{Template: "retail", Name: "mine", ConfigPath: cfgPath})
	require.NoError(t, err)
	assert.JSONEq(t, `{"business":{"name":"Mine"}}`, readFile(t, res.Path, "config.json"))
}

func TestNew_BundlesLocalDependencies(t *testing.T) {
	libDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(libDir, "three.min.js"), []byte("// three"), 0o644))

	b := createTestBuilder(t, func(c *config.Config) { c.Paths.LibDir = libDir })
	path := createTestSite(t, b, "restaurant", "local")

	assert.FileExists(t, filepath.Join(path, "lib", "three.min.js"))
	assert.NoFileExists(t, filepath.Join(path, "lib", "d3.v7.min.js"))
}

func TestNew_Errors(t *testing.T) {
	b := createTestBuilder(t)
	createTestSite(t, b, "restaurant", "local")

	badConfig := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(badConfig, []byte(`{nope`), 0o644))

	tests := []struct {
		name string
		opts NewOptions
		code apperrors.ErrorCode
	}{
		{"unknown template", NewOptions{Template: "bakery", Name: "x"}, apperrors.ErrCodeTemplateNotFound},
		{"existing site", NewOptions{Template: "restaurant", Name: "demo"}, apperrors.ErrCodeSiteExists},
		{"bad mode", NewOptions{Template: "restaurant", Name: "y", Mode: "ftp"}, apperrors.ErrCodeInvalidMode},
		{"missing config", NewOptions{Template: "restaurant", Name: "z", ConfigPath: "/nope.json"}, apperrors.ErrCodeConfigLoadFailed},
		{"unparsable config", NewOptions{Template: "restaurant", Name: "w", ConfigPath: badConfig}, apperrors.ErrCodeConfigParseFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.New(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}

	_, err := b.New(context.Background(), NewOptions{Template: "restaurant", Name: "../escape"})
	assert.Error(t, err)
}

func TestNew_FailureLeavesNoSite(t *testing.T) {
	b := createTestBuilder(t)
	badConfig := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(badConfig, []byte(`{nope`), 0o644))
	out := t.TempDir()

	_, err := b.New(context.Background(), NewOptions{Template: "restaurant", Name: "retry", ConfigPath: badConfig, Output: out})
	require.Error(t, err)
	assert.NoDirExists(t, filepath.Join(out, "retry"))

	res, err := b.New(context.Background(), NewOptions{Template: "restaurant", Name: "retry", Output: out})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(res.Path, IndexFile))
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "PIRestaurant", ClassName("restaurant"))
	assert.Equal(t, "PIMyCafe", ClassName("my-Cafe"))
	assert.Equal(t, "PIMycafe", ClassName("my-cafe"))
}

// ==========================
// Fork
// ==========================

func TestFork(t *testing.T) {
	b := createTestBuilder(t)
	sitePath := createTestSite(t, b, "restaurant", "local")

	res, err := b.Fork(context.Background(), ForkOptions{SitePath: sitePath, As: "my-cafe"})
	require.NoError(t, err)

	example := readJSON(t, res.Path, ExampleFile)
	business := example["business"].(map[string]interface{})
	assert.Equal(t, "My Business", business["name"])
	assert.Equal(t, "Your tagline here", business["tagline"])
	assert.Nil(t, business["logo"])
	locs := example["locations"].([]interface{})
	require.Len(t, locs, 1)
	first := locs[0].(map[string]interface{})
	assert.Equal(t, "example-1", first["id"])
	assert.Equal(t, "Example Location", first["name"])
	assert.Contains(t, first, "hours", "other fields survive")

	script := readFile(t, res.Path, "template.js")
	assert.Contains(t, script, "const PIMycafe = (function()")
	assert.Contains(t, script, "TEMPLATE_ID = 'my-cafe'")
	assert.Contains(t, script, "TEMPLATE_NAME = 'My-cafe Template'")
	assert.NotContains(t, script, "PIRestaurant")

	assert.Equal(t, registry.StatusCustom, res.Descriptor.Status)
	assert.Equal(t, "restaurant", res.Descriptor.BasedOn)
	assert.Equal(t, "restaurant", res.Descriptor.Industry())
	assert.FileExists(t, filepath.Join(res.Path, registry.DescriptorFile))

	// the fork is immediately usable, and a fresh builder finds it on disk
	_, err = b.New(context.Background(), NewOptions{Template: "my-cafe", Name: "second"})
	require.NoError(t, err)

	reloaded, err := NewBuilder(b.settings, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.True(t, reloaded.Registry().Has("my-cafe"))
}

func TestFork_Errors(t *testing.T) {
	b := createTestBuilder(t)
	sitePath := createTestSite(t, b, "restaurant", "local")
	_, err := b.Fork(context.Background(), ForkOptions{SitePath: sitePath, As: "dupe"})
	require.NoError(t, err)

	tests := []struct {
		name string
		opts ForkOptions
		code apperrors.ErrorCode
	}{
		{"missing site", ForkOptions{SitePath: filepath.Join(t.TempDir(), "none"), As: "x"}, apperrors.ErrCodeSiteNotFound},
		{"existing fork", ForkOptions{SitePath: sitePath, As: "dupe"}, apperrors.ErrCodeTemplateExists},
		{"built-in name", ForkOptions{SitePath: sitePath, As: "tech"}, apperrors.ErrCodeTemplateExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Fork(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}
}

func TestExampleConfig_DoesNotMutateInput(t *testing.T) {
	doc := map[string]interface{}{
		"business":  map[string]interface{}{"name": "Real"},
		"locations": []interface{}{map[string]interface{}{"id": "a"}, map[string]interface{}{"id": "b"}},
	}
	out := ExampleConfig(doc)

	assert.Equal(t, "Real", doc["business"].(map[string]interface{})["name"])
	assert.Len(t, doc["locations"], 2)
	assert.Len(t, out["locations"], 1)

	empty := ExampleConfig(map[string]interface{}{})
	assert.NotContains(t, empty, "locations")
	assert.Equal(t, "My Business", empty["business"].(map[string]interface{})["name"])
}

// ==========================
// Export
// ==========================

func TestExport_LocalPrerendersData(t *testing.T) {
	b := createTestBuilder(t)
	sitePath := createTestSite(t, b, "restaurant", "local")
	out := filepath.Join(t.TempDir(), "dist")

	res, err := b.Export(context.Background(), ExportOptions{SitePath: sitePath, Output: out})
	require.NoError(t, err)

	assert.True(t, res.Rendered)
	assert.Greater(t, res.Files, 10)
	assert.Greater(t, res.Bytes, int64(0))
	assert.NotEqual(t, "0 B", res.Size())

	var data DataDocument
	require.NoError(t, json.Unmarshal([]byte(readFile(t, out, DataFile)), &data))
	assert.Equal(t, "restaurant", data.Template)
	assert.Equal(t, "Corner Bistro", data.Snapshot.Title)
	assert.Len(t, data.Snapshot.Cards, 2)
	assert.True(t, data.Snapshot.Globe.Ready)
	assert.Len(t, data.Snapshot.Globe.Markers, 2)

	raw := readJSON(t, out, DataFile)
	details := raw["details"].(map[string]interface{})
	require.Contains(t, details, "downtown")
	assert.Equal(t, "Downtown Bistro", details["downtown"].(map[string]interface{})["name"])
}

func TestExport_CDNRewritesScripts(t *testing.T) {
	libDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(libDir, "three.min.js"), []byte("// three"), 0o644))
	b := createTestBuilder(t, func(c *config.Config) { c.Paths.LibDir = libDir })
	sitePath := createTestSite(t, b, "tech", "local")
	out := filepath.Join(t.TempDir(), "dist")

	_, err := b.Export(context.Background(), ExportOptions{SitePath: sitePath, Output: out, Mode: "cdn"})
	require.NoError(t, err)

	index := readFile(t, out, IndexFile)
	assert.Contains(t, index, `src="`+config.DefaultCDNThreeJS+`"`)
	assert.NotContains(t, index, `src="./lib/three.min.js"`)
	assert.NoFileExists(t, filepath.Join(out, "lib", "three.min.js"))
	assert.FileExists(t, filepath.Join(sitePath, "lib", "three.min.js"), "the source site is untouched")
}

func TestExport_Minify(t *testing.T) {
	b := createTestBuilder(t)
	sitePath := createTestSite(t, b, "events", "local")
	out := filepath.Join(t.TempDir(), "dist")

	_, err := b.Export(context.Background(), ExportOptions{SitePath: sitePath, Output: out, Minify: true})
	require.NoError(t, err)

	css := readFile(t, out, "lib", "styles.css")
	assert.NotContains(t, css, "\n")
	assert.Contains(t, css, ".pi-title{margin:0;color:var(--pi-primary)}")
	assert.Less(t, len(css), len(readFile(t, sitePath, "lib", "styles.css")))
	assert.NotContains(t, readFile(t, out, IndexFile), "<!--")
}

func TestExport_Errors(t *testing.T) {
	b := createTestBuilder(t)

	_, err := b.Export(context.Background(), ExportOptions{SitePath: filepath.Join(t.TempDir(), "none"), Output: t.TempDir()})
	assert.Equal(t, apperrors.ErrCodeSiteNotFound, apperrors.CodeOf(err))

	sitePath := createTestSite(t, b, "restaurant", "local")
	_, err = b.Export(context.Background(), ExportOptions{SitePath: sitePath, Output: t.TempDir(), Mode: "zip"})
	assert.Equal(t, apperrors.ErrCodeInvalidMode, apperrors.CodeOf(err))

	for _, out := range []string{sitePath, filepath.Join(sitePath, "dist"), filepath.Join(sitePath, "lib", "dist")} {
		_, err = b.Export(context.Background(), ExportOptions{SitePath: sitePath, Output: out})
		assert.Equal(t, apperrors.ErrCodeExportFailed, apperrors.CodeOf(err), out)
	}
	assert.NoDirExists(t, filepath.Join(sitePath, "dist"))
	assert.NoDirExists(t, filepath.Join(sitePath, "lib", "dist"))

	require.NoError(t, os.WriteFile(filepath.Join(sitePath, ConfigFile), []byte("{broken"), 0o644))
	_, err = b.Export(context.Background(), ExportOptions{SitePath: sitePath, Output: t.TempDir()})
	assert.Equal(t, apperrors.ErrCodeExportFailed, apperrors.CodeOf(err))
}

func TestExport_SiblingOutput(t *testing.T) {
	b := createTestBuilder(t)
	sitePath := createTestSite(t, b, "restaurant", "local")
	out := sitePath + "-dist"

	res, err := b.Export(context.Background(), ExportOptions{SitePath: sitePath, Output: out})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.Positive(t, res.Files)
}

func TestExport_WithoutConfigSkipsData(t *testing.T) {
	b := createTestBuilder(t)
	sitePath := createTestSite(t, b, "restaurant", "local")
	require.NoError(t, os.Remove(filepath.Join(sitePath, ConfigFile)))
	out := t.TempDir()

	res, err := b.Export(context.Background(), ExportOptions{SitePath: sitePath, Output: out})
	require.NoError(t, err)
	assert.False(t, res.Rendered)
	assert.NoFileExists(t, filepath.Join(out, DataFile))
}

func TestMinify(t *testing.T) {
	tests := []struct {
		name string
		file string
		in   string
		want string
	}{
		{"css", "a.css", "/* c */\n.a {\n  color: red;\n}\n\n.b > .c { margin: 0 4px; }", ".a{color:red}.b>.c{margin:0 4px}"},
		{"js", "a.js", "// header\nconst a = 1;\n\n  if (a) {\n    go('// not a comment');\n  }\n", "const a = 1;\nif (a) {\ngo('// not a comment');\n}"},
		{"html", "index.html", "<html>\n  <!-- note -->\n  <body>\n\n  </body>\n</html>", "<html>\n<body>\n</body>\n</html>"},
		{"other", "data.json", "{ \"a\": 1 }\n", "{ \"a\": 1 }\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(Minify(tt.file, []byte(tt.in))))
		})
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KiB", FormatBytes(1024))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "1.0 MiB", FormatBytes(1<<20))
}

// ==========================
// Publish
// ==========================

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string]string
	failOn  string
}

func (f *fakeUploader) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && strings.HasSuffix(*in.Key, f.failOn) {
		return nil, errors.New("access denied")
	}
	if f.objects == nil {
		f.objects = map[string]string{}
	}
	f.objects[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func TestPublish(t *testing.T) {
	b := createTestBuilder(t)
	sitePath := createTestSite(t, b, "restaurant", "local")
	up := &fakeUploader{}

	res, err := b.Publish(context.Background(), up, PublishOptions{Dir: sitePath, Bucket: "sites", Prefix: "demo"})
	require.NoError(t, err)

	assert.Equal(t, len(up.objects), res.Objects)
	assert.Greater(t, res.Bytes, int64(0))
	assert.Contains(t, up.objects["demo/index.html"], "text/html")
	assert.Contains(t, up.objects["demo/lib/styles.css"], "text/css")
	assert.Contains(t, up.objects["demo/config.json"], "application/json")
}

func TestPublish_StopsOnFailure(t *testing.T) {
	b := createTestBuilder(t)
	sitePath := createTestSite(t, b, "restaurant", "local")

	_, err := b.Publish(context.Background(), &fakeUploader{failOn: "index.html"}, PublishOptions{Dir: sitePath, Bucket: "sites"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodePublishFailed, apperrors.CodeOf(err))
}
