// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pi-builder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "local", cfg.Deployment.Mode)
	assert.Equal(t, DefaultCDNThreeJS, cfg.Deployment.CDN["threejs"])
	assert.Equal(t, DefaultLocalD3, cfg.Deployment.Local["d3"])
	assert.Equal(t, 8080, cfg.Preview.Port)
	assert.Equal(t, 5*time.Second, GetDuration(cfg.Preview.TickerInterval))
	assert.Equal(t, 50*time.Millisecond, GetDuration(cfg.Preview.GlobeDelay))
	assert.Equal(t, "./sites", cfg.Paths.OutputDir)
	assert.Equal(t, "1.0.0", cfg.App.Version)
}

func TestLoadFromFile(t *testing.T) {
	path := writeSettings(t, `
deployment:
  mode: cdn
  cdn:
    threejs: https://example.test/three.js
preview:
  port: 9090
logging:
  level: debug
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "cdn", cfg.Deployment.Mode)
	assert.Equal(t, "https://example.test/three.js", cfg.Deployment.CDN["threejs"])
	assert.Equal(t, DefaultCDND3, cfg.Deployment.CDN["d3"])
	assert.Equal(t, 9090, cfg.Preview.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	path := writeSettings(t, "preview:\n  port: 9090\n")
	t.Setenv("PI_PREVIEW_PORT", "7070")
	t.Setenv("PI_PUBLISH_BUCKET", "my-sites")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Preview.Port)
	assert.Equal(t, "my-sites", cfg.Publish.Bucket)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("SITES_ROOT", "/srv/sites")
	path := writeSettings(t, "paths:\n  output_dir: ${SITES_ROOT}\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/sites", cfg.Paths.OutputDir)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad mode", "deployment:\n  mode: ftp\n"},
		{"bad port", "preview:\n  port: 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeSettings(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
