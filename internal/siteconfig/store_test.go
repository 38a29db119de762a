package siteconfig

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "pi-builder/internal/common/errors"
	"pi-builder/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestStore(t *testing.T, opts ...Option) *Store {
	return NewStore(logger.NewTestLogger(t), opts...)
}

func mustDoc(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	doc, err := ParseDocument([]byte(raw))
	require.NoError(t, err)
	return doc
}

func writeConfig(t *testing.T, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	return path
}

// ==========================
// Merge and Defaults
// ==========================

func TestValidate_EmptyDocumentGetsEveryDefault(t *testing.T) {
	s := createTestStore(t)

	cfg := s.Validate(map[string]interface{}{})

	assert.Equal(t, DefaultConfig(), cfg)

	out, err := s.ExportConfig()
	require.NoError(t, err)
	var exported map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &exported))
	for key := range DefaultDocument() {
		assert.Contains(t, exported, key)
	}
	business := exported["business"].(map[string]interface{})
	for _, key := range []string{"name", "tagline", "logo", "primaryColor", "secondaryColor", "industry"} {
		assert.Contains(t, business, key)
	}
}

func TestValidate_DeepMergeSemantics(t *testing.T) {
	s := createTestStore(t)

	cfg := s.Validate(mustDoc(t, `{
		"business": {"name": "Bean There", "industry": "restaurant"},
		"chat": {"providers": ["openai"]},
		"vault": {"enabled": true},
		"ui": {"showChat": true}
	}`))

	assert.Equal(t, "Bean There", cfg.Business.Name)
	assert.Equal(t, "restaurant", cfg.Business.Industry)
	assert.Equal(t, "#3b82f6", cfg.Business.PrimaryColor, "sibling keys keep their defaults")
	assert.Equal(t, []string{"openai"}, cfg.Chat.Providers, "arrays replace, never merge")
	assert.True(t, cfg.Vault.Enabled)
	assert.Equal(t, []string{"csv", "xlsx", "pdf"}, cfg.Vault.AllowedTypes)
	assert.True(t, cfg.UI.ShowChat)
	assert.True(t, cfg.UI.ShowTicker)
}

func TestValidate_NullHandling(t *testing.T) {
	s := createTestStore(t)
	logo := "logo.png"

	cfg := s.Validate(mustDoc(t, `{"business":{"logo":"logo.png"}}`))
	assert.Equal(t, &logo, cfg.Business.Logo)

	cfg = s.Validate(mustDoc(t, `{"business":{"logo":null},"custom":null,"locations":null,"chat":{"providers":null}}`))
	assert.Nil(t, cfg.Business.Logo)
	assert.NotNil(t, cfg.Custom)
	assert.NotNil(t, cfg.Locations)
	assert.Equal(t, []string{"groq", "deepseek"}, cfg.Chat.Providers)
}

func TestValidate_TypeMismatchKeepsObjectDefault(t *testing.T) {
	s := createTestStore(t)
	cfg := s.Validate(mustDoc(t, `{"business":"oops","ui":[1,2]}`))

	assert.Equal(t, "My Business", cfg.Business.Name)
	assert.True(t, cfg.UI.ShowTicker)
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	s := createTestStore(t)
	doc := mustDoc(t, `{"locations":[{"name":"A"}]}`)

	s.Validate(doc)

	loc := doc["locations"].([]interface{})[0].(map[string]interface{})
	assert.NotContains(t, loc, "id")
	assert.NotContains(t, loc, "color")
}

// ==========================
// Location Normalization
// ==========================

func TestValidate_NormalizesLocations(t *testing.T) {
	s := createTestStore(t)
	cfg := s.Validate(mustDoc(t, `{
		"business": {"primaryColor": "#d97706"},
		"locations": [
			{},
			{"id": "hq", "name": "HQ", "lat": 40.7, "lon": "-74.0", "color": "#fff"},
			{"id": 7, "name": ""},
			"not-an-object"
		]
	}`))

	require.Len(t, cfg.Locations, 4)

	first := cfg.Locations[0]
	assert.Equal(t, "location-0", first.ID())
	assert.Equal(t, "Location 1", first.Name())
	assert.Equal(t, 0.0, first.Lat())
	assert.Equal(t, 0.0, first.Lon())
	assert.Equal(t, "#d97706", first.Color())

	hq := cfg.Locations[1]
	assert.Equal(t, "hq", hq.ID())
	assert.Equal(t, 40.7, hq.Lat())
	assert.Equal(t, -74.0, hq.Lon())
	assert.Equal(t, "#fff", hq.Color())

	assert.Equal(t, "7", cfg.Locations[2].ID())
	assert.Equal(t, "Location 3", cfg.Locations[2].Name())

	assert.Equal(t, "location-3", cfg.Locations[3].ID())
}

func TestValidate_IDsAreUnique(t *testing.T) {
	s := createTestStore(t)
	cfg := s.Validate(mustDoc(t, `{"locations":[
		{"id":"a"},{"id":"a"},{"id":"location-2"},{},{"id":"a-1"}
	]}`))

	ids := map[string]bool{}
	for _, loc := range cfg.Locations {
		assert.NotEmpty(t, loc.ID())
		assert.NotEmpty(t, loc.Name())
		assert.False(t, ids[loc.ID()], "duplicate id %s", loc.ID())
		ids[loc.ID()] = true
	}
	assert.Equal(t, "a-1", cfg.Locations[1].ID())
	assert.Equal(t, "location-3", cfg.Locations[3].ID())
	assert.Equal(t, "a-1-4", cfg.Locations[4].ID())
}

func TestNormalize_Warnings(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty name", `{"business":{"name":""},"locations":[{}]}`, "business.name is empty"},
		{"no locations", `{}`, "no locations defined"},
		{"schema violation", `{"business":{"primaryColor":"red"},"locations":[{}]}`, "config schema: business.primaryColor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, warnings := Normalize(mustDoc(t, tt.doc))
			found := false
			for _, w := range warnings {
				if len(w) >= len(tt.want) && w[:len(tt.want)] == tt.want {
					found = true
				}
			}
			assert.True(t, found, "warnings %v missing %q", warnings, tt.want)
		})
	}
}

// ==========================
// Loading
// ==========================

func TestLoadFromJSON_File(t *testing.T) {
	s := createTestStore(t)
	path := writeConfig(t, `{"business":{"name":"File Co"},"locations":[{"id":"x"}]}`)

	cfg, err := s.LoadFromJSON(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "File Co", cfg.Business.Name)
	assert.Same(t, cfg, s.Current())
}

func TestLoadFromJSON_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"business":{"name":"Remote Co"}}`))
	}))
	defer srv.Close()

	s := createTestStore(t)
	cfg, err := s.LoadFromJSON(context.Background(), srv.URL+"/config.json")
	require.NoError(t, err)
	assert.Equal(t, "Remote Co", cfg.Business.Name)
}

func TestLoadFromJSON_Failures(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "missing file",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.json") },
			wantCode: apperrors.ErrCodeConfigLoadFailed,
		},
		{
			name:     "invalid json",
			path:     func(t *testing.T) string { return writeConfig(t, `{"business":`) },
			wantCode: apperrors.ErrCodeConfigParseFailed,
		},
		{
			name:     "json array",
			path:     func(t *testing.T) string { return writeConfig(t, `[1,2]`) },
			wantCode: apperrors.ErrCodeConfigParseFailed,
		},
		{
			name:     "json null",
			path:     func(t *testing.T) string { return writeConfig(t, `null`) },
			wantCode: apperrors.ErrCodeConfigParseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestStore(t)
			prev := s.Validate(map[string]interface{}{})

			cfg, err := s.LoadFromJSON(context.Background(), tt.path(t))
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			assert.Same(t, prev, s.Current(), "failed loads keep the previous config")
		})
	}
}

// ==========================
// Accessors and Exports
// ==========================

func TestAccessors(t *testing.T) {
	s := createTestStore(t)
	assert.Nil(t, s.Current())
	assert.Nil(t, s.Locations())
	assert.Equal(t, "My Business", s.Business().Name)

	s.LoadFromObject(mustDoc(t, `{
		"business":{"name":"Acme"},
		"locations":[{"id":"a","name":"Alpha"}],
		"custom":{"menu":["latte"]},
		"integrations":{"yelp":{"key":"k"}}
	}`))

	loc, ok := s.Location("a")
	require.True(t, ok)
	assert.Equal(t, "Alpha", loc.Name())

	_, ok = s.Location("zzz")
	assert.False(t, ok)

	assert.Equal(t, []interface{}{"latte"}, s.CustomData("menu"))
	assert.Nil(t, s.CustomData("missing"))
	assert.Equal(t, map[string]interface{}{"key": "k"}, s.Integration("yelp"))
	assert.Equal(t, "Acme", s.Business().Name)
	assert.Len(t, s.Locations(), 1)
}

func TestExportForTemplate(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := createTestStore(t, WithClock(func() time.Time { return fixed }))
	s.LoadFromObject(mustDoc(t, `{"business":{"name":"Acme"},"extra":{"kept":true}}`))

	out := s.ExportForTemplate("tech")
	assert.Equal(t, "tech", out["_template"])
	assert.Equal(t, "2026-03-01T12:00:00Z", out["_generated"])
	assert.Equal(t, map[string]interface{}{"kept": true}, out["extra"])

	raw, err := s.ExportConfig()
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "_template")
	assert.Contains(t, string(raw), "\n  \"business\"")
}

func TestGetTemplate(t *testing.T) {
	s := createTestStore(t)
	assert.Equal(t, "tech", s.GetTemplate("tech").ID)
	assert.Equal(t, "restaurant", s.GetTemplate("generic").ID)
	assert.Same(t, s.GetTemplate("x"), s.GetTemplate("y"))
}

// ==========================
// Deployment
// ==========================

func TestDeploymentMode(t *testing.T) {
	s := createTestStore(t)

	assert.Equal(t, ModeLocal, s.DeploymentMode())
	assert.Equal(t, "./lib/three.min.js", s.DependencyPath("threejs"))

	require.NoError(t, s.SetDeploymentMode(ModeCDN))
	assert.Equal(t, "https://d3js.org/d3.v7.min.js", s.DependencyPath("d3"))

	err := s.SetDeploymentMode("ftp")
	assert.Equal(t, apperrors.ErrCodeInvalidMode, apperrors.CodeOf(err))

	s.LoadFromObject(mustDoc(t, `{"deployment":{"mode":"local"}}`))
	assert.Equal(t, ModeLocal, s.DeploymentMode(), "config value wins over store setting")

	deps := s.Dependencies()
	deps["threejs"] = "mutated"
	assert.Equal(t, "./lib/three.min.js", s.DependencyPath("threejs"))
	assert.Equal(t, "", s.DependencyPath("unknown"))
}
