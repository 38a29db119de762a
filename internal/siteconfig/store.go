// Package siteconfig loads business config documents, merges them with the
// defaults and serves the result to the engine and formatters.
package siteconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	apperrors "pi-builder/internal/common/errors"
	httpclient "pi-builder/internal/common/http"
	"pi-builder/internal/common/logger"
	"pi-builder/internal/common/metrics"
	"pi-builder/internal/common/validation"
	"pi-builder/pkg/registry"

	"github.com/mitchellh/mapstructure"
)

// Store holds the current config for one engine instance.
type Store struct {
	mu       sync.RWMutex
	current  *BusinessConfig
	document map[string]interface{}
	mode     string

	logger   logger.Logger
	client   *httpclient.Client
	registry *registry.Registry
	deps     DependencyConfig
	now      func() time.Time
}

type Option func(*Store)

// WithHTTPClient sets the client used for http(s) config paths.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(s *Store) { s.client = c }
}

func WithRegistry(r *registry.Registry) Option {
	return func(s *Store) { s.registry = r }
}

func WithDependencies(d DependencyConfig) Option {
	return func(s *Store) { s.deps = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(log logger.Logger, opts ...Option) *Store {
	s := &Store{
		logger: log.WithFields(map[string]interface{}{"component": "config-store"}),
		mode:   ModeLocal,
		deps:   DefaultDependencies(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = httpclient.NewClient(10 * time.Second)
	}
	if s.registry == nil {
		s.registry = registry.New()
	}
	return s
}

// LoadFromJSON reads path (a file or an http(s) URL), parses it and runs it
// through Validate. Failures are logged and returned; the current config is
// left untouched.
func (s *Store) LoadFromJSON(ctx context.Context, path string) (*BusinessConfig, error) {
	doc, err := s.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.Validate(doc), nil
}

// Fetch reads and parses path without changing the current config.
func (s *Store) Fetch(ctx context.Context, path string) (map[string]interface{}, error) {
	kind := "file"
	if isURL(path) {
		kind = "url"
	}

	var (
		data []byte
		err  error
	)
	if kind == "url" {
		data, err = s.client.GetBytes(ctx, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		metrics.ConfigLoads.WithLabelValues(kind, "error").Inc()
		s.logger.Warn("failed to load config", map[string]interface{}{"path": path, "error": err.Error()})
		return nil, apperrors.NewConfigLoadError(path, err)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		metrics.ConfigLoads.WithLabelValues(kind, "error").Inc()
		s.logger.Warn("failed to parse config", map[string]interface{}{"path": path, "error": err.Error()})
		return nil, apperrors.NewConfigParseError(path, err)
	}

	metrics.ConfigLoads.WithLabelValues(kind, "success").Inc()
	return doc, nil
}

// LoadFromObject validates an already decoded document.
func (s *Store) LoadFromObject(doc map[string]interface{}) *BusinessConfig {
	metrics.ConfigLoads.WithLabelValues("object", "success").Inc()
	return s.Validate(doc)
}

// ParseDocument decodes a JSON object.
func ParseDocument(data []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("config must be a JSON object")
	}
	return doc, nil
}

// Validate merges doc with the defaults, normalizes locations and makes the
// result the current config. Problems are logged, never returned.
func (s *Store) Validate(doc map[string]interface{}) *BusinessConfig {
	cfg, merged, warnings := Normalize(doc)
	for _, w := range warnings {
		s.logger.Warn(w, nil)
	}

	s.mu.Lock()
	s.current = cfg
	s.document = merged
	s.mu.Unlock()

	metrics.LocationsLoaded.Set(float64(len(cfg.Locations)))
	s.logger.Debug("config loaded", map[string]interface{}{
		"business":  cfg.Business.Name,
		"industry":  cfg.Business.Industry,
		"locations": len(cfg.Locations),
	})
	return cfg
}

// Normalize is Validate without touching any store. It returns the decoded
// config, the merged document and every warning raised along the way.
func Normalize(doc map[string]interface{}) (*BusinessConfig, map[string]interface{}, []string) {
	var warnings []string
	if doc == nil {
		doc = map[string]interface{}{}
	}

	if result := validation.ValidateBusinessConfig(doc); !result.Valid {
		for _, msg := range result.Messages() {
			warnings = append(warnings, "config schema: "+msg)
		}
	}

	merged := deepMerge(DefaultDocument(), doc)

	primary := "#3b82f6"
	if business, ok := merged["business"].(map[string]interface{}); ok {
		if c := toString(business["primaryColor"]); c != "" {
			primary = c
		}
	}
	locations, locWarnings := normalizeLocations(merged["locations"], primary)
	merged["locations"] = locations
	warnings = append(warnings, locWarnings...)

	cfg := DefaultConfig()
	if err := decode(merged, cfg); err != nil {
		warnings = append(warnings, "config fields ignored: "+err.Error())
	}
	cfg.Locations = make([]Location, len(locations))
	for i, l := range locations {
		cfg.Locations[i] = Location(l.(map[string]interface{}))
	}

	if strings.TrimSpace(cfg.Business.Name) == "" {
		warnings = append(warnings, "business.name is empty")
	}
	if len(cfg.Locations) == 0 {
		warnings = append(warnings, "no locations defined")
	}
	return cfg, merged, warnings
}

func decode(input interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Current returns the last validated config, or nil before any load.
func (s *Store) Current() *BusinessConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Locations() []Location {
	cfg := s.Current()
	if cfg == nil {
		return nil
	}
	return cfg.Locations
}

func (s *Store) Location(id string) (Location, bool) {
	return s.Current().Location(id)
}

func (s *Store) Business() Business {
	if cfg := s.Current(); cfg != nil {
		return cfg.Business
	}
	return DefaultConfig().Business
}

// CustomData returns config.custom[key], or nil.
func (s *Store) CustomData(key string) interface{} {
	if cfg := s.Current(); cfg != nil {
		return cfg.Custom[key]
	}
	return nil
}

// Integration returns config.integrations[key], or nil.
func (s *Store) Integration(key string) interface{} {
	if cfg := s.Current(); cfg != nil {
		return cfg.Integrations[key]
	}
	return nil
}

// GetTemplate resolves an industry key, falling back to restaurant.
func (s *Store) GetTemplate(key string) *registry.TemplateDescriptor {
	return s.registry.GetTemplate(key)
}

// Registry exposes the registry the store resolves templates against.
func (s *Store) Registry() *registry.Registry {
	return s.registry
}

// ExportConfig renders the merged document as indented JSON, including keys
// the typed config does not model.
func (s *Store) ExportConfig() ([]byte, error) {
	s.mu.RLock()
	doc := s.document
	s.mu.RUnlock()
	if doc == nil {
		doc = DefaultDocument()
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ExportForTemplate returns the merged document tagged with the template id
// and generation time.
func (s *Store) ExportForTemplate(templateID string) map[string]interface{} {
	s.mu.RLock()
	doc := s.document
	s.mu.RUnlock()
	if doc == nil {
		doc = DefaultDocument()
	}

	out := make(map[string]interface{}, len(doc)+2)
	for k, v := range doc {
		out[k] = v
	}
	out["_template"] = templateID
	out["_generated"] = s.now().UTC().Format(time.RFC3339)
	return out
}

// SetDeploymentMode selects which dependency table DependencyPath reads.
func (s *Store) SetDeploymentMode(mode string) error {
	if !ValidMode(mode) {
		return apperrors.NewInvalidModeError(mode)
	}
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	return nil
}

// DeploymentMode prefers deployment.mode from the current config over the
// mode set on the store.
func (s *Store) DeploymentMode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current != nil && ValidMode(s.current.Deployment.Mode) {
		return s.current.Deployment.Mode
	}
	return s.mode
}

// DependencyPath returns the script location of lib for the active mode.
func (s *Store) DependencyPath(lib string) string {
	return s.deps.forMode(s.DeploymentMode())[lib]
}

// Dependencies returns a copy of every library location for the active mode.
func (s *Store) Dependencies() map[string]string {
	src := s.deps.forMode(s.DeploymentMode())
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
