package engine

import (
	"time"

	"pi-builder/internal/common/observability"
	"pi-builder/internal/siteconfig"
)

const (
	DefaultContainerID    = "pi-app"
	CardListID            = "pi-card-list"
	DefaultGlobeDelay     = 50 * time.Millisecond
	DefaultTickerInterval = 5 * time.Second
	FilterAll             = "all"
	// MaxCompared caps the providers held for side-by-side comparison.
	MaxCompared = 4

	defaultPrimary   = "#3b82f6"
	defaultSecondary = "#1e40af"
	globeCameraZ     = 2.8
)

// Options configures one Init call. Exactly one of ConfigPath and
// ConfigData must be set; ConfigPath wins when both are.
type Options struct {
	ContainerID string
	ConfigPath  string
	ConfigData  map[string]interface{}
	// TemplateID overrides business.industry for descriptor and formatter
	// lookup.
	TemplateID string
	OnReady    func(cfg *siteconfig.BusinessConfig)
	OnSelect   func(id string, loc siteconfig.Location)
}

type Option func(*Engine)

// WithGlobeDelay sets how long phase 2 waits after phase 1 renders.
func WithGlobeDelay(d time.Duration) Option {
	return func(e *Engine) { e.globeDelay = d }
}

// WithClock sets the time source handed to formatters.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithObservability(o *observability.Observability) Option {
	return func(e *Engine) { e.obs = o }
}
