// Package formatter turns industry location records into tooltip, card,
// detail panel and ticker content.
package formatter

import (
	"sort"
	"time"

	"pi-builder/internal/siteconfig"
)

// Formatter renders one industry's records. Implementations hold no mutable
// state and are safe for concurrent use.
type Formatter interface {
	ID() string
	TooltipData(loc siteconfig.Location) Tooltip
	CardData(loc siteconfig.Location) Card
	DetailData(loc siteconfig.Location) Detail
	TickerStats(cfg *siteconfig.BusinessConfig) []TickerStat
}

// Generic is the industry key of the pass-through formatter.
const Generic = "generic"

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock sets the time source used for open/closed and upcoming checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type constructor func(options) Formatter

var constructors = map[string]constructor{
	"restaurant": func(o options) Formatter { return restaurant{now: o.now} },
	"tech":       func(options) Formatter { return tech{} },
	"retail":     func(o options) Formatter { return retail{now: o.now} },
	"realestate": func(options) Formatter { return realestate{} },
	"healthcare": func(options) Formatter { return healthcare{} },
	"logistics":  func(options) Formatter { return logistics{} },
	"events":     func(o options) Formatter { return events{now: o.now} },
	"education":  func(options) Formatter { return education{} },
}

// Resolve returns the formatter for industry. Unknown keys get the generic
// formatter.
func Resolve(industry string, opts ...Option) Formatter {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if c, ok := constructors[industry]; ok {
		return c(o)
	}
	return generic{}
}

// Industries lists the keys with a dedicated formatter.
func Industries() []string {
	keys := make([]string, 0, len(constructors))
	for k := range constructors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func locations(cfg *siteconfig.BusinessConfig) []siteconfig.Location {
	if cfg == nil {
		return nil
	}
	return cfg.Locations
}
