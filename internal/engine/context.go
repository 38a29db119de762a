package engine

import (
	"pi-builder/internal/formatter"
	"pi-builder/internal/siteconfig"
)

// DataContext is the read-only view handed to the chat assistant.
type DataContext struct {
	TemplateType      string                `json:"templateType"`
	Providers         []siteconfig.Location `json:"providers"`
	SelectedProvider  siteconfig.Location   `json:"selectedProvider"`
	CurrentFilter     string                `json:"currentFilter"`
	ComparedProviders []siteconfig.Location `json:"comparedProviders"`
	Stats             ContextStats          `json:"stats"`
}

type ContextStats struct {
	TotalProviders   int                 `json:"totalProviders"`
	TotalTokens      float64             `json:"totalTokens"`
	AvgLatency       string              `json:"avgLatency"`
	FastestProvider  siteconfig.Location `json:"fastestProvider"`
	CheapestProvider siteconfig.Location `json:"cheapestProvider"`
}

// DataContext snapshots the loaded records, selection and comparison set.
// Provider and record slices are never nil.
func (e *Engine) DataContext() DataContext {
	e.mu.Lock()
	cfg, selected, filter := e.config, e.selectedID, e.filter
	compared := append([]string(nil), e.compared...)
	industry := e.industry
	e.mu.Unlock()

	if industry == "" {
		industry = formatter.Generic
	}
	ctx := DataContext{
		TemplateType:      industry,
		Providers:         []siteconfig.Location{},
		CurrentFilter:     filter,
		ComparedProviders: []siteconfig.Location{},
		Stats:             ContextStats{AvgLatency: formatter.ToFixed(0, 2)},
	}
	if cfg == nil {
		return ctx
	}

	ctx.Providers = append(ctx.Providers, cfg.Locations...)
	if loc, ok := cfg.Location(selected); ok {
		ctx.SelectedProvider = loc
	}
	for _, id := range compared {
		if loc, ok := cfg.Location(id); ok {
			ctx.ComparedProviders = append(ctx.ComparedProviders, loc)
		}
	}

	sum := formatter.SummarizeProviders(cfg.Locations)
	ctx.Stats.TotalProviders = sum.Total
	ctx.Stats.TotalTokens = sum.TotalTokens
	ctx.Stats.AvgLatency = formatter.ToFixed(sum.AvgLatency, 2)
	if loc, ok := cfg.Location(sum.Fastest); ok && sum.Fastest != "" {
		ctx.Stats.FastestProvider = loc
	}
	if loc, ok := cfg.Location(sum.Cheapest); ok && sum.Cheapest != "" {
		ctx.Stats.CheapestProvider = loc
	}
	return ctx
}
