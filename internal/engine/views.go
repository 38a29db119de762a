// internal/engine/views.go
package engine

import (
	"pi-builder/internal/formatter"
	"pi-builder/internal/siteconfig"
)

// Marker is one globe point. Record is the full location so hover and click
// handlers can format it without another lookup.
type Marker struct {
	ID     string              `json:"id"`
	Lat    float64             `json:"lat"`
	Lon    float64             `json:"lon"`
	Color  string              `json:"color"`
	Record siteconfig.Location `json:"data"`
}

type GlobeOptions struct {
	BaseColor  string  `json:"baseColor"`
	GlowColor  string  `json:"glowColor"`
	CameraZ    float64 `json:"cameraZ"`
	AutoRotate bool    `json:"autoRotate"`
}

// GlobeView is the heavy rendering collaborator initialized in phase 2.
type GlobeView interface {
	Init(opts GlobeOptions) error
	AddMarkers(markers []Marker)
	// HighlightMarker with an empty id clears the highlight.
	HighlightMarker(id string)
	RotateToMarker(id string)
	OnMarkerClick(fn func(Marker))
	// OnMarkerHover receives nil when the pointer leaves every marker.
	OnMarkerHover(fn func(*Marker))
}

type CardListOptions struct {
	Filter   string
	OnSelect func(id string)
}

// PanelView renders the text side of the dashboard: header, sidebar, ticker,
// tooltip and detail panel.
type PanelView interface {
	Mount(containerID string) error
	RenderHeader(title, subtitle string)
	ApplyTheme(primary, secondary string)
	// RenderFilters receives "all" followed by the categories, or nothing
	// when there is at most one category.
	RenderFilters(filters []string)
	// RenderCardList receives the cards whose record category matches
	// opts.Filter, in config order.
	RenderCardList(containerID string, cards []formatter.Card, opts CardListOptions)
	SelectCard(id string)
	RenderTicker(stats []formatter.TickerStat)
	ShowTooltip(t formatter.Tooltip)
	HideTooltip()
	ShowDetailPanel(d formatter.Detail)
	HideDetailPanel()
}
