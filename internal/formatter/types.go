package formatter

import (
	"encoding/json"
	"html/template"

	"pi-builder/internal/siteconfig"
)

// Stat is one label/value pair on a tooltip or card.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Color string `json:"color,omitempty"`
}

type Tooltip struct {
	Name     string `json:"name"`
	Subtitle string `json:"subtitle"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
	Stats    []Stat `json:"stats"`
}

type Card struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Subtitle   string `json:"subtitle"`
	Icon       string `json:"icon"`
	Color      string `json:"color"`
	Status     string `json:"status"`
	StatusText string `json:"statusText"`
	Category   string `json:"category"`
	Stats      []Stat `json:"stats"`
}

type Badge struct {
	Text      string `json:"text"`
	Color     string `json:"color,omitempty"`
	TextColor string `json:"textColor,omitempty"`
}

// Section is a titled block of pre-escaped HTML in the detail panel.
type Section struct {
	Title   string        `json:"title"`
	Content template.HTML `json:"content"`
}

type Action struct {
	Label   string `json:"label"`
	Icon    string `json:"icon,omitempty"`
	URL     string `json:"url"`
	Primary bool   `json:"primary,omitempty"`
}

// Detail is the full record plus presentation fields. It marshals as the
// record's keys overlaid with icon, subtitle, badges, sections and actions.
type Detail struct {
	Record   siteconfig.Location
	Icon     string
	Subtitle string
	Badges   []Badge
	Sections []Section
	Actions  []Action
}

func (d Detail) ID() string   { return d.Record.ID() }
func (d Detail) Name() string { return d.Record.Name() }

func (d Detail) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Record)+5)
	for k, v := range d.Record {
		out[k] = v
	}
	out["icon"] = d.Icon
	if d.Subtitle != "" {
		out["subtitle"] = d.Subtitle
	}
	out["badges"] = nonNil(d.Badges)
	out["sections"] = nonNil(d.Sections)
	out["actions"] = nonNil(d.Actions)
	return json.Marshal(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// TickerStat is one entry of the ticker bar. Class is "", "primary" or
// "warning".
type TickerStat struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Class string `json:"class"`
}

const (
	ClassPrimary = "primary"
	ClassWarning = "warning"
)

// Shared palette.
const (
	colorGreen  = "#22c55e"
	colorRed    = "#ef4444"
	colorAmber  = "#f59e0b"
	colorGold   = "#fbbf24"
	colorBlue   = "#3b82f6"
	colorGray   = "#6b7280"
	colorPurple = "#8b5cf6"
	colorPink   = "#ec4899"
	colorCyan   = "#06b6d4"

	tintGreen  = "rgba(34,197,94,0.2)"
	tintRed    = "rgba(239,68,68,0.2)"
	tintAmber  = "rgba(245,158,11,0.2)"
	tintPurple = "rgba(139,92,246,0.2)"
	tintPink   = "rgba(236,72,153,0.2)"
	tintGray   = "rgba(107,114,128,0.2)"
	tintCyan   = "rgba(6,182,212,0.2)"
)

func openBadge(open bool) Badge {
	if open {
		return Badge{Text: "OPEN", Color: tintGreen, TextColor: colorGreen}
	}
	return Badge{Text: "CLOSED", Color: tintRed, TextColor: colorRed}
}

func openColor(open bool) string {
	if open {
		return colorGreen
	}
	return colorRed
}
