// Package snapshot implements the engine's globe and panel views in memory.
// The preview server serves its state as JSON and export pre-renders it into
// data.json.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sync"

	"pi-builder/internal/engine"
	"pi-builder/internal/formatter"
)

type Theme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

type Globe struct {
	Ready       bool                `json:"ready"`
	Inits       int                 `json:"inits"`
	Options     engine.GlobeOptions `json:"options"`
	Markers     []engine.Marker     `json:"markers"`
	Highlighted string              `json:"highlighted,omitempty"`
	RotatedTo   string              `json:"rotatedTo,omitempty"`
}

// State is everything the views have been told to show.
type State struct {
	Container    string                 `json:"container"`
	Title        string                 `json:"title"`
	Subtitle     string                 `json:"subtitle"`
	Theme        Theme                  `json:"theme"`
	Filters      []string               `json:"filters"`
	ActiveFilter string                 `json:"activeFilter"`
	CardListID   string                 `json:"cardListId"`
	Cards        []formatter.Card       `json:"cards"`
	CardCount    string                 `json:"cardCount"`
	SelectedCard string                 `json:"selectedCard,omitempty"`
	Ticker       []formatter.TickerStat `json:"ticker"`
	Tooltip      *formatter.Tooltip     `json:"tooltip"`
	Detail       *formatter.Detail      `json:"detail"`
	Globe        Globe                  `json:"globe"`
}

// View satisfies engine.GlobeView and engine.PanelView.
type View struct {
	mu         sync.Mutex
	containers map[string]bool
	globeErr   error
	state      State

	onCardSelect func(id string)
	onClick      func(engine.Marker)
	onHover      func(*engine.Marker)
}

type Option func(*View)

// WithContainers restricts Mount to the given ids. By default every id
// mounts.
func WithContainers(ids ...string) Option {
	return func(v *View) {
		v.containers = make(map[string]bool, len(ids))
		for _, id := range ids {
			v.containers[id] = true
		}
	}
}

// WithGlobeError makes Init fail, as a browser without WebGL would.
func WithGlobeError(err error) Option {
	return func(v *View) { v.globeErr = err }
}

func New(opts ...Option) *View {
	v := &View{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var (
	_ engine.GlobeView = (*View)(nil)
	_ engine.PanelView = (*View)(nil)
)

// ---- globe ----

func (v *View) Init(opts engine.GlobeOptions) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.globeErr != nil {
		return v.globeErr
	}
	v.state.Globe = Globe{Ready: true, Inits: v.state.Globe.Inits + 1, Options: opts}
	return nil
}

func (v *View) AddMarkers(markers []engine.Marker) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Globe.Markers = append(v.state.Globe.Markers, markers...)
}

func (v *View) HighlightMarker(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Globe.Highlighted = id
}

func (v *View) RotateToMarker(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Globe.RotatedTo = id
}

func (v *View) OnMarkerClick(fn func(engine.Marker)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onClick = fn
}

func (v *View) OnMarkerHover(fn func(*engine.Marker)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onHover = fn
}

// ---- panels ----

func (v *View) Mount(containerID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.containers != nil && !v.containers[containerID] {
		return fmt.Errorf("container %q not found", containerID)
	}
	v.state.Container = containerID
	return nil
}

func (v *View) RenderHeader(title, subtitle string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Title, v.state.Subtitle = title, subtitle
}

func (v *View) ApplyTheme(primary, secondary string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Theme = Theme{Primary: primary, Secondary: secondary}
}

func (v *View) RenderFilters(filters []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Filters = append([]string(nil), filters...)
}

func (v *View) RenderCardList(containerID string, cards []formatter.Card, opts engine.CardListOptions) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.CardListID = containerID
	v.state.ActiveFilter = opts.Filter
	v.state.Cards = append([]formatter.Card{}, cards...)
	v.state.CardCount = fmt.Sprintf("%d locations", len(cards))
	v.onCardSelect = opts.OnSelect
}

func (v *View) SelectCard(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.SelectedCard = id
}

func (v *View) RenderTicker(stats []formatter.TickerStat) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Ticker = append([]formatter.TickerStat(nil), stats...)
}

func (v *View) ShowTooltip(t formatter.Tooltip) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Tooltip = &t
}

func (v *View) HideTooltip() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Tooltip = nil
}

func (v *View) ShowDetailPanel(d formatter.Detail) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Detail = &d
}

func (v *View) HideDetailPanel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Detail = nil
	v.state.SelectedCard = ""
}

// ---- user input ----

// ClickCard fires the card list's select callback. It reports false when no
// card with id is shown.
func (v *View) ClickCard(id string) bool {
	v.mu.Lock()
	fn := v.onCardSelect
	shown := false
	for _, c := range v.state.Cards {
		if c.ID == id {
			shown = true
			break
		}
	}
	v.mu.Unlock()
	if fn == nil || !shown {
		return false
	}
	fn(id)
	return true
}

// ClickMarker fires the globe's click callback for the marker with id.
func (v *View) ClickMarker(id string) bool {
	v.mu.Lock()
	fn := v.onClick
	m, ok := v.markerLocked(id)
	v.mu.Unlock()
	if fn == nil || !ok {
		return false
	}
	fn(m)
	return true
}

// HoverMarker fires the globe's hover callback. An empty id means the
// pointer left every marker.
func (v *View) HoverMarker(id string) bool {
	v.mu.Lock()
	fn := v.onHover
	m, ok := v.markerLocked(id)
	v.mu.Unlock()
	if fn == nil {
		return false
	}
	if id == "" {
		fn(nil)
		return true
	}
	if !ok {
		return false
	}
	fn(&m)
	return true
}

func (v *View) markerLocked(id string) (engine.Marker, bool) {
	for _, m := range v.state.Globe.Markers {
		if m.ID == id {
			return m, true
		}
	}
	return engine.Marker{}, false
}

// Snapshot returns a copy of the current state. Location records inside it
// are shared and must not be modified.
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Filters = append([]string(nil), s.Filters...)
	s.Cards = append([]formatter.Card(nil), s.Cards...)
	s.Ticker = append([]formatter.TickerStat(nil), s.Ticker...)
	s.Globe.Markers = append([]engine.Marker(nil), s.Globe.Markers...)
	if s.Tooltip != nil {
		t := *s.Tooltip
		s.Tooltip = &t
	}
	if s.Detail != nil {
		d := *s.Detail
		s.Detail = &d
	}
	return s
}

// MarshalJSON encodes the current state.
func (v *View) MarshalJSON() ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return json.Marshal(v.state)
}
