// Package engine drives one dashboard instance: it loads the business config,
// resolves the industry formatter and pushes rendered content to the globe
// and panel views.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "pi-builder/internal/common/errors"
	"pi-builder/internal/common/logger"
	"pi-builder/internal/common/metrics"
	"pi-builder/internal/common/observability"
	"pi-builder/internal/formatter"
	"pi-builder/internal/siteconfig"
	"pi-builder/pkg/registry"
)

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	}
	return "uninitialized"
}

type (
	TooltipFunc func(siteconfig.Location) formatter.Tooltip
	CardFunc    func(siteconfig.Location) formatter.Card
	DetailFunc  func(siteconfig.Location) formatter.Detail
	TickerFunc  func(*siteconfig.BusinessConfig) []formatter.TickerStat
)

// Engine is safe for concurrent use. View methods are never called with the
// engine lock held, so views may call back into the engine.
type Engine struct {
	store  *siteconfig.Store
	globe  GlobeView
	panels PanelView
	logger logger.Logger
	obs    *observability.Observability

	globeDelay time.Duration
	now        func() time.Time

	mu          sync.Mutex
	state       State
	initialized bool
	config      *siteconfig.BusinessConfig
	template    *registry.TemplateDescriptor
	industry    string
	selectedID  string
	filter      string
	compared    []string
	onSelect    func(id string, loc siteconfig.Location)

	tooltipFn TooltipFunc
	cardFn    CardFunc
	detailFn  DetailFunc
	tickerFn  TickerFunc

	// generation increments on every Init that gets past its cheap checks;
	// stale loads compare against it and drop out. active is the generation
	// whose config is current, and only its phase 2 may run.
	generation   uint64
	active       uint64
	cancelPhase2 func()
	phase2Done   chan struct{}
}

func New(store *siteconfig.Store, globe GlobeView, panels PanelView, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		globe:      globe,
		panels:     panels,
		logger:     log.WithFields(map[string]interface{}{"component": "engine"}),
		obs:        observability.NewNoop(),
		globeDelay: DefaultGlobeDelay,
		now:        time.Now,
		filter:     FilterAll,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.installFormatter(formatter.Resolve(formatter.Generic, formatter.WithClock(e.now)))
	return e
}

// Init loads the config, renders phase 1 synchronously and schedules the
// globe for phase 2. It reports whether the engine reached the ready state
// for this call. A newer Init supersedes any pending one: the older load is
// discarded and its phase 2 never runs. A failed Init leaves the previous
// dashboard in place, globe included.
func (e *Engine) Init(ctx context.Context, opts Options) bool {
	start := time.Now()
	log := e.logger

	var (
		loading bool
		gen     uint64
		prev    State
	)
	fail := func(template string, err error) bool {
		if loading {
			e.mu.Lock()
			if gen == e.generation {
				e.state = prev
			}
			e.mu.Unlock()
		}
		code := apperrors.CodeOf(err)
		metrics.EngineInits.WithLabelValues(template, "error").Inc()
		e.obs.RecordOperation(ctx, "engine.init", time.Since(start), "error")
		log.Error("init failed", map[string]interface{}{
			"error":    err.Error(),
			"code":     string(code),
			"category": apperrors.GetErrorCategory(code),
		})
		return false
	}

	if opts.ConfigPath == "" && opts.ConfigData == nil {
		return fail(opts.TemplateID, apperrors.NewMissingConfigSourceError())
	}

	containerID := opts.ContainerID
	if containerID == "" {
		containerID = DefaultContainerID
	}
	if err := e.panels.Mount(containerID); err != nil {
		return fail(opts.TemplateID, apperrors.NewMissingContainerError(containerID).WithMetadata("cause", err.Error()))
	}

	// The previous load's phase 2 stays scheduled until this one succeeds.
	e.mu.Lock()
	e.generation++
	gen = e.generation
	prev = e.state
	if e.config == nil {
		prev = StateUninitialized
	}
	e.state = StateLoading
	loading = true
	e.mu.Unlock()

	log = e.logger.WithFields(map[string]interface{}{"generation": gen})

	doc := opts.ConfigData
	if opts.ConfigPath != "" {
		var err error
		if doc, err = e.store.Fetch(ctx, opts.ConfigPath); err != nil {
			return fail(opts.TemplateID, err)
		}
	}

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		metrics.EngineInits.WithLabelValues(opts.TemplateID, "superseded").Inc()
		err := apperrors.NewInitSupersededError(gen)
		log.Warn("init superseded by a newer call", map[string]interface{}{
			"code":  string(err.Code),
			"error": err.Error(),
		})
		return false
	}

	cfg := e.store.Validate(doc)
	industry := opts.TemplateID
	if industry == "" {
		industry = cfg.Business.Industry
	}
	if industry == "" {
		industry = formatter.Generic
	}
	tmpl := e.store.GetTemplate(industry)
	formatterKey := industry
	if e.store.Registry().Has(industry) {
		formatterKey = tmpl.Industry()
	}

	e.config = cfg
	e.template = tmpl
	e.industry = industry
	e.selectedID = ""
	e.filter = FilterAll
	e.compared = nil
	e.onSelect = opts.OnSelect
	e.installFormatter(formatter.Resolve(formatterKey, formatter.WithClock(e.now)))
	e.state = StateReady
	e.initialized = true

	e.stopPhase2Locked()
	e.active = gen
	phase2Ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	timer := time.AfterFunc(e.globeDelay, func() {
		defer close(done)
		e.runPhase2(phase2Ctx, gen)
	})
	e.cancelPhase2 = func() {
		cancel()
		if timer.Stop() {
			close(done)
		}
	}
	e.phase2Done = done
	e.mu.Unlock()

	e.renderPhase1()

	metrics.EngineInits.WithLabelValues(industry, "success").Inc()
	e.obs.RecordOperation(ctx, "engine.init", time.Since(start), "success")
	log.Info("engine ready", map[string]interface{}{
		"industry":  industry,
		"template":  tmpl.ID,
		"locations": len(cfg.Locations),
	})

	if opts.OnReady != nil {
		opts.OnReady(cfg)
	}
	return true
}

func (e *Engine) installFormatter(f formatter.Formatter) {
	e.tooltipFn = f.TooltipData
	e.cardFn = f.CardData
	e.detailFn = f.DetailData
	e.tickerFn = f.TickerStats
}

// stopPhase2Locked cancels a pending phase 2. Callers hold e.mu.
func (e *Engine) stopPhase2Locked() {
	if e.cancelPhase2 != nil {
		e.cancelPhase2()
		e.cancelPhase2 = nil
	}
}

// renderPhase1 paints everything that does not need the globe.
func (e *Engine) renderPhase1() {
	e.mu.Lock()
	cfg, tmpl := e.config, e.template
	e.mu.Unlock()

	e.panels.RenderHeader(cfg.Business.Name, cfg.Business.Tagline)
	primary, secondary := themeColors(cfg.Business, tmpl)
	e.panels.ApplyTheme(primary, secondary)
	e.renderSidebar()
	e.RenderTicker()
}

func themeColors(b siteconfig.Business, tmpl *registry.TemplateDescriptor) (string, string) {
	primary, secondary := b.PrimaryColor, b.SecondaryColor
	if primary == "" && tmpl != nil {
		primary = tmpl.Colors.Primary
	}
	if secondary == "" && tmpl != nil {
		secondary = tmpl.Colors.Secondary
	}
	if primary == "" {
		primary = defaultPrimary
	}
	if secondary == "" {
		secondary = defaultSecondary
	}
	return primary, secondary
}

func (e *Engine) renderSidebar() {
	e.mu.Lock()
	cfg := e.config
	e.mu.Unlock()

	var filters []string
	if cats := cfg.Categories(); len(cats) > 1 {
		filters = append([]string{FilterAll}, cats...)
	}
	e.panels.RenderFilters(filters)
	e.renderCardList()
}

func (e *Engine) renderCardList() {
	e.mu.Lock()
	cfg, cardFn, filter := e.config, e.cardFn, e.filter
	e.mu.Unlock()
	if cfg == nil {
		return
	}

	cards := make([]formatter.Card, 0, len(cfg.Locations))
	for _, loc := range cfg.Locations {
		if filter == FilterAll || loc.Category() == filter {
			cards = append(cards, cardFn(loc))
		}
	}
	e.panels.RenderCardList(CardListID, cards, CardListOptions{
		Filter:   filter,
		OnSelect: func(id string) { e.SelectLocation(id) },
	})
}

// runPhase2 initializes the globe for generation gen unless it has been
// superseded or cancelled.
func (e *Engine) runPhase2(ctx context.Context, gen uint64) {
	e.mu.Lock()
	if ctx.Err() != nil || gen != e.active {
		e.mu.Unlock()
		return
	}
	cfg, tmpl := e.config, e.template
	e.mu.Unlock()

	start := time.Now()
	glow, base := themeColors(cfg.Business, tmpl)
	err := e.globe.Init(GlobeOptions{
		BaseColor:  base,
		GlowColor:  glow,
		CameraZ:    globeCameraZ,
		AutoRotate: cfg.UI.GlobeAutoRotate,
	})
	if err != nil {
		// The text panels stay usable without the globe.
		e.logger.Warn("globe init failed", map[string]interface{}{"error": err.Error()})
		e.obs.RecordOperation(ctx, "engine.globe", time.Since(start), "error")
		return
	}

	markers := make([]Marker, len(cfg.Locations))
	for i, loc := range cfg.Locations {
		color := loc.Color()
		if color == "" {
			color = cfg.Business.PrimaryColor
		}
		markers[i] = Marker{ID: loc.ID(), Lat: loc.Lat(), Lon: loc.Lon(), Color: color, Record: loc}
	}
	e.globe.AddMarkers(markers)
	e.globe.OnMarkerHover(func(m *Marker) {
		if m == nil {
			e.Unhover()
			return
		}
		e.Hover(m.ID)
	})
	e.globe.OnMarkerClick(func(m Marker) { e.SelectLocation(m.ID) })

	e.obs.RecordOperation(ctx, "engine.globe", time.Since(start), "success")
	e.logger.Debug("globe ready", map[string]interface{}{"markers": len(markers)})
}

// WaitGlobe blocks until the pending phase 2 has finished or been cancelled,
// or ctx ends.
func (e *Engine) WaitGlobe(ctx context.Context) error {
	e.mu.Lock()
	done := e.phase2Done
	e.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels a pending phase 2.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopPhase2Locked()
}

// SelectLocation shows the detail panel for id. Unknown ids and calls before
// the engine is ready are no-ops that report false.
func (e *Engine) SelectLocation(id string) bool {
	e.mu.Lock()
	if e.state != StateReady {
		e.mu.Unlock()
		return false
	}
	loc, ok := e.config.Location(id)
	if !ok {
		e.mu.Unlock()
		return false
	}
	e.selectedID = id
	detailFn, onSelect, industry := e.detailFn, e.onSelect, e.industry
	e.mu.Unlock()

	e.globe.HighlightMarker(id)
	e.globe.RotateToMarker(id)
	e.panels.ShowDetailPanel(detailFn(loc))
	e.panels.SelectCard(id)
	metrics.LocationSelections.WithLabelValues(industry).Inc()

	if onSelect != nil {
		onSelect(id, loc)
	}
	return true
}

// Detail formats the detail panel for id with the active formatter without
// selecting it.
func (e *Engine) Detail(id string) (formatter.Detail, bool) {
	e.mu.Lock()
	loc, ok := e.config.Location(id)
	detailFn := e.detailFn
	e.mu.Unlock()
	if !ok {
		return formatter.Detail{}, false
	}
	return detailFn(loc), true
}

func (e *Engine) ClearSelection() {
	e.mu.Lock()
	e.selectedID = ""
	e.mu.Unlock()

	e.globe.HighlightMarker("")
	e.panels.HideDetailPanel()
}

// Hover shows the tooltip for id and reports whether id exists.
func (e *Engine) Hover(id string) bool {
	e.mu.Lock()
	loc, ok := e.config.Location(id)
	tooltipFn := e.tooltipFn
	e.mu.Unlock()
	if !ok {
		e.panels.HideTooltip()
		return false
	}
	e.panels.ShowTooltip(tooltipFn(loc))
	return true
}

func (e *Engine) Unhover() {
	e.panels.HideTooltip()
}

// FilterCards re-renders the card list showing only category, or every card
// for "all" and "".
func (e *Engine) FilterCards(category string) {
	if category == "" {
		category = FilterAll
	}
	e.mu.Lock()
	e.filter = category
	e.mu.Unlock()
	e.renderCardList()
}

// RenderTicker recomputes the ticker from the loaded config.
func (e *Engine) RenderTicker() {
	e.mu.Lock()
	cfg, tickerFn := e.config, e.tickerFn
	e.mu.Unlock()
	if cfg == nil {
		return
	}
	e.panels.RenderTicker(tickerFn(cfg))
}

// RunTicker re-renders the ticker every interval until ctx ends. It does no
// I/O.
func (e *Engine) RunTicker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTickerInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			e.RenderTicker()
		}
	}
}

// SetTooltipFormatter and its siblings replace one active formatter function.
// The next Init restores the resolved industry formatter.
func (e *Engine) SetTooltipFormatter(fn TooltipFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tooltipFn = fn
}

func (e *Engine) SetCardFormatter(fn CardFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cardFn = fn
}

func (e *Engine) SetDetailFormatter(fn DetailFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detailFn = fn
}

func (e *Engine) SetTickerStats(fn TickerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickerFn = fn
}

// ToggleCompare adds id to the comparison set, or removes it if present. It
// reports whether id is in the set afterwards. Unknown ids and additions
// beyond MaxCompared are ignored.
func (e *Engine) ToggleCompare(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, c := range e.compared {
		if c == id {
			e.compared = append(e.compared[:i:i], e.compared[i+1:]...)
			return false
		}
	}
	if _, ok := e.config.Location(id); !ok || len(e.compared) >= MaxCompared {
		return false
	}
	e.compared = append(e.compared, id)
	return true
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Initialized reports whether any Init has succeeded.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

func (e *Engine) Config() *siteconfig.BusinessConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

func (e *Engine) Template() *registry.TemplateDescriptor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.template
}

func (e *Engine) Industry() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.industry
}

func (e *Engine) SelectedID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedID
}

func (e *Engine) Filter() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter
}

func (e *Engine) String() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fmt.Sprintf("engine(%s, %s, gen %d)", e.industry, e.state, e.generation)
}
