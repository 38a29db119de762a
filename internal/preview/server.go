// Package preview serves a generated site over HTTP together with a JSON
// API backed by the engine and its snapshot view.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"pi-builder/internal/common/config"
	apperrors "pi-builder/internal/common/errors"
	"pi-builder/internal/common/logger"
	"pi-builder/internal/common/metrics"
	"pi-builder/internal/engine"
	"pi-builder/internal/site"
	"pi-builder/internal/siteconfig"
	"pi-builder/internal/snapshot"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultDebounce = 200 * time.Millisecond
	shutdownTimeout = 10 * time.Second
)

// Server previews one site directory.
type Server struct {
	sitePath   string
	configPath string
	templateID string
	settings   config.PreviewConfig
	debounce   time.Duration

	engine *engine.Engine
	view   *snapshot.View
	logger logger.Logger

	reloadMu sync.Mutex
	reloads  int
}

type Option func(*Server)

// WithDebounce sets how long the watcher waits after the last write to
// config.json before reloading.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) { s.debounce = d }
}

// New builds a server for the site at sitePath. The store decides the
// deployment mode and template registry the engine sees.
func New(sitePath string, store *siteconfig.Store, settings config.PreviewConfig, log logger.Logger, opts ...Option) (*Server, error) {
	abs, err := filepath.Abs(sitePath)
	if err != nil {
		return nil, err
	}
	m, err := site.ReadManifest(abs)
	if err != nil {
		return nil, apperrors.NewSiteNotFoundError(abs)
	}

	log = log.WithFields(map[string]interface{}{"component": "preview", "site": m.Name})
	view := snapshot.New()
	s := &Server{
		sitePath:   abs,
		configPath: filepath.Join(abs, site.ConfigFile),
		templateID: m.Template,
		settings:   settings,
		debounce:   defaultDebounce,
		view:       view,
		logger:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = engine.New(store, view, view, log,
		engine.WithGlobeDelay(config.GetDuration(settings.GlobeDelay)),
	)
	return s, nil
}

func (s *Server) Engine() *engine.Engine {
	return s.engine
}

func (s *Server) View() *snapshot.View {
	return s.view
}

// Load runs the engine over the site's config.json.
func (s *Server) Load(ctx context.Context) bool {
	return s.engine.Init(ctx, engine.Options{ConfigPath: s.configPath, TemplateID: s.templateID})
}

func (s *Server) reload(ctx context.Context) {
	ok := s.Load(ctx)

	s.reloadMu.Lock()
	s.reloads++
	n := s.reloads
	s.reloadMu.Unlock()

	if ok {
		s.logger.Info("config reloaded", map[string]interface{}{"reload": n})
		return
	}
	s.logger.Warn("config reload failed, keeping previous dashboard", map[string]interface{}{"reload": n})
}

// Reloads counts finished watcher-triggered reloads.
func (s *Server) Reloads() int {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	return s.reloads
}

// Handler returns the preview router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/locations/{id}", s.handleLocation)
		r.Delete("/selection", s.handleClearSelection)
		r.Get("/cards", s.handleCards)
		r.Get("/context", s.handleContext)
	})

	r.Handle("/*", http.FileServer(http.Dir(s.sitePath)))
	return r
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "static"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "/*" && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.PreviewRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"engine": s.engine.State().String(),
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	if !s.ready(w) {
		return
	}
	id := chi.URLParam(r, "id")
	if !s.engine.SelectLocation(id) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("location %q not found", id))
		return
	}
	detail, _ := s.engine.Detail(id)
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.engine.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	if !s.ready(w) {
		return
	}
	s.engine.FilterCards(r.URL.Query().Get("filter"))
	snap := s.view.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filter": snap.ActiveFilter,
		"count":  snap.CardCount,
		"cards":  snap.Cards,
	})
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.DataContext())
}

func (s *Server) ready(w http.ResponseWriter) bool {
	if s.engine.State() == engine.StateReady {
		return true
	}
	writeError(w, http.StatusServiceUnavailable, "dashboard not loaded")
	return false
}

// Run listens on the configured port until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.settings.Port))
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve loads the dashboard, then serves on ln with the ticker and the
// config watcher running. It returns after a graceful shutdown once ctx
// ends. A failed first load is logged and the server still starts.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.Load(ctx) {
		s.logger.Warn("initial load failed", map[string]interface{}{"config": s.configPath})
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.engine.RunTicker(runCtx, config.GetDuration(s.settings.TickerInterval))
	}()

	if s.settings.Watch {
		w, err := newConfigWatcher(s.configPath, s.debounce, func() { s.reload(runCtx) }, s.logger)
		if err != nil {
			s.logger.Warn("config watcher disabled", map[string]interface{}{"error": err.Error()})
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.run(runCtx)
			}()
		}
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("preview listening", map[string]interface{}{"addr": ln.Addr().String()})

	var serveErr error
	select {
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			serveErr = err
		}
		<-errCh
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}

	cancel()
	wg.Wait()
	s.engine.Close()
	_ = s.engine.WaitGlobe(context.Background())

	s.logger.Info("preview stopped", nil)
	return serveErr
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
