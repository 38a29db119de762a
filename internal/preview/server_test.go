package preview

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pi-builder/internal/common/config"
	apperrors "pi-builder/internal/common/errors"
	"pi-builder/internal/common/logger"
	"pi-builder/internal/engine"
	"pi-builder/internal/site"
	"pi-builder/internal/siteconfig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestSite(t *testing.T) (string, *site.Builder) {
	t.Helper()
	settings := config.Default()
	settings.Paths.TemplatesDir = filepath.Join(t.TempDir(), "templates")
	settings.Paths.OutputDir = t.TempDir()
	b, err := site.NewBuilder(settings, logger.NewTestLogger(t))
	require.NoError(t, err)

	res, err := b.New(context.Background(), site.NewOptions{Template: "restaurant", Name: "bistro"})
	require.NoError(t, err)
	return res.Path, b
}

func createTestServer(t *testing.T, watch bool) *Server {
	t.Helper()
	path, b := createTestSite(t)
	store, err := b.NewStore(siteconfig.ModeLocal)
	require.NoError(t, err)

	s, err := New(path, store, config.PreviewConfig{
		Port:           8080,
		TickerInterval: 10,
		GlobeDelay:     1,
		Watch:          watch,
	}, logger.NewTestLogger(t), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Engine().Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Engine().WaitGlobe(ctx)
	})
	return s
}

func doRequest(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// startServer runs Serve until the test ends and waits for the first
// successful health check. The watcher is running by then.
func startServer(t *testing.T, s *Server) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	client := &http.Client{Timeout: time.Second}
	defer client.CloseIdleConnections()
	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := client.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
}

func rewriteBusinessName(t *testing.T, configPath, name string) {
	t.Helper()
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	doc["business"].(map[string]interface{})["name"] = name
	data, err = json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configPath, data, 0o644))
}

// ==========================
// Construction
// ==========================

func TestNew_MissingSite(t *testing.T) {
	store := siteconfig.NewStore(logger.NewNoOpLogger())
	_, err := New(filepath.Join(t.TempDir(), "nope"), store, config.PreviewConfig{}, logger.NewNoOpLogger())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSiteNotFound, apperrors.CodeOf(err))
}

// ==========================
// API
// ==========================

func TestHandler_BeforeLoad(t *testing.T) {
	s := createTestServer(t, false)
	h := s.Handler()

	rec := doRequest(t, h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uninitialized", decodeBody(t, rec)["engine"])

	rec = doRequest(t, h, http.MethodGet, "/api/locations/downtown")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/cards")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_Snapshot(t *testing.T) {
	s := createTestServer(t, false)
	require.True(t, s.Load(context.Background()))
	h := s.Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Equal(t, "Corner Bistro", body["title"])
	assert.Equal(t, "2 locations", body["cardCount"])
	assert.Equal(t, "ready", decodeBody(t, doRequest(t, h, http.MethodGet, "/healthz"))["engine"])
}

func TestHandler_SelectLocation(t *testing.T) {
	s := createTestServer(t, false)
	require.True(t, s.Load(context.Background()))
	h := s.Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/locations/brooklyn")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "brooklyn", body["id"])
	assert.Equal(t, "Brooklyn Cafe", body["name"])
	assert.Contains(t, body, "sections")

	assert.Equal(t, "brooklyn", s.Engine().SelectedID())
	assert.Equal(t, "brooklyn", s.View().Snapshot().SelectedCard)

	rec = doRequest(t, h, http.MethodDelete, "/api/selection")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.Engine().SelectedID())
	assert.Nil(t, s.View().Snapshot().Detail)
}

func TestHandler_UnknownLocation(t *testing.T) {
	s := createTestServer(t, false)
	require.True(t, s.Load(context.Background()))

	rec := doRequest(t, s.Handler(), http.MethodGet, "/api/locations/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "nowhere")
	assert.Empty(t, s.Engine().SelectedID())
}

func TestHandler_Cards(t *testing.T) {
	s := createTestServer(t, false)
	require.True(t, s.Load(context.Background()))
	h := s.Handler()

	tests := []struct {
		name       string
		target     string
		wantFilter string
		wantIDs    []string
	}{
		{name: "no filter", target: "/api/cards", wantFilter: "all", wantIDs: []string{"downtown", "brooklyn"}},
		{name: "category", target: "/api/cards?filter=takeout", wantFilter: "takeout", wantIDs: []string{"brooklyn"}},
		{name: "unknown category", target: "/api/cards?filter=drive-thru", wantFilter: "drive-thru", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Filter string `json:"filter"`
				Cards  []struct {
					ID string `json:"id"`
				} `json:"cards"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantFilter, body.Filter)

			ids := []string{}
			for _, c := range body.Cards {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestHandler_Context(t *testing.T) {
	s := createTestServer(t, false)
	require.True(t, s.Load(context.Background()))

	rec := doRequest(t, s.Handler(), http.MethodGet, "/api/context")
	require.Equal(t, http.StatusOK, rec.Code)

	var dc engine.DataContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dc))
	assert.Equal(t, "restaurant", dc.TemplateType)
	assert.Len(t, dc.Providers, 2)
	assert.Equal(t, 2, dc.Stats.TotalProviders)
}

func TestHandler_StaticFilesAndMetrics(t *testing.T) {
	s := createTestServer(t, false)
	h := s.Handler()

	rec := doRequest(t, h, http.MethodGet, "/index.html")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code, "FileServer redirects index.html to /")

	rec = doRequest(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PITemplate.init")

	rec = doRequest(t, h, http.MethodGet, "/config.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Corner Bistro")

	rec = doRequest(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pi_preview_requests_total")
}

// ==========================
// Serve
// ==========================

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := createTestServer(t, false)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Timeout: time.Second}
	defer client.CloseIdleConnections()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := client.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, engine.StateReady, s.Engine().State())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_ReloadsOnConfigWrite(t *testing.T) {
	s := createTestServer(t, true)
	startServer(t, s)
	require.Equal(t, "Corner Bistro", s.View().Snapshot().Title)

	rewriteBusinessName(t, filepath.Join(s.sitePath, site.ConfigFile), "Corner Bistro Uptown")

	require.Eventually(t, func() bool {
		return s.View().Snapshot().Title == "Corner Bistro Uptown"
	}, 3*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, s.Reloads(), 1)
}

func TestServe_BadReloadKeepsDashboard(t *testing.T) {
	s := createTestServer(t, true)
	startServer(t, s)
	require.Equal(t, engine.StateReady, s.Engine().State())

	require.NoError(t, os.WriteFile(filepath.Join(s.sitePath, site.ConfigFile), []byte("{not json"), 0o644))

	require.Eventually(t, func() bool { return s.Reloads() >= 1 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, engine.StateReady, s.Engine().State())
	assert.Equal(t, "Corner Bistro", s.View().Snapshot().Title)
}

func TestServe_TickerRuns(t *testing.T) {
	s := createTestServer(t, false)
	startServer(t, s)

	require.Eventually(t, func() bool {
		return len(s.View().Snapshot().Ticker) > 0
	}, 2*time.Second, 10*time.Millisecond)
}
