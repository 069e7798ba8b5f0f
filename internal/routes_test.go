package internal

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"ratingd/internal/controllers"
	"ratingd/internal/models"
	"ratingd/internal/services"
	"ratingd/internal/storage"
	"ratingd/internal/structures"
	"ratingd/internal/testutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeFixture struct {
	handler http.Handler
	conf    *structures.Config
	store   storage.RatingStoreInterface
}

func newRouteFixture(t *testing.T, metricsEnabled bool) *routeFixture {
	t.Helper()
	conf := testutil.StoreConfig(t.TempDir())
	conf.Metrics.Enabled = metricsEnabled
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}

	archiver, err := storage.NewArchiver(conf, logger, metrics)
	require.NoError(t, err)
	store, err := storage.NewRatingStore(conf, archiver, logger, metrics)
	require.NoError(t, err)
	require.NoError(t, store.EnsureAll())
	file, err := storage.NewSettingsFile(conf, archiver, logger)
	require.NoError(t, err)
	settings, err := services.NewSettingsService(file, logger)
	require.NoError(t, err)

	cache := testutil.NewMockCache()
	ratings := services.NewRatingService(store, settings, cache, logger)
	timeline := services.NewTimelineService(store, logger, metrics)

	router := InitRoutes(
		controllers.NewApiController(logger, ratings, timeline, cache),
		controllers.NewSettingsController(logger, settings),
	)
	handler := NewHandler(controllers.NewHealthController(ratings), conf, logger, router, metrics)
	return &routeFixture{handler: handler, conf: conf, store: store}
}

func (f *routeFixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func TestInitRoutes_RegistersRoutes(t *testing.T) {
	router := InitRoutes(
		controllers.NewApiController(&testutil.MockLogger{}, nil, nil, nil),
		controllers.NewSettingsController(&testutil.MockLogger{}, nil),
	)
	routes := router.GetRoutes()

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}
	assert.ElementsMatch(t, []string{
		"/rate", "/timeline_data", "/upload_ratings", "/reset_ratings",
		"/settings", "/map_hotkey", "/set_num_buttons",
	}, urls)
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	f := newRouteFixture(t, false)

	rr := f.do(http.MethodGet, "/rate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "POST", rr.Header().Get("Allow"))

	rr = f.do(http.MethodPost, "/timeline_data", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = f.do(http.MethodDelete, "/settings", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, POST", rr.Header().Get("Allow"))
}

func TestRoutes_RateThenTimeline(t *testing.T) {
	f := newRouteFixture(t, false)

	rr := f.do(http.MethodPost, "/rate", `{"rating":4}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Rating 4 saved!"}`, rr.Body.String())

	rr = f.do(http.MethodPost, "/rate", `{"rating":9}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	for _, source := range []string{"csv", "json"} {
		rr = f.do(http.MethodGet, "/timeline_data?range=all&source="+source, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"avg_rating":4`)
		assert.Contains(t, rr.Body.String(), `"count":1`)
	}
}

func TestRoutes_TimelineSeesWritesFromOtherProcesses(t *testing.T) {
	f := newRouteFixture(t, false)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/rate", `{"rating":2}`).Code)
	rr := f.do(http.MethodGet, "/timeline_data?range=all", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":1`)

	csvPath := filepath.Join(f.conf.Storage.DataDir, f.conf.Storage.RowLogFile)
	out, err := os.OpenFile(csvPath, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = out.WriteString("2024-01-01T08:00:00,4\n")
	require.NoError(t, err)
	require.NoError(t, out.Close())

	rr = f.do(http.MethodGet, "/timeline_data?range=all", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"date":"2024-01-01","avg_rating":4,"count":1`)
}

func TestRoutes_NumButtonsBoundsRating(t *testing.T) {
	f := newRouteFixture(t, false)

	rr := f.do(http.MethodPost, "/set_num_buttons", `{"num_buttons":11}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodPost, "/set_num_buttons", `{"num_buttons":10}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(http.MethodPost, "/rate", `{"rating":10}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRoutes_UploadAndReset(t *testing.T) {
	f := newRouteFixture(t, false)

	rr := f.do(http.MethodPost, "/upload_ratings?target=json", `[{"date":"2024-01-01T10:00:00","rating":2}]`)
	require.Equal(t, http.StatusOK, rr.Code)

	entries, err := f.store.ReadEventList()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.EntryEvent, entries[0].Kind)

	rr = f.do(http.MethodPost, "/reset_ratings", "")
	require.Equal(t, http.StatusOK, rr.Code)

	entries, err = f.store.ReadEventList()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	f := newRouteFixture(t, false)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/metrics", "").Code)

	f = newRouteFixture(t, true)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/metrics", "").Code)
}

func TestListenPort(t *testing.T) {
	settings := &portSettings{port: 7331}

	conf := &structures.Config{}
	assert.Equal(t, 7331, listenPort(conf, settings))

	conf.WebServer.Port = 9000
	assert.Equal(t, 9000, listenPort(conf, settings))
}

type portSettings struct {
	services.SettingsServiceInterface
	port int
}

func (p *portSettings) Port() int { return p.port }
