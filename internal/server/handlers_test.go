package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"statchart/internal/graph"
	"statchart/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const statsPayload = `{
  "y": "Experience",
  "dates": ["01/01/2024", "01/02/2024", "01/03/2024"],
  "series": [
    {"id": "a", "name": "Alice", "values": {"xp": [100, 200, 300], "hp": [1, 2, 3]}},
    {"id": "b", "name": "Bob", "values": {"xp": [1000, 1500, 2500]}}
  ]
}`

type fixture struct {
	stats *httptest.Server
	store *storage.Store
	mux   *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stats := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(statsPayload))
	}))
	t.Cleanup(stats.Close)

	db, err := storage.OpenSQLite("file:" + filepath.Join(t.TempDir(), "server.db") + "?_fk=1")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.InitSchema(db))
	store := storage.NewStore(db)

	s := New(graph.NewBuilder(graph.NewFetcher(5*time.Second)), store, stats.URL)
	return &fixture{stats: stats, store: store, mux: NewHTTPMux(s, nil)}
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestChartFormats(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/chart?value=xp")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = f.get(t, "/chart?value=xp&format=svg&tight")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = f.get(t, "/chart?entity=a&format=json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Alice All", gjson.Get(rec.Body.String(), "title").String())
	assert.Equal(t, int64(2), gjson.Get(rec.Body.String(), "series.#").Int())

	stats, err := f.store.UsageStats(0)
	require.NoError(t, err)
	require.Contains(t, stats, f.stats.URL+" value=xp")
	assert.Equal(t, 2, stats[f.stats.URL+" value=xp"].Count)
}

func TestChartErrors(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		path string
		code int
	}{
		{"/chart?entity=zz", http.StatusUnprocessableEntity},
		{"/chart?entity=a&value=mp", http.StatusUnprocessableEntity},
		{"/chart", http.StatusUnprocessableEntity},
		{"/chart?value=xp&format=gif", http.StatusBadRequest},
		{"/chart?value=xp&width=1", http.StatusBadRequest},
		{"/chart?value=xp&filter=bogus", http.StatusBadRequest},
		{"/chart?preset=nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := f.get(t, tc.path)
		assert.Equal(t, tc.code, rec.Code, "%s: %s", tc.path, rec.Body.String())
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer broken.Close()
	rec := f.get(t, "/chart?value=xp&url="+url.QueryEscape(broken.URL))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHover(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/hover?value=xp&date=01/02/2024&v=1400")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Equal(t, "Bob", gjson.Get(body, "series").String())
	assert.Equal(t, int64(1), gjson.Get(body, "pointIndex").Int())
	assert.Equal(t, 500.0, gjson.Get(body, "delta").Float())
	assert.Equal(t, "Bob: 1,500 (+500)", gjson.Get(body, "label").String())
	assert.Equal(t, "01/02/2024", gjson.Get(body, "date").String())
	assert.Equal(t, "hovering", gjson.Get(body, "state").String())
	assert.Equal(t, "steelblue", gjson.Get(body, "styles.1.stroke").String())
	assert.Equal(t, "#ddd", gjson.Get(body, "styles.0.stroke").String())

	// pixel pointer: middle date column, bottom of the plot
	rec = f.get(t, "/hover?value=xp&x=530&y=670")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Alice: 200 (+100)", gjson.Get(rec.Body.String(), "label").String())

	rec = f.get(t, "/hover?value=xp&date=2024-01-02&v=1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPresets(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"name": {"bob-xp"}, "value": {"xp"}, "title": {"Bob XP"}, "filter": {"last:2"}}
	req := httptest.NewRequest(http.MethodPost, "/presets", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.get(t, "/presets")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []presetJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "bob-xp", list[0].Name)

	rec = f.get(t, "/chart?preset=bob-xp&format=json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Bob XP", gjson.Get(rec.Body.String(), "title").String())
	assert.Equal(t, int64(2), gjson.Get(rec.Body.String(), "dates.#").Int())

	rec = f.get(t, "/chart?preset=bob-xp&format=json&title=Override")
	assert.Equal(t, "Override", gjson.Get(rec.Body.String(), "title").String())

	stats, err := f.store.UsageStats(0)
	require.NoError(t, err)
	assert.Equal(t, 2, stats["preset:bob-xp"].Count)

	req = httptest.NewRequest(http.MethodDelete, "/presets?name=bob-xp", nil)
	rec = httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/presets?name=bob-xp", nil)
	rec = httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidPresetName(t *testing.T) {
	assert.True(t, ValidPresetName("hp_2024-q1"))
	assert.False(t, ValidPresetName(""))
	assert.False(t, ValidPresetName("has space"))
	assert.False(t, ValidPresetName(strings.Repeat("x", 33)))
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusOK, f.get(t, "/healthz").Code)
	f.get(t, "/chart?value=xp&format=json")
	rec := f.get(t, "/monitoring/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "statchart_chart_renders_total")
	assert.Equal(t, http.StatusNotFound, f.get(t, "/telegram/webhook").Code)
}
