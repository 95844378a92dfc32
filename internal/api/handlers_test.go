package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/leeaandrob/stockcal/internal/dataset"
	"github.com/leeaandrob/stockcal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventsBody = `{
  "updatedAt": "2026-10-15",
  "events": [
    {"id": "e1", "date": "2026-10-20", "title": "台積電法說會", "market": "TW", "type": "corporate", "trend": "bull", "relatedStocks": ["2330"], "description": "Q3 財報", "strategy": "觀察毛利率"}
  ]
}
`

const trendsBody = `{"updatedAt":"2026-10-15","trends":[{"id":"t1","name":"AI 伺服器","strength":88,"trend":"up","stocks":["2382"],"reason":"訂單","updatedAt":"2026-10-15"}]}`

const strategiesBody = `{"updatedAt":"2026-10-15","strategies":[{"id":"s1","title":"逢低布局","type":"bull","desc":"分批","risk":"中","target":"半導體","updatedAt":"2026-10-15"}]}`

func newTestServer(t *testing.T, files map[models.Kind]string) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	for kind, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, kind.FileName()), []byte(body), 0o644))
	}
	srv := httptest.NewServer(NewServer(dataset.NewStore(dir), ":0").Handler())
	t.Cleanup(srv.Close)
	return srv, dir
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestDatasetEndpointsServeFileBytes(t *testing.T) {
	srv, _ := newTestServer(t, map[models.Kind]string{
		models.KindEvents:     eventsBody,
		models.KindHotTrends:  trendsBody,
		models.KindStrategies: strategiesBody,
	})

	tests := []struct {
		path string
		want string
	}{
		{"/api/events", eventsBody},
		{"/api/hot-trends", trendsBody},
		{"/api/strategies", strategiesBody},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, srv.URL+tt.path)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestDatasetEndpointReflectsReplacedFile(t *testing.T) {
	srv, dir := newTestServer(t, map[models.Kind]string{models.KindHotTrends: trendsBody})

	_, before := get(t, srv.URL+"/api/hot-trends")
	assert.Equal(t, trendsBody, string(before))

	replaced := `{"updatedAt":"2026-10-16","trends":[]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, models.KindHotTrends.FileName()), []byte(replaced), 0o644))

	_, after := get(t, srv.URL+"/api/hot-trends")
	assert.Equal(t, replaced, string(after))
}

func TestUnavailableDatasetDoesNotAffectOthers(t *testing.T) {
	srv, _ := newTestServer(t, map[models.Kind]string{
		models.KindEvents:     eventsBody,
		models.KindStrategies: `{"updatedAt": "2026-10-15", "strategies": [`,
	})

	resp, body := get(t, srv.URL+"/api/hot-trends")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.JSONEq(t, `{"error":"hot-trends unavailable"}`, string(body))

	resp, body = get(t, srv.URL+"/api/strategies")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.JSONEq(t, `{"error":"strategies unavailable"}`, string(body))
	assert.NotContains(t, string(body), "unexpected", "parser details stay in the log")

	resp, body = get(t, srv.URL+"/api/events")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, eventsBody, string(body))
}

func TestHealthIsIndependentOfData(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, path := range []string{"/health", "/api/health"} {
		resp, body := get(t, srv.URL+path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.JSONEq(t, `{"status":"ok"}`, string(body), path)
	}
}

func TestIndexListsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var index struct {
		Endpoints map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(body, &index))
	assert.Equal(t, "/api/hot-trends", index.Endpoints["hot_trends"])
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	srv, _ := newTestServer(t, map[models.Kind]string{models.KindEvents: eventsBody})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://stockcal.example")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, _ := get(t, srv.URL+"/api/unknown")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
