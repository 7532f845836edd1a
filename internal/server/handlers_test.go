package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthworks/tabsynth/pkg/errors"
	"github.com/synthworks/tabsynth/pkg/models"
)

type memoryCache struct {
	datasets map[string]*models.Dataset
}

func newMemoryCache() *memoryCache {
	return &memoryCache{datasets: make(map[string]*models.Dataset)}
}

func (m *memoryCache) Put(ctx context.Context, ds *models.Dataset, ttl time.Duration) error {
	m.datasets[ds.ID] = ds
	return nil
}

func (m *memoryCache) Get(ctx context.Context, id string) (*models.Dataset, error) {
	ds, ok := m.datasets[id]
	if !ok {
		return nil, errors.WrapError(errors.ErrDatasetNotFound, errors.ErrorTypeStorage,
			errors.CodeDatasetNotFound, fmt.Sprintf("dataset not found: %s", id))
	}
	return ds, nil
}

func (m *memoryCache) Delete(ctx context.Context, id string) error {
	delete(m.datasets, id)
	return nil
}

func (m *memoryCache) List(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range m.datasets {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memoryCache) Close() error { return nil }

func newTestServer(t *testing.T, cache *memoryCache) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	handlers, err := NewHandlers(cache, nil, nil, nil, nil, logger)
	require.NoError(t, err)

	srv, err := NewServer(nil, handlers, nil, logger)
	require.NoError(t, err)
	return srv
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, newMemoryCache())

	rec := doRequest(srv, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = doRequest(srv, httptest.NewRequest("GET", "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, httptest.NewRequest("GET", "/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var version map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &version))
	assert.Equal(t, "tabsynth-server", version["name"])
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, newMemoryCache())
	rec := doRequest(srv, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func uploadCSV(t *testing.T, srv *Server, filename, content string) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/datasets/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := doRequest(srv, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestUploadAndStats(t *testing.T) {
	cache := newMemoryCache()
	srv := newTestServer(t, cache)

	resp := uploadCSV(t, srv, "orders.csv", "amount,status\n10,ok\n20,ok\n30,failed\n")
	assert.Equal(t, "orders", resp["name"])
	assert.Equal(t, float64(3), resp["row_count"])

	id := resp["dataset_id"].(string)
	require.NotEmpty(t, id)

	rec := doRequest(srv, httptest.NewRequest("GET", "/api/v1/datasets/"+id+"/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, float64(3), stats["row_count"])
}

func TestUploadMissingFile(t *testing.T) {
	srv := newTestServer(t, newMemoryCache())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/datasets/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsUnknownDataset(t *testing.T) {
	srv := newTestServer(t, newMemoryCache())
	rec := doRequest(srv, httptest.NewRequest("GET", "/api/v1/datasets/missing/stats", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteDataset(t *testing.T) {
	cache := newMemoryCache()
	srv := newTestServer(t, cache)

	resp := uploadCSV(t, srv, "x.csv", "a\n1\n")
	id := resp["dataset_id"].(string)

	rec := doRequest(srv, httptest.NewRequest("DELETE", "/api/v1/datasets/"+id, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, cache.datasets)
}

func TestListSynthesizers(t *testing.T) {
	srv := newTestServer(t, newMemoryCache())
	rec := doRequest(srv, httptest.NewRequest("GET", "/api/v1/synthesizers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["synthesizers"], "statistical")
	assert.Contains(t, resp["synthesizers"], "empirical")
}

func TestGenerateFromUploadedDataset(t *testing.T) {
	cache := newMemoryCache()
	srv := newTestServer(t, cache)

	csv := "age,segment\n"
	for i := 0; i < 50; i++ {
		csv += fmt.Sprintf("%d,%s\n", 20+i, string(rune('a'+i%3)))
	}
	resp := uploadCSV(t, srv, "people.csv", csv)
	id := resp["dataset_id"].(string)

	body, err := json.Marshal(map[string]interface{}{
		"dataset_id":   id,
		"target_count": 20,
		"synthesizer":  "statistical",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Status   string       `json:"status"`
		RowCount int          `json:"row_count"`
		Rows     []models.Row `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, 20, result.RowCount)
	assert.Len(t, result.Rows, 20)
}

func TestGenerateRequiresSource(t *testing.T) {
	srv := newTestServer(t, newMemoryCache())

	body := []byte(`{"target_count": 10}`)
	req := httptest.NewRequest("POST", "/api/v1/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateUnknownSynthesizer(t *testing.T) {
	cache := newMemoryCache()
	srv := newTestServer(t, cache)

	resp := uploadCSV(t, srv, "x.csv", "a\n1\n2\n")
	body, err := json.Marshal(map[string]interface{}{
		"dataset_id":   resp["dataset_id"],
		"target_count": 5,
		"synthesizer":  "ctgan",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/generate", bytes.NewReader(body))
	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCopilotNotConfigured(t *testing.T) {
	srv := newTestServer(t, newMemoryCache())

	body := []byte(`{"question": "how many rows?"}`)
	req := httptest.NewRequest("POST", "/api/v1/copilot/ask", bytes.NewReader(body))
	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
