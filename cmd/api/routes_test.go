package api

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/invoice-converter/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:               "127.0.0.1",
			Port:               8080,
			RateLimitPerSecond: 100,
			RateLimitBurst:     100,
			MaxUploadBytes:     1 << 20,
			AllowedOrigins:     []string{"*"},
			ShutdownTimeout:    time.Second,
		},
		Storage: config.StorageConfig{
			SpoolPath: t.TempDir(),
			MaxAge:    time.Hour,
		},
		Observability: config.ObservabilityConfig{
			MetricsEnabled: true,
			MetricsPort:    9090,
			LogLevel:       "error",
		},
		Extraction: config.ExtractionConfig{
			SuffixPolicy: "per_page",
			Currency:     "EUR",
			ValidatePDF:  true,
			MaxPages:     10,
		},
	}
}

func newTestDeps(t *testing.T, cfg *config.Config) *Dependencies {
	t.Helper()
	deps, err := InitDependencies(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(deps.Cleanup)
	return deps
}

func TestInitDependencies_InvalidPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Extraction.SuffixPolicy = "sometimes"

	_, err := InitDependencies(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sometimes")
}

func TestInitDependencies_MissingTemplates(t *testing.T) {
	cfg := testConfig(t)
	cfg.Extraction.TemplatesPath = "/does/not/exist.json"

	_, err := InitDependencies(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestRoutes_Health(t *testing.T) {
	routes := newTestDeps(t, testConfig(t)).Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	routes := newTestDeps(t, testConfig(t)).Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/convert", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRoutes_RejectsNonPDF(t *testing.T) {
	routes := newTestDeps(t, testConfig(t)).Routes()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "notes.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("these are not the bytes you are looking for"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "notes.pdf")
	assert.Contains(t, rec.Body.String(), "unreadable pdf")
}

func TestRoutes_CORSPreflight(t *testing.T) {
	routes := newTestDeps(t, testConfig(t)).Routes()

	req := httptest.NewRequest(http.MethodOptions, "/api/convert", nil)
	req.Header.Set("Origin", "https://ops.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsRoutes(t *testing.T) {
	deps := newTestDeps(t, testConfig(t))

	routes := deps.Routes()
	routes.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	deps.MetricsRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `invoice_converter_http_requests_total{code="200"} 1`)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.ObservabilityConfig{LogLevel: "warn", LogFormat: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}
