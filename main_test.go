package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"salesdash/database"
	"salesdash/internal/config"
	salesinfra "salesdash/internal/sales/infrastructure"
	sharedinfra "salesdash/internal/shared/infrastructure"
	"salesdash/internal/testhelpers"
)

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.Server.DevMode = true
	cfg.Staging.Driver = config.DriverMemory

	staging, err := openStaging(cfg)
	if err != nil {
		t.Fatalf("openStaging: %v", err)
	}
	cache := sharedinfra.NewShardedCache(4)
	t.Cleanup(cache.Close)

	return newRouter(cfg, newHandlers(cfg, staging, cache))
}

func TestHealth(t *testing.T) {
	router := setupServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["status"] != "ok" {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestServer_UploadThenStats(t *testing.T) {
	router := setupServer(t)

	var csvData bytes.Buffer
	if err := salesinfra.WriteCSV(&csvData, testhelpers.SampleRows()); err != nil {
		t.Fatal(err)
	}
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("file", "walmart.csv")
	_, _ = part.Write(csvData.Bytes())
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats?stores=2", nil))
	var stats struct {
		TotalSales string `json:"total_sales"`
		BestStore  *int   `json:"best_store"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalSales != "4232589.39" || stats.BestStore == nil || *stats.BestStore != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestServer_PprofInDevMode(t *testing.T) {
	router := setupServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("pprof index = %d", rec.Code)
	}
}

func TestOpenStaging_SQLite(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Staging.DataDir = t.TempDir()

	staging, err := openStaging(cfg)
	if err != nil {
		t.Fatalf("openStaging: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if _, ok := staging.(*salesinfra.StagingRepository); !ok {
		t.Fatalf("staging = %T, want *StagingRepository", staging)
	}
}
