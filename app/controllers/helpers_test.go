package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/ugd-resolver/app/services"
	"github.com/ugd-resolver/internal/metrics"
	"github.com/ugd-resolver/internal/reference"
	"github.com/ugd-resolver/internal/resolver"
	"github.com/ugd-resolver/internal/suggest"
	"go.uber.org/zap"
)

var testRows = []reference.RawRecord{
	{Code: "0301", BIN: "123456789013", Name: "Есильское районное управление", Region: "Акмолинская область"},
	{Code: "6001", BIN: "000000000000", Name: "ДГД по г.Алматы"},
	{Code: "6201", BIN: "000000000000", Name: "ДГД по г.Астане"},
	{Code: "4810", Name: "Абайский район", Region: "Карагандинская область"},
}

const reloadCSV = "code;bin;name;region\n" +
	"6001;000000000000;ДГД по г.Алматы;\n" +
	"6201;000000000000;ДГД по г.Астане;\n"

type testServer struct {
	router   *gin.Engine
	resolver *resolver.Resolver
	cache    *services.CacheService
}

func newTestServer(t *testing.T, table *resolver.Table) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if table == nil {
		table = resolver.NewTable(testRows, "v1")
	}

	path := filepath.Join(t.TempDir(), "offices.csv")
	require.NoError(t, os.WriteFile(path, []byte(reloadCSV), 0o644))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg, reg)
	logger := zap.NewNop()

	res := resolver.NewResolver(table, logger)
	cache := services.NewCacheService(time.Hour)

	resolverService := services.NewResolverService(res, cache, suggest.NewSuggester(0, 3), nil, m, logger)
	adminService := services.NewAdminService(res, services.ReferenceSource{Path: path, Options: reference.DefaultOptions()},
		cache, nil, m, logger)

	rc := NewResolverController(resolverService, logger)
	ac := NewAdminController(adminService, resolverService, logger)

	router := gin.New()
	router.GET("/health", rc.HealthCheck)
	router.GET("/ready", rc.Ready)

	offices := router.Group("/v1/tax-offices")
	offices.POST("/resolve", rc.Resolve)
	offices.POST("/jobs", rc.BatchResolve)
	offices.GET("/jobs/:jobID/status", rc.GetJobStatus)
	offices.GET("/jobs/:jobID/results", rc.GetJobResults)
	offices.GET("", rc.ListOffices)
	offices.GET("/search", rc.SearchOffices)
	offices.GET("/:code", rc.GetOffice)

	admin := router.Group("/v1/admin")
	admin.POST("/reference/reload", ac.ReloadReference)
	admin.POST("/cache/invalidate", ac.InvalidateCache)
	admin.GET("/stats", ac.GetStats)
	admin.POST("/indexes/build", ac.BuildIndexes)
	admin.GET("/export/:format", ac.ExportData)

	return &testServer{router: router, resolver: res, cache: cache}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	decode(t, w, &resp)
	return resp.Error
}
