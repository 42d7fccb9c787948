package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finboard/internal/config"
)

// setupTestEnvironment points all application paths at a temporary
// directory and quiets logging. It returns the data directory where
// test workbooks should be written.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()

	baseDir := t.TempDir()
	t.Setenv("FINBOARD_PATHS_EXECUTABLE_DIR", baseDir)
	t.Setenv("FINBOARD_LOGGING_LEVEL", "error")
	t.Setenv("FINBOARD_LOGGING_OUTPUT", "console")

	dataDir := filepath.Join(baseDir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	return dataDir
}

func writeWorkbook(t *testing.T, dir, name string, headers []string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, header))
	}
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	require.NoError(t, f.SaveAs(filepath.Join(dir, name)))
}

func writeDashboardFixtures(t *testing.T, dataDir string) {
	t.Helper()

	writeWorkbook(t, dataDir, config.DefaultExpenseResource,
		[]string{"Category", "Metric_Name", "Responsibility", "Value_2024_Jan_July", "Value_2025_Jan_July", "Growth_Rate_Decimal"},
		[][]interface{}{
			{"YOY Expense & Profitability Analysis", "Payroll", "Finance", 180000, 195500.5, 0.086},
			{"YOY Expense & Profitability Analysis", "Marketing", "Growth", 60000, 75000, 0.25},
			{"Cash Flow Projection (Aug–Dec 2025)", "Opening Balance", "Treasury", "", 410000, ""},
			{"Advertising ROI", "Spot Check", "Growth", 1000, 2000, 0.5},
		})
	writeWorkbook(t, dataDir, config.DefaultPerformanceResource,
		[]string{"Category", "Jul 2025", "Anchor vs Prior Avg ($)", "Margin Risk Assessment", "Expense Growth Alignment", "Efficiency Alert", "Marketing Spend Efficiency", "Elasticity Classification"},
		[][]interface{}{
			{"Payroll", 61000, 1200.5, "Low", "Aligned", "Stable – No Action", 0.125, "Inelastic"},
			{"Marketing", 45000, -3200.75, "High", "Misaligned", "Investigate – Potential Risk", 0.25, "Elastic"},
		})
}

func doRequest(t *testing.T, a *Application, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestNewApplication(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		wantErr       bool
		errorContains string
	}{
		{
			name:    "successful initialization",
			env:     nil,
			wantErr: false,
		},
		{
			name:          "invalid server port",
			env:           map[string]string{"FINBOARD_SERVER_PORT": "0"},
			wantErr:       true,
			errorContains: "failed to load configuration",
		},
		{
			name:          "invalid log level",
			env:           map[string]string{"FINBOARD_LOGGING_LEVEL": "verbose"},
			wantErr:       true,
			errorContains: "failed to load configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestEnvironment(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			app, err := NewApplication()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, app.Config)
			assert.NotNil(t, app.Router)
			assert.NotNil(t, app.Server)
			assert.NotNil(t, app.DashboardService)
			assert.NotNil(t, app.HealthService)
			assert.NotNil(t, app.Discovery)
			assert.NotNil(t, app.Logger)
			assert.NotNil(t, app.OTelProviders)
			assert.NotNil(t, app.Metrics)
			assert.NotNil(t, app.Collector)
			assert.Equal(t, ":8080", app.Server.Addr)
			assert.Len(t, app.DashboardService.Dashboards(), 2)
		})
	}
}

func TestApplicationRoutes(t *testing.T) {
	dataDir := setupTestEnvironment(t)
	writeDashboardFixtures(t, dataDir)

	app, err := NewApplication()
	require.NoError(t, err)

	t.Run("health endpoints", func(t *testing.T) {
		rec := doRequest(t, app, http.MethodGet, "/api/health")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

		rec = doRequest(t, app, http.MethodGet, "/api/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ready"`)

		rec = doRequest(t, app, http.MethodGet, "/api/health/live")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"alive"`)

		rec = doRequest(t, app, http.MethodGet, "/api/health/detailed")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"readiness"`)

		rec = doRequest(t, app, http.MethodGet, "/api/version")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), VERSION)
	})

	t.Run("dashboard api", func(t *testing.T) {
		rec := doRequest(t, app, http.MethodGet, "/api/dashboards")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"count":2`)
		assert.Contains(t, rec.Body.String(), `"slug":"expense"`)
		assert.Contains(t, rec.Body.String(), `"slug":"performance"`)

		rec = doRequest(t, app, http.MethodGet, "/api/dashboards/expense")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"success"`)
		assert.Contains(t, rec.Body.String(), `"row_count":4`)

		rec = doRequest(t, app, http.MethodGet, "/api/dashboards/liquidity")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "DASHBOARD_NOT_FOUND")
	})

	t.Run("dashboard pages", func(t *testing.T) {
		rec := doRequest(t, app, http.MethodGet, "/")
		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "/dashboards/expense", rec.Header().Get("Location"))

		rec = doRequest(t, app, http.MethodGet, "/dashboards/expense")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "<h1>Expense Analysis</h1>")
		assert.Contains(t, rec.Body.String(), "Financial Performance")

		// BuildView above rendered the chart, so the image is servable now
		rec = doRequest(t, app, http.MethodGet, "/dashboards/expense/chart.png")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, rec.Body.Bytes())
	})

	t.Run("workbook download", func(t *testing.T) {
		rec := doRequest(t, app, http.MethodGet, "/"+config.DefaultExpenseResource)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "expected xlsx zip magic")
	})

	t.Run("resource inventory", func(t *testing.T) {
		rec := doRequest(t, app, http.MethodGet, "/api/resources")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"workbooks"`)
		assert.Contains(t, rec.Body.String(), config.DefaultExpenseResource)
	})

	t.Run("prometheus metrics", func(t *testing.T) {
		rec := doRequest(t, app, http.MethodGet, "/metrics")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Body.String())
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := doRequest(t, app, http.MethodGet, "/api/nonexistent")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Not Found")
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := doRequest(t, app, http.MethodPost, "/api/health")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Contains(t, rec.Body.String(), "Method Not Allowed")
	})
}

func TestApplicationRoutesMissingWorkbooks(t *testing.T) {
	setupTestEnvironment(t)

	app, err := NewApplication()
	require.NoError(t, err)

	rec := doRequest(t, app, http.MethodGet, "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"not_ready"`)

	rec = doRequest(t, app, http.MethodGet, "/api/dashboards/expense")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "DASHBOARD_LOAD_FAILED")

	// The HTML page degrades to an error panel instead of failing
	rec = doRequest(t, app, http.MethodGet, "/dashboards/expense")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "fetch failed")

	rec = doRequest(t, app, http.MethodGet, "/"+config.DefaultExpenseResource)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "RESOURCE_NOT_FOUND")
}

func TestApplicationStartStop(t *testing.T) {
	dataDir := setupTestEnvironment(t)
	writeDashboardFixtures(t, dataDir)
	t.Setenv("FINBOARD_SERVER_PORT", "18315")

	app, err := NewApplication()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))

	client := &http.Client{Timeout: 500 * time.Millisecond}
	url := fmt.Sprintf("http://localhost:%d/api/health", app.Config.Server.Port)

	var resp *http.Response
	for i := 0; i < 40; i++ {
		resp, err = client.Get(url)
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	require.NoError(t, err, "server did not become reachable")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	require.NoError(t, app.Stop(context.Background()))

	_, err = client.Get(url)
	assert.Error(t, err, "server should refuse connections after shutdown")
}

func TestGetCORSConfig(t *testing.T) {
	app := &Application{
		Config: config.Default(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	corsConfig := app.getCORSConfig()

	assert.Equal(t, app.Config.Security.AllowedOrigins, corsConfig.AllowedOrigins)
	assert.Contains(t, corsConfig.AllowedMethods, "GET")
	assert.Contains(t, corsConfig.AllowedHeaders, "X-Request-ID")
	assert.Equal(t, []string{"X-Request-ID"}, corsConfig.ExposedHeaders)
	assert.True(t, corsConfig.AllowCredentials)
	assert.Equal(t, 300, corsConfig.MaxAge)
}

func TestCreateServer(t *testing.T) {
	cfg := config.Default()
	app := &Application{Config: cfg}

	app.createServer()

	assert.Equal(t, fmt.Sprintf(":%d", cfg.Server.Port), app.Server.Addr)
	assert.Equal(t, cfg.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.Equal(t, cfg.Server.WriteTimeout, app.Server.WriteTimeout)
	assert.Equal(t, cfg.Server.IdleTimeout, app.Server.IdleTimeout)
	assert.Equal(t, cfg.Server.MaxHeaderBytes, app.Server.MaxHeaderBytes)
}

func TestGenerateBuildID(t *testing.T) {
	id := generateBuildID()
	assert.Len(t, id, 12)
	assert.Equal(t, id, generateBuildID())
}
