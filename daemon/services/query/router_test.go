package query

import (
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterHealthzIsUnauthenticated(t *testing.T) {
	svc, _ := newTestService(t)
	svc.config.Auth.Enabled = true
	svc.config.Auth.APIKey = "secret-key"

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	svc.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterStatsRequiresAuthWhenEnabled(t *testing.T) {
	svc, _ := newTestService(t)
	svc.config.Auth.Enabled = true
	svc.config.Auth.APIKey = "secret-key"

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	svc.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterStatsServesWithValidAPIKey(t *testing.T) {
	svc, mock := newTestService(t)
	svc.config.Auth.Enabled = true
	svc.config.Auth.APIKey = "secret-key"

	cols := []string{
		"timestamp", "container_id", "machine_id",
		"cpu_usage_usec", "cpu_user_usec", "cpu_system_usec",
		"cpu_nr_periods", "cpu_nr_throttled", "cpu_throttled_usec",
		"cpu_nr_bursts", "cpu_burst_usec",
		"cpu_quota", "cpu_period",
		"memory_anon", "memory_file", "memory_kernel_stack", "memory_slab",
		"memory_sock", "memory_shmem", "memory_file_mapped",
		"memory_usage_bytes", "memory_limit_bytes",
		"io_rbytes", "io_wbytes", "io_rios", "io_wios",
		"net_rx_bytes", "net_rx_packets", "net_tx_bytes", "net_tx_packets",
	}
	mock.ExpectQuery("SELECT(.|\n)*FROM container_stats").WillReturnRows(sqlmock.NewRows(cols))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("X-API-Key", "secret-key")
	w := httptest.NewRecorder()
	svc.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRouterStatsStreamNotRegisteredWhenDisabled(t *testing.T) {
	svc, _ := newTestService(t)
	svc.config.HTTPServer.WebSocketEnabled = false

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/stream", nil)
	w := httptest.NewRecorder()
	svc.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterSetsRequestIDHeader(t *testing.T) {
	svc, _ := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	svc.Router().ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouterEchoesClientRequestID(t *testing.T) {
	svc, _ := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	w := httptest.NewRecorder()
	svc.Router().ServeHTTP(w, req)

	assert.Equal(t, "client-supplied-id", w.Header().Get("X-Request-ID"))
}

func TestRouterMetricsServesPrometheusFormat(t *testing.T) {
	svc, _ := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	svc.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
