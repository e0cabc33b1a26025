package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics("invoice-service", reg)
	require.NoError(t, err)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/invoices/:id", func(c echo.Context) error {
		c.Set("company_id", "0001")
		return c.NoContent(http.StatusOK)
	})

	for _, id := range []string{"1", "2"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/invoices/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.requests.WithLabelValues("invoice-service", "0001", http.MethodGet, "/api/invoices/:id", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.categories.WithLabelValues("invoice-service", "2xx", http.MethodGet, "/api/invoices/:id")))
}

func TestMiddlewareCountsClientErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics("invoice-service", reg)
	require.NoError(t, err)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusBadRequest)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.categories.WithLabelValues("invoice-service", "4xx", http.MethodGet, "/health")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestNewHTTPMetricsRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewHTTPMetrics("invoice-service", reg)
	require.NoError(t, err)

	_, err = NewHTTPMetrics("invoice-service", reg)
	assert.Error(t, err)
}

func TestStatusCategory(t *testing.T) {
	assert.Equal(t, "2xx", statusCategory(201))
	assert.Equal(t, "4xx", statusCategory(409))
	assert.Equal(t, "5xx", statusCategory(503))
	assert.Equal(t, "", statusCategory(302))
}
