package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/food-catalog-api/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m.Data
			}
		}
	}
	t.Fatalf("metric %s not recorded", name)
	return nil
}

func TestStructuredLogger_LogsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(StructuredLogger(logger))
	r.Get("/api/fooditems/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/fooditems/abc?unit=kg", nil))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "/api/fooditems/{id}", record["http.route"])
	assert.Equal(t, "/api/fooditems/abc", record["url.path"])
	assert.Equal(t, "unit=kg", record["url.query"])
	assert.Equal(t, float64(http.StatusNotFound), record["http.response.status_code"])
}

func TestHTTPRouteContext_ResolvesAfterRouting(t *testing.T) {
	var seen string

	r := chi.NewRouter()
	r.Use(HTTPRouteContext())
	r.Route("/api/fooditems", func(r chi.Router) {
		r.Get("/search/{type}", func(w http.ResponseWriter, r *http.Request) {
			seen = telemetry.HTTPRouteFromContext(r.Context())
		})
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/fooditems/search/fruit", nil))

	assert.Equal(t, "/api/fooditems/search/{type}", seen)
}

func TestActiveRequestsMiddleware_Balances(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	r := chi.NewRouter()
	r.Use(ActiveRequestsMiddleware(meter))
	r.Get("/written", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/silent", func(w http.ResponseWriter, r *http.Request) {})

	for _, path := range []string{"/written", "/silent"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	sum, ok := collect(t, reader, "http.server.active_requests").(metricdata.Sum[int64])
	require.True(t, ok)
	require.NotEmpty(t, sum.DataPoints)
	for _, dp := range sum.DataPoints {
		assert.Zero(t, dp.Value)
	}
}

func TestDurationMillisecondsMiddleware_RecordsStatus(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	r := chi.NewRouter()
	r.Use(DurationMillisecondsMiddleware(meter))
	r.Post("/api/process-fooditems", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/process-fooditems", nil))

	hist, ok := collect(t, reader, "http.server.request.duration.ms").(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)

	status, found := hist.DataPoints[0].Attributes.Value("http.response.status_code")
	require.True(t, found)
	assert.Equal(t, int64(http.StatusCreated), status.AsInt64())

	route, found := hist.DataPoints[0].Attributes.Value("http.route")
	require.True(t, found)
	assert.Equal(t, "/api/process-fooditems", route.AsString())
}
