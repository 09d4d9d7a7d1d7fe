package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Run("counts requests by matched route pattern", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/status/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		handler := Metrics()(mux)

		counter := httpReqs.WithLabelValues(http.MethodGet, "GET /api/status/{id}", "200")
		before := testutil.ToFloat64(counter)

		req := httptest.NewRequest(http.MethodGet, "/api/status/4e3f0a52-83cf-4d3d-a7a6-ec9c9bd3e6a0", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, before+1, testutil.ToFloat64(counter))
	})

	t.Run("labels requests without a matched pattern as unmatched", func(t *testing.T) {
		handler := Metrics()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		counter := httpReqs.WithLabelValues(http.MethodGet, "unmatched", "404")
		before := testutil.ToFloat64(counter)

		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, before+1, testutil.ToFloat64(counter))
	})

	t.Run("defaults status to 200 when handler never writes a header", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})
		handler := Metrics()(mux)

		counter := httpReqs.WithLabelValues(http.MethodGet, "GET /healthz", "200")
		before := testutil.ToFloat64(counter)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, before+1, testutil.ToFloat64(counter))
	})
}
