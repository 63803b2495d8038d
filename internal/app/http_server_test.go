package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServer_Endpoints(t *testing.T) {
	deps := newTestDependencies(t)
	deps.Metrics.RecordOrderCreated()

	srv := newMetricsServer(":0", deps.Registry, deps.Health)

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{path: "/metrics", wantCode: http.StatusOK, wantBody: "checkout_orders_created_total 1"},
		{path: "/healthz", wantCode: http.StatusOK, wantBody: `"status":"healthy"`},
		{path: "/livez", wantCode: http.StatusOK, wantBody: "ok"},
		{path: "/readyz", wantCode: http.StatusOK, wantBody: "ready"},
	}

	for _, tt := range tests {
		t.Run(strings.TrimPrefix(tt.path, "/"), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, req)

			require.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestShutdownHTTP_Nil(t *testing.T) {
	// Не должно паниковать
	shutdownHTTP(nil, newTestDependencies(t).Logger)
}
