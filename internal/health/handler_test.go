package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestHandlerReportAndRateLimit(t *testing.T) {
	src := &fakeSources{}
	svc := NewService(src, src, src, testPricer(), nil, nil)
	r := chi.NewRouter()
	NewHandler(nil, svc, 2).MountRoutes(r)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var report Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		require.Equal(t, 65, report.Score)
		require.Len(t, report.Suggestions, 1)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}
