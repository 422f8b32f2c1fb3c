package masterdata

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (http.Handler, *memoryRepo) {
	svc, repo, _ := newTestService()
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)
	return r, repo
}

func TestHandlerCreateAndFetchProduct(t *testing.T) {
	router, _ := newTestRouter()

	body := `{"name":"Candle","laborHours":1,"complexity":2,"materials":[{"materialId":"wax","quantityRequired":3}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "Candle", created.Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"quantityRequired":3`)
}

func TestHandlerErrors(t *testing.T) {
	router, repo := newTestRouter()
	repo.materials["m1"] = Material{ID: "m1", Name: "Wax", Quantity: 5}

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "unknown product", method: http.MethodGet, path: "/products/zzz", status: http.StatusNotFound},
		{name: "malformed body", method: http.MethodPost, path: "/products", body: "{", status: http.StatusBadRequest},
		{name: "missing name", method: http.MethodPost, path: "/products", body: `{"laborHours":1}`, status: http.StatusBadRequest},
		{name: "zero restock", method: http.MethodPost, path: "/materials/m1/restock", body: `{"quantity":0}`, status: http.StatusBadRequest},
		{name: "restock unknown", method: http.MethodPost, path: "/materials/zz/restock", body: `{"quantity":2}`, status: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
			require.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestHandlerRestock(t *testing.T) {
	router, repo := newTestRouter()
	repo.materials["m1"] = Material{ID: "m1", Name: "Wax", Quantity: 5}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/materials/m1/restock", strings.NewReader(`{"quantity":7}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 12, repo.materials["m1"].Quantity)
}
