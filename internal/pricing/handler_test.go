package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ordelix/ordelix/internal/masterdata"
)

type fakeCatalog struct {
	products map[string]masterdata.Product
}

func (c fakeCatalog) GetProduct(ctx context.Context, id string) (masterdata.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return masterdata.Product{}, masterdata.ErrProductNotFound
	}
	return p, nil
}

func (c fakeCatalog) ListMaterials(ctx context.Context) ([]masterdata.Material, error) {
	return nil, nil
}

func TestHandlerQuote(t *testing.T) {
	catalog := fakeCatalog{products: map[string]masterdata.Product{"p1": {ID: "p1", LaborHours: 2, Complexity: 3}}}
	r := chi.NewRouter()
	NewHandler(nil, NewEngine(WithClock(fixedClock(june))), catalog).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pricing?productId=p1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.InDelta(t, 104.0, body.Recommended.Price, 0.001)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pricing", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pricing?productId=zz", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
