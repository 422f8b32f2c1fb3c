package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ordelix/ordelix/internal/shared"
)

type memoryRepo struct {
	current *Settings
}

func (r *memoryRepo) Get(ctx context.Context) (Settings, error) {
	if r.current == nil {
		return Default(), nil
	}
	return *r.current, nil
}

func (r *memoryRepo) Save(ctx context.Context, s Settings) error {
	r.current = &s
	return nil
}

type memoryAudit struct {
	logs []shared.AuditLog
}

func (a *memoryAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append([]shared.AuditLog{log}, a.logs...)
	return nil
}

func (a *memoryAudit) List(ctx context.Context) ([]shared.AuditLog, error) {
	return a.logs, nil
}

func TestUpdateMergesSuppliedKeys(t *testing.T) {
	repo := &memoryRepo{}
	audit := &memoryAudit{}
	svc := NewService(repo, audit, nil)
	ctx := context.Background()

	initial, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, Default(), initial)
	require.True(t, initial.HasBanner())

	empty := ""
	demo := false
	updated, err := svc.Update(ctx, UpdateRequest{BannerText: &empty, DemoMode: &demo})
	require.NoError(t, err)
	require.False(t, updated.HasBanner())
	require.False(t, updated.DemoMode)
	require.True(t, updated.FeatureApprovals)

	require.Len(t, audit.logs, 1)
	require.Equal(t, "Settings Updated", audit.logs[0].Action)
	require.Equal(t, "System settings updated: bannerText, demoMode", audit.logs[0].Details)
}

func TestHandlerSettingsAndAuditLogs(t *testing.T) {
	audit := &memoryAudit{}
	svc := NewService(&memoryRepo{}, audit, nil)
	r := chi.NewRouter()
	NewHandler(nil, svc, audit).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/settings", strings.NewReader(`{"bannerText":"Sale week"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Settings Settings `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Sale week", body.Settings.BannerText)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit-logs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "System settings updated: bannerText")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/settings", strings.NewReader(`nope`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
