package order_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-warung/internal/money"
	"github.com/noah-isme/backend-warung/internal/order"
)

func seedOrder(t *testing.T, repo *order.MemoryRepo, id string, status order.Status) order.Order {
	t.Helper()
	o := order.Order{
		ID:           id,
		Number:       1000,
		CustomerName: "Dina",
		PhoneNumber:  "555-0101",
		CreatedAt:    time.Now(),
		Status:       status,
		TotalPaid:    money.MustParse("11.30"),
	}
	stored, inserted, err := repo.Insert(context.Background(), o)
	require.NoError(t, err)
	require.True(t, inserted)
	return stored
}

func newRouter(repo *order.MemoryRepo) http.Handler {
	h := &order.Handler{Repo: repo}
	admin := &order.AdminHandler{Repo: repo}
	r := chi.NewRouter()
	r.Get("/orders/{orderId}", h.Get)
	r.Get("/admin/orders", admin.List)
	r.Patch("/admin/orders/{orderId}/status", admin.PatchStatus)
	return r
}

func TestGetOrder(t *testing.T) {
	repo := order.NewMemoryRepo()
	seedOrder(t, repo, "123_1000", order.StatusNew)
	router := newRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/123_1000", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data order.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "123_1000", body.Data.ID)
	require.Equal(t, int64(1000), body.Data.Number)
}

func TestGetOrderNotFound(t *testing.T) {
	router := newRouter(order.NewMemoryRepo())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminListFiltersByStatus(t *testing.T) {
	repo := order.NewMemoryRepo()
	seedOrder(t, repo, "1_1000", order.StatusNew)
	resolved := seedOrder(t, repo, "2_1001", order.StatusResolved)
	router := newRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders?status=resolved", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []order.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, resolved.ID, body.Data[0].ID)
}

func TestAdminListRejectsUnknownStatus(t *testing.T) {
	router := newRouter(order.NewMemoryRepo())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders?status=shipped", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatchStatusResolvesNewOrder(t *testing.T) {
	repo := order.NewMemoryRepo()
	seedOrder(t, repo, "1_1000", order.StatusNew)
	router := newRouter(repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/admin/orders/1_1000/status", strings.NewReader(`{"status":"resolved"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := repo.Get(context.Background(), "1_1000")
	require.NoError(t, err)
	require.Equal(t, order.StatusResolved, stored.Status)
}

func TestPatchStatusRejectsInvalidTransitions(t *testing.T) {
	repo := order.NewMemoryRepo()
	seedOrder(t, repo, "1_1000", order.StatusResolved)
	router := newRouter(repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/admin/orders/1_1000/status", strings.NewReader(`{"status":"resolved"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/admin/orders/1_1000/status", strings.NewReader(`{"status":"new"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
