package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/middleware"
	productdomain "github.com/tair/retail-core/internal/product/domain"
	"github.com/tair/retail-core/internal/sale/repository"
	"github.com/tair/retail-core/internal/sale/usecase/command"
	"github.com/tair/retail-core/internal/sale/usecase/query"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
	tenantrepository "github.com/tair/retail-core/internal/tenant/repository"
)

func uintPtr(v uint) *uint { return &v }

func newTestServer(store *repository.MemoryStore) *mux.Router {
	tenants := tenantrepository.NewMemoryTenantRepository()
	tenants.Seed(tenantdomain.Tenant{ID: 1, Name: "Acme Retail", Status: tenantdomain.StatusActive})
	policy := tenantdomain.NewPolicy(tenants)

	handler := NewSaleHandler(
		command.NewCreateSaleHandler(store, policy, nil),
		command.NewCancelSaleHandler(store, nil),
		query.NewGetSaleHandler(store),
		query.NewListSalesHandler(store),
	)

	router := mux.NewRouter()
	handler.RegisterRoutes(router.PathPrefix("/api").Subrouter())
	return router
}

func seedStore() *repository.MemoryStore {
	store := repository.NewMemoryStore()
	store.SeedProduct(productdomain.Product{
		ID:       1,
		TenantID: 1,
		Name:     "Product",
		SKU:      "SKU-1",
		Price:    decimal.RequireFromString("10.00"),
		StockQty: 5,
	})
	return store
}

func doRequest(router *mux.Router, method, target string, body interface{}, actor *identity.Actor) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if actor != nil {
		req = req.WithContext(middleware.WithActor(context.Background(), *actor))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCreateSaleEndpoint(t *testing.T) {
	store := seedStore()
	router := newTestServer(store)
	seller := identity.Actor{ID: 7, Role: identity.RoleSeller, TenantID: uintPtr(1)}

	rec := doRequest(router, http.MethodPost, "/api/sales", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": 1, "quantity": 3}},
	}, &seller)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Regexp(t, `^SALE-\d{4}-`, data["reference"])
	assert.Equal(t, "COMPLETED", data["status"])

	assert.Equal(t, 2, store.ProductByID(1).StockQty)
}

func TestCreateSaleEndpointInsufficientStock(t *testing.T) {
	store := seedStore()
	router := newTestServer(store)
	seller := identity.Actor{ID: 7, Role: identity.RoleSeller, TenantID: uintPtr(1)}

	rec := doRequest(router, http.MethodPost, "/api/sales", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": 1, "quantity": 9}},
	}, &seller)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "available 5")
	assert.Contains(t, resp.Error, "requested 9")
}

func TestCreateSaleEndpointRequiresActor(t *testing.T) {
	router := newTestServer(seedStore())

	rec := doRequest(router, http.MethodPost, "/api/sales", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": 1, "quantity": 1}},
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateSaleEndpointForeignTenant(t *testing.T) {
	router := newTestServer(seedStore())
	outsider := identity.Actor{ID: 8, Role: identity.RoleSeller, TenantID: uintPtr(2)}

	rec := doRequest(router, http.MethodPost, "/api/sales", map[string]interface{}{
		"tenant_id": 1,
		"items":     []map[string]interface{}{{"product_id": 1, "quantity": 1}},
	}, &outsider)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateSaleEndpointBadBody(t *testing.T) {
	router := newTestServer(seedStore())
	seller := identity.Actor{ID: 7, Role: identity.RoleSeller, TenantID: uintPtr(1)}

	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewBufferString("{not json"))
	req = req.WithContext(middleware.WithActor(context.Background(), seller))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelSaleEndpoint(t *testing.T) {
	store := seedStore()
	router := newTestServer(store)
	seller := identity.Actor{ID: 7, Role: identity.RoleSeller, TenantID: uintPtr(1)}

	created := doRequest(router, http.MethodPost, "/api/sales", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": 1, "quantity": 3}},
	}, &seller)
	require.Equal(t, http.StatusCreated, created.Code)

	data := decodeResponse(t, created).Data.(map[string]interface{})
	saleID := int(data["id"].(float64))

	rec := doRequest(router, http.MethodPost, fmt.Sprintf("/api/sales/%d/cancel", saleID), nil, &seller)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, store.ProductByID(1).StockQty)

	// Second cancel is rejected
	rec = doRequest(router, http.MethodPost, fmt.Sprintf("/api/sales/%d/cancel", saleID), nil, &seller)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSaleEndpointNotFound(t *testing.T) {
	router := newTestServer(seedStore())
	seller := identity.Actor{ID: 7, Role: identity.RoleSeller, TenantID: uintPtr(1)}

	rec := doRequest(router, http.MethodGet, "/api/sales/42", nil, &seller)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSalesEndpoint(t *testing.T) {
	store := seedStore()
	router := newTestServer(store)
	seller := identity.Actor{ID: 7, Role: identity.RoleSeller, TenantID: uintPtr(1)}

	created := doRequest(router, http.MethodPost, "/api/sales", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": 1, "quantity": 1}},
	}, &seller)
	require.Equal(t, http.StatusCreated, created.Code)

	rec := doRequest(router, http.MethodGet, "/api/sales", nil, &seller)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	sales, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, sales, 1)
}
