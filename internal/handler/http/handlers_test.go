package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreforge/storefront/internal/domain"
)

func doRequest(t *testing.T, env *testEnv, method, path string, headers map[string]string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

// --- Storefront catalog ---

// decodeProducts unwraps the catalog list body, which carries its records
// under the "products" key rather than the generic data envelope.
func decodeProducts(t *testing.T, rec *httptest.ResponseRecorder) []domain.Product {
	t.Helper()
	var body struct {
		Products []domain.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Products
}

func TestProductHandler_List(t *testing.T) {
	env := newTestEnv(t, gpuProduct(), fanProduct())

	rec := doRequest(t, env, http.MethodGet, "/api/v1/products", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Body.String(), `"products"`)
	assert.Len(t, decodeProducts(t, rec), 2)
}

func TestProductHandler_List_Filters(t *testing.T) {
	env := newTestEnv(t, gpuProduct(), fanProduct())

	rec := doRequest(t, env, http.MethodGet, "/api/v1/products?featured=true", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	products := decodeProducts(t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "prod-001", products[0].ID)

	rec = doRequest(t, env, http.MethodGet, "/api/v1/products?type=cooling", nil, "")
	products = decodeProducts(t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "prod-002", products[0].ID)

	rec = doRequest(t, env, http.MethodGet, "/api/v1/products?limit=bogus", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductHandler_GetBySlug(t *testing.T) {
	env := newTestEnv(t, gpuProduct())

	rec := doRequest(t, env, http.MethodGet, "/api/v1/products/vortex-4090", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var product domain.Product
	decodeData(t, rec, &product)
	assert.Equal(t, "prod-001", product.ID)
	assert.Equal(t, []string{"vortex.jpg"}, product.Images)

	rec = doRequest(t, env, http.MethodGet, "/api/v1/products/unknown-slug", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Cart ---

func sessionHeaders() map[string]string {
	return map[string]string{HeaderSessionID: "sess-1"}
}

func TestCartHandler_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env, http.MethodGet, "/api/v1/cart", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_SESSION")
}

func TestCartHandler_AddAndGet(t *testing.T) {
	env := newTestEnv(t, gpuProduct())

	rec := doRequest(t, env, http.MethodPost, "/api/v1/cart/items", sessionHeaders(),
		`{"product_id":"prod-001","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Items     []domain.LineItem `json:"items"`
		ItemCount int               `json:"item_count"`
		Pricing   domain.Breakdown  `json:"pricing"`
	}
	decodeData(t, rec, &view)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.ItemCount)
	assert.Equal(t, 3999.98, view.Pricing.Subtotal)
	assert.Zero(t, view.Pricing.Shipping)

	// The cart survives across requests for the same session.
	rec = doRequest(t, env, http.MethodGet, "/api/v1/cart", sessionHeaders(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &view)
	assert.Equal(t, 2, view.ItemCount)

	// A different session sees an empty cart.
	rec = doRequest(t, env, http.MethodGet, "/api/v1/cart", map[string]string{HeaderSessionID: "other"}, "")
	decodeData(t, rec, &view)
	assert.Empty(t, view.Items)
}

func TestCartHandler_AddUnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env, http.MethodPost, "/api/v1/cart/items", sessionHeaders(),
		`{"product_id":"ghost","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartHandler_UpdateRemoveClear(t *testing.T) {
	env := newTestEnv(t, gpuProduct(), fanProduct())

	doRequest(t, env, http.MethodPost, "/api/v1/cart/items", sessionHeaders(), `{"product_id":"prod-001","quantity":1}`)
	doRequest(t, env, http.MethodPost, "/api/v1/cart/items", sessionHeaders(), `{"product_id":"prod-002","quantity":1}`)

	var view struct {
		Items     []domain.LineItem `json:"items"`
		ItemCount int               `json:"item_count"`
	}

	rec := doRequest(t, env, http.MethodPut, "/api/v1/cart/items/prod-002", sessionHeaders(), `{"quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &view)
	assert.Equal(t, 6, view.ItemCount)

	rec = doRequest(t, env, http.MethodDelete, "/api/v1/cart/items/prod-001", sessionHeaders(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &view)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "prod-002", view.Items[0].ProductID)

	rec = doRequest(t, env, http.MethodDelete, "/api/v1/cart", sessionHeaders(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &view)
	assert.Empty(t, view.Items)
}

// --- Orders ---

func orderBody() string {
	return `{
		"customer": {
			"name": "Ada Lovelace",
			"email": "ada@example.com",
			"address": "12 Analytical Way",
			"city": "London",
			"state": "LDN",
			"zip": "EC1A",
			"country": "UK"
		},
		"items": [
			{"product_id": "prod-001", "name": "Vortex 4090", "unit_price": 1999.99, "quantity": 1}
		]
	}`
}

func TestOrderHandler_Create(t *testing.T) {
	env := newTestEnv(t, gpuProduct())

	rec := doRequest(t, env, http.MethodPost, "/api/v1/orders", nil, orderBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	var order domain.Order
	decodeData(t, rec, &order)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, 1999.99, order.Subtotal)
	assert.Zero(t, order.Shipping)
	assert.Equal(t, 160.0, order.Tax)
	assert.Equal(t, 2159.99, order.Total)
	assert.Regexp(t, `^ORD-\d+-[0-9A-F]{9}$`, order.Number)
}

func TestOrderHandler_Create_IdempotencyReplay(t *testing.T) {
	env := newTestEnv(t, gpuProduct())
	headers := map[string]string{HeaderIdempotencyKey: "key-123"}

	first := doRequest(t, env, http.MethodPost, "/api/v1/orders", headers, orderBody())
	require.Equal(t, http.StatusCreated, first.Code)

	second := doRequest(t, env, http.MethodPost, "/api/v1/orders", headers, orderBody())
	require.Equal(t, http.StatusOK, second.Code)

	var a, b domain.Order
	decodeData(t, first, &a)
	decodeData(t, second, &b)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, a.Number, b.Number)
	assert.Len(t, env.orders.orders, 1)
}

func TestOrderHandler_Create_ClearsSessionCart(t *testing.T) {
	env := newTestEnv(t, gpuProduct())

	doRequest(t, env, http.MethodPost, "/api/v1/cart/items", sessionHeaders(), `{"product_id":"prod-001","quantity":1}`)
	require.NotEmpty(t, env.carts.carts["sess-1"])

	rec := doRequest(t, env, http.MethodPost, "/api/v1/orders", sessionHeaders(), orderBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Empty(t, env.carts.carts["sess-1"])
}

func TestOrderHandler_Create_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env, http.MethodPost, "/api/v1/orders", nil,
		`{"customer":{"name":"A","email":"bad"},"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestOrderHandler_OrderPriceSurvivesRepricing(t *testing.T) {
	env := newTestEnv(t, gpuProduct())

	createRec := doRequest(t, env, http.MethodPost, "/api/v1/orders", nil, orderBody())
	require.Equal(t, http.StatusCreated, createRec.Code)

	var order domain.Order
	decodeData(t, createRec, &order)
	require.Len(t, order.Items, 1)
	require.Equal(t, 1999.99, order.Items[0].UnitPrice)

	// Reprice the live catalog record after the order is placed.
	rec := doRequest(t, env, http.MethodPut, "/api/v1/admin/products/prod-001", adminHeaders(),
		`{"name":"Vortex 4090","slug":"vortex-4090","price":2499.99,"type":"gpu","images":"[]"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// The persisted order still carries the price frozen at purchase time.
	rec = doRequest(t, env, http.MethodGet, "/api/v1/orders/"+order.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var persisted domain.Order
	decodeData(t, rec, &persisted)
	require.Len(t, persisted.Items, 1)
	assert.Equal(t, 1999.99, persisted.Items[0].UnitPrice)
	assert.Equal(t, 1999.99, persisted.Subtotal)
}

func TestOrderHandler_ListForCustomer(t *testing.T) {
	env := newTestEnv(t, gpuProduct())

	doRequest(t, env, http.MethodPost, "/api/v1/orders", nil, orderBody())

	rec := doRequest(t, env, http.MethodGet, "/api/v1/user/orders",
		map[string]string{HeaderUserEmail: "ada@example.com"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []domain.Order
	decodeData(t, rec, &orders)
	assert.Len(t, orders, 1)

	rec = doRequest(t, env, http.MethodGet, "/api/v1/user/orders",
		map[string]string{HeaderUserEmail: "stranger@example.com"}, "")
	decodeData(t, rec, &orders)
	assert.Empty(t, orders)

	rec = doRequest(t, env, http.MethodGet, "/api/v1/user/orders", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Admin surface ---

func adminHeaders() map[string]string {
	return map[string]string{HeaderAdminID: "admin-1"}
}

func TestAdminHandler_RequiresAdminIdentity(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env, http.MethodGet, "/api/v1/admin/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_ADMIN")
}

func TestAdminHandler_ListProducts_ContentRange(t *testing.T) {
	seed := make([]domain.Product, 0, 25)
	for i := 1; i <= 25; i++ {
		p := gpuProduct()
		p.ID = fmt.Sprintf("prod-%03d", i)
		p.Slug = fmt.Sprintf("gpu-%03d", i)
		seed = append(seed, p)
	}
	env := newTestEnv(t, seed...)

	rec := doRequest(t, env, http.MethodGet, `/api/v1/admin/products?range={"from":10,"to":19}`, adminHeaders(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10-19/25", rec.Header().Get("Content-Range"))

	// Bare array, not an envelope.
	var records []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 10)

	// Images travel in their flat string form on the admin surface.
	images, ok := records[0]["images"].(string)
	require.True(t, ok)
	assert.Equal(t, `["vortex.jpg"]`, images)
}

func TestAdminHandler_ListProducts_LastShortPage(t *testing.T) {
	seed := make([]domain.Product, 0, 25)
	for i := 1; i <= 25; i++ {
		p := gpuProduct()
		p.ID = fmt.Sprintf("prod-%03d", i)
		p.Slug = fmt.Sprintf("gpu-%03d", i)
		seed = append(seed, p)
	}
	env := newTestEnv(t, seed...)

	rec := doRequest(t, env, http.MethodGet, `/api/v1/admin/products?range={"from":20,"to":29}`, adminHeaders(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "20-24/25", rec.Header().Get("Content-Range"))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 5)
}

func TestAdminHandler_CreateProduct_StringImages(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env, http.MethodPost, "/api/v1/admin/products", adminHeaders(),
		`{"name":"New GPU","slug":"new-gpu","price":999.99,"type":"gpu","images":"[\"a.jpg\",\"b.jpg\"]"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var record map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, `["a.jpg","b.jpg"]`, record["images"])

	// The storefront surface decodes the same product back to an array.
	slugRec := doRequest(t, env, http.MethodGet, "/api/v1/products/new-gpu", nil, "")
	require.Equal(t, http.StatusOK, slugRec.Code)

	var product domain.Product
	decodeData(t, slugRec, &product)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, product.Images)
}

func TestAdminHandler_UpdateAndDeleteProduct(t *testing.T) {
	env := newTestEnv(t, gpuProduct())

	rec := doRequest(t, env, http.MethodPut, "/api/v1/admin/products/prod-001", adminHeaders(),
		`{"name":"Vortex 4090 Ti","slug":"vortex-4090","price":2199.99,"type":"gpu","images":"[]"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var record map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "Vortex 4090 Ti", record["name"])

	rec = doRequest(t, env, http.MethodDelete, "/api/v1/admin/products/prod-001", adminHeaders(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, env, http.MethodDelete, "/api/v1/admin/products/prod-001", adminHeaders(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminHandler_OrderStatusTransitions(t *testing.T) {
	env := newTestEnv(t, gpuProduct())

	createRec := doRequest(t, env, http.MethodPost, "/api/v1/orders", nil, orderBody())
	require.Equal(t, http.StatusCreated, createRec.Code)

	var order domain.Order
	decodeData(t, createRec, &order)

	// pending → processing is allowed.
	rec := doRequest(t, env, http.MethodPut, "/api/v1/admin/orders/"+order.ID, adminHeaders(), `{"status":"processing"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)

	// processing → delivered skips shipped and is rejected.
	rec = doRequest(t, env, http.MethodPut, "/api/v1/admin/orders/"+order.ID, adminHeaders(), `{"status":"delivered"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TRANSITION")

	// Unknown status value is a bad request.
	rec = doRequest(t, env, http.MethodPut, "/api/v1/admin/orders/"+order.ID, adminHeaders(), `{"status":"refunded"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_ListOrders(t *testing.T) {
	env := newTestEnv(t, gpuProduct())

	doRequest(t, env, http.MethodPost, "/api/v1/orders", nil, orderBody())

	rec := doRequest(t, env, http.MethodGet, `/api/v1/admin/orders?filter={"status":"pending"}`, adminHeaders(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0-0/1", rec.Header().Get("Content-Range"))

	rec = doRequest(t, env, http.MethodGet, `/api/v1/admin/orders?filter={"status":"shipped"}`, adminHeaders(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0-0/0", rec.Header().Get("Content-Range"))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Empty(t, records)
}

// --- Health ---

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)

	rec := doRequest(t, env, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, env, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
