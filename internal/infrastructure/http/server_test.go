package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mrops-br/storefront-api/internal/app/dto"
	"github.com/mrops-br/storefront-api/internal/app/service"
	"github.com/mrops-br/storefront-api/internal/domain"
	"github.com/mrops-br/storefront-api/internal/infrastructure/config"
	"github.com/mrops-br/storefront-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/storefront-api/internal/infrastructure/http/response"
	"github.com/mrops-br/storefront-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/storefront-api/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `{
  "products": [
    {"id": 1, "slug": "moletom-never-stop-learning", "title": "Moletom Never Stop Learning", "price": 129, "image": "/1.png", "description": "d", "featured": true},
    {"id": 2, "slug": "moletom-java", "title": "Moletom Java", "price": 129, "image": "/2.png", "description": "d", "featured": true},
    {"id": 3, "slug": "camiseta-dowhile-2022", "title": "Camiseta DoWhile 2022", "price": 69.9, "image": "/3.png", "description": "d", "featured": false}
  ]
}`

type testServer struct {
	handler http.Handler
	cart    *domain.Cart
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: "0"},
		OTLP:    config.OTLPConfig{ServiceName: "storefront-api", Environment: "test"},
		Metrics: config.MetricsConfig{DurationMilliseconds: true},
	}

	telem, err := telemetry.NewNoOpTelemetry(&cfg.OTLP, slog.LevelError)
	require.NoError(t, err)
	t.Cleanup(func() { _ = telem.Shutdown(context.Background()) })

	tracer := telem.TracerProvider.Tracer("test")
	meter := telem.MeterProvider.Meter("test")
	logger := telem.Logger

	repo, err := memory.NewProductRepositoryFromJSON([]byte(testCatalog), tracer, logger, memory.Options{})
	require.NoError(t, err)

	cart := domain.NewCart()
	productService := service.NewProductService(repo, tracer, meter, logger)
	cartService := service.NewCartService(cart, repo, tracer, meter, logger)
	t.Cleanup(func() { _ = cartService.Close() })

	server := NewServer(cfg,
		handler.NewProductHandler(productService, logger),
		handler.NewCartHandler(cartService, logger),
		logger,
		telem,
	)

	return &testServer{handler: server.Handler(), cart: cart}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestServer_ListProducts(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	products := decode[[]dto.ProductResponse](t, rec)
	require.Len(t, products, 3)
	assert.Equal(t, "moletom-never-stop-learning", products[0].Slug)
	assert.Equal(t, 69.9, products[2].Price)
}

func TestServer_ProductWireFormat(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/products/moletom-java", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"id": 2,
		"slug": "moletom-java",
		"title": "Moletom Java",
		"price": 129,
		"image": "/2.png",
		"description": "d",
		"featured": true
	}`, rec.Body.String())
}

func TestServer_ProductNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/products/does-not-exist", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decode[response.ErrorResponse](t, rec)
	assert.Equal(t, "not_found", body.Error)
	assert.Equal(t, domain.ErrProductNotFound.Error(), body.Message)
}

func TestServer_Featured(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/products/featured", "")
	require.Equal(t, http.StatusOK, rec.Code)

	products := decode[[]dto.ProductResponse](t, rec)
	require.Len(t, products, 2)
	for _, p := range products {
		assert.True(t, p.Featured)
	}
}

func TestServer_Search(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		ids    []int
	}{
		{name: "case insensitive", path: "/api/products/search?q=MOLETOM", status: http.StatusOK, ids: []int{1, 2}},
		{name: "substring", path: "/api/products/search?q=while", status: http.StatusOK, ids: []int{3}},
		{name: "no match", path: "/api/products/search?q=xyz", status: http.StatusOK, ids: []int{}},
		{name: "empty query matches all", path: "/api/products/search?q=", status: http.StatusOK, ids: []int{1, 2, 3}},
		{name: "missing query", path: "/api/products/search", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, "")
			require.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				return
			}

			products := decode[[]dto.ProductResponse](t, rec)
			ids := make([]int, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestServer_AddToCart(t *testing.T) {
	s := newTestServer(t)

	for _, id := range []string{"1", "3", "1"} {
		rec := s.do(t, http.MethodPost, "/api/cart/items", `{"productId": `+id+`}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	cart := decode[dto.CartResponse](t, rec)
	assert.Equal(t, s.cart.ID(), cart.ID)
	assert.Equal(t, 2, cart.Count)
	assert.Equal(t, 3, cart.Quantity)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 1, cart.Items[0].ProductID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 3, cart.Items[1].ProductID)
	assert.Equal(t, 1, cart.Items[1].Quantity)
	assert.Equal(t, 327.9, cart.Subtotal)

	rec = s.do(t, http.MethodGet, "/api/cart/count", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count": 2, "quantity": 3}`, rec.Body.String())
}

func TestServer_AddToCartRejectsBadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		detail string
	}{
		{name: "missing product id", body: `{}`, status: http.StatusBadRequest, detail: "productId"},
		{name: "negative product id", body: `{"productId": -4}`, status: http.StatusBadRequest, detail: "productId"},
		{name: "malformed json", body: `{"productId":`, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"productId": 1, "quantity": 3}`, status: http.StatusBadRequest},
		{name: "two json objects", body: `{"productId":1}{"productId":2}`, status: http.StatusBadRequest},
		{name: "unknown product", body: `{"productId": 99}`, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/cart/items", tt.body)
			require.Equal(t, tt.status, rec.Code)

			body := decode[response.ErrorResponse](t, rec)
			if tt.detail != "" {
				assert.Contains(t, body.Details, tt.detail)
			}
		})
	}

	assert.Empty(t, s.cart.Items())
}

func TestServer_RemoveAndClearCart(t *testing.T) {
	s := newTestServer(t)
	s.cart.AddToCart(1)
	s.cart.AddToCart(2)

	rec := s.do(t, http.MethodDelete, "/api/cart/items/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []domain.LineItem{{ProductID: 2, Quantity: 1}}, s.cart.Items())

	rec = s.do(t, http.MethodDelete, "/api/cart/items/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/cart/items/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/cart", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.cart.Items())
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	s.do(t, http.MethodPost, "/api/cart/items", `{"productId": 1}`)

	rec = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cart_operations")
}
