package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retail-dashboard/ledger-service/internal/domain"
	"github.com/retail-dashboard/ledger-service/internal/repository"
	"github.com/retail-dashboard/ledger-service/internal/sentiment"
	"github.com/retail-dashboard/ledger-service/internal/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.LedgerService, repository.ProductStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products, reviews, orders, err := repository.NewFileStores(t.TempDir())
	require.NoError(t, err)

	ledger := service.NewLedgerService(products, reviews, orders, sentiment.NewKeywordClassifier(), zap.NewNop())
	h := NewLedgerHandler(ledger, zap.NewNop())

	router := gin.New()
	api := router.Group("/api")
	{
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.POST("/products", h.CreateProduct)
		api.PUT("/products/:id", h.UpdateProduct)
		api.GET("/reviews/:productId", h.ListReviews)
		api.POST("/reviews", h.CreateReview)
		api.POST("/checkout", h.Checkout)
		api.GET("/dashboard-data", h.DashboardData)
		api.POST("/restock", h.Restock)
		api.GET("/analytics", h.Analytics)
		api.GET("/health", h.Health)
	}
	return router, ledger, products
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func seedCatalog(t *testing.T, store repository.ProductStore, products ...domain.Product) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), products))
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotEmpty(t, body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestListProducts(t *testing.T) {
	router, _, products := newTestRouter(t)
	seedCatalog(t, products,
		domain.Product{ID: 1, Name: "Mug", Stock: 4},
		domain.Product{ID: 2, Name: "Lamp", Stock: 9},
	)

	rr := doJSON(t, router, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got []domain.RatedProduct
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Mug", got[0].Name)
	assert.Equal(t, 0.0, got[0].AvgRating)
}

func TestGetProduct(t *testing.T) {
	router, _, products := newTestRouter(t)
	seedCatalog(t, products, domain.Product{ID: 1, Name: "Mug"})

	rr := doJSON(t, router, http.MethodGet, "/api/products/1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/products/42", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/products/abc", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateProduct(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/products", gin.H{
		"name":     "Desk Lamp",
		"price":    24.99,
		"category": "home",
		"stock":    10,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var created domain.Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, 10, created.Stock)
	assert.NotEmpty(t, created.Image)
}

func TestCreateProductMissingFields(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/products", gin.H{
		"name":  "Desk Lamp",
		"price": 24.99,
		// category and stock missing
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateProductZeroStockAllowed(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/products", gin.H{
		"name":     "Desk Lamp",
		"price":    24.99,
		"category": "home",
		"stock":    0,
	})
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestUpdateProduct(t *testing.T) {
	router, _, products := newTestRouter(t)
	seedCatalog(t, products, domain.Product{ID: 1, Name: "Mug", Stock: 4, Price: 7.5})

	rr := doJSON(t, router, http.MethodPut, "/api/products/1", gin.H{"stock": 80})
	require.Equal(t, http.StatusOK, rr.Code)

	var updated domain.Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, 80, updated.Stock)
	assert.Equal(t, 7.5, updated.Price)

	rr = doJSON(t, router, http.MethodPut, "/api/products/42", gin.H{"stock": 1})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCheckout(t *testing.T) {
	router, _, products := newTestRouter(t)
	seedCatalog(t, products, domain.Product{ID: 1, Name: "Mug", Stock: 10, Price: 7.5})

	rr := doJSON(t, router, http.MethodPost, "/api/checkout", gin.H{
		"customer": gin.H{"name": "Ada"},
		"items":    []gin.H{{"id": 1, "quantity": 2, "price": 7.5}},
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp domain.CheckoutResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.OrderID)
	assert.Equal(t, 2, resp.TotalItems)
}

func TestCheckoutRejectsEmptyItems(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/checkout", gin.H{
		"customer": gin.H{"name": "Ada"},
		"items":    []gin.H{},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/api/checkout", gin.H{
		"items": []gin.H{{"id": 1, "quantity": 1, "price": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCheckoutRejectsNonPositiveQuantity(t *testing.T) {
	router, ledger, products := newTestRouter(t)
	seedCatalog(t, products, domain.Product{ID: 1, Name: "Mug", Stock: 10, Sales: 2, Price: 7.5})

	for _, qty := range []int{0, -4} {
		rr := doJSON(t, router, http.MethodPost, "/api/checkout", gin.H{
			"customer": gin.H{"name": "Ada"},
			"items":    []gin.H{{"id": 1, "quantity": qty, "price": 7.5}},
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}

	p, err := ledger.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)
	assert.Equal(t, 2, p.Sales)
}

func TestReviews(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/reviews", gin.H{
		"productId": 1,
		"rating":    5,
		"comment":   "excellent service",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/reviews/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var reviews []domain.Review
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)

	rr = doJSON(t, router, http.MethodGet, "/api/reviews/2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reviews))
	assert.Empty(t, reviews)
}

func TestCreateReviewValidation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/reviews", gin.H{
		"productId": 1,
		"comment":   "no rating",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/api/reviews", gin.H{
		"productId": 1,
		"rating":    9,
		"comment":   "out of range",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRestock(t *testing.T) {
	router, ledger, products := newTestRouter(t)
	seedCatalog(t, products, domain.Product{ID: 1, Name: "Mug", Stock: 4})

	rr := doJSON(t, router, http.MethodPost, "/api/restock", gin.H{
		"updates": []gin.H{{"id": 1, "stock": 80}},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	p, err := ledger.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 80, p.Stock)
}

func TestRestockRejectsNonArrayUpdates(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/restock", gin.H{"updates": "all of them"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDashboardData(t *testing.T) {
	router, _, products := newTestRouter(t)
	seedCatalog(t, products, domain.Product{ID: 1, Name: "Mug"})

	rr := doJSON(t, router, http.MethodGet, "/api/dashboard-data", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var data domain.DashboardData
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &data))
	assert.Len(t, data.Products, 1)
	assert.NotNil(t, data.Reviews)
}

func TestAnalytics(t *testing.T) {
	router, _, products := newTestRouter(t)
	seedCatalog(t, products,
		domain.Product{ID: 1, Name: "Mug", Stock: 10, Sales: 3},
		domain.Product{ID: 2, Name: "Lamp", Stock: 50, Sales: 1},
	)

	rr := doJSON(t, router, http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got domain.Analytics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 2, got.TotalProducts)
	assert.Equal(t, 4, got.TotalSales)
	assert.Equal(t, 1, got.LowStockItems)
}
