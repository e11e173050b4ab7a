package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/retail-dashboard/ledger-service/internal/domain"
	"github.com/retail-dashboard/ledger-service/internal/service"
)

type LedgerHandler struct {
	ledger *service.LedgerService
	logger *zap.Logger
}

func NewLedgerHandler(ledger *service.LedgerService, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledger: ledger,
		logger: logger,
	}
}

func (h *LedgerHandler) ListProducts(c *gin.Context) {
	products, err := h.ledger.ListCatalog(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch products",
		})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *LedgerHandler) GetProduct(c *gin.Context) {
	// A non-numeric id can never match a product, same as an unknown
	// one.
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	product, err := h.ledger.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Error("Failed to get product", zap.Int("product_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch product",
		})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *LedgerHandler) CreateProduct(c *gin.Context) {
	var req domain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	product, err := h.ledger.CreateProduct(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		h.logger.Error("Failed to create product", zap.String("name", req.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create product",
		})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *LedgerHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req domain.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	product, err := h.ledger.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Error("Failed to update product", zap.Int("product_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update product",
		})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *LedgerHandler) ListReviews(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		// Matches nothing, like any unknown product id.
		c.JSON(http.StatusOK, []domain.Review{})
		return
	}

	reviews, err := h.ledger.ListReviews(c.Request.Context(), productID)
	if err != nil {
		h.logger.Error("Failed to list reviews", zap.Int("product_id", productID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch reviews",
		})
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *LedgerHandler) CreateReview(c *gin.Context) {
	var req domain.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	review, err := h.ledger.CreateReview(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		h.logger.Error("Failed to create review", zap.Int("product_id", req.ProductID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create review",
		})
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *LedgerHandler) Checkout(c *gin.Context) {
	var req domain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid checkout data"})
		return
	}

	result, err := h.ledger.ApplyCheckout(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid checkout data"})
			return
		}
		h.logger.Error("Checkout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process checkout",
		})
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *LedgerHandler) DashboardData(c *gin.Context) {
	data, err := h.ledger.DashboardData(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard data", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch dashboard data",
		})
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *LedgerHandler) Restock(c *gin.Context) {
	var req domain.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid restock data"})
		return
	}

	if err := h.ledger.ApplyRestock(c.Request.Context(), req.Updates); err != nil {
		h.logger.Error("Restock failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to restock",
		})
		return
	}
	c.JSON(http.StatusOK, domain.RestockResponse{Success: true, Message: "Stock updated"})
}

func (h *LedgerHandler) Analytics(c *gin.Context) {
	analytics, err := h.ledger.ComputeAnalytics(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute analytics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch analytics",
		})
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func (h *LedgerHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
