package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retail-dashboard/ledger-service/internal/domain"
	"github.com/retail-dashboard/ledger-service/internal/repository"
	"github.com/retail-dashboard/ledger-service/internal/sentiment"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// LowStockThreshold flags products for the analytics low-stock count
// and for stock.low events.
const LowStockThreshold = 30

// EventPublisher receives ledger notifications after a mutation has
// been persisted. Implementations must not block the request path.
type EventPublisher interface {
	OrderPlaced(order domain.Order, itemsDecremented int)
	StockLow(product domain.Product)
}

// LedgerService owns the authoritative catalog state. Every mutation
// runs its whole read-modify-persist span under mu so concurrent
// checkouts never decrement from the same stale read; readers take the
// read lock and observe consistent snapshots.
type LedgerService struct {
	mu sync.RWMutex

	products repository.ProductStore
	reviews  repository.ReviewStore
	orders   repository.OrderStore

	classifier sentiment.Classifier
	publisher  EventPublisher
	logger     *zap.Logger
}

func NewLedgerService(
	products repository.ProductStore,
	reviews repository.ReviewStore,
	orders repository.OrderStore,
	classifier sentiment.Classifier,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		products:   products,
		reviews:    reviews,
		orders:     orders,
		classifier: classifier,
		logger:     logger,
	}
}

// SetPublisher wires an optional event publisher. Must be called
// before the service starts handling requests.
func (s *LedgerService) SetPublisher(p EventPublisher) {
	s.publisher = p
}

// ListCatalog returns every product annotated with its average review
// rating.
func (s *LedgerService) ListCatalog(ctx context.Context) ([]domain.RatedProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.products.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	reviews, err := s.reviews.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	return rateProducts(products, reviews), nil
}

// GetProduct returns the product with the given id.
func (s *LedgerService) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.products.Load(ctx)
	if err != nil {
		return domain.Product{}, fmt.Errorf("load catalog: %w", err)
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ErrProductNotFound
}

// CreateProduct appends a new product to the catalog. The id is one
// past the highest existing id, starting at 1 for an empty catalog.
func (s *LedgerService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	if req.Name == "" || req.Price == 0 || req.Category == "" || req.Stock == nil {
		return domain.Product{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.products.Load(ctx)
	if err != nil {
		return domain.Product{}, fmt.Errorf("load catalog: %w", err)
	}

	maxID := 0
	for _, p := range products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	image := req.Image
	if image == "" {
		image = "https://via.placeholder.com/250x250?text=" + url.QueryEscape(req.Name)
	}

	product := domain.Product{
		ID:          maxID + 1,
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       *req.Stock,
		Sales:       0,
		Description: req.Description,
		Image:       image,
	}

	products = append(products, product)
	if err := s.products.Save(ctx, products); err != nil {
		return domain.Product{}, fmt.Errorf("persist catalog: %w", err)
	}

	s.logger.Info("Product created",
		zap.Int("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Int("initial_stock", product.Stock))

	return product, nil
}

// UpdateProduct overwrites only the supplied fields. Negative values
// are accepted unchecked; the storefront has always trusted the admin
// form here.
func (s *LedgerService) UpdateProduct(ctx context.Context, id int, req domain.UpdateProductRequest) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.products.Load(ctx)
	if err != nil {
		return domain.Product{}, fmt.Errorf("load catalog: %w", err)
	}

	idx := -1
	for i, p := range products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.Product{}, ErrProductNotFound
	}

	if req.Stock != nil {
		products[idx].Stock = *req.Stock
	}
	if req.Price != nil {
		products[idx].Price = *req.Price
	}

	if err := s.products.Save(ctx, products); err != nil {
		return domain.Product{}, fmt.Errorf("persist catalog: %w", err)
	}

	s.notifyStockLow(products[idx])
	return products[idx], nil
}

// ApplyRestock overwrites stock to the given absolute values. Unknown
// product ids are skipped; the catalog is persisted once after all
// entries are applied.
func (s *LedgerService) ApplyRestock(ctx context.Context, updates []domain.StockUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.products.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	applied := 0
	for _, u := range updates {
		for i := range products {
			if products[i].ID == u.ProductID {
				products[i].Stock = u.Stock
				applied++
				break
			}
		}
	}

	if err := s.products.Save(ctx, products); err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}

	s.logger.Info("Restock applied",
		zap.Int("requested", len(updates)),
		zap.Int("applied", applied))
	return nil
}

// ApplyCheckout decrements stock and bumps sales for every known item,
// then appends the order. Insufficient stock clamps to zero instead of
// rejecting the purchase; that keeps the storefront's behavior while
// the lock guarantees two concurrent checkouts serialize their
// decrements. The catalog and the order log are persisted separately;
// a failure between the two leaves decremented stock without an order
// record and is surfaced to the caller.
func (s *LedgerService) ApplyCheckout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	if len(req.Items) == 0 || req.Customer == nil {
		return domain.CheckoutResponse{}, ErrInvalidInput
	}
	// A non-positive quantity would raise stock and shrink sales,
	// which sales never does.
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return domain.CheckoutResponse{}, ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.products.Load(ctx)
	if err != nil {
		return domain.CheckoutResponse{}, fmt.Errorf("load catalog: %w", err)
	}

	totalItems := 0
	// Keyed by id so an order with two lines for the same product
	// yields one notification carrying the final state.
	touched := make(map[int]domain.Product)
	for _, item := range req.Items {
		for i := range products {
			if products[i].ID == item.ProductID {
				newStock := products[i].Stock - item.Quantity
				if newStock < 0 {
					newStock = 0
				}
				products[i].Stock = newStock
				products[i].Sales += item.Quantity
				totalItems += item.Quantity
				touched[products[i].ID] = products[i]
				break
			}
		}
	}

	if err := s.products.Save(ctx, products); err != nil {
		return domain.CheckoutResponse{}, fmt.Errorf("persist catalog: %w", err)
	}

	total := 0.0
	for _, item := range req.Items {
		total += item.Price * float64(item.Quantity)
	}

	order := domain.Order{
		ID:          uuid.NewString(),
		Customer:    req.Customer,
		Items:       req.Items,
		TotalAmount: total,
		Timestamp:   time.Now().UTC(),
	}

	orders, err := s.orders.Load(ctx)
	if err != nil {
		return domain.CheckoutResponse{}, fmt.Errorf("load orders: %w", err)
	}
	orders = append(orders, order)
	if err := s.orders.Save(ctx, orders); err != nil {
		return domain.CheckoutResponse{}, fmt.Errorf("persist order: %w", err)
	}

	s.logger.Info("Checkout processed",
		zap.String("order_id", order.ID),
		zap.Float64("total_amount", order.TotalAmount),
		zap.Int("items_decremented", totalItems))

	if s.publisher != nil {
		go s.publisher.OrderPlaced(order, totalItems)
	}
	for _, p := range touched {
		s.notifyStockLow(p)
	}

	return domain.CheckoutResponse{
		Success:    true,
		OrderID:    order.ID,
		Message:    "Order processed successfully",
		TotalItems: totalItems,
	}, nil
}

// ListReviews returns the reviews referencing the given product id.
func (s *LedgerService) ListReviews(ctx context.Context, productID int) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reviews, err := s.reviews.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	matched := []domain.Review{}
	for _, r := range reviews {
		if r.ProductID == productID {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// CreateReview appends an immutable review to the log. The product
// reference is advisory and not checked against the catalog.
func (s *LedgerService) CreateReview(ctx context.Context, req domain.CreateReviewRequest) (domain.Review, error) {
	if req.ProductID == 0 || req.Rating == 0 || req.Comment == "" {
		return domain.Review{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reviews, err := s.reviews.Load(ctx)
	if err != nil {
		return domain.Review{}, fmt.Errorf("load reviews: %w", err)
	}

	review := domain.Review{
		ID:        uuid.NewString(),
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		Timestamp: time.Now().UTC(),
	}

	reviews = append(reviews, review)
	if err := s.reviews.Save(ctx, reviews); err != nil {
		return domain.Review{}, fmt.Errorf("persist review: %w", err)
	}
	return review, nil
}

// DashboardData bundles the rated catalog with the full review log in
// one read snapshot.
func (s *LedgerService) DashboardData(ctx context.Context) (domain.DashboardData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.products.Load(ctx)
	if err != nil {
		return domain.DashboardData{}, fmt.Errorf("load catalog: %w", err)
	}
	reviews, err := s.reviews.Load(ctx)
	if err != nil {
		return domain.DashboardData{}, fmt.Errorf("load reviews: %w", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	return domain.DashboardData{
		Products: rateProducts(products, reviews),
		Reviews:  reviews,
	}, nil
}

// ComputeAnalytics aggregates catalog, order and review state.
func (s *LedgerService) ComputeAnalytics(ctx context.Context) (domain.Analytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.products.Load(ctx)
	if err != nil {
		return domain.Analytics{}, fmt.Errorf("load catalog: %w", err)
	}
	reviews, err := s.reviews.Load(ctx)
	if err != nil {
		return domain.Analytics{}, fmt.Errorf("load reviews: %w", err)
	}
	orders, err := s.orders.Load(ctx)
	if err != nil {
		return domain.Analytics{}, fmt.Errorf("load orders: %w", err)
	}

	a := domain.Analytics{
		TotalProducts: len(products),
		TotalOrders:   len(orders),
	}
	for _, o := range orders {
		a.TotalRevenue += o.TotalAmount
	}

	ratingSum := 0.0
	for _, p := range products {
		a.TotalSales += p.Sales
		if p.Stock < LowStockThreshold {
			a.LowStockItems++
		}
		ratingSum += averageRating(p.ID, reviews)
	}
	if len(products) > 0 {
		a.AverageRating = round2(ratingSum / float64(len(products)))
	}

	comments := make([]string, 0, len(reviews))
	for _, r := range reviews {
		comments = append(comments, r.Comment)
	}
	a.Sentiment = sentiment.TallyComments(s.classifier, comments)

	return a, nil
}

func (s *LedgerService) notifyStockLow(p domain.Product) {
	if s.publisher == nil || p.Stock >= LowStockThreshold {
		return
	}
	go s.publisher.StockLow(p)
}

func rateProducts(products []domain.Product, reviews []domain.Review) []domain.RatedProduct {
	rated := make([]domain.RatedProduct, 0, len(products))
	for _, p := range products {
		rated = append(rated, domain.RatedProduct{
			Product:   p,
			AvgRating: averageRating(p.ID, reviews),
		})
	}
	return rated
}

// averageRating is the arithmetic mean of matching review ratings
// rounded to two decimals, 0 when the product has no reviews.
func averageRating(productID int, reviews []domain.Review) float64 {
	sum, count := 0, 0
	for _, r := range reviews {
		if r.ProductID == productID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return round2(float64(sum) / float64(count))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
