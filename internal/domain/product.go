package domain

// Product is one catalog record. Stock and Sales are owned by the
// ledger service and only change under its write lock.
type Product struct {
	ID          int     `dynamodbav:"id"          json:"id"`
	Name        string  `dynamodbav:"name"        json:"name"`
	Category    string  `dynamodbav:"category"    json:"category"`
	Price       float64 `dynamodbav:"price"       json:"price"`
	Stock       int     `dynamodbav:"stock"       json:"stock"`
	Sales       int     `dynamodbav:"sales"       json:"sales"`
	Description string  `dynamodbav:"description" json:"description"`
	Image       string  `dynamodbav:"image"       json:"image"`
}

// RatedProduct is a Product annotated with the derived average review
// rating (0 when the product has no reviews).
type RatedProduct struct {
	Product
	AvgRating float64 `json:"avgRating"`
}

// CreateProductRequest mirrors the storefront admin form. Stock is a
// pointer so an explicit zero passes the required check; a zero price
// does not, matching the storefront contract.
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Stock       *int    `json:"stock" binding:"required"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
}

// UpdateProductRequest carries a partial update; only non-nil fields
// are applied.
type UpdateProductRequest struct {
	Stock *int     `json:"stock"`
	Price *float64 `json:"price"`
}

// StockUpdate overwrites one product's stock to an absolute value.
type StockUpdate struct {
	ProductID int `json:"id"`
	Stock     int `json:"stock"`
}

// RestockRequest is a bulk stock overwrite.
type RestockRequest struct {
	Updates []StockUpdate `json:"updates" binding:"required"`
}

// RestockResponse acknowledges a processed restock.
type RestockResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
