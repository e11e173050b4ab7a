package domain

import "time"

// OrderItem is one line of a checkout request. Price is the
// client-supplied unit price at purchase time; it is not re-validated
// against the catalog.
type OrderItem struct {
	ProductID int     `dynamodbav:"id"       json:"id"`
	Quantity  int     `dynamodbav:"quantity" json:"quantity" binding:"min=1"`
	Price     float64 `dynamodbav:"price"    json:"price"`
}

// Order is an immutable entry in the order log.
type Order struct {
	ID          string         `dynamodbav:"id"          json:"id"`
	Customer    map[string]any `dynamodbav:"customer"    json:"customer"`
	Items       []OrderItem    `dynamodbav:"items"       json:"items"`
	TotalAmount float64        `dynamodbav:"totalAmount" json:"totalAmount"`
	Timestamp   time.Time      `dynamodbav:"timestamp"   json:"timestamp"`
}

type CheckoutRequest struct {
	Customer map[string]any `json:"customer" binding:"required"`
	Items    []OrderItem    `json:"items" binding:"required,min=1,dive"`
}

type CheckoutResponse struct {
	Success    bool   `json:"success"`
	OrderID    string `json:"orderId"`
	Message    string `json:"message"`
	TotalItems int    `json:"totalItems"`
}
