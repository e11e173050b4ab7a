package domain

import "github.com/retail-dashboard/ledger-service/internal/sentiment"

// Analytics aggregates catalog, order and review state for the admin
// dashboard.
type Analytics struct {
	TotalProducts int             `json:"totalProducts"`
	TotalOrders   int             `json:"totalOrders"`
	TotalRevenue  float64         `json:"totalRevenue"`
	TotalSales    int             `json:"totalSales"`
	AverageRating float64         `json:"averageRating"`
	LowStockItems int             `json:"lowStockItems"`
	Sentiment     sentiment.Tally `json:"sentiment"`
}

// DashboardData bundles the rated catalog with the full review log.
type DashboardData struct {
	Products []RatedProduct `json:"products"`
	Reviews  []Review       `json:"reviews"`
}
