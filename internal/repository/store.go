// Package repository persists the three ledger collections. Every
// store loads its collection in full and rewrites it in full; there
// are no partial-write or append semantics. Serialization of
// concurrent mutations is the ledger service's job, not the store's.
package repository

import (
	"context"

	"github.com/retail-dashboard/ledger-service/internal/domain"
)

// ProductStore persists the product catalog.
type ProductStore interface {
	Load(ctx context.Context) ([]domain.Product, error)
	Save(ctx context.Context, products []domain.Product) error
}

// ReviewStore persists the append-only review log.
type ReviewStore interface {
	Load(ctx context.Context) ([]domain.Review, error)
	Save(ctx context.Context, reviews []domain.Review) error
}

// OrderStore persists the append-only order log.
type OrderStore interface {
	Load(ctx context.Context) ([]domain.Order, error)
	Save(ctx context.Context, orders []domain.Order) error
}
