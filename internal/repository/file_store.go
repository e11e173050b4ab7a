package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retail-dashboard/ledger-service/internal/domain"
)

// jsonFile holds one collection as a single JSON document, overwritten
// whole on every save. A missing file reads as an empty collection.
type jsonFile struct {
	path string
}

func (f jsonFile) load(out any) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", f.path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", f.path, err)
	}
	return nil
}

func (f jsonFile) save(in any) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

// FileProductStore keeps the catalog in products.json under dir.
type FileProductStore struct {
	f jsonFile
}

// FileReviewStore keeps the review log in reviews.json under dir.
type FileReviewStore struct {
	f jsonFile
}

// FileOrderStore keeps the order log in orders.json under dir.
type FileOrderStore struct {
	f jsonFile
}

// NewFileStores creates dir if needed and returns the three
// collection stores backed by it.
func NewFileStores(dir string) (*FileProductStore, *FileReviewStore, *FileOrderStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileProductStore{f: jsonFile{path: filepath.Join(dir, "products.json")}},
		&FileReviewStore{f: jsonFile{path: filepath.Join(dir, "reviews.json")}},
		&FileOrderStore{f: jsonFile{path: filepath.Join(dir, "orders.json")}},
		nil
}

func (s *FileProductStore) Load(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := s.f.load(&products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *FileProductStore) Save(ctx context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	return s.f.save(products)
}

func (s *FileReviewStore) Load(ctx context.Context) ([]domain.Review, error) {
	var reviews []domain.Review
	if err := s.f.load(&reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *FileReviewStore) Save(ctx context.Context, reviews []domain.Review) error {
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return s.f.save(reviews)
}

func (s *FileOrderStore) Load(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := s.f.load(&orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *FileOrderStore) Save(ctx context.Context, orders []domain.Order) error {
	if orders == nil {
		orders = []domain.Order{}
	}
	return s.f.save(orders)
}
