package core

import (
	"context"

	"github.com/JonMunkholm/virex/internal/store"
)

// DefaultPageSize and MaxPageSize bound product search pages.
const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

// SearchProducts returns one page of catalog products.
func (s *Service) SearchProducts(ctx context.Context, f store.ProductFilter) (*store.ProductPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return s.store.SearchProducts(ctx, f)
}

// GetProduct returns a product by part number.
func (s *Service) GetProduct(ctx context.Context, partNumber string) (store.Product, error) {
	return s.store.GetProduct(ctx, partNumber)
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]store.Category, error) {
	return s.store.ListCategories(ctx)
}

// ListDownloads returns the support-center downloads.
func (s *Service) ListDownloads(ctx context.Context) ([]store.Download, error) {
	return s.store.ListDownloads(ctx)
}
