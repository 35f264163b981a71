package services

import (
	"context"
	"strings"
	"time"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/types/product"
)

type ProductStore interface {
	ListProducts(ctx context.Context, activeOnly bool) ([]product.Product, error)
	GetProduct(ctx context.Context, id string) (product.Product, error)
	SaveProduct(ctx context.Context, p product.Product) (product.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type ProductService struct {
	store ProductStore
	now   func() time.Time
}

func NewProductService(store ProductStore) *ProductService {
	return &ProductService{store: store, now: time.Now}
}

// List returns the catalogue. Users only see active products.
func (s *ProductService) List(ctx context.Context, includeInactive bool) ([]product.Product, error) {
	return s.store.ListProducts(ctx, !includeInactive)
}

func (s *ProductService) Create(ctx context.Context, req product.UpsertRequest) (product.Product, error) {
	if err := validateProduct(req); err != nil {
		return product.Product{}, err
	}
	now := s.now().UTC()
	p := applyProduct(product.Product{CreatedAt: now}, req)
	p.UpdatedAt = now
	return s.store.SaveProduct(ctx, p)
}

func (s *ProductService) Update(ctx context.Context, id string, req product.UpsertRequest) (product.Product, error) {
	if err := validateProduct(req); err != nil {
		return product.Product{}, err
	}
	existing, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return product.Product{}, err
	}
	p := applyProduct(existing, req)
	p.UpdatedAt = s.now().UTC()
	return s.store.SaveProduct(ctx, p)
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}

func validateProduct(req product.UpsertRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.Validation("name is required")
	}
	if req.PriceCZK < 0 {
		return apperr.Validation("priceCzk must not be negative")
	}
	return nil
}

func applyProduct(p product.Product, req product.UpsertRequest) product.Product {
	p.Name = strings.TrimSpace(req.Name)
	p.Description = strings.TrimSpace(req.Description)
	p.PriceCZK = req.PriceCZK
	p.ImageURL = strings.TrimSpace(req.ImageURL)
	p.URL = strings.TrimSpace(req.URL)
	p.Active = req.Active
	return p
}
