package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/phimart/internal/models"
	"github.com/Skotchmaster/phimart/internal/repo"
	"github.com/Skotchmaster/phimart/pkg/logging"
)

// ProductIndex is implemented by *search.Index.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

var maxPrice = decimal.New(1, 10)

type CatalogService struct {
	Store  repo.Store
	Index  ProductIndex
	Events EventPublisher
}

func NewCatalogService(store repo.Store, index ProductIndex, events EventPublisher) *CatalogService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &CatalogService{Store: store, Index: index, Events: events}
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  *uuid.UUID
}

// validatePrice accepts non-negative amounts with at most two decimals,
// matching the numeric(12,2) column.
func validatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if !p.Equal(p.Round(2)) {
		return fmt.Errorf("%w: price must have at most 2 decimal places", ErrValidation)
	}
	if p.GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("%w: price is too large", ErrValidation)
	}
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "load product", "product not found")
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, filter repo.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	total, items, err := s.Store.ListProducts(ctx, filter, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list products: %w", err)
	}
	return total, items, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
	}
	if in.CategoryID != nil && *in.CategoryID != uuid.Nil {
		p.CategoryID = in.CategoryID
	}
	if err := s.Store.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.mirror(ctx, p)
	s.publishProduct(ctx, "product_created", p.ID)
	return p, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, patch repo.ProductPatch) (*models.Product, error) {
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if err := s.checkCategory(ctx, patch.CategoryID); err != nil {
		return nil, err
	}

	p, err := s.Store.PatchProduct(ctx, id, patch)
	if err != nil {
		return nil, notFound(err, "patch product", "product not found")
	}
	s.mirror(ctx, p)
	s.publishProduct(ctx, "product_updated", p.ID)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Store.DeleteProduct(ctx, id); err != nil {
		return notFound(err, "delete product", "product not found")
	}
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_delete_failed", "product_id", id, "error", err)
		}
	}
	s.publishProduct(ctx, "product_deleted", id)
	return nil
}

// SearchProducts uses the search index when one is configured and falls
// back to a substring match in the database.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, []models.Product{}, nil
	}
	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "query", q, "error", err)
	}
	total, items, err := s.Store.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("search products: %w", err)
	}
	return total, items, nil
}

func (s *CatalogService) mirror(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) publishProduct(ctx context.Context, typ string, id uuid.UUID) {
	publish(ctx, s.Events, TopicProductEvents, id.String(), ProductEvent{
		Type:       typ,
		ProductID:  id.String(),
		OccurredAt: time.Now().UTC(),
	})
}
