package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/phimart/internal/models"
	"github.com/Skotchmaster/phimart/internal/repo"
)

type CategoryInput struct {
	Name        string
	Description string
}

func (s *CatalogService) ListCategories(ctx context.Context, offset, limit int) (int64, []repo.CategoryWithCount, error) {
	total, items, err := s.Store.ListCategories(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list categories: %w", err)
	}
	return total, items, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*repo.CategoryWithCount, error) {
	c, err := s.Store.GetCategory(ctx, id)
	if err != nil {
		return nil, notFound(err, "load category", "category not found")
	}
	return c, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*repo.CategoryWithCount, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	c := &models.Category{Name: name, Description: in.Description}
	if err := s.Store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, name)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.publishCategory(ctx, "category_created", c.ID)
	return &repo.CategoryWithCount{Category: *c}, nil
}

func (s *CatalogService) PatchCategory(ctx context.Context, id uuid.UUID, patch repo.CategoryPatch) (*repo.CategoryWithCount, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		patch.Name = &name
	}

	if _, err := s.Store.PatchCategory(ctx, id, patch); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, *patch.Name)
		}
		return nil, notFound(err, "patch category", "category not found")
	}
	s.publishCategory(ctx, "category_updated", id)
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes a category; its products stay in the catalog
// without one.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.Store.DeleteCategory(ctx, id); err != nil {
		return notFound(err, "delete category", "category not found")
	}
	s.publishCategory(ctx, "category_deleted", id)
	return nil
}

// checkCategory reports ErrValidation when id names no category.
func (s *CatalogService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	if _, err := s.Store.GetCategory(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %s does not exist", ErrValidation, *id)
		}
		return fmt.Errorf("load category: %w", err)
	}
	return nil
}

func (s *CatalogService) publishCategory(ctx context.Context, typ string, id uuid.UUID) {
	publish(ctx, s.Events, TopicProductEvents, id.String(), ProductEvent{
		Type:       typ,
		CategoryID: id.String(),
		OccurredAt: time.Now().UTC(),
	})
}
