package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/phimart/internal/models"
	"github.com/Skotchmaster/phimart/internal/policy"
)

type ReviewInput struct {
	Rating  int
	Comment string
}

// ReviewPatch changes only the non-nil fields.
type ReviewPatch struct {
	Rating  *int
	Comment *string
}

func validateRating(r int) error {
	if r < models.MinRating || r > models.MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, models.MinRating, models.MaxRating)
	}
	return nil
}

func (s *CatalogService) ListReviews(ctx context.Context, productID uuid.UUID, offset, limit int) (int64, []models.Review, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return 0, nil, err
	}
	total, items, err := s.Store.ListReviews(ctx, productID, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list reviews: %w", err)
	}
	return total, items, nil
}

func (s *CatalogService) GetReview(ctx context.Context, productID, reviewID uuid.UUID) (*models.Review, error) {
	rv, err := s.Store.GetReview(ctx, productID, reviewID)
	if err != nil {
		return nil, notFound(err, "load review", "review not found")
	}
	return rv, nil
}

// CreateReview records a review by actor on an existing product.
func (s *CatalogService) CreateReview(ctx context.Context, productID uuid.UUID, in ReviewInput, actor policy.Actor) (*models.Review, error) {
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	rv := &models.Review{
		ProductID: productID,
		UserID:    actor.ID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	}
	if err := s.Store.CreateReview(ctx, rv); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	s.publishReview(ctx, "review_created", rv)
	return rv, nil
}

// UpdateReview lets the author or staff change a review.
func (s *CatalogService) UpdateReview(ctx context.Context, productID, reviewID uuid.UUID, patch ReviewPatch, actor policy.Actor) (*models.Review, error) {
	if patch.Rating != nil {
		if err := validateRating(*patch.Rating); err != nil {
			return nil, err
		}
	}

	rv, err := s.GetReview(ctx, productID, reviewID)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditReview(rv, actor) {
		return nil, fmt.Errorf("%w: you may only modify your own reviews", ErrForbidden)
	}

	if patch.Rating != nil {
		rv.Rating = *patch.Rating
	}
	if patch.Comment != nil {
		rv.Comment = strings.TrimSpace(*patch.Comment)
	}
	if err := s.Store.UpdateReview(ctx, rv); err != nil {
		return nil, notFound(err, "update review", "review not found")
	}
	s.publishReview(ctx, "review_updated", rv)
	return rv, nil
}

func (s *CatalogService) DeleteReview(ctx context.Context, productID, reviewID uuid.UUID, actor policy.Actor) error {
	rv, err := s.GetReview(ctx, productID, reviewID)
	if err != nil {
		return err
	}
	if !policy.CanEditReview(rv, actor) {
		return fmt.Errorf("%w: you may only modify your own reviews", ErrForbidden)
	}
	if err := s.Store.DeleteReview(ctx, productID, reviewID); err != nil {
		return notFound(err, "delete review", "review not found")
	}
	s.publishReview(ctx, "review_deleted", rv)
	return nil
}

func (s *CatalogService) publishReview(ctx context.Context, typ string, rv *models.Review) {
	publish(ctx, s.Events, TopicProductEvents, rv.ProductID.String(), ProductEvent{
		Type:       typ,
		ProductID:  rv.ProductID.String(),
		ReviewID:   rv.ID.String(),
		OccurredAt: time.Now().UTC(),
	})
}
