package services

import (
	"context"
	"fmt"

	"storefront/internal/api"
	"storefront/internal/domain"
)

const DefaultReviewPageSize = 10

type ReviewService struct {
	API *api.Client
}

func NewReviewService(c *api.Client) *ReviewService { return &ReviewService{API: c} }

func (s *ReviewService) ForProduct(ctx context.Context, productID int64, page, size int) (domain.Page[domain.Review], error) {
	var out domain.Page[domain.Review]
	err := s.API.Get(ctx, fmt.Sprintf("/api/reviews/product/%d", productID), pageOf(page, size, DefaultReviewPageSize), &out)
	return out, err
}

func (s *ReviewService) Rating(ctx context.Context, productID int64) (domain.ProductRating, error) {
	var out domain.ProductRating
	err := s.API.Get(ctx, fmt.Sprintf("/api/reviews/product/%d/rating", productID), nil, &out)
	return out, err
}

func (s *ReviewService) Create(ctx context.Context, req domain.CreateReviewRequest) (domain.Review, error) {
	var out domain.Review
	err := s.API.Post(ctx, "/api/reviews", nil, req, &out)
	return out, err
}

func (s *ReviewService) Mine(ctx context.Context, page, size int) (domain.Page[domain.Review], error) {
	var out domain.Page[domain.Review]
	err := s.API.Get(ctx, "/api/reviews/my-reviews", pageOf(page, size, DefaultReviewPageSize), &out)
	return out, err
}

func (s *ReviewService) Delete(ctx context.Context, id int64) error {
	return s.API.Delete(ctx, fmt.Sprintf("/api/reviews/%d", id), nil)
}
