package stores

import (
	"context"

	"storefront/internal/api"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/pagination"
	"storefront/internal/validate"
)

const DefaultReviewPageSize = 10

type ReviewAPI interface {
	ForProduct(ctx context.Context, productID int64, page, size int) (domain.Page[domain.Review], error)
	Rating(ctx context.Context, productID int64) (domain.ProductRating, error)
	Create(ctx context.Context, req domain.CreateReviewRequest) (domain.Review, error)
	Delete(ctx context.Context, id int64) error
}

type ReviewState struct {
	ProductID  int64
	Reviews    []domain.Review
	Rating     *domain.ProductRating
	Pagination pagination.State
	Loading    bool
	Submitting bool
	Err        string
}

type ReviewStore struct {
	api ReviewAPI
	c   container[ReviewState]
}

func NewReviewStore(a ReviewAPI) *ReviewStore { return &ReviewStore{api: a} }

func (s *ReviewStore) State() ReviewState { return s.c.get() }

func (s *ReviewStore) Subscribe(fn func(ReviewState)) (cancel func()) { return s.c.subscribe(fn) }

// Load fetches one page of a product's reviews and its rating summary.
// A failed rating fetch is logged and leaves Rating nil.
func (s *ReviewStore) Load(ctx context.Context, productID int64, page int) error {
	s.c.set(func(st *ReviewState) {
		if st.ProductID != productID {
			*st = ReviewState{ProductID: productID}
		}
		st.Loading = true
		st.Err = ""
	})
	p, err := s.api.ForProduct(ctx, productID, page, DefaultReviewPageSize)
	if err != nil {
		s.c.set(func(st *ReviewState) {
			st.Err = api.Message(err, "Failed to fetch reviews")
			st.Loading = false
		})
		return err
	}

	var rating *domain.ProductRating
	if r, err := s.api.Rating(ctx, productID); err != nil {
		applog.Error(nil, "reviews.rating.fetch", err, map[string]any{"product_id": productID})
	} else {
		rating = &r
	}

	s.c.set(func(st *ReviewState) {
		st.Reviews = p.Content
		st.Pagination = pagination.From(p)
		st.Rating = rating
		st.Loading = false
	})
	return nil
}

func (s *ReviewStore) GotoPage(ctx context.Context, page int) error {
	st := s.State()
	if err := st.Pagination.Check(page); err != nil {
		return err
	}
	return s.Load(ctx, st.ProductID, page)
}

// Submit checks the form locally, posts the review and reloads page 0.
func (s *ReviewStore) Submit(ctx context.Context, productID int64, rating int, comment string) error {
	err := validate.Rating(rating)
	if err == nil {
		comment, err = validate.Comment(comment)
	}
	if err != nil {
		msg := err.Error()
		s.c.set(func(st *ReviewState) { st.Err = msg })
		return err
	}

	s.c.set(func(st *ReviewState) { st.Submitting = true; st.Err = "" })
	_, err = s.api.Create(ctx, domain.CreateReviewRequest{ProductID: productID, Rating: rating, Comment: comment})
	if err != nil {
		s.c.set(func(st *ReviewState) {
			st.Err = api.Message(err, "Failed to submit review. You may need to purchase this product first.")
			st.Submitting = false
		})
		return err
	}
	s.c.set(func(st *ReviewState) { st.Submitting = false })
	return s.Load(ctx, productID, 0)
}

// HasReviewed only sees the loaded page. Reviews by username on other
// pages go unnoticed; the backend's duplicate check is authoritative.
func (s *ReviewStore) HasReviewed(username string) bool {
	if username == "" {
		return false
	}
	for _, r := range s.State().Reviews {
		if r.User.Username == username {
			return true
		}
	}
	return false
}

func (s *ReviewStore) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.c.set(func(st *ReviewState) { st.Err = api.Message(err, "Failed to delete review") })
		return err
	}
	st := s.State()
	return s.Load(ctx, st.ProductID, st.Pagination.Page)
}

func (s *ReviewStore) ClearError() { s.c.set(func(st *ReviewState) { st.Err = "" }) }
