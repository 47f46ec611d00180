package devapi

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/validate"
)

// createReview requires a shipped or delivered purchase and allows one
// review per user and product.
func (s *Server) createReview(c *fiber.Ctx) error {
	var req domain.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Malformed JSON request")
	}
	uid := userID(c)

	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	acct := s.st.users[uid]
	if acct == nil {
		return errUnauthenticated
	}
	p := s.st.products[req.ProductID]
	if p == nil {
		return notFound("Product", "id", req.ProductID)
	}
	if !s.st.purchased(uid, p.ID) {
		return badRequest("You can only review products you have purchased and received")
	}
	for _, r := range s.st.reviews {
		if r.User.ID == uid && r.Product.ID == p.ID {
			return badRequest("You have already reviewed this product")
		}
	}
	if req.Rating < 1 || req.Rating > 5 {
		return badRequest("Rating must be between 1 and 5")
	}
	comment, _ := validate.Comment(req.Comment)

	r := &domain.Review{
		ID:               s.st.nextID(),
		User:             acct.public(),
		Product:          *p,
		Rating:           req.Rating,
		Comment:          comment,
		VerifiedPurchase: true,
		CreatedAt:        s.st.stamp(),
	}
	s.st.reviews[r.ID] = r
	applog.AuditCtx(c, "review.create", map[string]any{"review_id": r.ID, "product_id": p.ID})
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (s *Server) productReviews(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	pr, err := pageOf(c, "createdAt,desc")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	all := s.st.productReviews(id)
	s.st.mu.Unlock()
	return c.JSON(domain.NewPage(all, pr.Page, pr.Size))
}

func (s *Server) productRating(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	all := s.st.productReviews(id)
	s.st.mu.Unlock()

	out := domain.ProductRating{TotalReviews: int64(len(all))}
	if len(all) > 0 {
		sum := 0
		for _, r := range all {
			sum += r.Rating
		}
		out.AverageRating = float64(sum) / float64(len(all))
	}
	return c.JSON(out)
}

func (s *Server) myReviews(c *fiber.Ctx) error {
	pr, err := pageOf(c, "createdAt,desc")
	if err != nil {
		return err
	}
	uid := userID(c)
	s.st.mu.Lock()
	var all []domain.Review
	for _, r := range s.st.reviews {
		if r.User.ID == uid {
			all = append(all, *r)
		}
	}
	s.st.mu.Unlock()
	sortReviews(all)
	return c.JSON(domain.NewPage(all, pr.Page, pr.Size))
}

func (s *Server) deleteReview(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	r := s.st.reviews[id]
	if r == nil {
		return notFound("Review", "id", id)
	}
	if r.User.ID != userID(c) {
		return badRequest("You can only delete your own reviews")
	}
	delete(s.st.reviews, id)
	applog.AuditCtx(c, "review.delete", map[string]any{"review_id": id})
	return c.JSON(domain.MessageResponse{Message: "Review deleted successfully!"})
}
