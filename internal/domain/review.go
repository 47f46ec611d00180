package domain

import (
	"bytes"
	"encoding/json"
)

type Review struct {
	ID               int64   `json:"id"`
	User             User    `json:"user"`
	Product          Product `json:"product"`
	Rating           int     `json:"rating"`
	Comment          string  `json:"comment,omitempty"`
	VerifiedPurchase bool    `json:"isVerifiedPurchase"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt,omitempty"`
}

type CreateReviewRequest struct {
	ProductID int64  `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

type ProductRating struct {
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int64   `json:"totalReviews"`
}

// UnmarshalJSON also accepts a bare number, which some backends send for
// the average alone.
func (r *ProductRating) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] != '{' {
		if bytes.Equal(b, []byte("null")) {
			*r = ProductRating{}
			return nil
		}
		*r = ProductRating{}
		return json.Unmarshal(b, &r.AverageRating)
	}
	type plain ProductRating
	return json.Unmarshal(b, (*plain)(r))
}
