package domain

import "github.com/shopspring/decimal"

type CartItem struct {
	ID       int64           `json:"id"`
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	ID    int64      `json:"id"`
	Items []CartItem `json:"items"`
}

// CartResponse is GET /api/cart. Total is computed by the backend and
// ItemCount counts distinct lines, not units.
type CartResponse struct {
	Cart      Cart            `json:"cart"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}

type AddToCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}
