package domain

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Cancellable reports whether the storefront offers a cancel action.
// The backend has the final say.
func (s OrderStatus) Cancellable() bool { return s == OrderPending }

type OrderItem struct {
	ID       int64           `json:"id"`
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"` // price at purchase
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID              int64           `json:"id"`
	User            User            `json:"user"`
	ShippingAddress string          `json:"shippingAddress"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       string          `json:"createdAt"`
	Items           []OrderItem     `json:"items"`
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	VoucherCode     string `json:"voucherCode,omitempty"`
}
