package domain

import "github.com/shopspring/decimal"

func init() {
	// The backend reads and writes prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	CreatedAt    string          `json:"createdAt,omitempty"`
}

// FormatPrice renders an amount with two fraction digits.
func FormatPrice(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func (p Product) DisplayPrice() string { return FormatPrice(p.Price) }

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  int64           `json:"categoryId"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

type Inventory struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"productId"`
	Quantity    int    `json:"quantity"`
	LastUpdated string `json:"lastUpdated"`
}

// ProductQuery carries the list/search parameters. Zero values mean
// "not set"; Size 0 falls back to the caller's default.
type ProductQuery struct {
	Page       int
	Size       int
	Sort       string
	Name       string
	CategoryID int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

type MediaType string

const (
	MediaImage MediaType = "IMAGE"
	MediaVideo MediaType = "VIDEO"
)

type ProductMedia struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"productId"`
	MediaType    MediaType `json:"mediaType"`
	URL          string    `json:"url"`
	AltText      string    `json:"altText,omitempty"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    string    `json:"createdAt"`
	UpdatedAt    string    `json:"updatedAt"`
}

// MediaUpdate holds the optional metadata fields of a media edit.
type MediaUpdate struct {
	AltText      *string
	DisplayOrder *int
}
