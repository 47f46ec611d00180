// Package export writes the product catalog to an Excel workbook.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/tealeg/xlsx"

	"storefront/internal/domain"
)

const pageSize = 100

// PageFunc returns one page of products, e.g. ProductService.AdminList.
type PageFunc func(ctx context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error)

var headers = []string{"ID", "Name", "Description", "Price", "CategoryID", "CategoryName", "ImageURL", "CreatedAt"}

// Products walks every page from fetch and writes one row per product.
// It returns the number of products written.
func Products(ctx context.Context, fetch PageFunc, w io.Writer) (int, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return 0, fmt.Errorf("add sheet: %w", err)
	}
	head := sheet.AddRow()
	for _, h := range headers {
		head.AddCell().SetString(h)
	}

	n := 0
	for page := 0; ; page++ {
		p, err := fetch(ctx, domain.ProductQuery{Page: page, Size: pageSize, Sort: "id,asc"})
		if err != nil {
			return n, fmt.Errorf("fetch page %d: %w", page, err)
		}
		for _, prod := range p.Content {
			row := sheet.AddRow()
			row.AddCell().SetInt64(prod.ID)
			row.AddCell().SetString(prod.Name)
			row.AddCell().SetString(prod.Description)
			row.AddCell().SetString(prod.Price.StringFixed(2))
			row.AddCell().SetInt64(prod.CategoryID)
			row.AddCell().SetString(prod.CategoryName)
			row.AddCell().SetString(prod.ImageURL)
			row.AddCell().SetString(prod.CreatedAt)
			n++
		}
		if len(p.Content) == 0 || page >= p.TotalPages-1 {
			break
		}
	}

	if err := file.Write(w); err != nil {
		return n, fmt.Errorf("write workbook: %w", err)
	}
	return n, nil
}
