package export

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"storefront/internal/domain"
)

func catalog(n int) []domain.Product {
	out := make([]domain.Product, n)
	for i := range out {
		out[i] = domain.Product{ID: int64(i + 1), Name: "Item", Price: decimal.RequireFromString("3.5"), CategoryID: 2, CategoryName: "Lighting"}
	}
	return out
}

func TestExportWalksAllPages(t *testing.T) {
	all := catalog(250)
	var pages []int
	fetch := func(_ context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error) {
		pages = append(pages, q.Page)
		return domain.NewPage(all, q.Page, q.Size), nil
	}

	var buf bytes.Buffer
	n, err := Products(context.Background(), fetch, &buf)
	require.NoError(t, err)
	assert.Equal(t, 250, n)
	assert.Equal(t, []int{0, 1, 2}, pages)

	wb, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	rows := wb.Sheets[0].Rows
	require.Len(t, rows, 251)
	assert.Equal(t, "Name", rows[0].Cells[1].Value)
	assert.Equal(t, "3.50", rows[1].Cells[3].Value)
	assert.Equal(t, "Lighting", rows[250].Cells[5].Value)
}

func TestExportEmptyCatalog(t *testing.T) {
	fetch := func(_ context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error) {
		return domain.NewPage[domain.Product](nil, q.Page, q.Size), nil
	}
	var buf bytes.Buffer
	n, err := Products(context.Background(), fetch, &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NotZero(t, buf.Len())
}

func TestExportStopsOnError(t *testing.T) {
	boom := errors.New("backend down")
	fetch := func(context.Context, domain.ProductQuery) (domain.Page[domain.Product], error) {
		return domain.Page[domain.Product]{}, boom
	}
	var buf bytes.Buffer
	_, err := Products(context.Background(), fetch, &buf)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, buf.Len())
}
