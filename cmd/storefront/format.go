package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/pagination"
)

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// failure prefers the message a store recorded for the user over the
// raw error.
func failure(msg string, err error) error {
	if msg != "" {
		return errors.New(msg)
	}
	return err
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

func parseDecimal(s, what string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", what, s)
	}
	return &d, nil
}

// footer prints the page position and the reachable neighbours.
func footer(w io.Writer, p pagination.State) {
	if !p.ShowControls() {
		fmt.Fprintf(w, "%d item(s)\n", p.TotalItems)
		return
	}
	var hints []string
	if prev, err := p.Prev(); err == nil {
		hints = append(hints, fmt.Sprintf("--page %d for previous", prev))
	}
	if next, err := p.Next(); err == nil {
		hints = append(hints, fmt.Sprintf("--page %d for next", next))
	}
	fmt.Fprintf(w, "page %d of %d, %d item(s)  (%s)\n", p.Page+1, p.TotalPages, p.TotalItems, strings.Join(hints, ", "))
}

func printProducts(w io.Writer, ps []domain.Product) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, p := range ps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.CategoryName, money(p.Price))
	}
	_ = tw.Flush()
}

func printOrders(w io.Writer, orders []domain.Order) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tSTATUS\tITEMS\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", o.ID, o.Status, len(o.Items), money(o.TotalPrice), o.CreatedAt)
	}
	_ = tw.Flush()
}

func printOrder(w io.Writer, o domain.Order) {
	fmt.Fprintf(w, "Order #%d  %s\n", o.ID, o.Status)
	if o.User.Username != "" {
		fmt.Fprintf(w, "Customer: %s\n", o.User.Username)
	}
	fmt.Fprintf(w, "Ship to:  %s\n", o.ShippingAddress)
	fmt.Fprintf(w, "Placed:   %s\n\n", o.CreatedAt)
	tw := table(w)
	fmt.Fprintln(tw, "PRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range o.Items {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", it.Product.Name, it.Quantity, money(it.Price), money(it.Subtotal))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nTotal: %s\n", money(o.TotalPrice))
}

func printReviews(w io.Writer, rs []domain.Review) {
	for _, r := range rs {
		verified := ""
		if r.VerifiedPurchase {
			verified = " (verified purchase)"
		}
		fmt.Fprintf(w, "#%d %s %s%s\n", r.ID, stars(r.Rating), r.User.Username, verified)
		if r.Comment != "" {
			fmt.Fprintf(w, "    %s\n", r.Comment)
		}
	}
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("*", n) + strings.Repeat(".", 5-n)
}
