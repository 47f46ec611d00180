package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/gallery"
	applog "storefront/internal/log"
	"storefront/internal/pagination"
	"storefront/internal/stores"
)

func productsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"p"},
		Short:   "Browse the catalog",
	}
	cmd.AddCommand(productListCmd(a), productSearchCmd(a), productShowCmd(a), categoriesCmd(a))
	return cmd
}

type listFlags struct {
	page     int
	size     int
	category int64
	min, max string
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 0, "zero-based page index")
	cmd.Flags().IntVar(&f.size, "size", stores.DefaultProductPageSize, "page size")
	cmd.Flags().Int64Var(&f.category, "category", 0, "category id")
	cmd.Flags().StringVar(&f.min, "min", "", "minimum price")
	cmd.Flags().StringVar(&f.max, "max", "", "maximum price")
}

// filters turns the flags into store filters; keyword may be empty.
func (f *listFlags) filters(keyword string) (stores.Filters, error) {
	var out stores.Filters
	var err error
	if out.MinPrice, err = parseDecimal(f.min, "minimum price"); err != nil {
		return out, err
	}
	if out.MaxPrice, err = parseDecimal(f.max, "maximum price"); err != nil {
		return out, err
	}
	if f.category > 0 {
		id := f.category
		out.CategoryID = &id
	}
	out.Search = keyword
	return out, nil
}

func runList(ctx context.Context, w io.Writer, a *app, f *listFlags, keyword string) error {
	filters, err := f.filters(keyword)
	if err != nil {
		return err
	}
	st := stores.NewProductStore(a.products).WithPageSize(f.size)
	st.SetFilters(filters)
	// page 0 first: the totals it returns bound the requested index
	if err := st.FetchProducts(ctx, 0); err != nil {
		return failure(st.State().Err, err)
	}
	if f.page != 0 {
		if err := st.GotoPage(ctx, f.page); err != nil {
			if errors.Is(err, pagination.ErrOutOfRange) {
				return fmt.Errorf("page %d is out of range, there are %d page(s)", f.page, st.State().Pagination.TotalPages)
			}
			return failure(st.State().Err, err)
		}
	}
	s := st.State()
	if len(s.Products) == 0 {
		fmt.Fprintln(w, "No products found")
		return nil
	}
	printProducts(w, s.Products)
	footer(w, s.Pagination)
	return nil
}

func productListCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, optionally filtered by category or price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout(), a, &f, "")
		},
	}
	f.bind(cmd)
	return cmd
}

func productSearchCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search products by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout(), a, &f, args[0])
		},
	}
	f.bind(cmd)
	return cmd
}

func categoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := stores.NewProductStore(a.products)
			if err := st.FetchCategories(cmd.Context()); err != nil {
				return err
			}
			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME")
			for _, c := range st.State().Categories {
				fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
			}
			return tw.Flush()
		},
	}
}

// productMedia lists a product's uploaded media. The listing endpoint is
// admin-only, so shoppers fall back to the legacy image.
func productMedia(ctx context.Context, a *app, id int64) []domain.ProductMedia {
	media, err := a.media.ForProduct(ctx, id)
	if err == nil {
		return media
	}
	if s := api.StatusOf(err); s != http.StatusUnauthorized && s != http.StatusForbidden {
		applog.Error(nil, "product.media.list", err, map[string]any{"product_id": id})
	}
	return nil
}

// browse selects the 1-based item pick (0 keeps the first) and then moves
// step items, wrapping at either end.
func browse(g *gallery.Gallery, pick, step int) error {
	if pick != 0 {
		if err := g.Select(pick - 1); err != nil {
			return fmt.Errorf("no media item %d, the gallery has %d", pick, g.Len())
		}
	}
	for ; step > 0; step-- {
		g.Next()
	}
	for ; step < 0; step++ {
		g.Prev()
	}
	return nil
}

func productShowCmd(a *app) *cobra.Command {
	var reviews bool
	var pick, step int
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one product with its gallery, stock and rating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			ctx, w := cmd.Context(), cmd.OutOrStdout()
			st := stores.NewProductStore(a.products)
			if err := st.FetchProduct(ctx, id); err != nil {
				return failure(st.State().Err, err)
			}
			p := *st.State().Current

			fmt.Fprintf(w, "%s  %s\n", p.Name, money(p.Price))
			if p.CategoryName != "" {
				fmt.Fprintf(w, "Category: %s\n", p.CategoryName)
			}
			if p.Description != "" {
				fmt.Fprintf(w, "\n%s\n", p.Description)
			}
			if inv, err := a.products.Inventory(ctx, id); err == nil {
				if inv.Quantity > 0 {
					fmt.Fprintf(w, "\nIn stock: %d\n", inv.Quantity)
				} else {
					fmt.Fprintln(w, "\nOut of stock")
				}
			}

			g := gallery.New(p, productMedia(ctx, a, id))
			if g.Len() > 0 {
				if err := browse(g, pick, step); err != nil {
					return err
				}
				fmt.Fprintln(w, "\nGallery", g.Counter())
				for i, it := range g.Items() {
					mark := " "
					if i == g.Index() {
						mark = "*"
					}
					fmt.Fprintf(w, " %s[%d] %-5s %s  %q\n", mark, i+1, it.MediaType(), it.URL, it.AltText(p.Name))
				}
			}

			rs := stores.NewReviewStore(a.reviews)
			if err := rs.Load(ctx, id, 0); err != nil {
				return failure(rs.State().Err, err)
			}
			r := rs.State()
			if r.Rating != nil && r.Rating.TotalReviews > 0 {
				fmt.Fprintf(w, "\nRating: %.1f / 5 from %d review(s)\n", r.Rating.AverageRating, r.Rating.TotalReviews)
			} else {
				fmt.Fprintln(w, "\nNo reviews yet")
			}
			if reviews && len(r.Reviews) > 0 {
				fmt.Fprintln(w)
				printReviews(w, r.Reviews)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reviews, "reviews", false, "also print the first page of reviews")
	cmd.Flags().IntVar(&pick, "media", 0, "select gallery item N (1-based)")
	cmd.Flags().IntVar(&step, "step", 0, "move the selection N items forward, or back when negative")
	return cmd
}
