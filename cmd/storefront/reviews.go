package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/api"
	"storefront/internal/stores"
)

func reviewsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "reviews", Short: "Read and write product reviews"}

	var page int
	list := &cobra.Command{
		Use:   "list <product-id>",
		Short: "List a product's reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			st := stores.NewReviewStore(a.reviews)
			if err := st.Load(cmd.Context(), id, page); err != nil {
				return failure(st.State().Err, err)
			}
			s, w := st.State(), cmd.OutOrStdout()
			if s.Rating != nil && s.Rating.TotalReviews > 0 {
				fmt.Fprintf(w, "Average %.1f / 5 from %d review(s)\n\n", s.Rating.AverageRating, s.Rating.TotalReviews)
			}
			if len(s.Reviews) == 0 {
				fmt.Fprintln(w, "No reviews yet")
				return nil
			}
			printReviews(w, s.Reviews)
			footer(w, s.Pagination)
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 0, "zero-based page index")

	var rating int
	var comment string
	submit := &cobra.Command{
		Use:   "submit <product-id>",
		Short: "Review a product you have received",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			if err := requireLogin(a); err != nil {
				return err
			}
			ctx := cmd.Context()
			st := stores.NewReviewStore(a.reviews)
			if err := st.Load(ctx, id, 0); err != nil {
				return failure(st.State().Err, err)
			}
			if u, _ := a.auth.CurrentUser(); u != nil && st.HasReviewed(u.Username) {
				return errors.New("you have already reviewed this product")
			}
			if err := st.Submit(ctx, id, rating, comment); err != nil {
				return failure(st.State().Err, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Thanks, your review was posted.")
			return nil
		},
	}
	submit.Flags().IntVarP(&rating, "rating", "r", 0, "rating from 1 to 5")
	submit.Flags().StringVarP(&comment, "comment", "c", "", "review text")

	mine := &cobra.Command{
		Use:   "mine",
		Short: "List the reviews you wrote",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireLogin(a); err != nil {
				return err
			}
			p, err := a.reviews.Mine(cmd.Context(), page, 0)
			if err != nil {
				return failure(api.Message(err, ""), err)
			}
			w := cmd.OutOrStdout()
			if len(p.Content) == 0 {
				fmt.Fprintln(w, "You have not reviewed anything yet")
				return nil
			}
			tw := table(w)
			fmt.Fprintln(tw, "ID\tPRODUCT\tRATING\tCOMMENT")
			for _, r := range p.Content {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Product.Name, stars(r.Rating), r.Comment)
			}
			return tw.Flush()
		},
	}
	mine.Flags().IntVar(&page, "page", 0, "zero-based page index")

	del := &cobra.Command{
		Use:   "delete <review-id>",
		Short: "Delete one of your reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "review")
			if err != nil {
				return err
			}
			if err := requireLogin(a); err != nil {
				return err
			}
			if err := a.reviews.Delete(cmd.Context(), id); err != nil {
				return failure(api.Message(err, "Failed to delete review"), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review #%d deleted\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, submit, mine, del)
	return cmd
}
