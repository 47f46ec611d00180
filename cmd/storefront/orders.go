package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/stores"
)

func ordersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "orders", Short: "Your order history"}

	var page int
	list := &cobra.Command{
		Use:   "list",
		Short: "List your orders, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireLogin(a); err != nil {
				return err
			}
			st := stores.NewOrderStore(a.orders)
			if err := st.Fetch(cmd.Context(), page); err != nil {
				return failure(st.State().Err, err)
			}
			s, w := st.State(), cmd.OutOrStdout()
			if len(s.Orders) == 0 {
				fmt.Fprintln(w, "No orders yet")
				return nil
			}
			printOrders(w, s.Orders)
			footer(w, s.Pagination)
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 0, "zero-based page index")

	show := &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			if err := requireLogin(a); err != nil {
				return err
			}
			st := stores.NewOrderStore(a.orders)
			if err := st.FetchOrder(cmd.Context(), id); err != nil {
				return failure(st.State().Err, err)
			}
			printOrder(cmd.OutOrStdout(), *st.State().Current)
			return nil
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel a pending or processing order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			if err := requireLogin(a); err != nil {
				return err
			}
			st := stores.NewOrderStore(a.orders)
			if err := st.Cancel(cmd.Context(), id); err != nil {
				return failure(st.State().Err, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order #%d cancelled\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, show, cancel)
	return cmd
}
