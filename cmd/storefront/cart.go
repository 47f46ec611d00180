package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"storefront/internal/domain"
	"storefront/internal/stores"
)

func printCart(w io.Writer, c *domain.CartResponse) {
	if c == nil || len(c.Cart.Items) == 0 {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "PRODUCT ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range c.Cart.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", it.Product.ID, it.Product.Name, it.Quantity, money(it.Product.Price), money(it.Subtotal))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d line(s), total %s\n", c.ItemCount, money(c.Total))
}

// cartRun wraps a cart mutation: it needs a login, runs fn against a fresh
// store and prints the refetched cart.
func cartRun(a *app, fn func(cmd *cobra.Command, st *stores.CartStore, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(a); err != nil {
			return err
		}
		st := stores.NewCartStore(a.cart)
		if err := fn(cmd, st, args); err != nil {
			return failure(st.State().Err, err)
		}
		printCart(cmd.OutOrStdout(), st.State().Cart)
		return nil
	}
}

func cartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "cart", Short: "Manage the shopping cart"}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		RunE: cartRun(a, func(cmd *cobra.Command, st *stores.CartStore, _ []string) error {
			return st.Fetch(cmd.Context())
		}),
	}

	var qty int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: cartRun(a, func(cmd *cobra.Command, st *stores.CartStore, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			return st.Add(cmd.Context(), id, qty)
		}),
	}
	add.Flags().IntVarP(&qty, "qty", "q", 1, "quantity to add")

	update := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: cartRun(a, func(cmd *cobra.Command, st *stores.CartStore, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return st.UpdateQuantity(cmd.Context(), id, n)
		}),
	}

	remove := &cobra.Command{
		Use:     "remove <product-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a line from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: cartRun(a, func(cmd *cobra.Command, st *stores.CartStore, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			return st.Remove(cmd.Context(), id)
		}),
	}

	clearCart := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: cartRun(a, func(cmd *cobra.Command, st *stores.CartStore, _ []string) error {
			return st.Clear(cmd.Context())
		}),
	}

	cmd.AddCommand(show, add, update, remove, clearCart)
	return cmd
}

func checkoutCmd(a *app) *cobra.Command {
	var req domain.CheckoutRequest
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for everything in the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireLogin(a); err != nil {
				return err
			}
			ctx, w := cmd.Context(), cmd.OutOrStdout()
			cart := stores.NewCartStore(a.cart)
			if err := cart.Fetch(ctx); err != nil {
				return failure(cart.State().Err, err)
			}
			orders := stores.NewOrderStore(a.orders)
			o, err := orders.Checkout(ctx, req, cart.State().ItemCount())
			if err != nil {
				return failure(orders.State().Err, err)
			}
			fmt.Fprintln(w, "Order placed.")
			printOrder(w, o)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.ShippingAddress, "address", "a", "", "shipping address")
	cmd.Flags().StringVar(&req.VoucherCode, "voucher", "", "voucher code")
	return cmd
}
