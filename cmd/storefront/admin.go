package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/export"
	"storefront/internal/stores"
	"storefront/internal/upload"
	"storefront/internal/validate"
)

func adminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Back-office commands for admin and staff accounts",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// cobra runs only the nearest persistent hook
			if err := cmd.Root().PersistentPreRunE(cmd, nil); err != nil {
				return err
			}
			return requireAdmin(a)
		},
	}
	cmd.AddCommand(adminProductsCmd(a), adminCategoriesCmd(a), adminMediaCmd(a), adminOrdersCmd(a))
	return cmd
}

// apiFailure shows the backend's message when there is one.
func apiFailure(err error, fallback string) error {
	return failure(api.Message(err, fallback), err)
}

type productFlags struct {
	name, description, price, imageURL string
	category                           int64
}

func (f *productFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.price, "price", "", "price, e.g. 19.99")
	cmd.Flags().Int64Var(&f.category, "category", 0, "category id")
	cmd.Flags().StringVar(&f.imageURL, "image-url", "", "legacy single image URL")
}

// apply copies every flag the user set onto in and validates the result.
func (f *productFlags) apply(cmd *cobra.Command, in *domain.ProductInput) error {
	set := cmd.Flags().Changed
	if set("name") {
		in.Name = f.name
	}
	if set("description") {
		in.Description = f.description
	}
	if set("price") {
		p, err := parseDecimal(f.price, "price")
		if err != nil {
			return err
		}
		if p != nil {
			in.Price = *p
		}
	}
	if set("category") {
		in.CategoryID = f.category
	}
	if set("image-url") {
		in.ImageURL = f.imageURL
	}
	name, err := validate.Name(in.Name)
	if err != nil {
		return err
	}
	in.Name = name
	if err := validate.Price(in.Price); err != nil {
		return err
	}
	if in.CategoryID <= 0 {
		return fmt.Errorf("--category is required")
	}
	return nil
}

func adminProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "products", Short: "Manage products and stock"}

	var page, size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List every product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.products.AdminList(cmd.Context(), domain.ProductQuery{Page: page, Size: size})
			if err != nil {
				return apiFailure(err, "Failed to fetch products")
			}
			w := cmd.OutOrStdout()
			printProducts(w, p.Content)
			fmt.Fprintf(w, "page %d of %d, %d product(s)\n", p.Number+1, p.TotalPages, p.TotalElements)
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 0, "zero-based page index")
	list.Flags().IntVar(&size, "size", 20, "page size")

	var cf productFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in domain.ProductInput
			if err := cf.apply(cmd, &in); err != nil {
				return err
			}
			p, err := a.products.Create(cmd.Context(), in)
			if err != nil {
				return apiFailure(err, "Failed to create product")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created product #%d %s (%s)\n", p.ID, p.Name, money(p.Price))
			return nil
		},
	}
	cf.bind(create)

	var uf productFlags
	update := &cobra.Command{
		Use:   "update <product-id>",
		Short: "Change some fields of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			cur, err := a.products.Get(cmd.Context(), id)
			if err != nil {
				return apiFailure(err, "Failed to fetch product")
			}
			in := domain.ProductInput{Name: cur.Name, Description: cur.Description, Price: cur.Price, CategoryID: cur.CategoryID, ImageURL: cur.ImageURL}
			if err := uf.apply(cmd, &in); err != nil {
				return err
			}
			p, err := a.products.Update(cmd.Context(), id, in)
			if err != nil {
				return apiFailure(err, "Failed to update product")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated product #%d %s (%s)\n", p.ID, p.Name, money(p.Price))
			return nil
		},
	}
	uf.bind(update)

	del := &cobra.Command{
		Use:   "delete <product-id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			if err := a.products.Delete(cmd.Context(), id); err != nil {
				return apiFailure(err, "Failed to delete product")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted product #%d\n", id)
			return nil
		},
	}

	var setQty, addQty, removeQty int
	stock := &cobra.Command{
		Use:   "stock <product-id>",
		Short: "Show or change a product's stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			ctx, set := cmd.Context(), cmd.Flags().Changed
			var inv domain.Inventory
			switch {
			case set("set"):
				inv, err = a.products.SetInventory(ctx, id, setQty)
			case set("add"):
				inv, err = a.products.AddStock(ctx, id, addQty)
			case set("remove"):
				inv, err = a.products.RemoveStock(ctx, id, removeQty)
			default:
				inv, err = a.products.Inventory(ctx, id)
			}
			if err != nil {
				return apiFailure(err, "Failed to update stock")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product #%d: %d in stock\n", id, inv.Quantity)
			return nil
		},
	}
	stock.Flags().IntVar(&setQty, "set", 0, "set the stock to this quantity")
	stock.Flags().IntVar(&addQty, "add", 0, "add this many units")
	stock.Flags().IntVar(&removeQty, "remove", 0, "remove this many units")
	stock.MarkFlagsMutuallyExclusive("set", "add", "remove")

	var out string
	exp := &cobra.Command{
		Use:   "export",
		Short: "Write the whole catalog to an .xlsx workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			n, err := export.Products(cmd.Context(), a.products.AdminList, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return apiFailure(err, "Export failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d product(s) to %s\n", n, out)
			return nil
		},
	}
	exp.Flags().StringVarP(&out, "out", "o", "products.xlsx", "output file")

	cmd.AddCommand(list, create, update, del, stock, exp)
	return cmd
}

func adminCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "categories", Short: "Manage categories"}

	var desc string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := validate.Name(args[0])
			if err != nil {
				return err
			}
			c, err := a.products.CreateCategory(cmd.Context(), name, desc)
			if err != nil {
				return apiFailure(err, "Failed to create category")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category #%d %s\n", c.ID, c.Name)
			return nil
		},
	}

	update := &cobra.Command{
		Use:   "update <category-id> <name>",
		Short: "Rename a category, optionally replacing its description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			name, err := validate.Name(args[1])
			if err != nil {
				return err
			}
			var d *string
			if cmd.Flags().Changed("description") {
				d = &desc
			}
			c, err := a.products.UpdateCategory(cmd.Context(), id, name, d)
			if err != nil {
				return apiFailure(err, "Failed to update category")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Category #%d is now %s\n", c.ID, c.Name)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <category-id>",
		Short: "Delete an empty category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			if err := a.products.DeleteCategory(cmd.Context(), id); err != nil {
				return apiFailure(err, "Failed to delete category")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category #%d\n", id)
			return nil
		},
	}

	create.Flags().StringVar(&desc, "description", "", "category description")
	update.Flags().StringVar(&desc, "description", "", "new description (kept when omitted)")

	cmd.AddCommand(create, update, del)
	return cmd
}

func printMedia(cmd *cobra.Command, ms []domain.ProductMedia) {
	tw := table(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tTYPE\tORDER\tALT\tURL")
	for _, m := range ms {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", m.ID, m.MediaType, m.DisplayOrder, m.AltText, m.URL)
	}
	_ = tw.Flush()
}

func uploadCmd(a *app, kind upload.Kind) *cobra.Command {
	var alt string
	var order int
	cmd := &cobra.Command{
		Use:   "upload-" + strings.ToLower(kind.String()) + " <product-id> <file>",
		Short: "Upload a " + strings.ToLower(kind.String()) + " to a product's gallery",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			file, err := upload.FromPath(args[1])
			if err != nil {
				return err
			}
			form := upload.NewImageForm(a.media, id)
			if kind == upload.Video {
				form = upload.NewVideoForm(a.media, id)
			}
			if err := form.Select(file); err != nil {
				return err
			}
			errw := cmd.ErrOrStderr()
			form.OnProgress(func(p int) { fmt.Fprintf(errw, "\ruploading %s: %3d%%", file.Name, p) })

			var pos *int
			if cmd.Flags().Changed("order") {
				pos = &order
			}
			m, err := form.Upload(cmd.Context(), alt, pos)
			fmt.Fprintln(errw)
			if err != nil {
				return failure(form.State().Err, err)
			}
			printMedia(cmd, []domain.ProductMedia{*m})
			return nil
		},
	}
	cmd.Flags().StringVar(&alt, "alt", "", "alt text")
	cmd.Flags().IntVar(&order, "order", 0, "display order")
	return cmd
}

func adminMediaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "media", Short: "Manage product galleries"}

	list := &cobra.Command{
		Use:   "list <product-id>",
		Short: "List a product's media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			ms, err := a.media.ForProduct(cmd.Context(), id)
			if err != nil {
				return apiFailure(err, "Failed to fetch media")
			}
			if len(ms) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No media uploaded")
				return nil
			}
			printMedia(cmd, ms)
			return nil
		},
	}

	var alt string
	var order int
	update := &cobra.Command{
		Use:   "update <media-id>",
		Short: "Change alt text or display order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "media")
			if err != nil {
				return err
			}
			var in domain.MediaUpdate
			if cmd.Flags().Changed("alt") {
				in.AltText = &alt
			}
			if cmd.Flags().Changed("order") {
				in.DisplayOrder = &order
			}
			if in.AltText == nil && in.DisplayOrder == nil {
				return fmt.Errorf("nothing to change; pass --alt or --order")
			}
			m, err := a.media.Update(cmd.Context(), id, in)
			if err != nil {
				return apiFailure(err, "Failed to update media")
			}
			printMedia(cmd, []domain.ProductMedia{m})
			return nil
		},
	}
	update.Flags().StringVar(&alt, "alt", "", "alt text")
	update.Flags().IntVar(&order, "order", 0, "display order")

	del := &cobra.Command{
		Use:   "delete <media-id>",
		Short: "Delete a media item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "media")
			if err != nil {
				return err
			}
			if err := a.media.Delete(cmd.Context(), id); err != nil {
				return apiFailure(err, "Failed to delete media")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted media #%d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, uploadCmd(a, upload.Image), uploadCmd(a, upload.Video), update, del)
	return cmd
}

func adminOrdersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "orders", Short: "Manage every customer's orders"}

	var page int
	list := &cobra.Command{
		Use:   "list",
		Short: "List all orders, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := stores.NewAdminOrderStore(a.orders)
			if err := st.Fetch(cmd.Context(), page); err != nil {
				return failure(st.State().Err, err)
			}
			s, w := st.State(), cmd.OutOrStdout()
			if len(s.Orders) == 0 {
				fmt.Fprintln(w, "No orders")
				return nil
			}
			printOrders(w, s.Orders)
			footer(w, s.Pagination)
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 0, "zero-based page index")

	status := &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Move an order to PENDING, PROCESSING, SHIPPED, DELIVERED or CANCELLED",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			next := domain.OrderStatus(strings.ToUpper(args[1]))
			st := stores.NewAdminOrderStore(a.orders)
			if err := st.UpdateStatus(cmd.Context(), id, next); err != nil {
				return failure(st.State().Err, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order #%d is now %s\n", id, next)
			return nil
		},
	}

	cmd.AddCommand(list, status)
	return cmd
}
