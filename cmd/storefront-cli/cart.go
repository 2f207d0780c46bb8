package main

import (
	"fmt"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/senira34/lolipop-wear/internal/cart"
	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/pricing"
)

func cartCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}
	cmd.AddCommand(
		cartShowCmd(opts),
		cartAddCmd(opts),
		cartUpdateCmd(opts),
		cartRemoveCmd(opts),
		cartClearCmd(opts),
	)
	return cmd
}

func cartShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show cart lines and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.openCart(cmd.Context(), opts.redisSession)
			if err != nil {
				return err
			}
			return printCart(a, c)
		},
	}
}

func cartAddCmd(opts *globalOptions) *cobra.Command {
	var size, color string
	var quantity int

	cmd := &cobra.Command{
		Use:     "add <product-id>",
		Short:   "Add a product to the cart",
		Example: `  lolipop cart add 12 --size M --color Black --qty 2`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}

			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.client.GetProduct(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get product: %w", err)
			}
			item, err := lineFor(p, size, color, quantity)
			if err != nil {
				return err
			}

			c, err := a.openCart(cmd.Context(), opts.redisSession)
			if err != nil {
				return err
			}
			if err := c.Add(cmd.Context(), item); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %d x %s (%s, %s)\n", item.Quantity, item.Name, item.Size, item.Color)
			return nil
		},
	}

	cmd.Flags().StringVar(&size, "size", "", "size to buy (required when the product has sizes)")
	cmd.Flags().StringVar(&color, "color", "", "color to buy (required when the product has colors)")
	cmd.Flags().IntVar(&quantity, "qty", 1, "quantity")

	return cmd
}

func cartUpdateCmd(opts *globalOptions) *cobra.Command {
	var size, color string

	cmd := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Change the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}

			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.openCart(cmd.Context(), opts.redisSession)
			if err != nil {
				return err
			}
			return c.UpdateQuantity(cmd.Context(), cart.Key{ProductID: id, Size: size, Color: color}, qty)
		},
	}

	cmd.Flags().StringVar(&size, "size", "", "size of the line")
	cmd.Flags().StringVar(&color, "color", "", "color of the line")

	return cmd
}

func cartRemoveCmd(opts *globalOptions) *cobra.Command {
	var size, color string

	cmd := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}

			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.openCart(cmd.Context(), opts.redisSession)
			if err != nil {
				return err
			}
			return c.Remove(cmd.Context(), cart.Key{ProductID: id, Size: size, Color: color})
		},
	}

	cmd.Flags().StringVar(&size, "size", "", "size of the line")
	cmd.Flags().StringVar(&color, "color", "", "color of the line")

	return cmd
}

func cartClearCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.openCart(cmd.Context(), opts.redisSession)
			if err != nil {
				return err
			}
			return c.Clear(cmd.Context())
		},
	}
}

// lineFor snapshots a product into a cart line, checking the chosen variant.
func lineFor(p *domain.Product, size, color string, quantity int) (cart.Item, error) {
	if len(p.Sizes) > 0 && !slices.Contains(p.Sizes, size) {
		return cart.Item{}, fmt.Errorf("size %q not available for %s, choose one of %v", size, p.Name, p.Sizes)
	}
	if len(p.Colors) > 0 && !slices.Contains(p.Colors, color) {
		return cart.Item{}, fmt.Errorf("color %q not available for %s, choose one of %v", color, p.Name, p.Colors)
	}
	if quantity < 1 {
		return cart.Item{}, cart.ErrInvalidQuantity
	}
	return cart.Item{
		ProductID: p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Price:     p.Price,
		Size:      size,
		Color:     color,
		Quantity:  quantity,
	}, nil
}

func printCart(a *app, c *cart.Cart) error {
	quote := a.cfg.PricingRules().Quote(c.Lines())
	if a.json {
		return a.printJSON(map[string]any{
			"items":    c.Items(),
			"count":    c.Count(),
			"subtotal": pricing.Float(quote.Subtotal),
			"shipping": pricing.Float(quote.Shipping),
			"tax":      pricing.Float(quote.Tax),
			"total":    pricing.Float(quote.Total),
		})
	}

	if c.IsEmpty() {
		fmt.Fprintln(a.out, "Your cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tCOLOR\tQTY\tPRICE\tLINE")
	for _, it := range c.Items() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%.2f\t%.2f\n",
			it.ProductID, it.Name, it.Size, it.Color, it.Quantity, it.Price, it.Price*float64(it.Quantity))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nItems:    %d\n", c.Count())
	fmt.Fprintf(a.out, "Subtotal: %s\n", quote.Subtotal.StringFixed(2))
	fmt.Fprintf(a.out, "Shipping: %s\n", quote.Shipping.StringFixed(2))
	if !quote.Tax.IsZero() {
		fmt.Fprintf(a.out, "Tax:      %s\n", quote.Tax.StringFixed(2))
	}
	fmt.Fprintf(a.out, "Total:    %s\n", quote.Total.StringFixed(2))
	return nil
}
