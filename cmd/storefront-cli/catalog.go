package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/senira34/lolipop-wear/internal/domain"
)

func catalogCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse products and filter options",
	}
	cmd.AddCommand(catalogListCmd(opts), catalogFiltersCmd(opts), catalogShowCmd(opts))
	return cmd
}

func catalogListCmd(opts *globalOptions) *cobra.Command {
	var subcategory, size, color, fit string

	cmd := &cobra.Command{
		Use:   "list [category]",
		Short: "List products, optionally for one category",
		Example: `  lolipop catalog list
  lolipop catalog list men --size M --fit "Slim Fit"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			var products []*domain.Product
			if len(args) == 1 {
				products, err = a.client.ListByCategory(cmd.Context(), args[0])
			} else {
				products, err = a.client.ListProducts(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("list products: %w", err)
			}

			products = filterProducts(products, productFilter{
				Subcategory: subcategory,
				Size:        size,
				Color:       color,
				Fit:         fit,
			})
			if a.json {
				return a.printJSON(products)
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSUBCATEGORY\tFIT\tPRICE\tSIZES\tCOLORS")
			for _, p := range products {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
					p.ID, p.Name, p.Subcategory, p.Fit, p.Price,
					strings.Join(p.Sizes, ","), strings.Join(p.Colors, ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&subcategory, "subcategory", "", "only products in this subcategory")
	cmd.Flags().StringVar(&size, "size", "", "only products offered in this size")
	cmd.Flags().StringVar(&color, "color", "", "only products offered in this color")
	cmd.Flags().StringVar(&fit, "fit", "", "only products with this fit")

	return cmd
}

func catalogFiltersCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filters <category>",
		Short: "Show the filter options for a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			facets, err := a.client.Filters(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch filters: %w", err)
			}
			if a.json {
				return a.printJSON(facets)
			}

			fmt.Fprintln(a.out, "Subcategories:")
			for _, s := range facets.Subcategories {
				fmt.Fprintf(a.out, "  %s (%d)\n", s, facets.CategoryCounts[s])
			}
			fmt.Fprintf(a.out, "Sizes:  %s\n", strings.Join(facets.Sizes, ", "))
			fmt.Fprintf(a.out, "Colors: %s\n", strings.Join(facets.Colors, ", "))
			fmt.Fprintf(a.out, "Fits:   %s\n", strings.Join(facets.Fits, ", "))
			return nil
		},
	}
}

func catalogShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show one product",
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

			p, err := a.client.GetProduct(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get product: %w", err)
			}
			if a.json {
				return a.printJSON(p)
			}

			fmt.Fprintf(a.out, "%s  (#%d)\n", p.Name, p.ID)
			fmt.Fprintf(a.out, "  %s / %s, %s\n", p.Category, p.Subcategory, p.Fit)
			fmt.Fprintf(a.out, "  Price:  %.2f\n", p.Price)
			fmt.Fprintf(a.out, "  Sizes:  %s\n", strings.Join(p.Sizes, ", "))
			fmt.Fprintf(a.out, "  Colors: %s\n", strings.Join(p.Colors, ", "))
			fmt.Fprintf(a.out, "  Stock:  %d\n", p.Stock)
			if p.Description != "" {
				fmt.Fprintf(a.out, "  %s\n", p.Description)
			}
			return nil
		},
	}
}

// productFilter narrows a listing the way the shop's filter sidebar does.
// Empty fields match everything.
type productFilter struct {
	Subcategory string
	Size        string
	Color       string
	Fit         string
}

func filterProducts(products []*domain.Product, f productFilter) []*domain.Product {
	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if f.Subcategory != "" && p.Subcategory != f.Subcategory {
			continue
		}
		if f.Fit != "" && string(p.Fit) != f.Fit {
			continue
		}
		if f.Size != "" && !slices.Contains(p.Sizes, f.Size) {
			continue
		}
		if f.Color != "" && !slices.Contains(p.Colors, f.Color) {
			continue
		}
		out = append(out, p)
	}
	return out
}
