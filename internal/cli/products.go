package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khonloi/gash-storefront/internal/catalog"
	"github.com/khonloi/gash-storefront/internal/domain"
)

func newProductsCmd(app **App) *cobra.Command {
	var (
		search   string
		category string
		minPrice string
		maxPrice string
		sortBy   string
		saved    bool
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse or search the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app

			if search != "" {
				products, err := a.Catalog.Search(cmd.Context(), search)
				if err != nil {
					return err
				}
				printProducts(products)
				return nil
			}

			filters := catalog.Filters{
				CategoryID: category,
				MinPrice:   minPrice,
				MaxPrice:   maxPrice,
				Sort:       sortBy,
			}
			if saved {
				filters = a.Catalog.SavedFilters()
			}
			products, err := a.Catalog.Products(cmd.Context(), filters)
			if err != nil {
				return err
			}
			printProducts(products)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "free-text search instead of listing")
	cmd.Flags().StringVar(&category, "category", "", "filter by category id")
	cmd.Flags().StringVar(&minPrice, "min-price", "", "minimum price")
	cmd.Flags().StringVar(&maxPrice, "max-price", "", "maximum price")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort order")
	cmd.Flags().BoolVar(&saved, "saved", false, "use the saved filter preferences")
	return cmd
}

func printProducts(products []domain.Product) {
	if len(products) == 0 {
		fmt.Println("no products found")
		return
	}
	for _, p := range products {
		fmt.Printf("%-12s %-40s %12s  sold %d\n", p.ID, p.Name, p.Price.StringFixed(0), p.Sold)
	}
}
