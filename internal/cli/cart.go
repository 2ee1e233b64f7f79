package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newCartCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and edit the cart",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the cart with line totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.Cart.Refresh(cmd.Context()); err != nil {
				return err
			}
			for _, it := range a.Cart.Items() {
				mark := " "
				if it.Checked {
					mark = "x"
				}
				fmt.Printf("[%s] %-12s %-30s qty %2d  %12s\n", mark, it.ID, it.Name, it.Quantity, it.LineTotal().StringFixed(0))
			}
			fmt.Printf("total (checked): %s\n", a.Cart.Total().StringFixed(0))
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id> <variant-id> <quantity>",
		Short: "Add a variant to the cart",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("quantity must be a number")
			}
			return (*app).Cart.Add(cmd.Context(), args[0], args[1], qty)
		},
	}

	qty := &cobra.Command{
		Use:   "qty <item-id> <quantity>",
		Short: "Change a line's quantity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a number")
			}
			if err := a.Cart.Refresh(cmd.Context()); err != nil {
				return err
			}
			a.Cart.SetQuantity(args[0], n)
			// Give the debounced update time to flush before the process exits.
			time.Sleep(a.Config.Cart.DebounceWindow + time.Second)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.Cart.Refresh(cmd.Context()); err != nil {
				return err
			}
			return a.Cart.Remove(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, add, qty, rm)
	return cmd
}

func newFavoritesCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List or toggle favorites",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List favorite products",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.Favorites.Refresh(cmd.Context()); err != nil {
				return err
			}
			for _, f := range a.Favorites.List() {
				fmt.Println(f.ProductID)
			}
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <product-id>",
		Short: "Add or remove a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.Favorites.Refresh(cmd.Context()); err != nil {
				return err
			}
			return a.Favorites.Toggle(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, toggle)
	return cmd
}
