package cli

import (
	"github.com/spf13/cobra"
)

// Execute runs the shopfront CLI.
func Execute() error {
	var app *App

	root := &cobra.Command{
		Use:           "shopfront",
		Short:         "Gash storefront client",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			app, err = newApp()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				app.Close()
			}
		},
	}

	root.AddCommand(
		newLoginCmd(&app),
		newLogoutCmd(&app),
		newProductsCmd(&app),
		newCartCmd(&app),
		newFavoritesCmd(&app),
		newCheckoutCmd(&app),
		newOrdersCmd(&app),
		newNotificationsCmd(&app),
		newWatchCmd(&app),
	)

	return root.Execute()
}
