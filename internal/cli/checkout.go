package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khonloi/gash-storefront/internal/checkout"
)

func newCheckoutCmd(app **App) *cobra.Command {
	var (
		recipient string
		address   string
		phone     string
		email     string
		method    string
		code      string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the checked cart items",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			ctx := cmd.Context()

			if err := a.Cart.Refresh(ctx); err != nil {
				return err
			}

			if code != "" {
				discount, err := a.Vouchers.Apply(ctx, code, a.Cart.Total())
				if err != nil {
					return fmt.Errorf("voucher rejected: %w", err)
				}
				fmt.Printf("voucher applied, discount %s\n", discount.StringFixed(0))
			}

			result, err := a.Checkout.Submit(ctx, checkout.Request{
				Recipient: recipient,
				Address:   address,
				Phone:     phone,
				Email:     email,
				Method:    checkout.Method(method),
			})
			if err != nil {
				if errors.Is(err, checkout.ErrPaymentURL) {
					fmt.Printf("order %s created but unpaid; retry payment from the orders page\n", result.Order.ID)
				}
				return err
			}

			fmt.Printf("order %s placed, payable %s\n", result.Order.ID, result.Order.Payable().StringFixed(0))
			if result.PaymentURL != "" {
				fmt.Printf("complete payment at: %s\n", result.PaymentURL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&recipient, "recipient", "", "recipient name")
	cmd.Flags().StringVar(&address, "address", "", "shipping address")
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&email, "email", "", "email for the order confirmation")
	cmd.Flags().StringVar(&method, "method", string(checkout.MethodCOD), "payment method: cod or gateway")
	cmd.Flags().StringVar(&code, "voucher", "", "voucher code to apply")
	return cmd
}
