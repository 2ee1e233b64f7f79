package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khonloi/gash-storefront/internal/cache"
)

func newOrdersCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect order history",
	}

	var force bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.Orders.Refresh(cmd.Context(), cache.Options{ForceRefresh: force}); err != nil {
				return err
			}
			for _, o := range a.Orders.Orders() {
				fmt.Printf("%-12s %-10s %-8s %12s  %s\n",
					o.ID, o.Status, o.PaymentStatus, o.Payable().StringFixed(0), o.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	list.Flags().BoolVar(&force, "force", false, "bypass the snapshot cache")

	show := &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order with its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			o, err := a.Orders.Detail(cmd.Context(), args[0], cache.Options{})
			if err != nil {
				return err
			}
			fmt.Printf("order %s  %s/%s\n", o.ID, o.Status, o.PaymentStatus)
			fmt.Printf("ship to %s, %s (%s)\n", o.Recipient, o.Address, o.Phone)
			for _, it := range o.Items {
				fmt.Printf("  %-30s qty %2d  %12s\n", it.Name, it.Quantity, it.UnitPrice.StringFixed(0))
			}
			if o.VoucherCode != "" {
				fmt.Printf("voucher %s, discount %s\n", o.VoucherCode, o.Discount.StringFixed(0))
			}
			fmt.Printf("payable %s\n", o.Payable().StringFixed(0))
			return nil
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel an order that has not shipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.Orders.Refresh(cmd.Context(), cache.Options{}); err != nil {
				return err
			}
			return a.Orders.Cancel(cmd.Context(), args[0])
		},
	}

	feedback := &cobra.Command{
		Use:   "feedback <order-id> <text...>",
		Short: "Leave feedback on a delivered order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.Orders.Refresh(cmd.Context(), cache.Options{}); err != nil {
				return err
			}
			return a.Orders.SubmitFeedback(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	}

	cmd.AddCommand(list, show, cancel, feedback)
	return cmd
}

func newNotificationsCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Read and manage notifications",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.Notify.Refresh(cmd.Context()); err != nil {
				return err
			}
			for _, n := range a.Notify.Notifications() {
				mark := "*"
				if n.Read {
					mark = " "
				}
				fmt.Printf("%s %-12s %s: %s\n", mark, n.ID, n.Title, n.Message)
			}
			fmt.Printf("%d unread\n", a.Notify.UnreadCount())
			return nil
		},
	}

	read := &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.Notify.Refresh(cmd.Context()); err != nil {
				return err
			}
			return a.Notify.MarkRead(cmd.Context(), args[0])
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			if err := a.Notify.Refresh(cmd.Context()); err != nil {
				return err
			}
			return a.Notify.Delete(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, read, rm)
	return cmd
}
