package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khonloi/gash-storefront/internal/cache"
	"github.com/khonloi/gash-storefront/internal/domain"
	"github.com/khonloi/gash-storefront/internal/realtime"
)

// watch keeps the realtime channel open and folds pushed events into the
// local managers, with the periodic poll as a redundant fallback.
func newWatchCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream realtime updates until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app

			userID, err := a.Session.UserID()
			if err != nil {
				return fmt.Errorf("watch requires a logged-in session: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Prime local state before streaming deltas into it.
			if err := a.Orders.Refresh(ctx, cache.Options{}); err != nil {
				slog.Warn("initial order refresh failed", "error", err)
			}
			if err := a.Notify.Refresh(ctx); err != nil {
				slog.Warn("initial notification refresh failed", "error", err)
			}

			ch := realtime.New(a.Config.Realtime.URL, userID, a.Config.Realtime.PollInterval)
			ch.OnPoll(func(ctx context.Context) {
				if err := a.Orders.Refresh(ctx, cache.Options{ForceRefresh: true, Background: true}); err != nil {
					slog.Debug("poll order refresh failed", "error", err)
				}
			})
			ch.OnPoll(func(ctx context.Context) {
				if err := a.Notify.Refresh(ctx); err != nil {
					slog.Debug("poll notification refresh failed", "error", err)
				}
			})

			go dispatchEvents(ctx, a, ch)

			err = ch.Run(ctx)
			if errors.Is(err, context.Canceled) {
				fmt.Println("watch stopped")
				return nil
			}
			return err
		},
	}
}

func dispatchEvents(ctx context.Context, a *App, ch *realtime.Channel) {
	orderSub := ch.Subscribe(realtime.EventOrderUpdated)
	defer orderSub.Close()
	cartSub := ch.Subscribe(realtime.EventCartBadge)
	defer cartSub.Close()
	favSub := ch.Subscribe(realtime.EventFavoriteCount)
	defer favSub.Close()
	notifCreated := ch.Subscribe(realtime.EventNotificationCreated)
	defer notifCreated.Close()
	notifDeleted := ch.Subscribe(realtime.EventNotificationDeleted)
	defer notifDeleted.Close()
	chatSub := ch.Subscribe(realtime.EventChatMessage)
	defer chatSub.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case e := <-orderSub.C:
			var order domain.Order
			if err := json.Unmarshal(e.Data, &order); err != nil {
				slog.Warn("bad order push", "error", err)
				continue
			}
			a.Orders.ApplyPush(order)
			fmt.Printf("order %s is now %s\n", order.ID, order.Status)

		case e := <-cartSub.C:
			var p realtime.CountPayload
			if json.Unmarshal(e.Data, &p) == nil {
				a.Cart.SetBadge(p.Count)
			}

		case e := <-favSub.C:
			var p realtime.CountPayload
			if json.Unmarshal(e.Data, &p) == nil {
				a.Favorites.SetCount(p.Count)
			}

		case e := <-notifCreated.C:
			var n domain.Notification
			if err := json.Unmarshal(e.Data, &n); err != nil {
				slog.Warn("bad notification push", "error", err)
				continue
			}
			a.Notify.ApplyCreatedPush(n)
			fmt.Printf("new notification: %s\n", n.Title)

		case e := <-notifDeleted.C:
			var p realtime.DeletedPayload
			if json.Unmarshal(e.Data, &p) == nil {
				a.Notify.ApplyDeletedPush(p.ID)
			}

		case e := <-chatSub.C:
			var msg realtime.ChatMessage
			if json.Unmarshal(e.Data, &msg) == nil {
				fmt.Printf("chat %s: %s\n", msg.From, msg.Message)
			}
		}
	}
}
