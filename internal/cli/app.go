package cli

import (
	"fmt"
	"path/filepath"

	"github.com/khonloi/gash-storefront/internal/api"
	"github.com/khonloi/gash-storefront/internal/cache"
	"github.com/khonloi/gash-storefront/internal/cart"
	"github.com/khonloi/gash-storefront/internal/catalog"
	"github.com/khonloi/gash-storefront/internal/checkout"
	"github.com/khonloi/gash-storefront/internal/config"
	"github.com/khonloi/gash-storefront/internal/mailer"
	"github.com/khonloi/gash-storefront/internal/notify"
	"github.com/khonloi/gash-storefront/internal/orders"
	"github.com/khonloi/gash-storefront/internal/payment"
	"github.com/khonloi/gash-storefront/internal/retry"
	"github.com/khonloi/gash-storefront/internal/session"
	"github.com/khonloi/gash-storefront/internal/store"
	"github.com/khonloi/gash-storefront/internal/telemetry"
	"github.com/khonloi/gash-storefront/internal/toast"
	"github.com/khonloi/gash-storefront/internal/voucher"
)

// App wires the storefront's state managers over one session and one API
// client. Built fresh per CLI invocation; the durable parts live in the
// state store.
type App struct {
	Config    *config.Config
	Store     *store.Store
	Session   *session.Session
	API       *api.Client
	Accounts  *session.Remote
	Cache     *cache.Cache
	Cart      *cart.Manager
	Vouchers  *voucher.Applier
	Checkout  *checkout.Service
	Orders    *orders.Manager
	Notify    *notify.Manager
	Catalog   *catalog.Service
	Favorites *catalog.Favorites
	Payments  *payment.Client
	Mailer    *mailer.Client
}

func newApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	telemetry.Init(cfg.LogLevel)

	st, err := store.Open(filepath.Join(cfg.StateDir, "state.db"))
	if err != nil {
		return nil, err
	}

	toasts := toast.Func(func(level toast.Level, message string) {
		fmt.Printf("[%s] %s\n", level, message)
	})

	sess := session.New(st, cfg.Session.TTL, func(reason string) {
		fmt.Printf("session ended (%s), please log in again\n", reason)
	})

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, sess)
	client.OnUnauthorized = sess.HandleUnauthorized

	userID, _ := sess.UserID() // empty when logged out

	retryCfg := retry.Config{Attempts: cfg.Retry.Attempts, BaseDelay: cfg.Retry.BaseDelay}
	snapshots := cache.New(st, cfg.Cache.Freshness)
	cartMgr := cart.NewManager(cart.NewRemote(client), toasts, retryCfg, cfg.Cart.DebounceWindow)
	vouchers := voucher.NewApplier(voucher.NewRemote(client))
	payments := payment.NewClient(client)
	mail := mailer.NewClient(cfg.Mailer.Endpoint, cfg.Mailer.ServiceID, cfg.Mailer.OTPTemplate, cfg.Mailer.OrderTemplate)

	return &App{
		Config:    cfg,
		Store:     st,
		Session:   sess,
		API:       client,
		Accounts:  session.NewRemote(client),
		Cache:     snapshots,
		Cart:      cartMgr,
		Vouchers:  vouchers,
		Checkout:  checkout.NewService(checkout.NewRemote(client), payments, cartMgr, vouchers, mail, toasts),
		Orders:    orders.NewManager(orders.NewRemote(client), snapshots, retryCfg, toasts, userID),
		Notify:    notify.NewManager(notify.NewRemote(client), retryCfg, toasts),
		Catalog:   catalog.NewService(catalog.NewRemote(client), st, retryCfg, userID),
		Favorites: catalog.NewFavorites(catalog.NewRemote(client), toasts),
		Payments:  payments,
		Mailer:    mail,
	}, nil
}

func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
}
