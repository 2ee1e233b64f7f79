package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/khonloi/gash-storefront/internal/cart"
	"github.com/khonloi/gash-storefront/internal/domain"
	"github.com/khonloi/gash-storefront/internal/toast"
	"github.com/khonloi/gash-storefront/internal/voucher"
)

type Method string

const (
	MethodCOD     Method = "cod"
	MethodGateway Method = "gateway"
)

var (
	ErrEmptySelection = errors.New("no items selected for checkout")
	ErrPaymentURL     = errors.New("payment url request failed")
)

// API is the remote order-creation surface.
type API interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (domain.Order, error)
	RemoveCartItems(ctx context.Context, itemIDs []string) error
}

// PaymentGateway requests a redirect URL for gateway-paid orders.
type PaymentGateway interface {
	RequestURL(ctx context.Context, orderID string) (string, error)
}

// Mailer sends the best-effort order confirmation. Failures never block.
type Mailer interface {
	SendOrderStatus(ctx context.Context, email, orderID, status string)
}

type CreateOrderRequest struct {
	IdempotencyKey string            `json:"idempotency_key"`
	Recipient      string            `json:"recipient"`
	Address        string            `json:"address"`
	Phone          string            `json:"phone"`
	VoucherCode    string            `json:"voucher_code,omitempty"`
	Total          decimal.Decimal   `json:"total"`
	Discount       decimal.Decimal   `json:"discount"`
	Method         Method            `json:"payment_method"`
	Items          []CreateOrderItem `json:"items"`
}

type CreateOrderItem struct {
	VariantID string          `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Request is the user's checkout submission.
type Request struct {
	Recipient string
	Address   string
	Phone     string
	Email     string
	Method    Method
}

// Result carries the created order and, for gateway payments, the redirect
// URL the caller must navigate to.
type Result struct {
	Order      domain.Order
	PaymentURL string
}

// Service drives order submission: client-side validation, one creation
// call, then the payment-method branch.
type Service struct {
	api      API
	gateway  PaymentGateway
	cart     *cart.Manager
	vouchers *voucher.Applier
	mailer   Mailer
	toasts   toast.Toaster
}

func NewService(api API, gateway PaymentGateway, c *cart.Manager, v *voucher.Applier, mailer Mailer, toasts toast.Toaster) *Service {
	if toasts == nil {
		toasts = toast.Nop
	}
	return &Service{
		api:      api,
		gateway:  gateway,
		cart:     c,
		vouchers: v,
		mailer:   mailer,
		toasts:   toasts,
	}
}

// Submit validates, creates the order and branches on payment method. A
// creation failure aborts the whole flow; no partial order is assumed to
// exist client-side. For COD orders, cart cleanup after creation is
// best-effort and never rolls the order back.
func (s *Service) Submit(ctx context.Context, req Request) (Result, error) {
	if err := validateShipping(req.Recipient, req.Address, req.Phone); err != nil {
		return Result{}, err
	}

	items := s.cart.CheckedItems()
	if len(items) == 0 {
		return Result{}, ErrEmptySelection
	}

	total := s.cart.Total()
	discount := s.vouchers.Discount(total)
	var code string
	if v, ok := s.vouchers.Active(); ok {
		code = v.NormalizedCode()
	}

	create := CreateOrderRequest{
		IdempotencyKey: uuid.NewString(),
		Recipient:      req.Recipient,
		Address:        req.Address,
		Phone:          req.Phone,
		VoucherCode:    code,
		Total:          total.Sub(discount),
		Discount:       discount,
		Method:         req.Method,
		Items:          toOrderItems(items),
	}

	order, err := s.api.CreateOrder(ctx, create)
	if err != nil {
		return Result{}, fmt.Errorf("create order: %w", err)
	}

	s.vouchers.Remove()

	switch req.Method {
	case MethodGateway:
		url, errURL := s.gateway.RequestURL(ctx, order.ID)
		if errURL != nil {
			// The order exists and stays unpaid; the user can retry payment
			// from the order page. No automatic retry here.
			return Result{Order: order}, fmt.Errorf("%w: %v", ErrPaymentURL, errURL)
		}
		return Result{Order: order, PaymentURL: url}, nil

	default:
		s.cleanupCart(ctx, items)
		if s.mailer != nil && req.Email != "" {
			s.mailer.SendOrderStatus(ctx, req.Email, order.ID, order.Status.String())
		}
		s.toasts.Toast(toast.LevelSuccess, "Order placed")
		return Result{Order: order}, nil
	}
}

// cleanupCart prunes purchased items. The order is already placed, so
// failures are logged and swallowed.
func (s *Service) cleanupCart(ctx context.Context, items []domain.CartItem) {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	if err := s.api.RemoveCartItems(ctx, ids); err != nil {
		slog.Warn("post-order cart cleanup failed", "items", len(ids), "error", err)
	}
	s.cart.Drop(ids)
}

func toOrderItems(items []domain.CartItem) []CreateOrderItem {
	out := make([]CreateOrderItem, len(items))
	for i, it := range items {
		out[i] = CreateOrderItem{
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	return out
}
