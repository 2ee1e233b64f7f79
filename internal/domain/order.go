package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipping  OrderStatus = "SHIPPING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo guards the forward status flow plus cancellation from any
// non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	switch s {
	case OrderStatusPending:
		return next == OrderStatusConfirmed
	case OrderStatusConfirmed:
		return next == OrderStatusShipping
	case OrderStatusShipping:
		return next == OrderStatusDelivered
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// OrderItem is a line frozen at order time; Name and Image are display data
// resolved from the variant and may arrive later than the rest of the line.
type OrderItem struct {
	VariantID string          `json:"variant_id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (i OrderItem) Resolved() bool {
	return i.Name != "" && i.Image != ""
}

type Order struct {
	ID            string          `json:"id"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Recipient     string          `json:"recipient"`
	Address       string          `json:"address"`
	Phone         string          `json:"phone"`
	VoucherCode   string          `json:"voucher_code,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Discount      decimal.Decimal `json:"discount"`
	Items         []OrderItem     `json:"items"`
	Feedback      string          `json:"feedback,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Payable is the amount actually charged: total net of discount, floored at
// zero.
func (o Order) Payable() decimal.Decimal {
	p := o.Total.Sub(o.Discount)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}
