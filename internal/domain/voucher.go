package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type VoucherType string

const (
	VoucherTypePercentage VoucherType = "percentage"
	VoucherTypeFixed      VoucherType = "fixed"
)

type Voucher struct {
	Code        string           `json:"code"`
	Type        VoucherType      `json:"type"`
	Value       decimal.Decimal  `json:"value"`
	MinOrder    decimal.Decimal  `json:"min_order"`
	MaxDiscount *decimal.Decimal `json:"max_discount,omitempty"`
}

// NormalizedCode returns the code as compared server-side: trimmed and
// case-insensitive.
func (v Voucher) NormalizedCode() string {
	return strings.ToUpper(strings.TrimSpace(v.Code))
}

// Eligible reports whether the order total meets the voucher's minimum.
func (v Voucher) Eligible(total decimal.Decimal) bool {
	return total.GreaterThanOrEqual(v.MinOrder)
}

// DiscountFor computes the discount for the given order total. Percentage
// vouchers are capped at MaxDiscount when one is set; fixed vouchers apply
// their value verbatim.
func (v Voucher) DiscountFor(total decimal.Decimal) decimal.Decimal {
	switch v.Type {
	case VoucherTypePercentage:
		d := total.Mul(v.Value).Div(decimal.NewFromInt(100))
		if v.MaxDiscount != nil && d.GreaterThan(*v.MaxDiscount) {
			return *v.MaxDiscount
		}
		return d
	case VoucherTypeFixed:
		return v.Value
	}
	return decimal.Zero
}
