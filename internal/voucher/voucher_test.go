package voucher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khonloi/gash-storefront/internal/domain"
)

type mockValidator struct {
	m        sync.Mutex
	vouchers map[string]domain.Voucher
	err      error
	calls    int
	block    chan struct{}
}

func (v *mockValidator) Validate(_ context.Context, code string) (domain.Voucher, error) {
	v.m.Lock()
	v.calls++
	block := v.block
	v.m.Unlock()
	if block != nil {
		<-block
	}
	v.m.Lock()
	defer v.m.Unlock()
	if v.err != nil {
		return domain.Voucher{}, v.err
	}
	voucher, ok := v.vouchers[code]
	if !ok {
		return domain.Voucher{}, errors.New("voucher not found")
	}
	return voucher, nil
}

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func sale10() domain.Voucher {
	cap := d(30000)
	return domain.Voucher{
		Code:        "SALE10",
		Type:        domain.VoucherTypePercentage,
		Value:       d(10),
		MinOrder:    d(100000),
		MaxDiscount: &cap,
	}
}

func TestApply_PercentageDiscount(t *testing.T) {
	api := &mockValidator{vouchers: map[string]domain.Voucher{"SALE10": sale10()}}
	a := NewApplier(api)

	discount, err := a.Apply(context.Background(), "SALE10", d(250000))
	require.NoError(t, err)
	assert.True(t, discount.Equal(d(25000)), "got %s", discount)
	assert.Equal(t, StateApplied, a.State())

	v, ok := a.Active()
	require.True(t, ok)
	assert.Equal(t, "SALE10", v.Code)
}

func TestApply_MaxDiscountCapBinds(t *testing.T) {
	api := &mockValidator{vouchers: map[string]domain.Voucher{"SALE10": sale10()}}
	a := NewApplier(api)

	// 10% of 500000 is 50000, above the 30000 cap.
	discount, err := a.Apply(context.Background(), "SALE10", d(500000))
	require.NoError(t, err)
	assert.True(t, discount.Equal(d(30000)), "got %s", discount)
}

func TestApply_BelowMinimumRejected(t *testing.T) {
	api := &mockValidator{vouchers: map[string]domain.Voucher{"SALE10": sale10()}}
	a := NewApplier(api)

	_, err := a.Apply(context.Background(), "SALE10", d(50000))
	assert.ErrorIs(t, err, ErrBelowMinOrder)
	assert.Equal(t, StateNone, a.State())
	_, ok := a.Active()
	assert.False(t, ok)
}

func TestApply_EmptyCodeRejectedWithoutNetwork(t *testing.T) {
	api := &mockValidator{}
	a := NewApplier(api)

	_, err := a.Apply(context.Background(), "   ", d(250000))
	assert.ErrorIs(t, err, ErrEmptyCode)
	assert.Equal(t, 0, api.calls)
}

func TestApply_RejectionKeepsPreviousVoucher(t *testing.T) {
	api := &mockValidator{vouchers: map[string]domain.Voucher{"SALE10": sale10()}}
	a := NewApplier(api)

	_, err := a.Apply(context.Background(), "SALE10", d(250000))
	require.NoError(t, err)

	_, err = a.Apply(context.Background(), "BOGUS", d(250000))
	require.Error(t, err)

	// The earlier voucher stays active after the failed replacement.
	v, ok := a.Active()
	require.True(t, ok)
	assert.Equal(t, "SALE10", v.Code)
	assert.Equal(t, StateApplied, a.State())
}

func TestApply_ReplacesActiveVoucher(t *testing.T) {
	fixed := domain.Voucher{
		Code:     "FLAT20K",
		Type:     domain.VoucherTypeFixed,
		Value:    d(20000),
		MinOrder: d(0),
	}
	api := &mockValidator{vouchers: map[string]domain.Voucher{
		"SALE10":  sale10(),
		"FLAT20K": fixed,
	}}
	a := NewApplier(api)

	_, err := a.Apply(context.Background(), "SALE10", d(250000))
	require.NoError(t, err)

	discount, err := a.Apply(context.Background(), "FLAT20K", d(250000))
	require.NoError(t, err)
	assert.True(t, discount.Equal(d(20000)))

	v, _ := a.Active()
	assert.Equal(t, "FLAT20K", v.Code)
}

func TestApply_ConcurrentApplicationBlocked(t *testing.T) {
	block := make(chan struct{})
	api := &mockValidator{
		vouchers: map[string]domain.Voucher{"SALE10": sale10()},
		block:    block,
	}
	a := NewApplier(api)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := a.Apply(context.Background(), "SALE10", d(250000))
		assert.NoError(t, err)
	}()

	// Wait until the first application is parked inside Validate.
	for {
		api.m.Lock()
		started := api.calls > 0
		api.m.Unlock()
		if started {
			break
		}
	}

	_, err := a.Apply(context.Background(), "SALE10", d(250000))
	assert.ErrorIs(t, err, ErrApplying)

	close(block)
	<-done
}

func TestRemove_ClearsActiveVoucher(t *testing.T) {
	api := &mockValidator{vouchers: map[string]domain.Voucher{"SALE10": sale10()}}
	a := NewApplier(api)

	_, err := a.Apply(context.Background(), "SALE10", d(250000))
	require.NoError(t, err)

	a.Remove()
	assert.Equal(t, StateNone, a.State())
	assert.True(t, a.Discount(d(250000)).IsZero())
}

func TestDiscount_ZeroWhenTotalDropsBelowMinimum(t *testing.T) {
	api := &mockValidator{vouchers: map[string]domain.Voucher{"SALE10": sale10()}}
	a := NewApplier(api)

	_, err := a.Apply(context.Background(), "SALE10", d(250000))
	require.NoError(t, err)

	// Unchecking items can shrink the total under the voucher minimum.
	assert.True(t, a.Discount(d(50000)).IsZero())
	assert.True(t, a.Discount(d(200000)).Equal(d(20000)))
}
