package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusConfirmed))
	assert.True(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusShipping))
	assert.True(t, OrderStatusShipping.CanTransitionTo(OrderStatusDelivered))

	// Cancellation is allowed from any non-terminal state.
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusShipping.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusDelivered.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusConfirmed))

	// No skipping ahead.
	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusShipping))
	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusDelivered))
}

func TestOrderPayable(t *testing.T) {
	o := Order{Total: decimal.NewFromInt(225000), Discount: decimal.NewFromInt(25000)}
	assert.True(t, o.Payable().Equal(decimal.NewFromInt(200000)))

	// An oversized discount never produces a negative charge.
	o = Order{Total: decimal.NewFromInt(10000), Discount: decimal.NewFromInt(50000)}
	assert.True(t, o.Payable().IsZero())
}

func TestOrderItemResolved(t *testing.T) {
	assert.True(t, OrderItem{Name: "Shirt", Image: "s.png"}.Resolved())
	assert.False(t, OrderItem{Name: "Shirt"}.Resolved())
	assert.False(t, OrderItem{Image: "s.png"}.Resolved())
}
