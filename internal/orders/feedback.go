package orders

import (
	"context"
	"fmt"

	"github.com/khonloi/gash-storefront/internal/domain"
)

var ErrFeedbackNotOpen = fmt.Errorf("feedback is only accepted on delivered orders")

// SubmitFeedback records feedback on a delivered order. Terminal orders are
// otherwise immutable, so this is the one mutation they accept.
func (m *Manager) SubmitFeedback(ctx context.Context, orderID, feedback string) error {
	m.mu.Lock()
	order, ok := m.findLocked(orderID)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("order %s not found", orderID)
	}
	if order.Status != domain.OrderStatusDelivered {
		m.mu.Unlock()
		return ErrFeedbackNotOpen
	}
	m.mu.Unlock()

	if err := m.api.SubmitFeedback(ctx, orderID, feedback); err != nil {
		return fmt.Errorf("submit feedback: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.findLocked(orderID); ok {
		order.Feedback = feedback
	}
	return nil
}

// Feedback reads previously submitted feedback; absent feedback reads as
// empty, not as an error.
func (m *Manager) Feedback(ctx context.Context, orderID string) (string, error) {
	return m.api.FetchFeedback(ctx, orderID)
}
