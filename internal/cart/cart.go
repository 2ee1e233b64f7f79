package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khonloi/gash-storefront/internal/domain"
	"github.com/khonloi/gash-storefront/internal/retry"
	"github.com/khonloi/gash-storefront/internal/toast"
)

// API is the remote cart surface the manager mutates against.
type API interface {
	FetchCart(ctx context.Context) ([]domain.CartItem, error)
	AddItem(ctx context.Context, productID, variantID string, quantity int) error
	UpdateQuantity(ctx context.Context, itemID string, quantity int) error
	RemoveItem(ctx context.Context, itemID string) error
}

// pendingEdit tracks the debounced quantity intent for one item. prev is the
// last server-acknowledged quantity and is what the display reverts to when
// the remote update fails.
type pendingEdit struct {
	timer    *time.Timer
	prev     int
	latest   int
	inflight bool
	rearm    bool
}

// Manager holds the displayed cart state. Quantity edits and removals are
// applied optimistically and reconciled against the backend afterwards.
type Manager struct {
	mu       sync.Mutex
	api      API
	toasts   toast.Toaster
	retry    retry.Config
	debounce time.Duration
	items    []domain.CartItem
	pending  map[string]*pendingEdit
	badge    int
}

func NewManager(api API, toasts toast.Toaster, retryCfg retry.Config, debounce time.Duration) *Manager {
	if toasts == nil {
		toasts = toast.Nop
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Manager{
		api:      api,
		toasts:   toasts,
		retry:    retryCfg,
		debounce: debounce,
		pending:  map[string]*pendingEdit{},
	}
}

// Refresh fetches the authoritative cart and reconciles it into local state,
// preserving client-only checked flags by item id.
func (m *Manager) Refresh(ctx context.Context) error {
	items, err := retry.DoVal(ctx, m.retry, func() ([]domain.CartItem, error) {
		return m.api.FetchCart(ctx)
	})
	if err != nil {
		return fmt.Errorf("refresh cart: %w", err)
	}
	m.Replace(items)
	return nil
}

// Replace swaps in an authoritative item list. Checked flags survive by id;
// new items arrive checked, matching the storefront's default.
func (m *Manager) Replace(items []domain.CartItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	checked := make(map[string]bool, len(m.items))
	for _, it := range m.items {
		checked[it.ID] = it.Checked
	}

	next := make([]domain.CartItem, len(items))
	copy(next, items)
	for i := range next {
		if was, seen := checked[next[i].ID]; seen {
			next[i].Checked = was
		} else {
			next[i].Checked = true
		}
	}
	m.items = next
	m.badge = len(next)
}

// Items returns a copy of the displayed list.
func (m *Manager) Items() []domain.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.CartItem, len(m.items))
	copy(out, m.items)
	return out
}

// CheckedItems returns the lines selected for checkout.
func (m *Manager) CheckedItems() []domain.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CartItem
	for _, it := range m.items {
		if it.Checked {
			out = append(out, it)
		}
	}
	return out
}

// Total sums the line totals of checked items only.
func (m *Manager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, it := range m.items {
		if it.Checked {
			total = total.Add(it.LineTotal())
		}
	}
	return total
}

// SetChecked flips the client-only selection flag.
func (m *Manager) SetChecked(itemID string, checked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == itemID {
			m.items[i].Checked = checked
			return
		}
	}
}

// Add issues a remote add and refreshes the cart on success.
func (m *Manager) Add(ctx context.Context, productID, variantID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	err := retry.Do(ctx, m.retry, func() error {
		return m.api.AddItem(ctx, productID, variantID, quantity)
	})
	if err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return m.Refresh(ctx)
}

// SetQuantity applies the new quantity to the display immediately and arms
// the per-item debounce. Rapid edits coalesce into one remote update
// carrying the last value; an edit while a request is in flight supersedes
// it once that request completes. At most one update per item is in flight
// at any time.
func (m *Manager) SetQuantity(itemID string, quantity int) {
	if quantity < 1 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexLocked(itemID)
	if idx < 0 {
		return
	}
	displayed := m.items[idx].Quantity
	if displayed == quantity && m.pending[itemID] == nil {
		return
	}
	m.items[idx].Quantity = quantity

	p := m.pending[itemID]
	if p == nil {
		p = &pendingEdit{prev: displayed}
		m.pending[itemID] = p
	}
	p.latest = quantity

	if p.inflight {
		p.rearm = true
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(m.debounce, func() { m.flushQuantity(itemID) })
}

func (m *Manager) flushQuantity(itemID string) {
	m.mu.Lock()
	p := m.pending[itemID]
	if p == nil || p.inflight {
		m.mu.Unlock()
		return
	}
	p.inflight = true
	quantity := p.latest
	m.mu.Unlock()

	err := m.api.UpdateQuantity(context.Background(), itemID, quantity)

	m.mu.Lock()
	defer m.mu.Unlock()
	p.inflight = false

	if err != nil {
		if p.rearm {
			// A newer intent arrived mid-flight; let it try with the
			// original baseline still intact.
			p.rearm = false
			p.timer = time.AfterFunc(m.debounce, func() { m.flushQuantity(itemID) })
			return
		}
		if idx := m.indexLocked(itemID); idx >= 0 {
			m.items[idx].Quantity = p.prev
		}
		delete(m.pending, itemID)
		m.toasts.Toast(toast.LevelError, "Could not update quantity, reverted")
		return
	}

	if p.rearm {
		p.rearm = false
		p.prev = quantity
		p.timer = time.AfterFunc(m.debounce, func() { m.flushQuantity(itemID) })
		return
	}
	delete(m.pending, itemID)
}

// Remove drops the item from the display immediately and issues the remote
// delete. On failure the full previous list is restored verbatim so
// concurrent edits elsewhere in the list are not conflated with this one.
func (m *Manager) Remove(ctx context.Context, itemID string) error {
	m.mu.Lock()
	idx := m.indexLocked(itemID)
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}
	previous := make([]domain.CartItem, len(m.items))
	copy(previous, m.items)
	m.items = append(m.items[:idx:idx], m.items[idx+1:]...)
	m.badge = len(m.items)
	m.mu.Unlock()

	err := retry.Do(ctx, m.retry, func() error {
		return m.api.RemoveItem(ctx, itemID)
	})
	if err != nil {
		m.mu.Lock()
		m.items = previous
		m.badge = len(previous)
		m.mu.Unlock()
		m.toasts.Toast(toast.LevelError, "Could not remove item")
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// Drop removes items locally without any remote call. Checkout uses it after
// the backend has already accepted the order.
func (m *Manager) Drop(itemIDs []string) {
	drop := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		drop[id] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[:0]
	for _, it := range m.items {
		if !drop[it.ID] {
			kept = append(kept, it)
		}
	}
	m.items = kept
	m.badge = len(kept)
}

// SetBadge applies a pushed cart count without a refetch.
func (m *Manager) SetBadge(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badge = count
}

func (m *Manager) Badge() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.badge
}

func (m *Manager) indexLocked(itemID string) int {
	for i := range m.items {
		if m.items[i].ID == itemID {
			return i
		}
	}
	return -1
}
