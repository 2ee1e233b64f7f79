package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/khonloi/gash-storefront/internal/cache"
	"github.com/khonloi/gash-storefront/internal/domain"
	"github.com/khonloi/gash-storefront/internal/retry"
	"github.com/khonloi/gash-storefront/internal/toast"
)

// API is the remote order surface.
type API interface {
	FetchOrders(ctx context.Context) ([]domain.Order, error)
	FetchOrderDetail(ctx context.Context, orderID string) (domain.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	SubmitFeedback(ctx context.Context, orderID, feedback string) error
	FetchFeedback(ctx context.Context, orderID string) (string, error)
}

var ErrNotCancellable = fmt.Errorf("order can no longer be cancelled")

// Manager holds the user's order list. Authoritative fetches and pushed
// updates feed the same merge path, which is idempotent so that the two
// sources can interleave in any order.
type Manager struct {
	mu     sync.Mutex
	api    API
	cache  *cache.Cache
	retry  retry.Config
	toasts toast.Toaster
	userID string
	list   []domain.Order
}

func NewManager(api API, c *cache.Cache, retryCfg retry.Config, toasts toast.Toaster, userID string) *Manager {
	if toasts == nil {
		toasts = toast.Nop
	}
	return &Manager{
		api:    api,
		cache:  c,
		retry:  retryCfg,
		toasts: toasts,
		userID: userID,
	}
}

func (m *Manager) listKey() string {
	return "orders:" + m.userID
}

func (m *Manager) detailKey(orderID string) string {
	return "order-detail:" + m.userID + ":" + orderID
}

// complete is the list's completeness predicate: a cached order is only
// trusted as a fallback when every line has resolved display data.
func complete(o domain.Order) bool {
	for _, it := range o.Items {
		if !it.Resolved() {
			return false
		}
	}
	return true
}

// Refresh loads the order list, cache-first, and replaces local state.
func (m *Manager) Refresh(ctx context.Context, opts cache.Options) error {
	list, err := cache.Read(ctx, m.cache, m.listKey(), opts, func(ctx context.Context) ([]domain.Order, error) {
		return retry.DoVal(ctx, m.retry, func() ([]domain.Order, error) {
			return m.api.FetchOrders(ctx)
		})
	}, complete)
	if err != nil {
		return fmt.Errorf("refresh orders: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// The fetch is authoritative for its own fields, but display data we
	// already resolved must not regress if the backend elides it.
	merged := make([]domain.Order, len(list))
	copy(merged, list)
	for i := range merged {
		if prev, ok := m.findLocked(merged[i].ID); ok {
			merged[i] = mergeOrder(*prev, merged[i])
		}
	}
	m.list = merged
	m.sortLocked()
	return nil
}

// Orders returns a copy of the current list, newest first.
func (m *Manager) Orders() []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Order, len(m.list))
	copy(out, m.list)
	return out
}

// ApplyPush merges a pushed order update. Known orders are merged in place;
// unknown ones are prepended. Applying the same event twice is a no-op.
func (m *Manager) ApplyPush(pushed domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.findLocked(pushed.ID); ok {
		*prev = mergeOrder(*prev, pushed)
	} else {
		m.list = append([]domain.Order{pushed}, m.list...)
	}
	m.sortLocked()
}

// mergeOrder folds a full-payload update into an existing record. Scalar
// fields from the update win; item arrays are replaced wholesale, except
// that previously-resolved name/image display data is kept when the update
// arrives with those fields unpopulated.
func mergeOrder(existing, update domain.Order) domain.Order {
	out := update
	if len(out.Items) == 0 {
		out.Items = existing.Items
		return out
	}

	resolved := make(map[string]domain.OrderItem, len(existing.Items))
	for _, it := range existing.Items {
		if it.Resolved() {
			resolved[it.VariantID] = it
		}
	}
	for i := range out.Items {
		if out.Items[i].Resolved() {
			continue
		}
		prev, ok := resolved[out.Items[i].VariantID]
		if !ok {
			continue
		}
		if out.Items[i].Name == "" {
			out.Items[i].Name = prev.Name
		}
		if out.Items[i].Image == "" {
			out.Items[i].Image = prev.Image
		}
	}
	return out
}

// Cancel requests cancellation; only allowed while the order's status still
// permits it.
func (m *Manager) Cancel(ctx context.Context, orderID string) error {
	m.mu.Lock()
	order, ok := m.findLocked(orderID)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("order %s not found", orderID)
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
		m.mu.Unlock()
		return ErrNotCancellable
	}
	m.mu.Unlock()

	if err := m.api.CancelOrder(ctx, orderID); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.findLocked(orderID); ok {
		order.Status = domain.OrderStatusCancelled
	}
	return nil
}

// Detail returns one order with full line data, read through the per-order
// snapshot cache.
func (m *Manager) Detail(ctx context.Context, orderID string, opts cache.Options) (domain.Order, error) {
	list, err := cache.Read(ctx, m.cache, m.detailKey(orderID), opts, func(ctx context.Context) ([]domain.Order, error) {
		o, errFetch := retry.DoVal(ctx, m.retry, func() (domain.Order, error) {
			return m.api.FetchOrderDetail(ctx, orderID)
		})
		if errFetch != nil {
			return nil, errFetch
		}
		return []domain.Order{o}, nil
	}, complete)
	if err != nil {
		return domain.Order{}, err
	}
	if len(list) == 0 {
		return domain.Order{}, fmt.Errorf("order %s not found", orderID)
	}
	return list[0], nil
}

func (m *Manager) findLocked(orderID string) (*domain.Order, bool) {
	for i := range m.list {
		if m.list[i].ID == orderID {
			return &m.list[i], true
		}
	}
	return nil, false
}

func (m *Manager) sortLocked() {
	sort.SliceStable(m.list, func(i, j int) bool {
		return m.list[i].CreatedAt.After(m.list[j].CreatedAt)
	})
}
