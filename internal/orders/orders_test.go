package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khonloi/gash-storefront/internal/cache"
	"github.com/khonloi/gash-storefront/internal/domain"
	"github.com/khonloi/gash-storefront/internal/retry"
	"github.com/khonloi/gash-storefront/internal/store"
)

type memStore struct {
	m        sync.Mutex
	payloads map[string][]byte
	savedAt  map[string]time.Time
}

func newMemStore() *memStore {
	return &memStore{payloads: map[string][]byte{}, savedAt: map[string]time.Time{}}
}

func (s *memStore) SaveSnapshot(key string, payload []byte, at time.Time) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.payloads[key] = payload
	s.savedAt[key] = at
	return nil
}

func (s *memStore) Snapshot(key string) ([]byte, time.Time, error) {
	s.m.Lock()
	defer s.m.Unlock()
	payload, ok := s.payloads[key]
	if !ok {
		return nil, time.Time{}, store.ErrNoSnapshot
	}
	return payload, s.savedAt[key], nil
}

func (s *memStore) DeleteSnapshot(key string) error {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.payloads, key)
	delete(s.savedAt, key)
	return nil
}

type mockOrdersAPI struct {
	m          sync.Mutex
	orders     []domain.Order
	detail     map[string]domain.Order
	fetchErr   error
	cancelErr  error
	cancels    []string
	feedbacks  map[string]string
	fetchCalls int
}

func (a *mockOrdersAPI) FetchOrders(context.Context) ([]domain.Order, error) {
	a.m.Lock()
	defer a.m.Unlock()
	a.fetchCalls++
	if a.fetchErr != nil {
		return nil, a.fetchErr
	}
	out := make([]domain.Order, len(a.orders))
	copy(out, a.orders)
	return out, nil
}

func (a *mockOrdersAPI) FetchOrderDetail(_ context.Context, orderID string) (domain.Order, error) {
	a.m.Lock()
	defer a.m.Unlock()
	o, ok := a.detail[orderID]
	if !ok {
		return domain.Order{}, errors.New("order not found")
	}
	return o, nil
}

func (a *mockOrdersAPI) CancelOrder(_ context.Context, orderID string) error {
	a.m.Lock()
	defer a.m.Unlock()
	a.cancels = append(a.cancels, orderID)
	return a.cancelErr
}

func (a *mockOrdersAPI) SubmitFeedback(_ context.Context, orderID, feedback string) error {
	a.m.Lock()
	defer a.m.Unlock()
	if a.feedbacks == nil {
		a.feedbacks = map[string]string{}
	}
	a.feedbacks[orderID] = feedback
	return nil
}

func (a *mockOrdersAPI) FetchFeedback(_ context.Context, orderID string) (string, error) {
	a.m.Lock()
	defer a.m.Unlock()
	return a.feedbacks[orderID], nil
}

func fastRetry() retry.Config {
	return retry.Config{Attempts: 1, BaseDelay: time.Millisecond}
}

func newTestManager(api *mockOrdersAPI) *Manager {
	return NewManager(api, cache.New(newMemStore(), time.Millisecond), fastRetry(), nil, "u1")
}

func resolvedItem(variantID string) domain.OrderItem {
	return domain.OrderItem{
		VariantID: variantID,
		Name:      "Shirt " + variantID,
		Image:     variantID + ".png",
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(100000),
	}
}

func at(daysAgo int) time.Time {
	return time.Now().Add(-time.Duration(daysAgo) * 24 * time.Hour)
}

func TestRefresh_LoadsAndSortsNewestFirst(t *testing.T) {
	api := &mockOrdersAPI{orders: []domain.Order{
		{ID: "old", Status: domain.OrderStatusDelivered, Items: []domain.OrderItem{resolvedItem("v1")}, CreatedAt: at(5)},
		{ID: "new", Status: domain.OrderStatusPending, Items: []domain.OrderItem{resolvedItem("v2")}, CreatedAt: at(1)},
	}}
	m := newTestManager(api)

	require.NoError(t, m.Refresh(context.Background(), cache.Options{}))
	list := m.Orders()
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
}

func TestApplyPush_MergesKnownOrderInPlace(t *testing.T) {
	m := newTestManager(&mockOrdersAPI{})
	m.ApplyPush(domain.Order{ID: "o1", Status: domain.OrderStatusPending, Items: []domain.OrderItem{resolvedItem("v1")}, CreatedAt: at(1)})

	m.ApplyPush(domain.Order{ID: "o1", Status: domain.OrderStatusConfirmed, Items: []domain.OrderItem{resolvedItem("v1")}, CreatedAt: at(1)})

	list := m.Orders()
	require.Len(t, list, 1)
	assert.Equal(t, domain.OrderStatusConfirmed, list[0].Status)
}

func TestApplyPush_Idempotent(t *testing.T) {
	m := newTestManager(&mockOrdersAPI{})
	pushed := domain.Order{ID: "o1", Status: domain.OrderStatusConfirmed, Items: []domain.OrderItem{resolvedItem("v1")}, CreatedAt: at(1)}

	m.ApplyPush(pushed)
	once := m.Orders()
	m.ApplyPush(pushed)
	twice := m.Orders()

	assert.Equal(t, once, twice, "replaying the same event must not change state")
}

func TestApplyPush_PreservesResolvedDisplayData(t *testing.T) {
	m := newTestManager(&mockOrdersAPI{})
	m.ApplyPush(domain.Order{ID: "o1", Status: domain.OrderStatusPending, Items: []domain.OrderItem{resolvedItem("v1")}, CreatedAt: at(1)})

	// Status pushes often carry bare line data without display fields.
	m.ApplyPush(domain.Order{
		ID:        "o1",
		Status:    domain.OrderStatusShipping,
		Items:     []domain.OrderItem{{VariantID: "v1", Quantity: 1, UnitPrice: decimal.NewFromInt(100000)}},
		CreatedAt: at(1),
	})

	list := m.Orders()
	require.Len(t, list, 1)
	assert.Equal(t, domain.OrderStatusShipping, list[0].Status)
	require.Len(t, list[0].Items, 1)
	assert.Equal(t, "Shirt v1", list[0].Items[0].Name)
	assert.Equal(t, "v1.png", list[0].Items[0].Image)
}

func TestApplyPush_EmptyItemsKeepExisting(t *testing.T) {
	m := newTestManager(&mockOrdersAPI{})
	m.ApplyPush(domain.Order{ID: "o1", Status: domain.OrderStatusPending, Items: []domain.OrderItem{resolvedItem("v1")}, CreatedAt: at(1)})

	m.ApplyPush(domain.Order{ID: "o1", Status: domain.OrderStatusConfirmed, CreatedAt: at(1)})

	list := m.Orders()
	require.Len(t, list, 1)
	assert.Equal(t, domain.OrderStatusConfirmed, list[0].Status)
	require.Len(t, list[0].Items, 1, "an update without items must not wipe the lines")
}

func TestApplyPush_UnknownOrderInsertedInDateOrder(t *testing.T) {
	m := newTestManager(&mockOrdersAPI{})
	m.ApplyPush(domain.Order{ID: "newest", CreatedAt: at(1)})
	m.ApplyPush(domain.Order{ID: "oldest", CreatedAt: at(9)})
	m.ApplyPush(domain.Order{ID: "middle", CreatedAt: at(5)})

	list := m.Orders()
	require.Len(t, list, 3)
	assert.Equal(t, "newest", list[0].ID)
	assert.Equal(t, "middle", list[1].ID)
	assert.Equal(t, "oldest", list[2].ID)
}

func TestCancel_PendingOrder(t *testing.T) {
	api := &mockOrdersAPI{}
	m := newTestManager(api)
	m.ApplyPush(domain.Order{ID: "o1", Status: domain.OrderStatusPending, CreatedAt: at(1)})

	require.NoError(t, m.Cancel(context.Background(), "o1"))
	assert.Equal(t, []string{"o1"}, api.cancels)
	assert.Equal(t, domain.OrderStatusCancelled, m.Orders()[0].Status)
}

func TestCancel_DeliveredOrderRejectedLocally(t *testing.T) {
	api := &mockOrdersAPI{}
	m := newTestManager(api)
	m.ApplyPush(domain.Order{ID: "o1", Status: domain.OrderStatusDelivered, CreatedAt: at(1)})

	err := m.Cancel(context.Background(), "o1")
	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.Empty(t, api.cancels, "the guard fires before any network call")
}

func TestCancel_RemoteFailureKeepsStatus(t *testing.T) {
	api := &mockOrdersAPI{cancelErr: errors.New("too late")}
	m := newTestManager(api)
	m.ApplyPush(domain.Order{ID: "o1", Status: domain.OrderStatusShipping, CreatedAt: at(1)})

	require.Error(t, m.Cancel(context.Background(), "o1"))
	assert.Equal(t, domain.OrderStatusShipping, m.Orders()[0].Status)
}

func TestSubmitFeedback_OnlyDeliveredOrders(t *testing.T) {
	api := &mockOrdersAPI{}
	m := newTestManager(api)
	m.ApplyPush(domain.Order{ID: "shipping", Status: domain.OrderStatusShipping, CreatedAt: at(1)})
	m.ApplyPush(domain.Order{ID: "done", Status: domain.OrderStatusDelivered, CreatedAt: at(2)})

	err := m.SubmitFeedback(context.Background(), "shipping", "great")
	assert.ErrorIs(t, err, ErrFeedbackNotOpen)

	require.NoError(t, m.SubmitFeedback(context.Background(), "done", "great"))
	assert.Equal(t, "great", api.feedbacks["done"])

	for _, o := range m.Orders() {
		if o.ID == "done" {
			assert.Equal(t, "great", o.Feedback)
		}
	}
}

func TestDetail_ReadsThroughCache(t *testing.T) {
	api := &mockOrdersAPI{detail: map[string]domain.Order{
		"o1": {ID: "o1", Status: domain.OrderStatusPending, Items: []domain.OrderItem{resolvedItem("v1")}, CreatedAt: at(1)},
	}}
	m := newTestManager(api)

	o, err := m.Detail(context.Background(), "o1", cache.Options{})
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)
	require.Len(t, o.Items, 1)
	assert.True(t, o.Items[0].Resolved())
}
