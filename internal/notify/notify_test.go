package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khonloi/gash-storefront/internal/domain"
	"github.com/khonloi/gash-storefront/internal/retry"
	"github.com/khonloi/gash-storefront/internal/toast"
)

type mockNotifyAPI struct {
	m          sync.Mutex
	list       []domain.Notification
	markErr    error
	deleteErr  error
	fetchCalls int
	deletes    []string
}

func (a *mockNotifyAPI) FetchNotifications(context.Context) ([]domain.Notification, error) {
	a.m.Lock()
	defer a.m.Unlock()
	a.fetchCalls++
	out := make([]domain.Notification, len(a.list))
	copy(out, a.list)
	return out, nil
}

func (a *mockNotifyAPI) MarkRead(context.Context, string) error {
	a.m.Lock()
	defer a.m.Unlock()
	return a.markErr
}

func (a *mockNotifyAPI) Delete(_ context.Context, id string) error {
	a.m.Lock()
	defer a.m.Unlock()
	a.deletes = append(a.deletes, id)
	return a.deleteErr
}

func (a *mockNotifyAPI) fetches() int {
	a.m.Lock()
	defer a.m.Unlock()
	return a.fetchCalls
}

type countingToaster struct {
	m sync.Mutex
	n int
}

func (c *countingToaster) Toast(toast.Level, string) {
	c.m.Lock()
	defer c.m.Unlock()
	c.n++
}

func fastRetry() retry.Config {
	return retry.Config{Attempts: 1, BaseDelay: time.Millisecond}
}

func notifications() []domain.Notification {
	return []domain.Notification{
		{ID: "n1", Title: "Order confirmed", Read: false},
		{ID: "n2", Title: "Order shipped", Read: true},
	}
}

func TestRefresh_ReplacesList(t *testing.T) {
	api := &mockNotifyAPI{list: notifications()}
	m := NewManager(api, fastRetry(), nil)

	require.NoError(t, m.Refresh(context.Background()))
	assert.Len(t, m.Notifications(), 2)
	assert.Equal(t, 1, m.UnreadCount())
}

func TestMarkRead_Optimistic(t *testing.T) {
	api := &mockNotifyAPI{list: notifications()}
	m := NewManager(api, fastRetry(), nil)
	require.NoError(t, m.Refresh(context.Background()))

	require.NoError(t, m.MarkRead(context.Background(), "n1"))
	assert.Equal(t, 0, m.UnreadCount())

	// Already-read ids are a no-op, not a second remote call.
	require.NoError(t, m.MarkRead(context.Background(), "n1"))
}

func TestMarkRead_FailureReverts(t *testing.T) {
	api := &mockNotifyAPI{list: notifications(), markErr: errors.New("boom")}
	m := NewManager(api, fastRetry(), nil)
	require.NoError(t, m.Refresh(context.Background()))

	require.Error(t, m.MarkRead(context.Background(), "n1"))
	assert.Equal(t, 1, m.UnreadCount(), "flag reverts when the remote call fails")
}

func TestDelete_Optimistic(t *testing.T) {
	api := &mockNotifyAPI{list: notifications()}
	m := NewManager(api, fastRetry(), nil)
	require.NoError(t, m.Refresh(context.Background()))

	require.NoError(t, m.Delete(context.Background(), "n1"))
	list := m.Notifications()
	require.Len(t, list, 1)
	assert.Equal(t, "n2", list[0].ID)
}

func TestDelete_FailureRestoresList(t *testing.T) {
	api := &mockNotifyAPI{list: notifications(), deleteErr: errors.New("boom")}
	toasts := &countingToaster{}
	m := NewManager(api, fastRetry(), toasts)
	require.NoError(t, m.Refresh(context.Background()))
	before := m.Notifications()

	require.Error(t, m.Delete(context.Background(), "n1"))
	assert.Equal(t, before, m.Notifications())
	assert.Equal(t, 1, toasts.n)
}

func TestApplyCreatedPush_ReplayIsNoOp(t *testing.T) {
	m := NewManager(&mockNotifyAPI{}, fastRetry(), nil)

	n := domain.Notification{ID: "n9", Title: "Order delivered"}
	m.ApplyCreatedPush(n)
	m.ApplyCreatedPush(n)

	list := m.Notifications()
	require.Len(t, list, 1)
	assert.Equal(t, "n9", list[0].ID)
	assert.Equal(t, 1, m.UnreadCount())
}

func TestApplyCreatedPush_PrependsNewest(t *testing.T) {
	m := NewManager(&mockNotifyAPI{}, fastRetry(), nil)
	m.ApplyCreatedPush(domain.Notification{ID: "n1"})
	m.ApplyCreatedPush(domain.Notification{ID: "n2"})

	list := m.Notifications()
	require.Len(t, list, 2)
	assert.Equal(t, "n2", list[0].ID)
}

func TestApplyDeletedPush_KnownIDRemovedImmediately(t *testing.T) {
	api := &mockNotifyAPI{list: notifications()}
	m := NewManager(api, fastRetry(), nil)
	require.NoError(t, m.Refresh(context.Background()))
	baseline := api.fetches()

	m.ApplyDeletedPush("n1")
	list := m.Notifications()
	require.Len(t, list, 1)
	assert.Equal(t, "n2", list[0].ID)
	assert.Equal(t, baseline, api.fetches(), "a known id needs no refetch")
}

func TestApplyDeletedPush_UnknownIDSchedulesOneRefresh(t *testing.T) {
	api := &mockNotifyAPI{list: notifications()}
	m := NewManager(api, fastRetry(), nil)
	m.refreshDelay = 10 * time.Millisecond

	// Two racing deletes for ids we never saw coalesce into one refresh.
	m.ApplyDeletedPush("ghost-1")
	m.ApplyDeletedPush("ghost-2")

	require.Eventually(t, func() bool {
		return api.fetches() == 1
	}, time.Second, 5*time.Millisecond)

	// The refresh converged the list and cleared the timer.
	assert.Len(t, m.Notifications(), 2)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, api.fetches())
}
