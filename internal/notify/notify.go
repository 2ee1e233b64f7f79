package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/khonloi/gash-storefront/internal/domain"
	"github.com/khonloi/gash-storefront/internal/retry"
	"github.com/khonloi/gash-storefront/internal/toast"
)

// API is the remote notification surface.
type API interface {
	FetchNotifications(ctx context.Context) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// Manager holds the notification list and unread badge.
type Manager struct {
	mu           sync.Mutex
	api          API
	retry        retry.Config
	toasts       toast.Toaster
	refreshDelay time.Duration
	refreshTimer *time.Timer
	list         []domain.Notification
}

func NewManager(api API, retryCfg retry.Config, toasts toast.Toaster) *Manager {
	if toasts == nil {
		toasts = toast.Nop
	}
	return &Manager{
		api:          api,
		retry:        retryCfg,
		toasts:       toasts,
		refreshDelay: 2 * time.Second,
	}
}

// Refresh replaces the list with the authoritative one.
func (m *Manager) Refresh(ctx context.Context) error {
	list, err := retry.DoVal(ctx, m.retry, func() ([]domain.Notification, error) {
		return m.api.FetchNotifications(ctx)
	})
	if err != nil {
		return fmt.Errorf("refresh notifications: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = list
	if m.refreshTimer != nil {
		m.refreshTimer.Stop()
		m.refreshTimer = nil
	}
	return nil
}

// Notifications returns a copy of the current list.
func (m *Manager) Notifications() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, len(m.list))
	copy(out, m.list)
	return out
}

func (m *Manager) UnreadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, it := range m.list {
		if !it.Read {
			n++
		}
	}
	return n
}

// MarkRead flips the flag optimistically and reverts on remote failure.
func (m *Manager) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 || m.list[idx].Read {
		m.mu.Unlock()
		return nil
	}
	m.list[idx].Read = true
	m.mu.Unlock()

	if err := m.api.MarkRead(ctx, id); err != nil {
		m.mu.Lock()
		if idx := m.indexLocked(id); idx >= 0 {
			m.list[idx].Read = false
		}
		m.mu.Unlock()
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// Delete removes optimistically; on remote failure the previous list is
// restored verbatim.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}
	previous := make([]domain.Notification, len(m.list))
	copy(previous, m.list)
	m.list = append(m.list[:idx:idx], m.list[idx+1:]...)
	m.mu.Unlock()

	if err := m.api.Delete(ctx, id); err != nil {
		m.mu.Lock()
		m.list = previous
		m.mu.Unlock()
		m.toasts.Toast(toast.LevelError, "Could not delete notification")
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// ApplyCreatedPush prepends a pushed notification unless it is already
// known, so replays are no-ops.
func (m *Manager) ApplyCreatedPush(n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexLocked(n.ID) >= 0 {
		return
	}
	m.list = append([]domain.Notification{n}, m.list...)
}

// ApplyDeletedPush removes by id. When the id is unknown the push raced a
// list refresh; instead of retrying the removal, a one-shot delayed full
// refresh is scheduled.
func (m *Manager) ApplyDeletedPush(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx := m.indexLocked(id); idx >= 0 {
		m.list = append(m.list[:idx:idx], m.list[idx+1:]...)
		return
	}
	if m.refreshTimer != nil {
		return
	}
	m.refreshTimer = time.AfterFunc(m.refreshDelay, func() {
		m.mu.Lock()
		m.refreshTimer = nil
		m.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		m.Refresh(ctx)
	})
}

func (m *Manager) indexLocked(id string) int {
	for i := range m.list {
		if m.list[i].ID == id {
			return i
		}
	}
	return -1
}
