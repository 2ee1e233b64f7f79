package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Refresher is a poll-fallback target, invoked every poll interval so the
// client cannot go permanently stale if push delivery fails silently. The
// refresh paths must be idempotent with the push merge paths.
type Refresher func(ctx context.Context)

// Subscription is an explicit handle on one event stream. Close is
// deterministic and safe to call more than once.
type Subscription struct {
	C    <-chan Event
	c    chan Event
	name string
	ch   *Channel
	once sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.ch.unsubscribe(s)
		close(s.c)
	})
}

// Channel is the persistent realtime connection for one authenticated
// session. It joins the user's room on every (re)connect and dispatches
// named events to subscribers. Disconnects never clear local state; the
// reconnect loop and the poll fallback keep it converging.
type Channel struct {
	mu     sync.Mutex
	url    string
	userID string
	dialer *websocket.Dialer
	conn   *websocket.Conn
	subs   map[string]map[*Subscription]struct{}

	pollInterval  time.Duration
	reconnectBase time.Duration
	reconnectMax  time.Duration
	refreshers    []Refresher
}

var ErrDisconnected = errors.New("realtime channel is not connected")

func New(url, userID string, pollInterval time.Duration) *Channel {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &Channel{
		url:           url,
		userID:        userID,
		dialer:        websocket.DefaultDialer,
		subs:          map[string]map[*Subscription]struct{}{},
		pollInterval:  pollInterval,
		reconnectBase: time.Second,
		reconnectMax:  30 * time.Second,
	}
}

// Subscribe returns a handle receiving every event with the given name.
// Slow consumers lose events rather than blocking the read loop.
func (ch *Channel) Subscribe(name string) *Subscription {
	sub := &Subscription{c: make(chan Event, 16), name: name, ch: ch}
	sub.C = sub.c

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.subs[name] == nil {
		ch.subs[name] = map[*Subscription]struct{}{}
	}
	ch.subs[name][sub] = struct{}{}
	return sub
}

func (ch *Channel) unsubscribe(sub *Subscription) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if set := ch.subs[sub.name]; set != nil {
		delete(set, sub)
	}
}

// OnPoll registers a poll-fallback refresher.
func (ch *Channel) OnPoll(fn Refresher) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.refreshers = append(ch.refreshers, fn)
}

// Send emits an event (chat, typically) over the current connection.
func (ch *Channel) Send(name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", name, err)
	}

	ch.mu.Lock()
	conn := ch.conn
	ch.mu.Unlock()
	if conn == nil {
		return ErrDisconnected
	}
	if err := conn.WriteJSON(Event{Name: name, Data: payload}); err != nil {
		return fmt.Errorf("send %s event: %w", name, err)
	}
	return nil
}

// Run connects and serves until ctx is cancelled. Connection loss triggers a
// capped-backoff reconnect; the room join event is re-emitted on every
// successful connect.
func (ch *Channel) Run(ctx context.Context) error {
	go ch.pollLoop(ctx)

	delay := ch.reconnectBase
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, _, err := ch.dialer.DialContext(ctx, ch.url, nil)
		if err != nil {
			slog.Warn("realtime dial failed", "url", ch.url, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			if delay *= 2; delay > ch.reconnectMax {
				delay = ch.reconnectMax
			}
			continue
		}
		delay = ch.reconnectBase

		ch.mu.Lock()
		ch.conn = conn
		ch.mu.Unlock()

		if err := ch.join(conn); err != nil {
			slog.Warn("realtime join failed", "error", err)
		} else {
			slog.Info("realtime connected", "user_id", ch.userID)
		}

		ch.readLoop(ctx, conn)

		ch.mu.Lock()
		ch.conn = nil
		ch.mu.Unlock()
		conn.Close()
	}
}

func (ch *Channel) join(conn *websocket.Conn) error {
	payload, err := json.Marshal(map[string]string{"user_id": ch.userID})
	if err != nil {
		return err
	}
	return conn.WriteJSON(Event{Name: EventJoin, Data: payload})
}

func (ch *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var e Event
		if err := conn.ReadJSON(&e); err != nil {
			if ctx.Err() == nil {
				slog.Warn("realtime read failed, reconnecting", "error", err)
			}
			return
		}
		ch.dispatch(e)
	}
}

func (ch *Channel) dispatch(e Event) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	for sub := range ch.subs[e.Name] {
		select {
		case sub.c <- e:
		default:
			slog.Warn("realtime subscriber overflow, dropping event", "event", e.Name)
		}
	}
}

func (ch *Channel) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(ch.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ch.mu.Lock()
			refreshers := make([]Refresher, len(ch.refreshers))
			copy(refreshers, ch.refreshers)
			ch.mu.Unlock()
			for _, fn := range refreshers {
				fn(ctx)
			}
		}
	}
}
