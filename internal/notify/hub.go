// Package notify is the in-process notification relay: one subscription
// to the datastore's change stream per process, fanned out locally to
// every interested listener. It is independent of the webhook
// dispatcher: alerts are an in-app concern, not an outbound
// integration.
package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
)

// Stream is the upstream change-notification source. Connect blocks
// until the stream is established and returns a channel that closes
// when the connection is lost.
type Stream interface {
	Connect(ctx context.Context) (<-chan Change, error)
	Close() error
}

// TitleResolver looks up a ticket's display title for message alerts.
type TitleResolver func(ctx context.Context, ticketID string) string

type State int32

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// RetryPolicy bounds reconnection: delay grows linearly with the
// attempt number up to Ceiling; exhausting MaxAttempts consecutive
// failures leaves the hub Disconnected.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Ceiling     time.Duration
}

type Hub struct {
	stream       Stream
	resolveTitle TitleResolver
	retry        RetryPolicy
	maxAlerts    int

	state atomic.Int32

	mu     sync.Mutex
	alerts []Alert // most-recent-first, len <= maxAlerts
	subs   map[chan Alert]struct{}
}

func NewHub(stream Stream, resolve TitleResolver, retry RetryPolicy, maxAlerts int) *Hub {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 5
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = 2 * time.Second
	}
	if retry.Ceiling <= 0 {
		retry.Ceiling = 30 * time.Second
	}
	if maxAlerts < 1 {
		maxAlerts = 50
	}
	if resolve == nil {
		resolve = func(context.Context, string) string { return "" }
	}
	return &Hub{
		stream:       stream,
		resolveTitle: resolve,
		retry:        retry,
		maxAlerts:    maxAlerts,
		subs:         make(map[chan Alert]struct{}),
	}
}

// Run consumes the change stream until ctx is cancelled or the retry
// budget is exhausted. Exhaustion flips the hub to Disconnected and
// returns an error; it never panics the host process.
func (h *Hub) Run(ctx context.Context) error {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ch, err := h.stream.Connect(ctx)
		if err != nil {
			attempt++
			if attempt >= h.retry.MaxAttempts {
				h.state.Store(int32(StateDisconnected))
				log.Printf("notify: giving up after %d connection attempts: %v", attempt, err)
				return fmt.Errorf("notify: connect: %w", err)
			}
			delay := time.Duration(attempt) * h.retry.BaseDelay
			if delay > h.retry.Ceiling {
				delay = h.retry.Ceiling
			}
			log.Printf("notify: connect attempt %d failed, retrying in %s: %v", attempt, delay, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0
		h.state.Store(int32(StateConnected))
		for change := range ch {
			h.handle(ctx, change)
		}
		// channel closed: connection lost, go back to reconnecting
		h.state.Store(int32(StateConnecting))
	}
}

func (h *Hub) State() State {
	return State(h.state.Load())
}

// handle turns one row change into at most one alert.
func (h *Hub) handle(ctx context.Context, c Change) {
	switch c.Table {
	case "tickets":
		switch {
		case c.Op == "INSERT":
			h.push(Alert{
				Kind:    AlertInfo,
				Title:   "Novo ticket",
				Message: c.Title,
				Link:    "/tickets/" + c.TicketID,
			})
		case c.Op == "UPDATE" && c.OldStatus != "" && c.OldStatus != c.Status:
			kind := AlertInfo
			if model.TicketStatus(c.Status) == model.TicketStatusResolved {
				kind = AlertSuccess
			}
			h.push(Alert{
				Kind:    kind,
				Title:   "Status atualizado",
				Message: fmt.Sprintf("%s: %s → %s", c.Title, c.OldStatus, c.Status),
				Link:    "/tickets/" + c.TicketID,
			})
		}
	case "messages":
		// Staff-authored messages are the viewer's own in the admin
		// console; only customer and AI messages raise alerts.
		if c.Op != "INSERT" || (c.AuthorID != "" && !c.IsAI) {
			return
		}
		title := h.resolveTitle(ctx, c.TicketID)
		if title == "" {
			title = c.TicketID
		}
		h.push(Alert{
			Kind:    AlertInfo,
			Title:   "Nova mensagem",
			Message: title,
			Link:    "/tickets/" + c.TicketID,
		})
	}
}

// push stores the alert most-recent-first, trims the ledger and fans
// out to live subscribers without blocking on any of them.
func (h *Hub) push(a Alert) {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()

	h.mu.Lock()
	h.alerts = append([]Alert{a}, h.alerts...)
	if len(h.alerts) > h.maxAlerts {
		h.alerts = h.alerts[:h.maxAlerts]
	}
	for ch := range h.subs {
		select {
		case ch <- a:
		default:
		}
	}
	h.mu.Unlock()
}

// Subscribe registers a live listener. The returned cancel func must be
// called when the listener goes away.
func (h *Hub) Subscribe() (<-chan Alert, func()) {
	ch := make(chan Alert, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

// Alerts returns an immutable snapshot of the ledger, newest first.
func (h *Hub) Alerts() []Alert {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Alert, len(h.alerts))
	copy(out, h.alerts)
	return out
}

// Unread counts alerts not yet marked read.
func (h *Hub) Unread() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for i := range h.alerts {
		if !h.alerts[i].Read {
			n++
		}
	}
	return n
}

// MarkRead flags one alert; reports whether it was found.
func (h *Hub) MarkRead(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.alerts {
		if h.alerts[i].ID == id {
			h.alerts[i].Read = true
			return true
		}
	}
	return false
}

// MarkAllRead flags every alert in the ledger.
func (h *Hub) MarkAllRead() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.alerts {
		h.alerts[i].Read = true
	}
}

// Clear empties the ledger.
func (h *Hub) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.alerts = nil
}
