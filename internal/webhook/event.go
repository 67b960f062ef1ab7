package webhook

import (
	"time"

	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
)

// envelope is the wire body POSTed to subscribers.
type envelope struct {
	EventType string        `json:"event_type"`
	TicketID  string        `json:"ticket_id"`
	Ticket    *model.Ticket `json:"ticket_data,omitempty"`
	OldStatus string        `json:"old_status,omitempty"`
	NewStatus string        `json:"new_status,omitempty"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Event is one variant of the dispatchable event union. Each variant
// carries exactly the fields its kind needs; there is no loosely-typed
// catch-all payload.
type Event interface {
	Kind() model.EventKind
	TicketID() string
	envelope(now time.Time) envelope
}

// TicketCreated fires after a new ticket is persisted.
type TicketCreated struct {
	Ticket *model.Ticket
}

func (e TicketCreated) Kind() model.EventKind { return model.EventTicketCreated }
func (e TicketCreated) TicketID() string      { return e.Ticket.ID }

func (e TicketCreated) envelope(now time.Time) envelope {
	return envelope{
		EventType: string(model.EventTicketCreated),
		TicketID:  e.Ticket.ID,
		Ticket:    e.Ticket,
		Timestamp: now,
	}
}

// TicketUpdated fires after any successful ticket mutation.
type TicketUpdated struct {
	Ticket *model.Ticket
}

func (e TicketUpdated) Kind() model.EventKind { return model.EventTicketUpdated }
func (e TicketUpdated) TicketID() string      { return e.Ticket.ID }

func (e TicketUpdated) envelope(now time.Time) envelope {
	return envelope{
		EventType: string(model.EventTicketUpdated),
		TicketID:  e.Ticket.ID,
		Ticket:    e.Ticket,
		Timestamp: now,
	}
}

// StatusChanged fires when a mutation actually moved the status field.
type StatusChanged struct {
	Ticket    *model.Ticket
	OldStatus model.TicketStatus
	NewStatus model.TicketStatus
}

func (e StatusChanged) Kind() model.EventKind { return model.EventStatusChanged }
func (e StatusChanged) TicketID() string      { return e.Ticket.ID }

func (e StatusChanged) envelope(now time.Time) envelope {
	return envelope{
		EventType: string(model.EventStatusChanged),
		TicketID:  e.Ticket.ID,
		Ticket:    e.Ticket,
		OldStatus: string(e.OldStatus),
		NewStatus: string(e.NewStatus),
		Timestamp: now,
	}
}

// MessageSent fires after a staff or AI message lands on a ticket.
type MessageSent struct {
	Ticket  string
	Message string
}

func (e MessageSent) Kind() model.EventKind { return model.EventMessageSent }
func (e MessageSent) TicketID() string      { return e.Ticket }

func (e MessageSent) envelope(now time.Time) envelope {
	return envelope{
		EventType: string(model.EventMessageSent),
		TicketID:  e.Ticket,
		Message:   e.Message,
		Timestamp: now,
	}
}
