package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// Channel a ticket arrived through.
const (
	ChannelWeb       = "web"
	ChannelChat      = "chat"
	ChannelEmail     = "email"
	ChannelInstagram = "instagram"
)

type EventKind string

const (
	EventTicketCreated EventKind = "ticket_created"
	EventTicketUpdated EventKind = "ticket_updated"
	EventStatusChanged EventKind = "status_changed"
	EventMessageSent   EventKind = "message_sent"
)

// KnownEventKind reports whether s is one of the four dispatchable kinds.
func KnownEventKind(s string) bool {
	switch EventKind(s) {
	case EventTicketCreated, EventTicketUpdated, EventStatusChanged, EventMessageSent:
		return true
	}
	return false
}

type Ticket struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Status      TicketStatus   `gorm:"type:varchar(32);index;not null" json:"status"`
	Priority    TicketPriority `gorm:"type:varchar(32);index;not null" json:"priority"`
	Category    string         `gorm:"type:varchar(64);index" json:"category,omitempty"`
	Channel     string         `gorm:"type:varchar(32);index" json:"channel,omitempty"`

	CustomerName  string `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	CustomerEmail string `gorm:"type:varchar(255);index" json:"customer_email,omitempty"`
	CustomerCPF   string `gorm:"type:varchar(14)" json:"customer_cpf,omitempty"`
	CustomerPhone string `gorm:"type:varchar(32)" json:"customer_phone,omitempty"`
	Product       string `gorm:"type:varchar(64);index" json:"product,omitempty"`

	// AssigneeID is attached when a staff member first replies.
	AssigneeID string `gorm:"type:varchar(64);index" json:"assignee_id,omitempty"`

	// Version starts at 1 and increments by exactly one on every
	// successful mutation. See TicketService.Update for the conditional
	// write that compares against it.
	Version int64 `gorm:"not null;default:1" json:"version"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Version == 0 {
		t.Version = 1
	}
	return nil
}

// Message is one utterance inside a ticket's conversation. An empty
// AuthorID with IsAI=false means the anonymous end customer wrote it.
type Message struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	TicketID string `gorm:"type:uuid;index;not null" json:"ticket_id"`
	AuthorID string `gorm:"type:varchar(64)" json:"author_id,omitempty"`
	Content  string `gorm:"type:text;not null" json:"content"`
	IsAI     bool   `gorm:"not null;default:false" json:"is_ai"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// FromCustomer reports whether the message came from the end customer.
func (m *Message) FromCustomer() bool {
	return m.AuthorID == "" && !m.IsAI
}

// WebhookConfig is a registered outbound subscriber.
type WebhookConfig struct {
	ID     string         `gorm:"primaryKey;type:uuid" json:"id"`
	Name   string         `gorm:"type:varchar(255);not null" json:"name"`
	URL    string         `gorm:"type:varchar(2048);not null" json:"url"`
	Events pq.StringArray `gorm:"type:text[];not null" json:"events"`
	Active bool           `gorm:"index;not null;default:true" json:"active"`
	Secret string         `gorm:"type:varchar(255)" json:"secret,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *WebhookConfig) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// Subscribed reports whether the config wants events of the given kind.
func (w *WebhookConfig) Subscribed(kind EventKind) bool {
	for _, e := range w.Events {
		if EventKind(e) == kind {
			return true
		}
	}
	return false
}

// WebhookExecutionLog is the append-only audit record of one dispatch
// attempt. StatusCode is 0 when the request never completed.
type WebhookExecutionLog struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	WebhookID string    `gorm:"type:uuid;index;not null" json:"webhook_id"`
	EventKind EventKind `gorm:"type:varchar(32);index;not null" json:"event_kind"`
	TicketID  string    `gorm:"type:uuid;index" json:"ticket_id"`

	StatusCode int    `json:"status_code"`
	Success    bool   `gorm:"index" json:"success"`
	Response   string `gorm:"type:text" json:"response,omitempty"`
	Error      string `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (l *WebhookExecutionLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// KnowledgeEntry is a titled piece of canned knowledge used only as
// AI-prompt context.
type KnowledgeEntry struct {
	ID       string         `gorm:"primaryKey;type:uuid" json:"id"`
	Title    string         `gorm:"type:varchar(255);not null" json:"title"`
	Content  string         `gorm:"type:text;not null" json:"content"`
	Category string         `gorm:"type:varchar(64);index" json:"category,omitempty"`
	Keywords pq.StringArray `gorm:"type:text[]" json:"keywords"`
	Product  string         `gorm:"type:varchar(64);index" json:"product,omitempty"`
	Active   bool           `gorm:"index;not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (k *KnowledgeEntry) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}

type FeedbackRating string

const (
	RatingPositive FeedbackRating = "positive"
	RatingNegative FeedbackRating = "negative"
)

// AIFeedback rates one AI-authored message.
type AIFeedback struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	MessageID string         `gorm:"type:uuid;index;not null" json:"message_id"`
	TicketID  string         `gorm:"type:uuid;index;not null" json:"ticket_id"`
	Rating    FeedbackRating `gorm:"type:varchar(16);not null" json:"rating"`
	Comment   string         `gorm:"type:text" json:"comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AIFeedback) TableName() string { return "ai_feedback" }

func (f *AIFeedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
