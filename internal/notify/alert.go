package notify

import "time"

type AlertKind string

const (
	AlertInfo    AlertKind = "info"
	AlertSuccess AlertKind = "success"
	AlertWarning AlertKind = "warning"
	AlertError   AlertKind = "error"
)

// DisplayDuration is how long clients should keep an alert on the
// visible surface before hiding it. The alert stays in the ledger until
// marked read or cleared.
const DisplayDuration = 8 * time.Second

// Alert is one user-facing notification held in the hub's ledger.
type Alert struct {
	ID        string    `json:"id"`
	Kind      AlertKind `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Change is one decoded row-change notification from the datastore.
type Change struct {
	Table     string `json:"table"`
	Op        string `json:"op"`
	ID        string `json:"id"`
	TicketID  string `json:"ticket_id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	OldStatus string `json:"old_status"`
	AuthorID  string `json:"author_id"`
	IsAI      bool   `json:"is_ai"`
}
