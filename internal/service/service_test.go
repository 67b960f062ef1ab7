package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/webhook"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.Ticket{},
		&model.Message{},
		&model.WebhookConfig{},
		&model.WebhookExecutionLog{},
		&model.KnowledgeEntry{},
		&model.AIFeedback{},
	))
	return db
}

// eventRecorder captures dispatched webhook events in place of the
// real dispatcher queue.
type eventRecorder struct {
	mu     sync.Mutex
	events []webhook.Event
}

func (r *eventRecorder) Trigger(ev webhook.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) byKind(kind model.EventKind) []webhook.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []webhook.Event
	for _, ev := range r.events {
		if ev.Kind() == kind {
			out = append(out, ev)
		}
	}
	return out
}

// mailRecorder captures outbound email notices.
type mailRecorder struct {
	mu       sync.Mutex
	resolved []string
	replied  []string
}

func (r *mailRecorder) SendTicketResolvedAsync(t *model.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = append(r.resolved, t.ID)
}

func (r *mailRecorder) SendStaffRepliedAsync(t *model.Ticket, reply string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replied = append(r.replied, t.ID)
}
