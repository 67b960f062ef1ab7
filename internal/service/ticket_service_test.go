package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/errs"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/webhook"
	"gorm.io/gorm"
)

func newTicket(t *testing.T, svc *TicketService) *model.Ticket {
	t.Helper()
	ticket := &model.Ticket{
		Title:         "Pedido não chegou",
		Description:   "Pedido 1234 está atrasado há uma semana",
		CustomerName:  "Maria",
		CustomerEmail: "maria@example.com",
	}
	require.NoError(t, svc.Create(context.Background(), ticket))
	return ticket
}

func TestTicketCreateDefaults(t *testing.T) {
	rec := &eventRecorder{}
	svc := NewTicketService(newTestDB(t), TicketSinks{Webhooks: rec})
	ticket := newTicket(t, svc)

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, model.TicketStatusOpen, ticket.Status)
	assert.Equal(t, model.PriorityMedium, ticket.Priority)
	assert.EqualValues(t, 1, ticket.Version)
	assert.Nil(t, ticket.ResolvedAt)

	created := rec.byKind(model.EventTicketCreated)
	require.Len(t, created, 1)
	assert.Equal(t, ticket.ID, created[0].TicketID())
}

func TestTicketVersionMonotonicity(t *testing.T) {
	svc := NewTicketService(newTestDB(t), TicketSinks{})
	ticket := newTicket(t, svc)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		updated, err := svc.Update(ctx, ticket.ID, map[string]interface{}{
			"description": "rev",
		}, nil)
		require.NoError(t, err)
		assert.EqualValues(t, int64(i+1), updated.Version, "update %d must bump version by exactly one", i)
	}
}

func TestTicketUpdateExpectedVersionMismatch(t *testing.T) {
	svc := NewTicketService(newTestDB(t), TicketSinks{})
	ticket := newTicket(t, svc)
	ctx := context.Background()

	stale := int64(7)
	_, err := svc.Update(ctx, ticket.ID, map[string]interface{}{"priority": "high"}, &stale)
	require.ErrorIs(t, err, errs.ErrVersionConflict)

	// Storage untouched by the failed attempt.
	cur, err := svc.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cur.Version)
	assert.Equal(t, model.PriorityMedium, cur.Priority)
}

func TestTicketOptimisticLockExclusivity(t *testing.T) {
	svc := NewTicketService(newTestDB(t), TicketSinks{})
	ticket := newTicket(t, svc)
	ctx := context.Background()

	v1 := int64(1)
	first, err := svc.Update(ctx, ticket.ID, map[string]interface{}{"status": "in_progress"}, &v1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, first.Version)

	// Second writer still believes version 1 is current.
	_, err = svc.Update(ctx, ticket.ID, map[string]interface{}{"status": "closed"}, &v1)
	require.ErrorIs(t, err, errs.ErrVersionConflict)

	// Retrying with the freshly read version succeeds.
	v2 := first.Version
	second, err := svc.Update(ctx, ticket.ID, map[string]interface{}{"status": "closed"}, &v2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, second.Version)
	assert.Equal(t, model.TicketStatusClosed, second.Status)
}

func TestTicketUpdateLosesRaceToConcurrentWriter(t *testing.T) {
	db := newTestDB(t)
	svc := NewTicketService(db, TicketSinks{})
	ticket := newTicket(t, svc)
	ctx := context.Background()

	// Sneak a competing writer in between Update's read and its
	// conditional write: right before the update statement executes,
	// bump the row out of band so the WHERE version clause no longer
	// matches.
	raced := false
	err := db.Callback().Update().Before("gorm:update").Register("test:race_once", func(tx *gorm.DB) {
		if raced {
			return
		}
		raced = true
		exec := tx.Session(&gorm.Session{NewDB: true}).Exec(
			"UPDATE tickets SET status = ?, version = version + 1 WHERE id = ?",
			string(model.TicketStatusInProgress), ticket.ID,
		)
		require.NoError(t, exec.Error)
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, ticket.ID, map[string]interface{}{"priority": "urgent"}, nil)
	require.ErrorIs(t, err, errs.ErrVersionConflict)
	assert.True(t, raced)

	// The competing writer's state stands; the losing change set never
	// landed.
	cur, err := svc.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cur.Version)
	assert.Equal(t, model.TicketStatusInProgress, cur.Status)
	assert.Equal(t, model.PriorityMedium, cur.Priority)
}

func TestTicketUpdateLeavesCallerChangesUntouched(t *testing.T) {
	svc := NewTicketService(newTestDB(t), TicketSinks{})
	ticket := newTicket(t, svc)
	ctx := context.Background()

	changes := map[string]interface{}{"status": model.TicketStatusResolved}
	updated, err := svc.Update(ctx, ticket.ID, changes, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)

	// The injected version and resolved_at columns must stay out of the
	// caller's map so a retry does not resubmit them as explicit.
	assert.Equal(t, map[string]interface{}{"status": model.TicketStatusResolved}, changes)
}

func TestTicketResolvedAtStamping(t *testing.T) {
	mails := &mailRecorder{}
	svc := NewTicketService(newTestDB(t), TicketSinks{Mailer: mails})
	ticket := newTicket(t, svc)
	ctx := context.Background()

	updated, err := svc.Update(ctx, ticket.ID, map[string]interface{}{"status": "resolved"}, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	assert.False(t, updated.ResolvedAt.Before(ticket.CreatedAt), "resolved_at must be >= created_at")
	assert.False(t, updated.ResolvedAt.After(time.Now().Add(time.Second)))

	firstStamp := *updated.ResolvedAt

	// Leaving resolved does not clear the marker.
	updated, err = svc.Update(ctx, ticket.ID, map[string]interface{}{"status": "open"}, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	assert.True(t, updated.ResolvedAt.Equal(firstStamp))

	// Re-entering resolved keeps the original stamp.
	updated, err = svc.Update(ctx, ticket.ID, map[string]interface{}{"status": "resolved"}, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	assert.True(t, updated.ResolvedAt.Equal(firstStamp))

	// The resolved notice went out once per entry into resolved.
	require.Len(t, mails.resolved, 2)
}

func TestTicketStatusChangeFiresWebhook(t *testing.T) {
	rec := &eventRecorder{}
	svc := NewTicketService(newTestDB(t), TicketSinks{Webhooks: rec})
	ticket := newTicket(t, svc)
	ctx := context.Background()

	_, err := svc.Update(ctx, ticket.ID, map[string]interface{}{"status": "in_progress"}, nil)
	require.NoError(t, err)

	changed := rec.byKind(model.EventStatusChanged)
	require.Len(t, changed, 1)
	sc, ok := changed[0].(webhook.StatusChanged)
	require.True(t, ok)
	assert.Equal(t, model.TicketStatusOpen, sc.OldStatus)
	assert.Equal(t, model.TicketStatusInProgress, sc.NewStatus)

	// A no-status update fires ticket_updated but not status_changed.
	_, err = svc.Update(ctx, ticket.ID, map[string]interface{}{"priority": "high"}, nil)
	require.NoError(t, err)
	assert.Len(t, rec.byKind(model.EventStatusChanged), 1)
	assert.Len(t, rec.byKind(model.EventTicketUpdated), 2)
}

func TestTicketUpdateRejectsBadValues(t *testing.T) {
	svc := NewTicketService(newTestDB(t), TicketSinks{})
	ticket := newTicket(t, svc)
	ctx := context.Background()

	_, err := svc.Update(ctx, ticket.ID, map[string]interface{}{"status": "reopened"}, nil)
	require.ErrorIs(t, err, errs.ErrInvalidStatus)

	_, err = svc.Update(ctx, ticket.ID, map[string]interface{}{"priority": "asap"}, nil)
	require.ErrorIs(t, err, errs.ErrInvalidPriority)
}

func TestTicketUpdateNotFound(t *testing.T) {
	svc := NewTicketService(newTestDB(t), TicketSinks{})
	_, err := svc.Update(context.Background(), "291c52bc-55e9-4e94-b3ae-f74504f05e82", map[string]interface{}{"status": "closed"}, nil)
	require.ErrorIs(t, err, errs.ErrTicketNotFound)
}

func TestTicketDelete(t *testing.T) {
	svc := NewTicketService(newTestDB(t), TicketSinks{})
	ticket := newTicket(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, ticket.ID))
	_, err := svc.GetByID(ctx, ticket.ID)
	require.ErrorIs(t, err, errs.ErrTicketNotFound)
	require.ErrorIs(t, svc.Delete(ctx, ticket.ID), errs.ErrTicketNotFound)
}

// Mirrors the full lifecycle scenario: open v1 -> in_progress v2 ->
// resolved v3, then a stale writer bounces off.
func TestTicketLifecycleScenario(t *testing.T) {
	svc := NewTicketService(newTestDB(t), TicketSinks{})
	ticket := newTicket(t, svc)
	ctx := context.Background()

	v1 := int64(1)
	updated, err := svc.Update(ctx, ticket.ID, map[string]interface{}{"status": "in_progress"}, &v1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Version)
	assert.Nil(t, updated.ResolvedAt)

	v2 := int64(2)
	updated, err = svc.Update(ctx, ticket.ID, map[string]interface{}{"status": "resolved"}, &v2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, updated.Version)
	assert.NotNil(t, updated.ResolvedAt)

	stale := int64(2)
	_, err = svc.Update(ctx, ticket.ID, map[string]interface{}{"status": "closed"}, &stale)
	require.ErrorIs(t, err, errs.ErrVersionConflict)

	cur, err := svc.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, cur.Version)
	assert.Equal(t, model.TicketStatusResolved, cur.Status)
}

func TestTicketList(t *testing.T) {
	svc := NewTicketService(newTestDB(t), TicketSinks{})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		newTicket(t, svc)
	}
	_, err := svc.Update(ctx, newTicket(t, svc).ID, map[string]interface{}{"status": "closed"}, nil)
	require.NoError(t, err)

	items, total, err := svc.List(ctx, map[string]interface{}{"status = ?": "open"}, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 3)

	items, total, err = svc.List(ctx, nil, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, items, 2)
}
