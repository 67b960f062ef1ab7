package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/errs"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
)

func TestMessageCustomerDoesNotFireSideEffects(t *testing.T) {
	db := newTestDB(t)
	rec := &eventRecorder{}
	mails := &mailRecorder{}
	tickets := NewTicketService(db, TicketSinks{})
	svc := NewMessageService(db, tickets, rec, mails)
	ticket := newTicket(t, tickets)
	ctx := context.Background()

	msg := &model.Message{TicketID: ticket.ID, Content: "Olá, ainda sem resposta"}
	require.NoError(t, svc.Create(ctx, msg))
	assert.True(t, msg.FromCustomer())
	assert.Empty(t, rec.byKind(model.EventMessageSent))
	assert.Empty(t, mails.replied)
}

func TestMessageStaffReplyFiresSideEffects(t *testing.T) {
	db := newTestDB(t)
	rec := &eventRecorder{}
	mails := &mailRecorder{}
	tickets := NewTicketService(db, TicketSinks{})
	svc := NewMessageService(db, tickets, rec, mails)
	ticket := newTicket(t, tickets)
	ctx := context.Background()

	msg := &model.Message{TicketID: ticket.ID, AuthorID: "agent-7", Content: "Estamos verificando seu pedido"}
	require.NoError(t, svc.Create(ctx, msg))

	sent := rec.byKind(model.EventMessageSent)
	require.Len(t, sent, 1)
	assert.Equal(t, ticket.ID, sent[0].TicketID())
	require.Len(t, mails.replied, 1)

	// First staff reply attaches the author as assignee, which is a
	// versioned mutation like any other.
	cur, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "agent-7", cur.AssigneeID)
	assert.EqualValues(t, 2, cur.Version)

	// A second staff reply leaves the assignee alone.
	msg2 := &model.Message{TicketID: ticket.ID, AuthorID: "agent-9", Content: "Atualização enviada"}
	require.NoError(t, svc.Create(ctx, msg2))
	cur, err = tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "agent-7", cur.AssigneeID)
}

func TestMessageAIFiresWebhookOnly(t *testing.T) {
	db := newTestDB(t)
	rec := &eventRecorder{}
	mails := &mailRecorder{}
	tickets := NewTicketService(db, TicketSinks{})
	svc := NewMessageService(db, tickets, rec, mails)
	ticket := newTicket(t, tickets)

	msg := &model.Message{TicketID: ticket.ID, Content: "Resposta automática", IsAI: true}
	require.NoError(t, svc.Create(context.Background(), msg))
	assert.Len(t, rec.byKind(model.EventMessageSent), 1)
	assert.Empty(t, mails.replied)
}

func TestMessageOnMissingTicket(t *testing.T) {
	db := newTestDB(t)
	tickets := NewTicketService(db, TicketSinks{})
	svc := NewMessageService(db, tickets, nil, nil)

	msg := &model.Message{TicketID: "291c52bc-55e9-4e94-b3ae-f74504f05e82", Content: "perdido"}
	require.ErrorIs(t, svc.Create(context.Background(), msg), errs.ErrTicketNotFound)
}

func TestMessageListAndDelete(t *testing.T) {
	db := newTestDB(t)
	tickets := NewTicketService(db, TicketSinks{})
	svc := NewMessageService(db, tickets, nil, nil)
	ticket := newTicket(t, tickets)
	ctx := context.Background()

	first := &model.Message{TicketID: ticket.ID, Content: "primeira"}
	require.NoError(t, svc.Create(ctx, first))
	second := &model.Message{TicketID: ticket.ID, AuthorID: "agent-1", Content: "segunda"}
	require.NoError(t, svc.Create(ctx, second))

	items, err := svc.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "primeira", items[0].Content)

	require.NoError(t, svc.Delete(ctx, first.ID))
	require.ErrorIs(t, svc.Delete(ctx, first.ID), errs.ErrMessageNotFound)
	items, err = svc.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
