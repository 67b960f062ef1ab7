package service

import (
	"context"
	"errors"
	"log"

	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/errs"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/webhook"
	"gorm.io/gorm"
)

// ReplyNotifier sends the "staff replied" customer notice.
type ReplyNotifier interface {
	SendStaffRepliedAsync(t *model.Ticket, reply string)
}

type MessageService struct {
	db       *gorm.DB
	tickets  TicketServicer
	webhooks EventTrigger
	mailer   ReplyNotifier
}

func NewMessageService(db *gorm.DB, tickets TicketServicer, webhooks EventTrigger, mailer ReplyNotifier) *MessageService {
	return &MessageService{db: db, tickets: tickets, webhooks: webhooks, mailer: mailer}
}

// Create persists a message on an existing ticket. Staff and AI
// messages fire message_sent; a first staff reply also attaches the
// author as the ticket's assignee and notifies the customer by email.
// All side effects are fire-and-forget.
func (s *MessageService) Create(ctx context.Context, m *model.Message) error {
	ticket, err := s.tickets.GetByID(ctx, m.TicketID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}

	staffReply := m.AuthorID != "" && !m.IsAI
	if staffReply || m.IsAI {
		if s.webhooks != nil {
			s.webhooks.Trigger(webhook.MessageSent{Ticket: m.TicketID, Message: m.Content})
		}
	}
	if staffReply {
		if ticket.AssigneeID == "" {
			// Best effort: a concurrent writer may bump the version
			// first, in which case the next reply attaches instead.
			if _, err := s.tickets.Update(ctx, m.TicketID, map[string]interface{}{
				"assignee_id": m.AuthorID,
			}, nil); err != nil && !errors.Is(err, errs.ErrVersionConflict) {
				log.Printf("message: attach assignee to ticket %s: %v", m.TicketID, err)
			}
		}
		if s.mailer != nil {
			s.mailer.SendStaffRepliedAsync(ticket, m.Content)
		}
	}
	return nil
}

func (s *MessageService) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var m model.Message
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListByTicket returns the conversation oldest-first.
func (s *MessageService) ListByTicket(ctx context.Context, ticketID string) ([]model.Message, error) {
	var items []model.Message
	if err := s.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes one message (admin escape hatch; messages are
// otherwise immutable after creation).
func (s *MessageService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Message{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrMessageNotFound
	}
	return nil
}
