package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/errs"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/kafka"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/webhook"
	"gorm.io/gorm"
)

// EventTrigger hands an event to the webhook dispatcher queue. Trigger
// must not block.
type EventTrigger interface {
	Trigger(ev webhook.Event)
}

// ResolvedNotifier sends the "ticket resolved" customer notice.
type ResolvedNotifier interface {
	SendTicketResolvedAsync(t *model.Ticket)
}

// TicketSinks are the fire-and-forget side-effect targets of the ticket
// lifecycle. Any of them may be nil.
type TicketSinks struct {
	Webhooks EventTrigger
	Producer kafka.TicketEventProducer
	Mailer   ResolvedNotifier
}

// TicketServicer is the lifecycle interface transports depend on.
type TicketServicer interface {
	Create(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id string) (*model.Ticket, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]model.Ticket, int64, error)
	Update(ctx context.Context, id string, changes map[string]interface{}, expectedVersion *int64) (*model.Ticket, error)
	Delete(ctx context.Context, id string) error
}

type TicketService struct {
	db    *gorm.DB
	sinks TicketSinks
}

func NewTicketService(db *gorm.DB, sinks TicketSinks) *TicketService {
	return &TicketService{db: db, sinks: sinks}
}

// Create persists a new ticket with status open and version 1, then
// fires ticket_created without awaiting delivery. A notification
// failure never fails the creation.
func (s *TicketService) Create(ctx context.Context, t *model.Ticket) error {
	t.Status = model.TicketStatusOpen
	t.Version = 1
	t.ResolvedAt = nil
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(t.Priority) {
		return errs.ErrInvalidPriority
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return err
	}
	if s.sinks.Webhooks != nil {
		s.sinks.Webhooks.Trigger(webhook.TicketCreated{Ticket: t})
	}
	s.produce("ticket.created", t)
	return nil
}

func (s *TicketService) GetByID(ctx context.Context, id string) (*model.Ticket, error) {
	var t model.Ticket
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *TicketService) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]model.Ticket, int64, error) {
	var items []model.Ticket
	var total int64
	tx := s.db.WithContext(ctx).Model(&model.Ticket{})
	for k, v := range filter {
		tx = tx.Where(k, v)
	}
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update applies a sparse change set under optimistic concurrency.
//
// The stored version read here is the compare value of a conditional
// write (WHERE id = ? AND version = ?) that also bumps the version in
// the same statement. A caller-supplied expectedVersion that differs
// from the stored one fails fast with ErrVersionConflict before
// touching storage; a concurrent writer that sneaks in between the
// read and the write makes the conditional update match zero rows and
// yields the same ErrVersionConflict.
func (s *TicketService) Update(ctx context.Context, id string, changes map[string]interface{}, expectedVersion *int64) (*model.Ticket, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion != nil && *expectedVersion != cur.Version {
		return nil, errs.ErrVersionConflict
	}

	// Work on a copy so the caller's map survives untouched; a retry
	// after a conflict must not resubmit injected columns as explicit.
	upd := make(map[string]interface{}, len(changes)+2)
	for k, v := range changes {
		upd[k] = v
	}

	statusChanged := false
	newStatus := cur.Status
	if raw, ok := upd["status"]; ok {
		switch v := raw.(type) {
		case string:
			newStatus = model.TicketStatus(v)
		case model.TicketStatus:
			newStatus = v
		}
		if !model.ValidStatus(newStatus) {
			return nil, errs.ErrInvalidStatus
		}
		if !model.CanTransition(cur.Status, newStatus) {
			return nil, errs.ErrInvalidTransition
		}
		upd["status"] = string(newStatus)
		statusChanged = newStatus != cur.Status
	}
	if raw, ok := upd["priority"]; ok {
		p, _ := raw.(string)
		if !model.ValidPriority(model.TicketPriority(p)) {
			return nil, errs.ErrInvalidPriority
		}
	}

	// resolved_at is a monotonic marker: stamped on first entry to
	// resolved, never cleared by later transitions, only replaced when
	// the caller overrides it explicitly.
	if newStatus == model.TicketStatusResolved && cur.ResolvedAt == nil {
		if _, explicit := upd["resolved_at"]; !explicit {
			upd["resolved_at"] = time.Now().UTC()
		}
	}

	upd["version"] = cur.Version + 1
	res := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ? AND version = ?", id, cur.Version).
		Updates(upd)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errs.ErrVersionConflict
	}

	updated, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.sinks.Webhooks != nil {
		s.sinks.Webhooks.Trigger(webhook.TicketUpdated{Ticket: updated})
		if statusChanged {
			s.sinks.Webhooks.Trigger(webhook.StatusChanged{
				Ticket:    updated,
				OldStatus: cur.Status,
				NewStatus: updated.Status,
			})
		}
	}
	if statusChanged {
		s.produce("ticket.status_changed", updated)
		if updated.Status == model.TicketStatusResolved && s.sinks.Mailer != nil {
			s.sinks.Mailer.SendTicketResolvedAsync(updated)
		}
	} else {
		s.produce("ticket.updated", updated)
	}
	return updated, nil
}

// Delete is the administrative escape hatch: unconditional hard delete,
// no side effects fired.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Ticket{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrTicketNotFound
	}
	return nil
}

// produce mirrors the event to Kafka without holding up the caller; the
// event should go out even if the request context is cancelled.
func (s *TicketService) produce(event string, t *model.Ticket) {
	if s.sinks.Producer == nil {
		return
	}
	snapshot := *t
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("kafka: produce %s: panic: %v", event, r)
			}
		}()
		s.sinks.Producer.ProduceTicketEvent(ctx, event, &snapshot)
	}()
}
