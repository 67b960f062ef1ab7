// Package kafka mirrors ticket events onto a Kafka topic for downstream
// consumers (analytics, search). Best-effort: it never blocks or fails
// the API path, and it is a no-op when unconfigured.
package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
)

// TicketEventProducer is the interface the services depend on, so tests
// can swap in a recorder.
type TicketEventProducer interface {
	ProduceTicketEvent(ctx context.Context, event string, t *model.Ticket)
}

// Producer writes ticket events to a topic. With no brokers or topic
// configured every method is a no-op.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{}
	}
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// ProduceTicketEvent sends one event. event is e.g. "ticket.created",
// "ticket.updated", "ticket.status_changed".
func (p *Producer) ProduceTicketEvent(ctx context.Context, event string, t *model.Ticket) {
	if p.writer == nil || t == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"event":     event,
		"ticket_id": t.ID,
		"title":     t.Title,
		"status":    string(t.Status),
		"priority":  string(t.Priority),
		"category":  t.Category,
		"channel":   t.Channel,
		"product":   t.Product,
		"version":   t.Version,
	})
	if err != nil {
		log.Printf("kafka: marshal ticket event: %v", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(t.ID), Value: body}); err != nil {
		log.Printf("kafka: write ticket event: %v", err)
	}
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
