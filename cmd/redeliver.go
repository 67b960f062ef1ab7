package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/config"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/database"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/kafka"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/service"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/webhook"
)

var redeliverCmd = &cobra.Command{
	Use:   "redeliver",
	Short: "Re-fire ticket_updated webhooks for every ticket (subscriber backfill after registering a new endpoint)",
	RunE:  runRedeliver,
}

func init() {
	rootCmd.AddCommand(redeliverCmd)
}

func runRedeliver(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	conn, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}

	var tickets []model.Ticket
	if err := conn.Find(&tickets).Error; err != nil {
		return fmt.Errorf("list tickets: %w", err)
	}
	log.Printf("redeliver: found %d tickets", len(tickets))

	webhookSvc := service.NewWebhookService(conn)
	dispatcher := webhook.NewDispatcher(webhookSvc, webhookSvc, webhook.Options{
		Workers:     cfg.WebhookWorkers,
		QueueSize:   len(tickets) + 1,
		HTTPTimeout: cfg.WebhookTimeout,
	})
	for i := range tickets {
		dispatcher.Trigger(webhook.TicketUpdated{Ticket: &tickets[i]})
		if (i+1)%50 == 0 || i == len(tickets)-1 {
			log.Printf("redeliver: queued %d/%d", i+1, len(tickets))
		}
	}
	// Close drains the queue before returning.
	dispatcher.Close()
	log.Printf("redeliver: done, %d tickets fanned out", len(tickets))

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopicTicket != "" {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicTicket)
		defer producer.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		for i := range tickets {
			producer.ProduceTicketEvent(ctx, "ticket.updated", &tickets[i])
		}
		log.Printf("redeliver: mirrored %d events to Kafka", len(tickets))
	}
	return nil
}
