package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/ai"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/config"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/database"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/handler"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/kafka"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/mailer"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/notify"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/router"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/service"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/webhook"
)

// API is the api run mode: HTTP server, webhook dispatcher workers and
// the notification relay.
type API struct {
	cfg        *config.Config
	httpSrv    *http.Server
	dispatcher *webhook.Dispatcher
	hub        *notify.Hub
	producer   *kafka.Producer
}

func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	webhookSvc := service.NewWebhookService(db)
	dispatcher := webhook.NewDispatcher(webhookSvc, webhookSvc, webhook.Options{
		Workers:     cfg.WebhookWorkers,
		QueueSize:   cfg.WebhookQueueSize,
		HTTPTimeout: cfg.WebhookTimeout,
	})
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicTicket)
	mail := mailer.New(mailer.Options{
		APIKey:  cfg.EmailAPIKey,
		BaseURL: cfg.EmailBaseURL,
		From:    cfg.EmailFrom,
	})

	ticketSvc := service.NewTicketService(db, service.TicketSinks{
		Webhooks: dispatcher,
		Producer: producer,
		Mailer:   mail,
	})
	messageSvc := service.NewMessageService(db, ticketSvc, dispatcher, mail)
	knowledgeSvc := service.NewKnowledgeService(db)
	feedbackSvc := service.NewFeedbackService(db)

	responder := ai.NewResponder(ai.Options{
		APIKey:  cfg.AIAPIKey,
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
		Timeout: cfg.AITimeout,
	})

	stream := notify.NewPGStream(cfg.DSN(), cfg.NotifyChannel)
	hub := notify.NewHub(stream, func(ctx context.Context, ticketID string) string {
		t, err := ticketSvc.GetByID(ctx, ticketID)
		if err != nil {
			return ""
		}
		return t.Title
	}, notify.RetryPolicy{
		MaxAttempts: cfg.NotifyMaxAttempts,
		BaseDelay:   cfg.NotifyRetryBase,
		Ceiling:     cfg.NotifyRetryCeiling,
	}, cfg.NotifyMaxAlerts)

	mux := router.New(router.Handlers{
		Ticket:       handler.NewTicketHandler(ticketSvc),
		Message:      handler.NewMessageHandler(messageSvc),
		Chat:         handler.NewChatHandler(ticketSvc, messageSvc, knowledgeSvc, responder),
		Webhook:      handler.NewWebhookHandler(webhookSvc),
		Knowledge:    handler.NewKnowledgeHandler(knowledgeSvc),
		Feedback:     handler.NewFeedbackHandler(feedbackSvc),
		Notification: handler.NewNotificationHandler(hub),
		Channel:      handler.NewChannelHandler(ticketSvc, messageSvc),
		AdminToken:   cfg.AdminToken,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:        cfg,
		httpSrv:    httpSrv,
		dispatcher: dispatcher,
		hub:        hub,
		producer:   producer,
	}, nil
}

// Run starts the HTTP server and the notification relay, blocking until
// ctx is cancelled.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", a.httpSrv.Addr)
	log.Printf("  Swagger UI:    %s/swagger", base)
	log.Printf("  Health:        %s/health", base)
	log.Printf("  API v1:        %s/api/v1/", base)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	go func() {
		// The relay degrades to a surfaced disconnected state when its
		// retry budget runs out; the API keeps serving either way.
		if err := a.hub.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("notify: relay stopped: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.dispatcher.Close()
	if err := a.producer.Close(); err != nil {
		log.Printf("kafka: close: %v", err)
	}
	return nil
}
