package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/tomasbalestrin-brius/Suporte-sub000/api"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/handler"
)

// Handlers collects everything the router mounts.
type Handlers struct {
	Ticket       *handler.TicketHandler
	Message      *handler.MessageHandler
	Chat         *handler.ChatHandler
	Webhook      *handler.WebhookHandler
	Knowledge    *handler.KnowledgeHandler
	Feedback     *handler.FeedbackHandler
	Notification *handler.NotificationHandler
	Channel      *handler.ChannelHandler

	// AdminToken guards the staff surfaces when non-empty.
	AdminToken string
}

func New(h Handlers) http.Handler {
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", handler.Health)
	r.GET("/ready", handler.Ready)
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/") })
	r.GET("/swagger/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = "/swagger/index.html"
			c.Request.RequestURI = "/swagger/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	v1 := r.Group("/api/v1")

	// Public surfaces: ticket submission, conversation, chat widget,
	// AI feedback, inbound channel adapters.
	v1.POST("/tickets", h.Ticket.Create)
	v1.GET("/tickets/:id", h.Ticket.Get)
	v1.GET("/tickets/:id/messages", h.Message.ListByTicket)
	v1.POST("/tickets/:id/messages", h.Message.Create)
	v1.POST("/tickets/:id/chat", h.Chat.Chat)
	v1.POST("/feedback", h.Feedback.Create)
	v1.POST("/channels/:channel/inbound", h.Channel.Inbound)

	// Staff console surfaces.
	admin := v1.Group("", handler.RequireAdmin(h.AdminToken))
	{
		admin.GET("/tickets", h.Ticket.List)
		admin.PATCH("/tickets/:id", h.Ticket.Update)
		admin.DELETE("/tickets/:id", h.Ticket.Delete)
		admin.DELETE("/messages/:id", h.Message.Delete)

		admin.GET("/webhooks", h.Webhook.List)
		admin.POST("/webhooks", h.Webhook.Create)
		admin.GET("/webhooks/:id", h.Webhook.Get)
		admin.PUT("/webhooks/:id", h.Webhook.Update)
		admin.DELETE("/webhooks/:id", h.Webhook.Delete)
		admin.GET("/webhooks/:id/logs", h.Webhook.ListLogs)
		admin.GET("/webhook-logs", h.Webhook.ListLogs)

		admin.GET("/knowledge", h.Knowledge.List)
		admin.POST("/knowledge", h.Knowledge.Create)
		admin.GET("/knowledge/:id", h.Knowledge.Get)
		admin.PUT("/knowledge/:id", h.Knowledge.Update)
		admin.DELETE("/knowledge/:id", h.Knowledge.Delete)

		admin.GET("/feedback", h.Feedback.List)
		admin.PUT("/feedback/:id", h.Feedback.Correct)

		admin.GET("/notifications", h.Notification.List)
		admin.POST("/notifications/:id/read", h.Notification.MarkRead)
		admin.POST("/notifications/read-all", h.Notification.MarkAllRead)
		admin.DELETE("/notifications", h.Notification.Clear)
		admin.GET("/notifications/status", h.Notification.Status)
		admin.GET("/notifications/stream", h.Notification.Stream)
	}

	return r
}
