package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/service"
)

// ChannelHandler ingests tickets from the alternate creation channels
// (inbound email, Instagram DMs). The upstream adapters push a
// normalized payload here; the resulting ticket carries the channel tag
// and the message body as its first conversation entry.
type ChannelHandler struct {
	tickets  service.TicketServicer
	messages *service.MessageService
}

func NewChannelHandler(tickets service.TicketServicer, messages *service.MessageService) *ChannelHandler {
	return &ChannelHandler{tickets: tickets, messages: messages}
}

type inboundRequest struct {
	Subject       string `json:"subject" binding:"required,max=255"`
	Body          string `json:"body" binding:"required"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email" binding:"omitempty,email"`
	Product       string `json:"product"`
}

func (h *ChannelHandler) Inbound(c *gin.Context) {
	channel := c.Param("channel")
	if channel != model.ChannelEmail && channel != model.ChannelInstagram {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown channel"})
		return
	}
	var req inboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	ctx := c.Request.Context()
	ticket := &model.Ticket{
		Title:         req.Subject,
		Description:   req.Body,
		Channel:       channel,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Product:       req.Product,
	}
	if err := h.tickets.Create(ctx, ticket); err != nil {
		writeError(c, err)
		return
	}
	msg := &model.Message{TicketID: ticket.ID, Content: req.Body}
	if err := h.messages.Create(ctx, msg); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ticket": ticket, "message": msg})
}
