package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/ai"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/service"
)

// Responder is the AI completion boundary; it returns either a text
// result or the fixed fallback, never an error.
type Responder interface {
	GenerateResponse(ctx context.Context, turns []ai.Turn, knowledgeContext string) string
}

// ChatHandler drives the customer chat widget: it stores the customer
// message, grounds a completion on matching knowledge entries, stores
// the AI reply and returns both.
type ChatHandler struct {
	tickets   service.TicketServicer
	messages  *service.MessageService
	knowledge *service.KnowledgeService
	responder Responder
}

func NewChatHandler(tickets service.TicketServicer, messages *service.MessageService, knowledge *service.KnowledgeService, responder Responder) *ChatHandler {
	return &ChatHandler{tickets: tickets, messages: messages, knowledge: knowledge, responder: responder}
}

type chatRequest struct {
	Content string `json:"content" binding:"required"`
}

// historyWindow bounds how many prior turns go into the prompt.
const historyWindow = 10

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	ctx := c.Request.Context()
	ticketID := c.Param("id")

	ticket, err := h.tickets.GetByID(ctx, ticketID)
	if err != nil {
		writeError(c, err)
		return
	}

	customerMsg := &model.Message{TicketID: ticketID, Content: req.Content}
	if err := h.messages.Create(ctx, customerMsg); err != nil {
		writeError(c, err)
		return
	}

	history, err := h.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	turns := make([]ai.Turn, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.IsAI || m.AuthorID != "" {
			role = "assistant"
		}
		turns = append(turns, ai.Turn{Role: role, Content: m.Content})
	}

	entries, err := h.knowledge.Search(ctx, req.Content, ticket.Product, 3)
	if err != nil {
		// Knowledge lookup is context enrichment only; a lookup
		// failure must not break the chat.
		entries = nil
	}

	reply := h.responder.GenerateResponse(ctx, turns, ai.ContextBlock(entries))

	aiMsg := &model.Message{TicketID: ticketID, Content: reply, IsAI: true}
	if err := h.messages.Create(ctx, aiMsg); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": customerMsg,
		"reply":   aiMsg,
	})
}
