package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/service"
)

type MessageHandler struct {
	svc *service.MessageService
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type createMessageRequest struct {
	Content string `json:"content" binding:"required"`
	// AuthorID is the staff identity; empty means the end customer.
	AuthorID string `json:"author_id"`
}

func (h *MessageHandler) Create(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	msg := &model.Message{
		TicketID: c.Param("id"),
		AuthorID: req.AuthorID,
		Content:  req.Content,
	}
	if err := h.svc.Create(c.Request.Context(), msg); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) ListByTicket(c *gin.Context) {
	items, err := h.svc.ListByTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": items, "total": len(items)})
}

func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
