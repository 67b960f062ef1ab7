package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/service"
)

type FeedbackHandler struct {
	svc *service.FeedbackService
}

func NewFeedbackHandler(svc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

type createFeedbackRequest struct {
	MessageID string `json:"message_id" binding:"required,uuid"`
	Rating    string `json:"rating" binding:"required,oneof=positive negative"`
	Comment   string `json:"comment"`
}

func (h *FeedbackHandler) Create(c *gin.Context) {
	var req createFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	fb := &model.AIFeedback{
		MessageID: req.MessageID,
		Rating:    model.FeedbackRating(req.Rating),
		Comment:   req.Comment,
	}
	if err := h.svc.Create(c.Request.Context(), fb); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fb)
}

func (h *FeedbackHandler) List(c *gin.Context) {
	limit, offset := 50, 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	items, total, err := h.svc.List(c.Request.Context(), c.Query("ticket_id"), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": items, "total": total})
}

type correctFeedbackRequest struct {
	Rating  string `json:"rating" binding:"required,oneof=positive negative"`
	Comment string `json:"comment"`
}

func (h *FeedbackHandler) Correct(c *gin.Context) {
	var req correctFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	fb, err := h.svc.Correct(c.Request.Context(), c.Param("id"), model.FeedbackRating(req.Rating), req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fb)
}
