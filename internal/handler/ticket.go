package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/service"
)

type TicketHandler struct {
	svc service.TicketServicer
}

func NewTicketHandler(svc service.TicketServicer) *TicketHandler {
	return &TicketHandler{svc: svc}
}

type createTicketRequest struct {
	Title         string `json:"title" binding:"required,max=255"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Priority      string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email" binding:"omitempty,email"`
	CustomerCPF   string `json:"customer_cpf" binding:"omitempty,cpf"`
	CustomerPhone string `json:"customer_phone" binding:"omitempty,min=8,max=20"`
	Product       string `json:"product"`
}

func (h *TicketHandler) Create(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	ticket := &model.Ticket{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Priority:      model.TicketPriority(req.Priority),
		Channel:       model.ChannelWeb,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerCPF:   req.CustomerCPF,
		CustomerPhone: req.CustomerPhone,
		Product:       req.Product,
	}
	if err := h.svc.Create(c.Request.Context(), ticket); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) Get(c *gin.Context) {
	t, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TicketHandler) List(c *gin.Context) {
	filter := make(map[string]interface{})
	if v := c.Query("status"); v != "" {
		filter["status = ?"] = v
	}
	if v := c.Query("priority"); v != "" {
		filter["priority = ?"] = v
	}
	if v := c.Query("category"); v != "" {
		filter["category = ?"] = v
	}
	if v := c.Query("channel"); v != "" {
		filter["channel = ?"] = v
	}
	if v := c.Query("product"); v != "" {
		filter["product = ?"] = v
	}
	if v := c.Query("assignee_id"); v != "" {
		filter["assignee_id = ?"] = v
	}
	if v := c.Query("customer_email"); v != "" {
		filter["customer_email = ?"] = v
	}

	limit, offset := 0, 0
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

	items, total, err := h.svc.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": items, "total": total})
}

type updateTicketRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,max=255"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty" binding:"omitempty,oneof=open in_progress resolved closed"`
	Priority    *string `json:"priority,omitempty" binding:"omitempty,oneof=low medium high urgent"`
	Category    *string `json:"category,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
	Product     *string `json:"product,omitempty"`

	// ExpectedVersion, when present, must match the stored version or
	// the update fails with 409 before touching storage.
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

func (h *TicketHandler) Update(c *gin.Context) {
	var req updateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	changes := make(map[string]interface{})
	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Status != nil {
		changes["status"] = *req.Status
	}
	if req.Priority != nil {
		changes["priority"] = *req.Priority
	}
	if req.Category != nil {
		changes["category"] = *req.Category
	}
	if req.AssigneeID != nil {
		changes["assignee_id"] = *req.AssigneeID
	}
	if req.Product != nil {
		changes["product"] = *req.Product
	}
	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no changes"})
		return
	}
	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), changes, req.ExpectedVersion)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TicketHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
