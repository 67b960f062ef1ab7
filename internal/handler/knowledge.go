package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/service"
)

type KnowledgeHandler struct {
	svc *service.KnowledgeService
}

func NewKnowledgeHandler(svc *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type knowledgeRequest struct {
	Title    string   `json:"title" binding:"required,max=255"`
	Content  string   `json:"content" binding:"required"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
	Product  string   `json:"product"`
	Active   *bool    `json:"active"`
}

func (r *knowledgeRequest) toModel() *model.KnowledgeEntry {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &model.KnowledgeEntry{
		Title:    r.Title,
		Content:  r.Content,
		Category: r.Category,
		Keywords: pq.StringArray(r.Keywords),
		Product:  r.Product,
		Active:   active,
	}
}

func (h *KnowledgeHandler) Create(c *gin.Context) {
	var req knowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	entry := req.toModel()
	if err := h.svc.Create(c.Request.Context(), entry); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *KnowledgeHandler) Get(c *gin.Context) {
	entry, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *KnowledgeHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": items, "total": len(items)})
}

func (h *KnowledgeHandler) Update(c *gin.Context) {
	var req knowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	entry, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.toModel())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *KnowledgeHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
