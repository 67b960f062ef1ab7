package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/notify"
)

type NotificationHandler struct {
	hub *notify.Hub
}

func NewNotificationHandler(hub *notify.Hub) *NotificationHandler {
	return &NotificationHandler{hub: hub}
}

func (h *NotificationHandler) List(c *gin.Context) {
	alerts := h.hub.Alerts()
	c.JSON(http.StatusOK, gin.H{
		"alerts":           alerts,
		"unread":           h.hub.Unread(),
		"display_duration": notify.DisplayDuration.Milliseconds(),
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if !h.hub.MarkRead(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	h.hub.MarkAllRead()
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) Clear(c *gin.Context) {
	h.hub.Clear()
	c.Status(http.StatusNoContent)
}

// Status surfaces the relay's connection state; a relay that exhausted
// its reconnect budget reports "disconnected" here instead of failing
// silently.
func (h *NotificationHandler) Status(c *gin.Context) {
	state := h.hub.State()
	code := http.StatusOK
	if state == notify.StateDisconnected {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"state": state.String()})
}

// Stream pushes live alerts over Server-Sent Events.
func (h *NotificationHandler) Stream(c *gin.Context) {
	ch, cancel := h.hub.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case alert, ok := <-ch:
			if !ok {
				return false
			}
			data, err := json.Marshal(alert)
			if err != nil {
				return true
			}
			c.SSEvent("alert", string(data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
