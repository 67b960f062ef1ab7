package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/errs"
)

// writeError maps domain errors to HTTP responses. Conflict carries the
// retry hint so admin clients can prompt a refresh-and-retry.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrTicketNotFound),
		errors.Is(err, errs.ErrMessageNotFound),
		errors.Is(err, errs.ErrWebhookNotFound),
		errors.Is(err, errs.ErrKnowledgeNotFound),
		errors.Is(err, errs.ErrFeedbackNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrInvalidStatus),
		errors.Is(err, errs.ErrInvalidPriority):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
