// Package errs holds the sentinel domain errors shared by services and
// transport handlers.
package errs

import "errors"

var (
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrMessageNotFound   = errors.New("message not found")
	ErrWebhookNotFound   = errors.New("webhook config not found")
	ErrKnowledgeNotFound = errors.New("knowledge entry not found")
	ErrFeedbackNotFound  = errors.New("feedback not found")

	// ErrVersionConflict is the optimistic-version mismatch on a ticket
	// update. Retryable: the caller must re-read and resubmit.
	ErrVersionConflict = errors.New("ticket modified by another actor, refresh and retry")

	// ErrInvalidTransition means the status change was rejected by the
	// transition policy in internal/model.
	ErrInvalidTransition = errors.New("status transition not allowed")

	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrValidation wraps malformed-input rejections raised by the
	// services themselves, past request binding. Handlers map it to a
	// 400 via errors.Is.
	ErrValidation = errors.New("invalid input")
)
