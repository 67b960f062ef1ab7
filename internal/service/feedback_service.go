package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/errs"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"gorm.io/gorm"
)

type FeedbackService struct {
	db *gorm.DB
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db}
}

// Create records a rating for an AI-authored message.
func (s *FeedbackService) Create(ctx context.Context, f *model.AIFeedback) error {
	if f.Rating != model.RatingPositive && f.Rating != model.RatingNegative {
		return fmt.Errorf("feedback: invalid rating %q: %w", f.Rating, errs.ErrValidation)
	}
	var msg model.Message
	if err := s.db.WithContext(ctx).First(&msg, "id = ?", f.MessageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrMessageNotFound
		}
		return err
	}
	if !msg.IsAI {
		return fmt.Errorf("feedback: message %s is not AI-authored: %w", f.MessageID, errs.ErrValidation)
	}
	f.TicketID = msg.TicketID
	return s.db.WithContext(ctx).Create(f).Error
}

func (s *FeedbackService) List(ctx context.Context, ticketID string, limit, offset int) ([]model.AIFeedback, int64, error) {
	var items []model.AIFeedback
	var total int64
	tx := s.db.WithContext(ctx).Model(&model.AIFeedback{})
	if ticketID != "" {
		tx = tx.Where("ticket_id = ?", ticketID)
	}
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Correct is the admin-only fixup of a rating or comment; feedback is
// otherwise immutable after creation.
func (s *FeedbackService) Correct(ctx context.Context, id string, rating model.FeedbackRating, comment string) (*model.AIFeedback, error) {
	if rating != model.RatingPositive && rating != model.RatingNegative {
		return nil, fmt.Errorf("feedback: invalid rating %q: %w", rating, errs.ErrValidation)
	}
	var f model.AIFeedback
	if err := s.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrFeedbackNotFound
		}
		return nil, err
	}
	f.Rating = rating
	f.Comment = comment
	if err := s.db.WithContext(ctx).Save(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}
