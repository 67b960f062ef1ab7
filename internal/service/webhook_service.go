package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/errs"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"gorm.io/gorm"
)

// WebhookService manages subscriber configs and the execution log. It
// implements webhook.ConfigSource and webhook.LogSink for the
// dispatcher.
type WebhookService struct {
	db *gorm.DB
}

func NewWebhookService(db *gorm.DB) *WebhookService {
	return &WebhookService{db: db}
}

func validateConfig(w *model.WebhookConfig) error {
	if w.Name == "" {
		return fmt.Errorf("webhook: name is required: %w", errs.ErrValidation)
	}
	u, err := url.Parse(w.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("webhook: malformed destination url %q: %w", w.URL, errs.ErrValidation)
	}
	if len(w.Events) == 0 {
		return fmt.Errorf("webhook: at least one event kind is required: %w", errs.ErrValidation)
	}
	for _, e := range w.Events {
		if !model.KnownEventKind(e) {
			return fmt.Errorf("webhook: unknown event kind %q: %w", e, errs.ErrValidation)
		}
	}
	return nil
}

func (s *WebhookService) Create(ctx context.Context, w *model.WebhookConfig) error {
	if err := validateConfig(w); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(w).Error
}

func (s *WebhookService) GetByID(ctx context.Context, id string) (*model.WebhookConfig, error) {
	var w model.WebhookConfig
	if err := s.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrWebhookNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (s *WebhookService) List(ctx context.Context) ([]model.WebhookConfig, error) {
	var items []model.WebhookConfig
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update replaces the mutable fields of a config.
func (s *WebhookService) Update(ctx context.Context, id string, w *model.WebhookConfig) (*model.WebhookConfig, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = w.Name
	existing.URL = w.URL
	existing.Events = w.Events
	existing.Active = w.Active
	existing.Secret = w.Secret
	if err := validateConfig(existing); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *WebhookService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.WebhookConfig{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrWebhookNotFound
	}
	return nil
}

// ActiveForEvent returns every active config subscribed to kind. The
// event-set match happens in process: the table is small, read-mostly,
// and this keeps the query portable across the test database.
func (s *WebhookService) ActiveForEvent(ctx context.Context, kind model.EventKind) ([]model.WebhookConfig, error) {
	var items []model.WebhookConfig
	if err := s.db.WithContext(ctx).Where("active = ?", true).Find(&items).Error; err != nil {
		return nil, err
	}
	out := items[:0]
	for _, w := range items {
		if w.Subscribed(kind) {
			out = append(out, w)
		}
	}
	return out, nil
}

// Record appends one execution-log row. Rows are never updated.
func (s *WebhookService) Record(ctx context.Context, entry *model.WebhookExecutionLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// ListLogs returns execution logs newest-first, optionally filtered by
// subscriber.
func (s *WebhookService) ListLogs(ctx context.Context, webhookID string, limit, offset int) ([]model.WebhookExecutionLog, int64, error) {
	var items []model.WebhookExecutionLog
	var total int64
	tx := s.db.WithContext(ctx).Model(&model.WebhookExecutionLog{})
	if webhookID != "" {
		tx = tx.Where("webhook_id = ?", webhookID)
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
