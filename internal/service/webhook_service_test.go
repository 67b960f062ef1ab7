package service

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/errs"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
)

func TestWebhookConfigValidation(t *testing.T) {
	svc := NewWebhookService(newTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     model.WebhookConfig
		wantErr string
	}{
		{
			name:    "missing name",
			cfg:     model.WebhookConfig{URL: "https://example.com/hook", Events: pq.StringArray{"ticket_created"}},
			wantErr: "name is required",
		},
		{
			name:    "bad scheme",
			cfg:     model.WebhookConfig{Name: "crm", URL: "ftp://example.com/hook", Events: pq.StringArray{"ticket_created"}},
			wantErr: "malformed destination url",
		},
		{
			name:    "no host",
			cfg:     model.WebhookConfig{Name: "crm", URL: "https://", Events: pq.StringArray{"ticket_created"}},
			wantErr: "malformed destination url",
		},
		{
			name:    "no events",
			cfg:     model.WebhookConfig{Name: "crm", URL: "https://example.com/hook"},
			wantErr: "at least one event kind",
		},
		{
			name:    "unknown event",
			cfg:     model.WebhookConfig{Name: "crm", URL: "https://example.com/hook", Events: pq.StringArray{"ticket_exploded"}},
			wantErr: "unknown event kind",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := svc.Create(ctx, &cfg)
			assert.ErrorContains(t, err, tt.wantErr)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}

	ok := model.WebhookConfig{
		Name:   "crm",
		URL:    "https://example.com/hook",
		Events: pq.StringArray{"ticket_created", "status_changed"},
		Active: true,
	}
	require.NoError(t, svc.Create(ctx, &ok))
	assert.NotEmpty(t, ok.ID)
}

func TestWebhookActiveForEvent(t *testing.T) {
	svc := NewWebhookService(newTestDB(t))
	ctx := context.Background()

	subscribed := model.WebhookConfig{Name: "a", URL: "https://a.example.com", Events: pq.StringArray{"status_changed"}, Active: true}
	inactive := model.WebhookConfig{Name: "b", URL: "https://b.example.com", Events: pq.StringArray{"status_changed"}, Active: false}
	otherKind := model.WebhookConfig{Name: "c", URL: "https://c.example.com", Events: pq.StringArray{"message_sent"}, Active: true}
	for _, w := range []*model.WebhookConfig{&subscribed, &inactive, &otherKind} {
		require.NoError(t, svc.Create(ctx, w))
	}

	got, err := svc.ActiveForEvent(ctx, model.EventStatusChanged)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, subscribed.ID, got[0].ID)

	got, err = svc.ActiveForEvent(ctx, model.EventTicketUpdated)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWebhookUpdateAndDelete(t *testing.T) {
	svc := NewWebhookService(newTestDB(t))
	ctx := context.Background()

	cfg := model.WebhookConfig{Name: "crm", URL: "https://example.com/hook", Events: pq.StringArray{"ticket_created"}, Active: true}
	require.NoError(t, svc.Create(ctx, &cfg))

	updated, err := svc.Update(ctx, cfg.ID, &model.WebhookConfig{
		Name:   "crm-v2",
		URL:    "https://example.com/v2/hook",
		Events: pq.StringArray{"message_sent"},
		Active: false,
		Secret: "novo",
	})
	require.NoError(t, err)
	assert.Equal(t, "crm-v2", updated.Name)
	assert.False(t, updated.Active)
	assert.Equal(t, "novo", updated.Secret)

	_, err = svc.Update(ctx, cfg.ID, &model.WebhookConfig{Name: "x", URL: "https://example.com", Events: pq.StringArray{"nope"}})
	assert.ErrorContains(t, err, "unknown event kind")

	_, err = svc.Update(ctx, "missing", &model.WebhookConfig{})
	assert.ErrorIs(t, err, errs.ErrWebhookNotFound)

	require.NoError(t, svc.Delete(ctx, cfg.ID))
	assert.ErrorIs(t, svc.Delete(ctx, cfg.ID), errs.ErrWebhookNotFound)
}

func TestWebhookExecutionLogListing(t *testing.T) {
	svc := NewWebhookService(newTestDB(t))
	ctx := context.Background()

	a := model.WebhookConfig{Name: "a", URL: "https://a.example.com", Events: pq.StringArray{"ticket_created"}, Active: true}
	b := model.WebhookConfig{Name: "b", URL: "https://b.example.com", Events: pq.StringArray{"ticket_created"}, Active: true}
	require.NoError(t, svc.Create(ctx, &a))
	require.NoError(t, svc.Create(ctx, &b))

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(ctx, &model.WebhookExecutionLog{
			WebhookID: a.ID, EventKind: model.EventTicketCreated, Success: true, StatusCode: 200,
		}))
	}
	require.NoError(t, svc.Record(ctx, &model.WebhookExecutionLog{
		WebhookID: b.ID, EventKind: model.EventTicketCreated, Success: false, StatusCode: 500,
	}))

	all, total, err := svc.ListLogs(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, all, 4)

	onlyA, total, err := svc.ListLogs(ctx, a.ID, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, onlyA, 3)

	paged, total, err := svc.ListLogs(ctx, a.ID, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, paged, 2)
}
