// Package mailer sends the two transactional notices ("ticket
// resolved" and "staff replied") through a Resend-style HTTP API.
// Best-effort: failures are logged and never surfaced to the flow that
// triggered the send.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
)

type Options struct {
	APIKey  string
	BaseURL string
	From    string
}

// Mailer is a no-op when no API key is configured.
type Mailer struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
}

func New(opts Options) *Mailer {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.resend.com"
	}
	return &Mailer{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		from:    opts.From,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// SendTicketResolved notifies the customer their ticket was resolved.
func (m *Mailer) SendTicketResolved(ctx context.Context, t *model.Ticket) {
	if t.CustomerEmail == "" {
		return
	}
	name := t.CustomerName
	if name == "" {
		name = "cliente"
	}
	m.send(ctx, email{
		From:    m.from,
		To:      []string{t.CustomerEmail},
		Subject: fmt.Sprintf("Seu ticket foi resolvido: %s", t.Title),
		HTML: fmt.Sprintf(
			"<p>Olá %s,</p><p>Seu ticket <strong>%s</strong> foi marcado como resolvido.</p>"+
				"<p>Se o problema persistir, basta responder este e-mail para reabrir o atendimento.</p>",
			name, t.Title),
		Text: fmt.Sprintf(
			"Olá %s,\n\nSeu ticket %q foi marcado como resolvido.\n"+
				"Se o problema persistir, basta responder este e-mail para reabrir o atendimento.\n",
			name, t.Title),
	})
}

// SendStaffReplied notifies the customer of a new staff reply.
func (m *Mailer) SendStaffReplied(ctx context.Context, t *model.Ticket, reply string) {
	if t.CustomerEmail == "" {
		return
	}
	name := t.CustomerName
	if name == "" {
		name = "cliente"
	}
	m.send(ctx, email{
		From:    m.from,
		To:      []string{t.CustomerEmail},
		Subject: fmt.Sprintf("Nova resposta no seu ticket: %s", t.Title),
		HTML: fmt.Sprintf(
			"<p>Olá %s,</p><p>Nossa equipe respondeu ao seu ticket <strong>%s</strong>:</p>"+
				"<blockquote>%s</blockquote>",
			name, t.Title, reply),
		Text: fmt.Sprintf(
			"Olá %s,\n\nNossa equipe respondeu ao seu ticket %q:\n\n%s\n",
			name, t.Title, reply),
	})
}

// SendTicketResolvedAsync fires SendTicketResolved in a goroutine with
// a detached timeout so the primary flow never waits on it.
func (m *Mailer) SendTicketResolvedAsync(t *model.Ticket) {
	if m.apiKey == "" || t.CustomerEmail == "" {
		return
	}
	snapshot := *t
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		m.SendTicketResolved(ctx, &snapshot)
	}()
}

// SendStaffRepliedAsync fires SendStaffReplied in a goroutine with a
// detached timeout.
func (m *Mailer) SendStaffRepliedAsync(t *model.Ticket, reply string) {
	if m.apiKey == "" || t.CustomerEmail == "" {
		return
	}
	snapshot := *t
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		m.SendStaffReplied(ctx, &snapshot, reply)
	}()
}

func (m *Mailer) send(ctx context.Context, e email) {
	if m.apiKey == "" {
		return
	}
	body, err := json.Marshal(e)
	if err != nil {
		log.Printf("mailer: marshal: %v", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		log.Printf("mailer: new request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		log.Printf("mailer: request: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("mailer: status %d: %s", resp.StatusCode, snippet)
	}
}
