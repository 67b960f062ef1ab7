// Package webhook implements the best-effort outbound event fan-out:
// domain events are handed off to an in-process queue, worker goroutines
// deliver them concurrently to every active matching subscriber, and
// every attempt is recorded in the execution log. There are no retries,
// no backoff and no dead-lettering: a failing subscriber accumulates
// failed log rows and nothing else.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
)

// ConfigSource yields the active subscribers for an event kind.
type ConfigSource interface {
	ActiveForEvent(ctx context.Context, kind model.EventKind) ([]model.WebhookConfig, error)
}

// LogSink records one execution-log row per delivery attempt.
type LogSink interface {
	Record(ctx context.Context, entry *model.WebhookExecutionLog) error
}

const maxResponseSnippet = 1024

// Options tunes the dispatcher. Zero values fall back to defaults.
type Options struct {
	Workers     int
	QueueSize   int
	HTTPTimeout time.Duration
}

type Dispatcher struct {
	source ConfigSource
	sink   LogSink
	client *http.Client

	queue chan Event
	wg    sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewDispatcher(source ConfigSource, sink LogSink, opts Options) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 256
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 10 * time.Second
	}
	d := &Dispatcher{
		source: source,
		sink:   sink,
		client: &http.Client{Timeout: opts.HTTPTimeout},
		queue:  make(chan Event, opts.QueueSize),
	}
	d.start(opts.Workers)
	return d
}

func (d *Dispatcher) start(workers int) {
	d.startOnce.Do(func() {
		for i := 0; i < workers; i++ {
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				for ev := range d.queue {
					ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
					d.deliver(ctx, ev)
					cancel()
				}
			}()
		}
	})
}

// Trigger enqueues ev and returns immediately. The primary operation
// that fired the event must never block on, or fail because of,
// delivery; a full queue drops the event with a log line.
func (d *Dispatcher) Trigger(ev Event) {
	select {
	case d.queue <- ev:
	default:
		log.Printf("webhook: queue full, dropping %s for ticket %s", ev.Kind(), ev.TicketID())
	}
}

// Close stops accepting events and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	d.stopOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

// deliver fans ev out to every active matching subscriber concurrently
// and waits for all attempts to be logged.
func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	configs, err := d.source.ActiveForEvent(ctx, ev.Kind())
	if err != nil {
		log.Printf("webhook: load configs for %s: %v", ev.Kind(), err)
		return
	}
	if len(configs) == 0 {
		return
	}
	body, err := json.Marshal(ev.envelope(time.Now().UTC()))
	if err != nil {
		log.Printf("webhook: marshal %s: %v", ev.Kind(), err)
		return
	}

	var wg sync.WaitGroup
	for i := range configs {
		cfg := configs[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.post(ctx, &cfg, ev, body)
		}()
	}
	wg.Wait()
}

// post performs one delivery attempt and records exactly one log row,
// success or failure.
func (d *Dispatcher) post(ctx context.Context, cfg *model.WebhookConfig, ev Event, body []byte) {
	entry := &model.WebhookExecutionLog{
		WebhookID: cfg.ID,
		EventKind: ev.Kind(),
		TicketID:  ev.TicketID(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		entry.Error = err.Error()
		d.record(ctx, entry)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", cfg.Secret)
	req.Header.Set("X-Event-Type", string(ev.Kind()))

	resp, err := d.client.Do(req)
	if err != nil {
		entry.Error = err.Error()
		d.record(ctx, entry)
		return
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSnippet))
	entry.StatusCode = resp.StatusCode
	entry.Response = string(snippet)
	entry.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	if !entry.Success {
		log.Printf("webhook: %s to %q returned %d", ev.Kind(), cfg.Name, resp.StatusCode)
	}
	d.record(ctx, entry)
}

func (d *Dispatcher) record(ctx context.Context, entry *model.WebhookExecutionLog) {
	if err := d.sink.Record(ctx, entry); err != nil {
		log.Printf("webhook: record execution log: %v", err)
	}
}
