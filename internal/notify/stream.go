package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/lib/pq"
)

// PGStream listens on a Postgres NOTIFY channel fed by the
// suporte_notify_* triggers. The pq listener reconnects internally, but
// the hub owns the retry policy: whenever the connection drops we close
// the change channel and let the hub decide whether to reconnect.
type PGStream struct {
	dsn     string
	channel string

	pingInterval time.Duration
}

func NewPGStream(dsn, channel string) *PGStream {
	return &PGStream{
		dsn:          dsn,
		channel:      channel,
		pingInterval: 90 * time.Second,
	}
}

func (s *PGStream) Connect(ctx context.Context) (<-chan Change, error) {
	listener := pq.NewListener(s.dsn, time.Second, time.Second, nil)
	if err := listener.Listen(s.channel); err != nil {
		listener.Close()
		return nil, err
	}

	out := make(chan Change)
	go func() {
		defer close(out)
		defer listener.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				if n == nil {
					// pq signals a dropped-and-reestablished
					// connection with a nil notification; surface it
					// as a disconnect so the hub's policy applies.
					return
				}
				var c Change
				if err := json.Unmarshal([]byte(n.Extra), &c); err != nil {
					log.Printf("notify: decode change payload: %v", err)
					continue
				}
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			case <-time.After(s.pingInterval):
				go func() {
					if err := listener.Ping(); err != nil {
						log.Printf("notify: ping: %v", err)
					}
				}()
			}
		}
	}()
	return out, nil
}

func (s *PGStream) Close() error { return nil }
