package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// NATSPublisher forwards BuildCompleted events to a NATS subject so other
// systems (cache purgers, notifiers) can react to site deployments.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("docsite"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	slog.Info("NATS publisher connected", slog.String("url", url), slog.String("subject", subject))
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Run forwards bus events until ctx is canceled or the bus closes.
func (p *NATSPublisher) Run(ctx context.Context, bus *Bus) error {
	events, cancel := Subscribe[BuildCompleted](bus, 16)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				slog.Warn("Failed to encode build event", logfields.Error(err))
				continue
			}
			if err := p.conn.Publish(p.subject, payload); err != nil {
				slog.Warn("Failed to publish build event", logfields.BuildID(evt.BuildID), logfields.Error(err))
			}
		}
	}
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
