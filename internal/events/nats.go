package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// msgPublisher is the slice of *nats.Conn the publisher needs.
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSPublisher publishes events as JSON on a subject named after the
// event type.
type NATSPublisher struct {
	conn   msgPublisher
	logger *slog.Logger
}

func NewNATSPublisher(conn *nats.Conn, logger *slog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, logger: logger}
}

// ConnectNATS dials the server and keeps reconnecting for the life of the
// process.
func ConnectNATS(url string, logger *slog.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("mercato"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

type drainer interface {
	Drain() error
}

// DrainNATS flushes pending publishes and closes conn. It runs at shutdown,
// so a failure is logged rather than returned.
func DrainNATS(conn drainer, logger *slog.Logger) {
	if err := conn.Drain(); err != nil {
		logger.Error("NATS drain failed", "error", err)
		return
	}
	logger.Info("NATS connection drained")
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event = prepare(event)
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := nats.NewMsg(string(event.Type))
	msg.Data = body
	// JetStream de-duplicates on this header if the subject is persisted.
	msg.Header.Set(nats.MsgIdHdr, event.ID.String())
	msg.Header.Set("Content-Type", "application/json")

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Event published", "type", event.Type, "event_id", event.ID, "order_id", event.OrderID)
	return nil
}
