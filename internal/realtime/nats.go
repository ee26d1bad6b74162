package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "CAMPUS_EVENTS"
	subjectPrefix = "campus"
)

// NATSBridge carries hub events through a JetStream stream so every server
// instance sees every event. Publish goes to NATS only; delivery into the
// local hub happens when the consumer receives the event back, which keeps
// single- and multi-instance deployments on the same code path.
type NATSBridge struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	hub     *Hub
	logger  *slog.Logger
	consume jetstream.ConsumeContext
}

// NewNATSBridge connects, ensures the event stream exists, and starts the
// consumer that feeds the local hub.
func NewNATSBridge(url string, hub *Hub, logger *slog.Logger) (*NATSBridge, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := js.Stream(ctx, streamName); err != nil {
		logger.Info("creating event stream", "stream", streamName)
		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     streamName,
			Subjects: []string{subjectPrefix + ".>"},
			MaxAge:   24 * time.Hour,
			Storage:  jetstream.FileStorage,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to create stream %q: %w", streamName, err)
		}
	}

	b := &NATSBridge{nc: nc, js: js, hub: hub, logger: logger}

	// Ephemeral consumer: subscribers only care about events from now on;
	// history comes from the stores.
	cons, err := js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		FilterSubject: subjectPrefix + ".>",
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckPolicy:     jetstream.AckNonePolicy,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	consume, err := cons.Consume(func(jsMsg jetstream.Msg) {
		var ev Event
		if err := json.Unmarshal(jsMsg.Data(), &ev); err != nil {
			b.logger.Error("bad event on bus", "subject", jsMsg.Subject(), "error", err)
			return
		}
		_ = b.hub.Publish(context.Background(), ev)
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}
	b.consume = consume

	return b, nil
}

func (b *NATSBridge) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	subject := subjectPrefix + "." + ev.Topic
	if _, err := b.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish to %q: %w", subject, err)
	}
	return nil
}

func (b *NATSBridge) Close() {
	if b.consume != nil {
		b.consume.Stop()
	}
	if b.nc != nil {
		b.nc.Close()
	}
}

var _ Publisher = (*NATSBridge)(nil)
