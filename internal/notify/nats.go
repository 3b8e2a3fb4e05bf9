package notify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/e-radio/eradio/internal/config"
	"github.com/e-radio/eradio/internal/logfields"
)

type publisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type statusStore interface {
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
}

// NATSNotifier publishes events to a JetStream subject and keeps the latest
// event per task in a KV bucket.
type NATSNotifier struct {
	conn    *nats.Conn
	js      publisher
	kv      statusStore
	subject string
	logger  *slog.Logger
	now     func() time.Time
}

// New returns a NATSNotifier when notifications are enabled, Noop otherwise.
func New(ctx context.Context, cfg config.NotifyConfig, logger *slog.Logger) (Notifier, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	return NewNATSNotifier(ctx, cfg, logger)
}

// NewNATSNotifier connects to NATS and ensures the stream and KV bucket exist.
func NewNATSNotifier(ctx context.Context, cfg config.NotifyConfig, logger *slog.Logger) (*NATSNotifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(cfg.NATSURL, nats.Name("eradio"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := js.CreateOrUpdateStream(setupCtx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.Subject},
		MaxMsgs:   1000,
		Retention: jetstream.LimitsPolicy,
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.Stream, err)
	}

	kv, err := js.KeyValue(setupCtx, cfg.KVBucket)
	if err != nil {
		kv, err = js.CreateKeyValue(setupCtx, jetstream.KeyValueConfig{
			Bucket:      cfg.KVBucket,
			Description: "Latest e-radio dataset update per task",
			History:     1,
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create KV bucket: %w", err)
		}
		logger.Info("Created KV bucket for task status", "bucket", cfg.KVBucket)
	}

	logger.Info("NATS notifier initialized",
		logfields.URL(cfg.NATSURL),
		slog.String("subject", cfg.Subject),
		slog.String("stream", cfg.Stream))

	n := newNATSNotifier(js, kv, cfg.Subject, logger)
	n.conn = conn
	return n, nil
}

func newNATSNotifier(js publisher, kv statusStore, subject string, logger *slog.Logger) *NATSNotifier {
	return &NATSNotifier{js: js, kv: kv, subject: subject, logger: logger, now: time.Now}
}

// StationsUpdated publishes event and records it as the task's latest.
func (n *NATSNotifier) StationsUpdated(ctx context.Context, event Event) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if event.Timestamp.IsZero() {
		event.Timestamp = n.now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := n.js.Publish(ctx, n.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if n.kv != nil {
		if _, err := n.kv.Put(ctx, event.Task, data); err != nil {
			return fmt.Errorf("failed to store task status: %w", err)
		}
	}

	n.logger.Debug("Published stations update",
		logfields.Task(event.Task),
		logfields.Count(event.Changed))
	return nil
}

// Last returns the most recent event recorded for task, or nil if none.
func (n *NATSNotifier) Last(ctx context.Context, task string) (*Event, error) {
	if n.kv == nil {
		return nil, nil
	}
	entry, err := n.kv.Get(ctx, task)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task status: %w", err)
	}
	var ev Event
	if err := json.Unmarshal(entry.Value(), &ev); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task status: %w", err)
	}
	return &ev, nil
}

// Close closes the NATS connection.
func (n *NATSNotifier) Close() error {
	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
