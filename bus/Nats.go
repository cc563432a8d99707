package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultOpTimeout bounds a single KV get or put against the NATS
// server. It is deliberately short: the bus itself never blocks, the
// environment layer owns the longer correlation wait.
const DefaultOpTimeout = 2 * time.Second

// Nats is a Bus backed by a NATS JetStream key-value bucket with a
// history depth of one, which gives the last-value-wins semantics for
// free: every put overwrites the previous revision and a get always
// observes the latest one.
type Nats struct {
	conn    *nats.Conn
	kv      jetstream.KeyValue
	logger  *slog.Logger
	timeout time.Duration
}

// NewNats connects to the NATS server at url and binds the shared
// bucket, creating it if the simulator has not done so yet.
func NewNats(ctx context.Context, url, bucket string, logger *slog.Logger) (*Nats, error) {
	conn, err := nats.Connect(url, nats.Name("q-learning-maze-robot"))
	if err != nil {
		return nil, fmt.Errorf("bus: connect to %s: %w", url, err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("bus: jetstream: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 1,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("bus: bind bucket %s: %w", bucket, err)
	}

	return &Nats{
		conn:    conn,
		kv:      kv,
		logger:  logger,
		timeout: DefaultOpTimeout,
	}, nil
}

// Publish overwrites the value held by topic.
func (n *Nats) Publish(topic string, value float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	data := strconv.AppendFloat(nil, value, 'g', -1, 64)
	if _, err := n.kv.Put(ctx, topic, data); err != nil {
		return fmt.Errorf("bus: publish %s: %w", topic, err)
	}
	return nil
}

// Read returns the latest value published on topic. A topic that was
// never published reads as absent. A stored value that does not parse
// as a float is a malformed message: it is logged, dropped, and also
// reads as absent.
func (n *Nats) Read(topic string) (float64, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	entry, err := n.kv.Get(ctx, topic)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("bus: read %s: %w", topic, err)
	}

	value, err := strconv.ParseFloat(string(entry.Value()), 64)
	if err != nil {
		n.logger.Warn("dropping malformed bus value",
			"topic", topic,
			"raw", string(entry.Value()))
		return 0, false, nil
	}
	return value, true, nil
}

// Close drains the underlying connection.
func (n *Nats) Close() error {
	return n.conn.Drain()
}
