package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const publishTimeout = 5 * time.Second

// NATSNotifier publishes due-task notices to a JetStream subject.
type NATSNotifier struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSNotifier connects to NATS and prepares a JetStream context.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if subject == "" {
		return nil, fmt.Errorf("nats subject is required")
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	slog.Info("NATS notifier initialized", "url", url, "subject", subject)

	return &NATSNotifier{conn: conn, js: js, subject: subject}, nil
}

// PublishDue publishes one message per pass. Empty notices are skipped so
// consumers only ever see actionable batches.
func (n *NATSNotifier) PublishDue(ctx context.Context, notice Notice) error {
	if len(notice.Tasks) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	data, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}

	if _, err := n.js.Publish(ctx, n.subject, data); err != nil {
		return fmt.Errorf("failed to publish notice: %w", err)
	}

	slog.Debug("published due-task notice",
		"run_date", notice.RunDate,
		"due_count", len(notice.Tasks))

	return nil
}

// Close closes the NATS connection.
func (n *NATSNotifier) Close() error {
	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
