// Package events publishes transaction-completed events to Kafka for
// downstream consumers (analytics, audit). Publishing is optional; when no
// brokers are configured the service runs without a publisher.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/evanesaias-afk/taxbox/internal/domain"
)

// TransactionCompleted is the wire event emitted after each recorded
// transaction.
type TransactionCompleted struct {
	TransactionID string    `json:"transaction_id"`
	CustomerID    string    `json:"customer_id"`
	SellerID      string    `json:"seller_id"`
	Amount        int64     `json:"amount"`
	Tax           int64     `json:"tax"`
	Net           int64     `json:"net"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher writes transaction events to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// PublishTransaction emits one TransactionCompleted event, keyed by seller
// so per-seller ordering is preserved.
func (p *Publisher) PublishTransaction(ctx context.Context, tx domain.Transaction, res domain.TransactionResult) error {
	event := TransactionCompleted{
		TransactionID: tx.ID,
		CustomerID:    tx.CustomerID,
		SellerID:      tx.SellerID,
		Amount:        tx.Amount,
		Tax:           res.Tax,
		Net:           res.Net,
		OccurredAt:    tx.Timestamp,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(tx.SellerID),
		Value: data,
	})
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error { return p.writer.Close() }

var _ domain.EventPublisher = (*Publisher)(nil)
