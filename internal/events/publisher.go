package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"podsync/internal/inventory"
	"podsync/internal/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

type Publisher struct {
	writer MessageWriter
	logger *logger.Logger
	now    func() time.Time
}

func NewPublisher(writer MessageWriter, logger *logger.Logger) *Publisher {
	return &Publisher{
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
}

// RequestSync publishes a pass trigger and returns its request id.
func (p *Publisher) RequestSync(ctx context.Context, source string, dryRun bool, productIDs []string) (string, error) {
	req := SyncRequest{
		Type:       TypeSyncRequested,
		RequestID:  uuid.New().String(),
		Source:     source,
		DryRun:     dryRun,
		ProductIDs: productIDs,
		Timestamp:  p.now().UTC(),
	}

	value, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal sync request: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(req.RequestID), Value: value}); err != nil {
		return "", fmt.Errorf("failed to publish sync request: %w", err)
	}

	p.logger.Debug("Published sync request %s from %s", req.RequestID, source)
	return req.RequestID, nil
}

// PublishOutcomes emits one message per product result, keyed by product id.
func (p *Publisher) PublishOutcomes(ctx context.Context, runID string, report *inventory.Report) error {
	if report == nil || len(report.Results) == 0 {
		return nil
	}

	ts := p.now().UTC()
	msgs := make([]kafka.Message, 0, len(report.Results))
	for _, res := range report.Results {
		outcome := ProductOutcome{
			Type:          TypeProductReconciled,
			RunID:         runID,
			ProductID:     res.ProductID,
			Title:         res.Title,
			Decision:      string(res.Decision),
			State:         string(res.State),
			ProviderID:    res.ProviderID,
			NewProviderID: res.NewProviderID,
			Timestamp:     ts,
		}
		if res.Err != nil {
			outcome.Error = res.Err.Error()
		}

		value, err := json.Marshal(outcome)
		if err != nil {
			return fmt.Errorf("failed to marshal outcome for product %s: %w", res.ProductID, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(res.ProductID), Value: value})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish %d outcomes: %w", len(msgs), err)
	}

	p.logger.Debug("Published %d outcomes for run %s", len(msgs), runID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// DecodeSyncRequest parses a trigger message. Messages of other types are rejected.
func DecodeSyncRequest(value []byte) (SyncRequest, error) {
	var req SyncRequest
	if err := json.Unmarshal(value, &req); err != nil {
		return SyncRequest{}, fmt.Errorf("failed to parse sync request: %w", err)
	}
	if req.Type != TypeSyncRequested {
		return SyncRequest{}, fmt.Errorf("unexpected event type %q", req.Type)
	}
	return req, nil
}
