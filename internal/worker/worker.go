package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"podsync/internal/config"
	"podsync/internal/logger"
	"podsync/internal/models"
	"podsync/internal/worker/processors"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Processor interface {
	Process(ctx context.Context, value []byte) error
	Run(ctx context.Context, req processors.PassRequest) (*models.SyncRun, error)
}

// Worker starts reconciliation passes from the trigger topic and on a fixed
// interval.
type Worker struct {
	logger    *logger.Logger
	reader    MessageReader
	processor Processor
	interval  time.Duration
	// retryDelay is the pause after a failed read.
	retryDelay time.Duration

	wg sync.WaitGroup
}

func NewKafkaReader(cfg *config.Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupID:        cfg.KafkaGroupID,
		Topic:          cfg.KafkaTriggerTopic,
		MinBytes:       1,
		MaxBytes:       1e6, // 1MB
		CommitInterval: time.Second,
	})
}

func New(reader MessageReader, processor Processor, interval time.Duration, logger *logger.Logger) *Worker {
	return &Worker{
		logger:     logger,
		reader:     reader,
		processor:  processor,
		interval:   interval,
		retryDelay: time.Second,
	}
}

// Start blocks until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started, listening for sync requests...")

	if w.interval > 0 {
		w.wg.Add(1)
		go w.schedule(ctx)
	}

	for {
		message, err := w.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			w.logger.Error("Failed to read message: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(w.retryDelay):
			}
			continue
		}

		w.logger.Debug("Received message: %s", string(message.Value))

		if err := w.processor.Process(ctx, message.Value); err != nil {
			if errors.Is(err, processors.ErrPassInProgress) {
				continue
			}
			w.logger.Error("Failed to process sync request: %v", err)
			continue
		}

		w.logger.Debug("Sync request processed successfully")
	}

	w.wg.Wait()
}

func (w *Worker) schedule(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("Scheduled sync every %s", w.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := w.processor.Run(ctx, processors.PassRequest{
				Trigger:   models.SyncTriggerSchedule,
				RequestID: uuid.New().String(),
			})
			if err != nil && !errors.Is(err, processors.ErrPassInProgress) {
				w.logger.Error("Scheduled sync failed: %v", err)
			}
		}
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	if err := w.reader.Close(); err != nil {
		w.logger.Error("Failed to close reader: %v", err)
	}
}
