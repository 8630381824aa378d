package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"podsync/internal/logger"
	"podsync/internal/models"
	"podsync/internal/worker/processors"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanReader struct {
	msgs chan kafka.Message
	errs chan error
}

func newChanReader() *chanReader {
	return &chanReader{msgs: make(chan kafka.Message, 4), errs: make(chan error, 4)}
}

func (r *chanReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case err := <-r.errs:
		return kafka.Message{}, err
	case m := <-r.msgs:
		return m, nil
	}
}

func (r *chanReader) Close() error { return nil }

type fakeProcessor struct {
	mu        sync.Mutex
	processed [][]byte
	runs      []processors.PassRequest
	err       error
}

func (p *fakeProcessor) Process(ctx context.Context, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed = append(p.processed, value)
	return p.err
}

func (p *fakeProcessor) Run(ctx context.Context, req processors.PassRequest) (*models.SyncRun, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs = append(p.runs, req)
	return &models.SyncRun{}, nil
}

func (p *fakeProcessor) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.processed), len(p.runs)
}

func startWorker(t *testing.T, w *Worker) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("worker did not stop")
		}
	})
	return cancel
}

func TestWorkerProcessesMessages(t *testing.T) {
	reader := newChanReader()
	proc := &fakeProcessor{}
	w := New(reader, proc, 0, logger.NewNop())
	startWorker(t, w)

	reader.msgs <- kafka.Message{Value: []byte(`{"type":"inventory.sync.requested"}`)}
	reader.msgs <- kafka.Message{Value: []byte(`{"type":"inventory.sync.requested"}`)}

	require.Eventually(t, func() bool {
		n, _ := proc.counts()
		return n == 2
	}, time.Second, 5*time.Millisecond)
}

func TestWorkerSurvivesReadAndProcessErrors(t *testing.T) {
	reader := newChanReader()
	proc := &fakeProcessor{err: errors.New("bad message")}
	w := New(reader, proc, 0, logger.NewNop())
	w.retryDelay = time.Millisecond
	startWorker(t, w)

	reader.errs <- errors.New("broker hiccup")
	reader.msgs <- kafka.Message{Value: []byte(`x`)}
	reader.msgs <- kafka.Message{Value: []byte(`y`)}

	require.Eventually(t, func() bool {
		n, _ := proc.counts()
		return n == 2
	}, time.Second, 5*time.Millisecond)
}

func TestWorkerRunsScheduledPasses(t *testing.T) {
	proc := &fakeProcessor{}
	w := New(newChanReader(), proc, 10*time.Millisecond, logger.NewNop())
	startWorker(t, w)

	require.Eventually(t, func() bool {
		_, runs := proc.counts()
		return runs >= 2
	}, time.Second, 5*time.Millisecond)

	proc.mu.Lock()
	defer proc.mu.Unlock()
	assert.Equal(t, models.SyncTriggerSchedule, proc.runs[0].Trigger)
	assert.NotEmpty(t, proc.runs[0].RequestID)
}
