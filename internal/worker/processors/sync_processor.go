package processors

import (
	"context"
	"errors"
	"sync"
	"time"

	"podsync/internal/history"
	"podsync/internal/inventory"
	"podsync/internal/logger"
	"podsync/internal/metrics"
	"podsync/internal/models"
)

// ErrPassInProgress is returned when a pass is requested while another runs.
var ErrPassInProgress = errors.New("a sync pass is already running")

type RunStore interface {
	Save(ctx context.Context, run *models.SyncRun) error
}

type OutcomePublisher interface {
	PublishOutcomes(ctx context.Context, runID string, report *inventory.Report) error
}

type PassRequest struct {
	Trigger    models.SyncTrigger
	RequestID  string
	DryRun     bool
	ProductIDs []string
}

// SyncProcessor runs reconciliation passes one at a time and records them.
type SyncProcessor struct {
	catalog      inventory.Catalog
	productDelay time.Duration
	runs         RunStore
	outcomes     OutcomePublisher
	metrics      *metrics.Metrics
	logger       *logger.Logger

	mu sync.Mutex
}

type SyncProcessorConfig struct {
	Catalog      inventory.Catalog
	ProductDelay time.Duration
	// Runs, Outcomes and Metrics are optional.
	Runs     RunStore
	Outcomes OutcomePublisher
	Metrics  *metrics.Metrics
}

func NewSyncProcessor(cfg SyncProcessorConfig, logger *logger.Logger) *SyncProcessor {
	return &SyncProcessor{
		catalog:      cfg.Catalog,
		productDelay: cfg.ProductDelay,
		runs:         cfg.Runs,
		outcomes:     cfg.Outcomes,
		metrics:      cfg.Metrics,
		logger:       logger,
	}
}

// Run executes one pass. The returned run record is non-nil unless another
// pass was already in progress; its error mirrors the pass error.
func (p *SyncProcessor) Run(ctx context.Context, req PassRequest) (*models.SyncRun, error) {
	if !p.mu.TryLock() {
		p.logger.Warn("Dropping %s sync request %s: %v", req.Trigger, req.RequestID, ErrPassInProgress)
		return nil, ErrPassInProgress
	}
	defer p.mu.Unlock()

	log := p.logger.With("trigger", string(req.Trigger), "request_id", req.RequestID)
	reconciler := inventory.NewReconciler(p.catalog, log,
		inventory.WithPacer(inventory.NewPacer(p.productDelay)),
		inventory.WithDryRun(req.DryRun),
		inventory.WithProductIDs(req.ProductIDs...),
	)

	report, passErr := reconciler.Reconcile(ctx)
	if passErr != nil {
		log.Error("Sync pass ended with error: %v", passErr)
	}

	run := history.NewRun(report, req.Trigger, req.RequestID, passErr)

	// recording uses a fresh context so a cancelled pass is still audited
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if p.runs != nil {
		if err := p.runs.Save(recordCtx, run); err != nil {
			log.Error("Failed to record sync run: %v", err)
		}
	}
	if p.outcomes != nil && report != nil {
		if err := p.outcomes.PublishOutcomes(recordCtx, run.ID, report); err != nil {
			log.Error("Failed to publish sync outcomes: %v", err)
		}
	}
	if p.metrics != nil {
		p.metrics.ObservePass(string(req.Trigger), string(run.Status), report)
	}

	return run, passErr
}
