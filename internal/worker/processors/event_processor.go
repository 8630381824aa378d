package processors

import (
	"context"

	"podsync/internal/events"
	"podsync/internal/models"
)

// Process handles a raw trigger message from the sync request topic.
func (p *SyncProcessor) Process(ctx context.Context, value []byte) error {
	req, err := events.DecodeSyncRequest(value)
	if err != nil {
		return err
	}

	p.logger.Debug("Processing sync request %s from %s", req.RequestID, req.Source)

	_, err = p.Run(ctx, PassRequest{
		Trigger:    models.SyncTriggerEvent,
		RequestID:  req.RequestID,
		DryRun:     req.DryRun,
		ProductIDs: req.ProductIDs,
	})
	return err
}
