package history

import (
	"context"
	"errors"
	"time"

	"podsync/internal/inventory"
	"podsync/internal/models"
)

// NewRun converts a pass report into its audit record. report may be nil
// when the pass failed before any product was checked.
func NewRun(report *inventory.Report, trigger models.SyncTrigger, requestID string, passErr error) *models.SyncRun {
	run := &models.SyncRun{
		Trigger:   trigger,
		RequestID: requestID,
		Status:    models.SyncRunStatusCompleted,
	}

	switch {
	case passErr == nil:
	case report != nil && (errors.Is(passErr, context.Canceled) || errors.Is(passErr, context.DeadlineExceeded)):
		run.Status = models.SyncRunStatusAborted
	default:
		run.Status = models.SyncRunStatusFailed
	}
	if passErr != nil {
		msg := passErr.Error()
		run.Error = &msg
	}

	if report == nil {
		run.StartedAt = time.Now()
		return run
	}

	run.DryRun = report.DryRun
	run.StartedAt = report.StartedAt
	if !report.FinishedAt.IsZero() {
		finished := report.FinishedAt
		run.FinishedAt = &finished
	}
	run.ProductCount = len(report.Results)
	run.UpdatedCount = report.Updated()
	run.SwitchedCount = report.Count(inventory.StateSwitchApplied)
	run.DisabledCount = report.Count(inventory.StateDisableApplied)
	run.RestockedCount = report.Count(inventory.StateRestockApplied)
	run.SkippedCount = report.Count(inventory.StateSkipped)

	run.Results = make([]models.SyncProductResult, len(report.Results))
	for i, res := range report.Results {
		row := models.SyncProductResult{
			Position:          i,
			ProductID:         res.ProductID,
			Title:             res.Title,
			Decision:          string(res.Decision),
			State:             string(res.State),
			ProviderID:        res.ProviderID,
			DisabledVariants:  res.Disabled,
			RestockedVariants: res.Restocked,
		}
		if res.NewProviderID != 0 {
			id := res.NewProviderID
			row.NewProviderID = &id
		}
		if res.Err != nil {
			msg := res.Err.Error()
			row.Error = &msg
		}
		run.Results[i] = row
	}

	return run
}
