package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"podsync/internal/models"
	"podsync/internal/worker/processors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncCommandPassesFlags(t *testing.T) {
	var got processors.PassRequest
	var gotOpts RunOptions
	cmd := NewSyncCommand(func(ctx context.Context, req processors.PassRequest, opts RunOptions) (*models.SyncRun, error) {
		got, gotOpts = req, opts
		return &models.SyncRun{Status: models.SyncRunStatusCompleted, DryRun: req.DryRun}, nil
	})

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--dry-run", "--product", "a,b", "--product", "c", "--record=false", "--publish"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Equal(t, models.SyncTriggerCLI, got.Trigger)
	assert.True(t, got.DryRun)
	assert.Equal(t, []string{"a", "b", "c"}, got.ProductIDs)
	assert.NotEmpty(t, got.RequestID)
	assert.False(t, gotOpts.Record)
	assert.True(t, gotOpts.Publish)
	assert.Contains(t, out.String(), "status=COMPLETED")
	assert.Contains(t, out.String(), "dry_run=true")
}

func TestSyncCommandReturnsPassError(t *testing.T) {
	msg := "failed to retrieve store products"
	cmd := NewSyncCommand(func(ctx context.Context, req processors.PassRequest, opts RunOptions) (*models.SyncRun, error) {
		assert.True(t, opts.Record)
		return &models.SyncRun{Status: models.SyncRunStatusFailed, Error: &msg}, errors.New(msg)
	})

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, out.String(), "status=FAILED")
	assert.Contains(t, out.String(), "error: "+msg)
}

func TestRenderRunShowsProviderSwitch(t *testing.T) {
	newProvider := 42
	failure := "update rejected"
	run := &models.SyncRun{
		Status:       models.SyncRunStatusCompleted,
		ProductCount: 2,
		Results: []models.SyncProductResult{
			{ProductID: "p1", Title: "Tee", Decision: "provider-switch", State: "provider-switch-applied", ProviderID: 7, NewProviderID: &newProvider},
			{ProductID: "p2", Title: "Mug", Decision: "restock-only", State: "skipped-due-to-error", ProviderID: 7, Error: &failure},
		},
	}

	out := &bytes.Buffer{}
	RenderRun(out, run)

	assert.Contains(t, out.String(), "7 -> 42")
	assert.Contains(t, out.String(), "update rejected")
	assert.Contains(t, out.String(), "products=2")
}
