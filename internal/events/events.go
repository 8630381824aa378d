package events

import (
	"time"
)

const (
	TypeSyncRequested     = "inventory.sync.requested"
	TypeProductReconciled = "inventory.product.reconciled"
)

// SyncRequest asks a worker to run a reconciliation pass.
type SyncRequest struct {
	Type       string    `json:"type"`
	RequestID  string    `json:"request_id"`
	Source     string    `json:"source"`
	DryRun     bool      `json:"dry_run"`
	ProductIDs []string  `json:"product_ids,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProductOutcome reports the terminal state of one product in a pass.
type ProductOutcome struct {
	Type          string    `json:"type"`
	RunID         string    `json:"run_id"`
	ProductID     string    `json:"product_id"`
	Title         string    `json:"title"`
	Decision      string    `json:"decision"`
	State         string    `json:"state"`
	ProviderID    int       `json:"provider_id"`
	NewProviderID int       `json:"new_provider_id,omitempty"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
