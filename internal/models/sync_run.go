package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncRun is the audit record of one reconciliation pass. It is never read
// back as input to a later pass.
type SyncRun struct {
	ID             string              `json:"id" gorm:"type:varchar(36);primaryKey"`
	Trigger        SyncTrigger         `json:"trigger" gorm:"not null"`
	RequestID      string              `json:"request_id"`
	Status         SyncRunStatus       `json:"status" gorm:"not null;index"`
	DryRun         bool                `json:"dry_run" gorm:"default:false"`
	StartedAt      time.Time           `json:"started_at" gorm:"index"`
	FinishedAt     *time.Time          `json:"finished_at"`
	ProductCount   int                 `json:"product_count"`
	UpdatedCount   int                 `json:"updated_count"`
	SwitchedCount  int                 `json:"switched_count"`
	DisabledCount  int                 `json:"disabled_count"`
	RestockedCount int                 `json:"restocked_count"`
	SkippedCount   int                 `json:"skipped_count"`
	Error          *string             `json:"error"`
	Results        []SyncProductResult `json:"results,omitempty" gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type SyncTrigger string

const (
	SyncTriggerSchedule SyncTrigger = "SCHEDULE"
	SyncTriggerEvent    SyncTrigger = "EVENT"
	SyncTriggerAPI      SyncTrigger = "API"
	SyncTriggerCLI      SyncTrigger = "CLI"
)

type SyncRunStatus string

const (
	SyncRunStatusCompleted SyncRunStatus = "COMPLETED"
	// SyncRunStatusAborted covers a pass stopped by cancellation after some products.
	SyncRunStatusAborted SyncRunStatus = "ABORTED"
	SyncRunStatusFailed  SyncRunStatus = "FAILED"
)

func (r *SyncRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// SyncProductResult is the terminal state of one product within a run.
type SyncProductResult struct {
	ID                string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	RunID             string    `json:"run_id" gorm:"type:varchar(36);not null;index"`
	Position          int       `json:"position"`
	ProductID         string    `json:"product_id" gorm:"not null;index"`
	Title             string    `json:"title"`
	Decision          string    `json:"decision"`
	State             string    `json:"state" gorm:"not null"`
	ProviderID        int       `json:"provider_id"`
	NewProviderID     *int      `json:"new_provider_id"`
	DisabledVariants  []int     `json:"disabled_variants" gorm:"type:text;serializer:json"`
	RestockedVariants []int     `json:"restocked_variants" gorm:"type:text;serializer:json"`
	Error             *string   `json:"error"`
	CreatedAt         time.Time `json:"created_at"`
}

func (r *SyncProductResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
