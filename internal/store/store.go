package store

import (
	"context"

	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/scorer"
)

// SweepFilter specifies criteria for listing sweeps.
type SweepFilter struct {
	OEM    string            `json:"oem,omitempty"`
	Status model.SweepStatus `json:"status,omitempty"`
	Limit  int               `json:"limit,omitempty"`
	Offset int               `json:"offset,omitempty"`
}

// DealerFilter specifies criteria for listing stored dealer records.
type DealerFilter struct {
	OEM    string `json:"oem,omitempty"`
	State  string `json:"state,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// LeadFilter specifies criteria for listing scored leads.
type LeadFilter struct {
	Tier     string  `json:"tier,omitempty"`
	MinScore float64 `json:"min_score,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	Offset   int     `json:"offset,omitempty"`
}

// Store defines the persistence interface for sweep results and scored leads.
type Store interface {
	// Sweeps
	CreateSweep(ctx context.Context, oem string, totalZips int) (*model.Sweep, error)
	CompleteSweep(ctx context.Context, sweepID string, status model.SweepStatus, raw, unique, failedZips int) error
	GetSweep(ctx context.Context, sweepID string) (*model.Sweep, error)
	ListSweeps(ctx context.Context, filter SweepFilter) ([]model.Sweep, error)

	// Dealers
	InsertDealers(ctx context.Context, sweepID string, dealers []model.Dealer) (int, error)
	ListDealers(ctx context.Context, filter DealerFilter) ([]model.Dealer, error)

	// Leads. SaveLeads replaces any prior lead stored under the same
	// identity key so rescoring is idempotent.
	SaveLeads(ctx context.Context, leads []scorer.Lead) (int, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]scorer.Lead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
