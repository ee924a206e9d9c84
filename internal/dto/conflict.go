package dto

import "github.com/uniplan/timetable-api/internal/models"

// ConflictQuery selects the allocation scope and optional filters for a
// conflict scan. Exactly one of PeriodID/ProposalID is required; ProposalID
// scopes detection to that proposal's own allocations.
type ConflictQuery struct {
	PeriodID     string
	ProposalID   string
	Severities   []models.ConflictSeverity
	Types        []models.ConflictType
	AllocationID string
}

// ValidateResolutionRequest asks whether a strategy can clear a conflict.
type ValidateResolutionRequest struct {
	Strategy string `json:"strategy" validate:"required"`
}

// ValidateResolutionResult is the feasibility verdict for a strategy.
type ValidateResolutionResult struct {
	Strategy models.ResolutionStrategy `json:"strategy"`
	Valid    bool                      `json:"valid"`
	Reason   string                    `json:"reason,omitempty"`
}
