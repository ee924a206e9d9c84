package dto

import "github.com/uniplan/timetable-api/internal/models"

// CreateAllocationRequest carries the candidate allocation fields. Start and
// End use HH:MM clock values and must exactly match a catalog slot window.
type CreateAllocationRequest struct {
	SectionID  string `json:"section_id" validate:"required"`
	Weekday    string `json:"weekday" validate:"required"`
	Start      string `json:"start" validate:"required"`
	End        string `json:"end" validate:"required"`
	ProposalID string `json:"proposal_id,omitempty"`
}

// ValidateAllocationResult reports the outcome of the validate phase.
type ValidateAllocationResult struct {
	Valid   bool     `json:"valid"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
}

// AllocationGridCell is one occupied cell of the weekday × slot grid.
type AllocationGridCell struct {
	Weekday     models.Weekday      `json:"weekday"`
	SlotIndex   int                 `json:"slot_index"`
	Start       string              `json:"start"`
	End         string              `json:"end"`
	Allocations []models.Allocation `json:"allocations"`
}

// AllocationGridResponse is the positioned grid view of an allocation set.
// Unpositioned lists allocations whose window matches no catalog slot; they
// cannot be placed on the grid but are not an error.
type AllocationGridResponse struct {
	Cells         []AllocationGridCell `json:"cells"`
	Unpositioned  []models.Allocation  `json:"unpositioned,omitempty"`
	TotalPlaced   int                  `json:"total_placed"`
	TotalReceived int                  `json:"total_received"`
}
