package dto

// CreateProposalRequest opens a new draft proposal for a course and period.
type CreateProposalRequest struct {
	CourseID   string `json:"course_id" validate:"required"`
	CourseName string `json:"course_name" validate:"required"`
	PeriodID   string `json:"period_id" validate:"required"`
}

// SubmitProposalRequest sends a draft for director approval.
type SubmitProposalRequest struct {
	Notes string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ApproveProposalRequest approves a pending proposal.
type ApproveProposalRequest struct {
	Notes string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// RejectProposalRequest rejects a pending proposal. The justification is
// mandatory and bounded so coordinators always receive an actionable reason.
type RejectProposalRequest struct {
	Justification string `json:"justification" validate:"required,min=10,max=2000"`
	Notes         string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ReopenProposalRequest returns a rejected proposal to draft.
type ReopenProposalRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,min=10,max=500"`
}

// SendBackProposalRequest returns an approved proposal to draft.
type SendBackProposalRequest struct {
	Reason string `json:"reason" validate:"required,min=10,max=500"`
}

// ProposalPermissions mirrors the transition table for rendering action
// affordances client-side.
type ProposalPermissions struct {
	CanEdit     bool `json:"can_edit"`
	CanSubmit   bool `json:"can_submit"`
	CanApprove  bool `json:"can_approve"`
	CanReject   bool `json:"can_reject"`
	CanReopen   bool `json:"can_reopen"`
	CanSendBack bool `json:"can_send_back"`
}
