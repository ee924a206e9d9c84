package models

import "time"

// ProposalStatus is the lifecycle phase of a timetable proposal.
type ProposalStatus string

const (
	ProposalStatusDraft           ProposalStatus = "DRAFT"
	ProposalStatusPendingApproval ProposalStatus = "PENDING_APPROVAL"
	ProposalStatusApproved        ProposalStatus = "APPROVED"
	ProposalStatusRejected        ProposalStatus = "REJECTED"
)

// Valid reports whether the status is a known lifecycle phase.
func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalStatusDraft, ProposalStatusPendingApproval, ProposalStatusApproved, ProposalStatusRejected:
		return true
	default:
		return false
	}
}

// ProposalEvent names a lifecycle transition.
type ProposalEvent string

const (
	ProposalEventSubmit   ProposalEvent = "SUBMIT"
	ProposalEventApprove  ProposalEvent = "APPROVE"
	ProposalEventReject   ProposalEvent = "REJECT"
	ProposalEventReopen   ProposalEvent = "REOPEN"
	ProposalEventSendBack ProposalEvent = "SEND_BACK"
)

// proposalTransitions is the full legal transition table. Any (status, event)
// pair absent from it is rejected before preconditions are even considered.
var proposalTransitions = map[ProposalStatus]map[ProposalEvent]ProposalStatus{
	ProposalStatusDraft: {
		ProposalEventSubmit: ProposalStatusPendingApproval,
	},
	ProposalStatusPendingApproval: {
		ProposalEventApprove: ProposalStatusApproved,
		ProposalEventReject:  ProposalStatusRejected,
	},
	ProposalStatusApproved: {
		ProposalEventSendBack: ProposalStatusDraft,
	},
	ProposalStatusRejected: {
		ProposalEventReopen: ProposalStatusDraft,
	},
}

// NextStatus resolves the target status for an event, returning false for
// pairs outside the transition table.
func NextStatus(from ProposalStatus, event ProposalEvent) (ProposalStatus, bool) {
	next, ok := proposalTransitions[from][event]
	return next, ok
}

// ProposalEventActor maps each event to the role allowed to perform it.
var ProposalEventActor = map[ProposalEvent]UserRole{
	ProposalEventSubmit:   RoleCoordinator,
	ProposalEventApprove:  RoleDirector,
	ProposalEventReject:   RoleDirector,
	ProposalEventReopen:   RoleCoordinator,
	ProposalEventSendBack: RoleDirector,
}

// Permission predicates mirror the transition table for rendering action
// affordances. They are pure in the status; the service layer remains the
// authority when a transition is actually invoked.

// CanEdit reports whether allocations may be created or removed.
func (s ProposalStatus) CanEdit() bool { return s == ProposalStatusDraft }

// CanSubmit reports whether the proposal may be sent for approval.
func (s ProposalStatus) CanSubmit() bool { return s == ProposalStatusDraft }

// CanApprove reports whether a director may approve.
func (s ProposalStatus) CanApprove() bool { return s == ProposalStatusPendingApproval }

// CanReject reports whether a director may reject.
func (s ProposalStatus) CanReject() bool { return s == ProposalStatusPendingApproval }

// CanReopen reports whether a coordinator may return a rejection to draft.
func (s ProposalStatus) CanReopen() bool { return s == ProposalStatusRejected }

// CanSendBack reports whether a director may return an approval to draft.
func (s ProposalStatus) CanSendBack() bool { return s == ProposalStatusApproved }

// Proposal is a coordinator-authored draft of a term timetable awaiting
// director approval.
type Proposal struct {
	ID                     string         `db:"id" json:"id"`
	CourseID               string         `db:"course_id" json:"course_id"`
	CourseName             string         `db:"course_name" json:"course_name"`
	PeriodID               string         `db:"period_id" json:"period_id"`
	CoordinatorID          string         `db:"coordinator_id" json:"coordinator_id"`
	Status                 ProposalStatus `db:"status" json:"status"`
	SubmittedAt            *time.Time     `db:"submitted_at" json:"submitted_at,omitempty"`
	DecidedAt              *time.Time     `db:"decided_at" json:"decided_at,omitempty"`
	RejectionJustification *string        `db:"rejection_justification" json:"rejection_justification,omitempty"`
	CoordinatorNotes       *string        `db:"coordinator_notes" json:"coordinator_notes,omitempty"`
	DirectorNotes          *string        `db:"director_notes" json:"director_notes,omitempty"`
	AllocationCount        int            `db:"allocation_count" json:"allocation_count"`
	CreatedAt              time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time      `db:"updated_at" json:"updated_at"`
}

// ProposalFilter narrows proposal listings.
type ProposalFilter struct {
	PeriodID      string
	CoordinatorID string
	Status        ProposalStatus
}
