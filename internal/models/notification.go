package models

import "time"

// NotificationKind distinguishes lifecycle notifications.
type NotificationKind string

const (
	NotificationProposalSubmitted NotificationKind = "PROPOSAL_SUBMITTED"
	NotificationProposalApproved  NotificationKind = "PROPOSAL_APPROVED"
	NotificationProposalRejected  NotificationKind = "PROPOSAL_REJECTED"
	NotificationProposalReopened  NotificationKind = "PROPOSAL_REOPENED"
	NotificationProposalSentBack  NotificationKind = "PROPOSAL_SENT_BACK"
)

// Notification is a persisted message addressed to a user about a proposal
// lifecycle event.
type Notification struct {
	ID         string           `db:"id" json:"id"`
	UserID     string           `db:"user_id" json:"user_id"`
	ProposalID string           `db:"proposal_id" json:"proposal_id"`
	Kind       NotificationKind `db:"kind" json:"kind"`
	Message    string           `db:"message" json:"message"`
	ReadAt     *time.Time       `db:"read_at" json:"read_at,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}
