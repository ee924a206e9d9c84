package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatusLegalTransitions(t *testing.T) {
	cases := []struct {
		from  ProposalStatus
		event ProposalEvent
		to    ProposalStatus
	}{
		{ProposalStatusDraft, ProposalEventSubmit, ProposalStatusPendingApproval},
		{ProposalStatusPendingApproval, ProposalEventApprove, ProposalStatusApproved},
		{ProposalStatusPendingApproval, ProposalEventReject, ProposalStatusRejected},
		{ProposalStatusRejected, ProposalEventReopen, ProposalStatusDraft},
		{ProposalStatusApproved, ProposalEventSendBack, ProposalStatusDraft},
	}
	for _, tc := range cases {
		next, ok := NextStatus(tc.from, tc.event)
		assert.True(t, ok, "%s + %s should be legal", tc.from, tc.event)
		assert.Equal(t, tc.to, next)
	}
}

func TestNextStatusRejectsEverythingElse(t *testing.T) {
	statuses := []ProposalStatus{ProposalStatusDraft, ProposalStatusPendingApproval, ProposalStatusApproved, ProposalStatusRejected}
	events := []ProposalEvent{ProposalEventSubmit, ProposalEventApprove, ProposalEventReject, ProposalEventReopen, ProposalEventSendBack}

	legal := map[ProposalStatus]map[ProposalEvent]bool{
		ProposalStatusDraft:           {ProposalEventSubmit: true},
		ProposalStatusPendingApproval: {ProposalEventApprove: true, ProposalEventReject: true},
		ProposalStatusApproved:        {ProposalEventSendBack: true},
		ProposalStatusRejected:        {ProposalEventReopen: true},
	}

	for _, status := range statuses {
		for _, event := range events {
			_, ok := NextStatus(status, event)
			assert.Equal(t, legal[status][event], ok, "%s + %s", status, event)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, ProposalStatusDraft.CanEdit())
	assert.True(t, ProposalStatusDraft.CanSubmit())
	assert.False(t, ProposalStatusPendingApproval.CanEdit())
	assert.True(t, ProposalStatusPendingApproval.CanApprove())
	assert.True(t, ProposalStatusPendingApproval.CanReject())
	assert.True(t, ProposalStatusRejected.CanReopen())
	assert.False(t, ProposalStatusRejected.CanEdit())
	assert.True(t, ProposalStatusApproved.CanSendBack())
	assert.False(t, ProposalStatusApproved.CanSubmit())
}

func TestProposalEventActors(t *testing.T) {
	assert.Equal(t, RoleCoordinator, ProposalEventActor[ProposalEventSubmit])
	assert.Equal(t, RoleCoordinator, ProposalEventActor[ProposalEventReopen])
	assert.Equal(t, RoleDirector, ProposalEventActor[ProposalEventApprove])
	assert.Equal(t, RoleDirector, ProposalEventActor[ProposalEventReject])
	assert.Equal(t, RoleDirector, ProposalEventActor[ProposalEventSendBack])
}
