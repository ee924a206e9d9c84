package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
	"github.com/uniplan/timetable-api/internal/repository"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
	"github.com/uniplan/timetable-api/pkg/export"
)

type proposalStoreStub struct {
	proposals  map[string]*models.Proposal
	created    []*models.Proposal
	updates    int
	lastParams repository.TransitionParams
}

func (s *proposalStoreStub) Create(ctx context.Context, proposal *models.Proposal) error {
	proposal.ID = "prop-new"
	proposal.Status = models.ProposalStatusDraft
	s.created = append(s.created, proposal)
	return nil
}

func (s *proposalStoreStub) FindByID(ctx context.Context, id string) (*models.Proposal, error) {
	if proposal, ok := s.proposals[id]; ok {
		copied := *proposal
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *proposalStoreStub) List(ctx context.Context, filter models.ProposalFilter) ([]models.Proposal, error) {
	var items []models.Proposal
	for _, proposal := range s.proposals {
		if filter.CoordinatorID != "" && proposal.CoordinatorID != filter.CoordinatorID {
			continue
		}
		items = append(items, *proposal)
	}
	return items, nil
}

func (s *proposalStoreStub) UpdateStatus(ctx context.Context, id string, expected models.ProposalStatus, params repository.TransitionParams) error {
	proposal, ok := s.proposals[id]
	if !ok || proposal.Status != expected {
		return repository.ErrStaleTransition
	}
	s.updates++
	s.lastParams = params
	proposal.Status = params.Status
	if params.SubmittedAt != nil {
		proposal.SubmittedAt = params.SubmittedAt
	}
	proposal.DecidedAt = params.DecidedAt
	proposal.RejectionJustification = params.RejectionJustification
	return nil
}

type notificationStoreStub struct {
	items []*models.Notification
}

func (s *notificationStoreStub) Create(ctx context.Context, notification *models.Notification) error {
	s.items = append(s.items, notification)
	return nil
}

type userListerStub struct {
	users []models.User
}

func (s userListerStub) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return s.users, nil
}

func directorClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "dir-1", Role: models.RoleDirector}
}

func draftProposal(id string, count int) *models.Proposal {
	return &models.Proposal{
		ID:              id,
		CourseID:        "course-1",
		CourseName:      "Computer Science",
		PeriodID:        "period-1",
		CoordinatorID:   "coord-1",
		Status:          models.ProposalStatusDraft,
		AllocationCount: count,
	}
}

func newProposalServiceForTest(store *proposalStoreStub, notifStore *notificationStoreStub, directors []models.User) *ProposalService {
	var notifier *NotificationService
	if notifStore != nil {
		notifier = NewNotificationService(notifStore, userListerStub{users: directors}, nil, true)
	}
	catalog := catalogStub{catalog: testCatalog([2]int{450, 500})}
	return NewProposalService(store, &allocationListerStub{}, catalog, nil, notifier, export.NewPDFExporter(), nil, nil, true)
}

func TestProposalCreateOwnedByCoordinator(t *testing.T) {
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{}}
	svc := newProposalServiceForTest(store, nil, nil)

	created, err := svc.Create(context.Background(), dto.CreateProposalRequest{
		CourseID: "course-1", CourseName: "Computer Science", PeriodID: "period-1",
	}, coordinatorClaims())
	require.NoError(t, err)
	assert.Equal(t, "coord-1", created.CoordinatorID)
	assert.Equal(t, models.ProposalStatusDraft, created.Status)
}

func TestProposalCreateForbiddenForDirector(t *testing.T) {
	svc := newProposalServiceForTest(&proposalStoreStub{}, nil, nil)
	_, err := svc.Create(context.Background(), dto.CreateProposalRequest{
		CourseID: "course-1", CourseName: "Computer Science", PeriodID: "period-1",
	}, directorClaims())
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestProposalSubmitRequiresAllocations(t *testing.T) {
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{"prop-1": draftProposal("prop-1", 0)}}
	svc := newProposalServiceForTest(store, nil, nil)

	_, err := svc.Submit(context.Background(), "prop-1", dto.SubmitProposalRequest{}, coordinatorClaims())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Zero(t, store.updates, "a failed precondition must not write")
}

func TestProposalSubmitNotifiesDirectors(t *testing.T) {
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{"prop-1": draftProposal("prop-1", 3)}}
	notifStore := &notificationStoreStub{}
	directors := []models.User{{ID: "dir-1"}, {ID: "dir-2"}}
	svc := newProposalServiceForTest(store, notifStore, directors)

	updated, err := svc.Submit(context.Background(), "prop-1", dto.SubmitProposalRequest{Notes: "ready"}, coordinatorClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusPendingApproval, updated.Status)
	require.NotNil(t, store.lastParams.SubmittedAt)
	require.Len(t, notifStore.items, 2)
	assert.Equal(t, models.NotificationProposalSubmitted, notifStore.items[0].Kind)
}

func TestProposalSubmitForbiddenForDirector(t *testing.T) {
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{"prop-1": draftProposal("prop-1", 3)}}
	svc := newProposalServiceForTest(store, nil, nil)

	_, err := svc.Submit(context.Background(), "prop-1", dto.SubmitProposalRequest{}, directorClaims())
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestProposalSubmitForbiddenForForeignCoordinator(t *testing.T) {
	proposal := draftProposal("prop-1", 3)
	proposal.CoordinatorID = "someone-else"
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{"prop-1": proposal}}
	svc := newProposalServiceForTest(store, nil, nil)

	_, err := svc.Submit(context.Background(), "prop-1", dto.SubmitProposalRequest{}, coordinatorClaims())
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestProposalApproveOnlyFromPending(t *testing.T) {
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{"prop-1": draftProposal("prop-1", 3)}}
	svc := newProposalServiceForTest(store, nil, nil)

	_, err := svc.Approve(context.Background(), "prop-1", dto.ApproveProposalRequest{}, directorClaims())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestProposalApproveHappyPath(t *testing.T) {
	proposal := draftProposal("prop-1", 3)
	proposal.Status = models.ProposalStatusPendingApproval
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{"prop-1": proposal}}
	notifStore := &notificationStoreStub{}
	svc := newProposalServiceForTest(store, notifStore, nil)

	updated, err := svc.Approve(context.Background(), "prop-1", dto.ApproveProposalRequest{Notes: "looks complete"}, directorClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusApproved, updated.Status)
	require.NotNil(t, store.lastParams.DecidedAt)
	require.Len(t, notifStore.items, 1)
	assert.Equal(t, "coord-1", notifStore.items[0].UserID, "the owning coordinator is notified")
}

func TestProposalRejectRequiresJustification(t *testing.T) {
	proposal := draftProposal("prop-1", 3)
	proposal.Status = models.ProposalStatusPendingApproval
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{"prop-1": proposal}}
	svc := newProposalServiceForTest(store, nil, nil)

	_, err := svc.Reject(context.Background(), "prop-1", dto.RejectProposalRequest{Justification: "too short"}, directorClaims())
	require.Error(t, err)
	assert.Zero(t, store.updates)

	updated, err := svc.Reject(context.Background(), "prop-1", dto.RejectProposalRequest{
		Justification: "The morning shift is overloaded for first-year sections.",
	}, directorClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusRejected, updated.Status)
	require.NotNil(t, store.lastParams.RejectionJustification)
}

func TestProposalReopenReturnsToDraft(t *testing.T) {
	proposal := draftProposal("prop-1", 3)
	proposal.Status = models.ProposalStatusRejected
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{"prop-1": proposal}}
	svc := newProposalServiceForTest(store, nil, nil)

	updated, err := svc.Reopen(context.Background(), "prop-1", dto.ReopenProposalRequest{}, coordinatorClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusDraft, updated.Status)
}

func TestProposalSendBackRequiresReason(t *testing.T) {
	proposal := draftProposal("prop-1", 3)
	proposal.Status = models.ProposalStatusApproved
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{"prop-1": proposal}}
	svc := newProposalServiceForTest(store, nil, nil)

	_, err := svc.SendBack(context.Background(), "prop-1", dto.SendBackProposalRequest{}, directorClaims())
	require.Error(t, err)
	assert.Zero(t, store.updates)

	updated, err := svc.SendBack(context.Background(), "prop-1", dto.SendBackProposalRequest{
		Reason: "Enrollment changed; the timetable must be rebuilt.",
	}, directorClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusDraft, updated.Status)
}

func TestProposalTransitionStaleConflict(t *testing.T) {
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{"prop-1": draftProposal("prop-1", 3)}}

	// Force the guard to miss by mutating between load and update.
	original := store.proposals["prop-1"]
	wrapped := &racingStore{inner: store, flip: func() {
		original.Status = models.ProposalStatusPendingApproval
	}}
	svc := NewProposalService(wrapped, &allocationListerStub{}, catalogStub{catalog: testCatalog([2]int{450, 500})}, nil, nil, nil, nil, nil, false)

	_, err := svc.Submit(context.Background(), "prop-1", dto.SubmitProposalRequest{}, coordinatorClaims())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

type racingStore struct {
	inner *proposalStoreStub
	flip  func()
}

func (s *racingStore) Create(ctx context.Context, proposal *models.Proposal) error {
	return s.inner.Create(ctx, proposal)
}

func (s *racingStore) FindByID(ctx context.Context, id string) (*models.Proposal, error) {
	proposal, err := s.inner.FindByID(ctx, id)
	if err == nil && s.flip != nil {
		s.flip()
		s.flip = nil
	}
	return proposal, err
}

func (s *racingStore) List(ctx context.Context, filter models.ProposalFilter) ([]models.Proposal, error) {
	return s.inner.List(ctx, filter)
}

func (s *racingStore) UpdateStatus(ctx context.Context, id string, expected models.ProposalStatus, params repository.TransitionParams) error {
	return s.inner.UpdateStatus(ctx, id, expected, params)
}

func TestProposalPermissionsMatrix(t *testing.T) {
	svc := newProposalServiceForTest(&proposalStoreStub{}, nil, nil)
	proposal := draftProposal("prop-1", 1)

	owner := svc.Permissions(proposal, coordinatorClaims())
	assert.True(t, owner.CanEdit)
	assert.True(t, owner.CanSubmit)
	assert.False(t, owner.CanApprove)

	foreign := svc.Permissions(proposal, &models.JWTClaims{UserID: "coord-2", Role: models.RoleCoordinator})
	assert.False(t, foreign.CanEdit)
	assert.False(t, foreign.CanSubmit)

	pending := draftProposal("prop-2", 1)
	pending.Status = models.ProposalStatusPendingApproval
	director := svc.Permissions(pending, directorClaims())
	assert.True(t, director.CanApprove)
	assert.True(t, director.CanReject)
	assert.False(t, director.CanEdit)

	admin := svc.Permissions(pending, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	assert.True(t, admin.CanApprove)
}

func TestProposalExportPDF(t *testing.T) {
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{"prop-1": draftProposal("prop-1", 1)}}
	svc := newProposalServiceForTest(store, nil, nil)

	payload, filename, err := svc.ExportPDF(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.NotEmpty(t, payload)
	assert.Equal(t, "timetable-prop-1.pdf", filename)
}

func TestProposalExportCSV(t *testing.T) {
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{"prop-1": draftProposal("prop-1", 1)}}
	catalog := catalogStub{catalog: testCatalog([2]int{450, 500})}
	allocations := &allocationListerStub{items: []models.Allocation{
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayMonday, 450, 500),
	}}
	svc := NewProposalService(store, allocations, catalog, nil, nil, export.NewPDFExporter(), nil, nil, true)

	payload, filename, err := svc.ExportCSV(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Equal(t, "timetable-prop-1.csv", filename)
	assert.Contains(t, string(payload), "weekday,start,end,section,discipline,professor")
	assert.Contains(t, string(payload), "Monday,07:30,08:20,SEC-sec-1")
}

func TestProposalExportPDFDisabled(t *testing.T) {
	store := &proposalStoreStub{proposals: map[string]*models.Proposal{"prop-1": draftProposal("prop-1", 1)}}
	svc := NewProposalService(store, &allocationListerStub{}, catalogStub{}, nil, nil, nil, nil, nil, false)

	_, _, err := svc.ExportPDF(context.Background(), "prop-1")
	assert.Error(t, err)
}
