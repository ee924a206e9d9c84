package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
	"github.com/uniplan/timetable-api/internal/repository"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
	"github.com/uniplan/timetable-api/pkg/export"
)

type proposalStore interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	FindByID(ctx context.Context, id string) (*models.Proposal, error)
	List(ctx context.Context, filter models.ProposalFilter) ([]models.Proposal, error)
	UpdateStatus(ctx context.Context, id string, expected models.ProposalStatus, params repository.TransitionParams) error
}

type proposalAllocationLister interface {
	List(ctx context.Context, filter models.AllocationFilter) ([]models.Allocation, error)
}

// ProposalService owns the proposal lifecycle. Every transition is resolved
// through the legal transition table, gated by actor role and preconditions,
// and applied with a status-guarded update so concurrent actors cannot both
// win the same transition.
type ProposalService struct {
	repo          proposalStore
	allocations   proposalAllocationLister
	catalog       conflictCatalogProvider
	cache         *CacheService
	notifier      *NotificationService
	pdf           *export.PDFExporter
	csv           *export.CSVExporter
	validator     *validator.Validate
	logger        *zap.Logger
	exportEnabled bool
}

// NewProposalService wires the proposal lifecycle dependencies.
func NewProposalService(
	repo proposalStore,
	allocations proposalAllocationLister,
	catalog conflictCatalogProvider,
	cache *CacheService,
	notifier *NotificationService,
	pdf *export.PDFExporter,
	validate *validator.Validate,
	logger *zap.Logger,
	exportEnabled bool,
) *ProposalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProposalService{
		repo:          repo,
		allocations:   allocations,
		catalog:       catalog,
		cache:         cache,
		notifier:      notifier,
		pdf:           pdf,
		csv:           export.NewCSVExporter(),
		validator:     validate,
		logger:        logger,
		exportEnabled: exportEnabled,
	}
}

// Create opens a fresh draft owned by the calling coordinator.
func (s *ProposalService) Create(ctx context.Context, req dto.CreateProposalRequest, claims *models.JWTClaims) (*models.Proposal, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleCoordinator && claims.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid proposal payload")
	}

	proposal := &models.Proposal{
		CourseID:      req.CourseID,
		CourseName:    req.CourseName,
		PeriodID:      req.PeriodID,
		CoordinatorID: claims.UserID,
	}
	if err := s.repo.Create(ctx, proposal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create proposal")
	}

	_ = s.cache.Invalidate(ctx, CacheKeyProposalList+"*")
	s.logger.Info("proposal created",
		zap.String("proposal_id", proposal.ID),
		zap.String("coordinator_id", proposal.CoordinatorID))
	return proposal, nil
}

// Get returns a single proposal. Reads go through the cache; transitions
// always bypass it and read the repository directly.
func (s *ProposalService) Get(ctx context.Context, id string) (*models.Proposal, error) {
	cacheKey := CacheKeyProposal + id
	var cached models.Proposal
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey, proposal, 0); err != nil {
		s.logger.Warn("failed to cache proposal", zap.String("proposal_id", id), zap.Error(err))
	}
	return proposal, nil
}

// List returns proposals visible to the caller. Coordinators only see their
// own drafts and decisions; directors and admins see everything.
func (s *ProposalService) List(ctx context.Context, filter models.ProposalFilter, claims *models.JWTClaims) ([]models.Proposal, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role == models.RoleCoordinator {
		filter.CoordinatorID = claims.UserID
	}

	cacheKey := fmt.Sprintf("%s%s:%s:%s", CacheKeyProposalList, filter.PeriodID, filter.CoordinatorID, filter.Status)
	var cached []models.Proposal
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list proposals")
	}
	if err := s.cache.Set(ctx, cacheKey, items, 0); err != nil {
		s.logger.Warn("failed to cache proposal list", zap.Error(err))
	}
	return items, nil
}

// Permissions reports which lifecycle actions the caller may take on the
// proposal, combining status predicates with role and ownership.
func (s *ProposalService) Permissions(proposal *models.Proposal, claims *models.JWTClaims) dto.ProposalPermissions {
	if proposal == nil || claims == nil {
		return dto.ProposalPermissions{}
	}
	owns := claims.UserID == proposal.CoordinatorID
	coordinator := claims.Role == models.RoleAdmin || (claims.Role == models.RoleCoordinator && owns)
	director := claims.Role == models.RoleAdmin || claims.Role == models.RoleDirector
	return dto.ProposalPermissions{
		CanEdit:     coordinator && proposal.Status.CanEdit(),
		CanSubmit:   coordinator && proposal.Status.CanSubmit(),
		CanApprove:  director && proposal.Status.CanApprove(),
		CanReject:   director && proposal.Status.CanReject(),
		CanReopen:   coordinator && proposal.Status.CanReopen(),
		CanSendBack: director && proposal.Status.CanSendBack(),
	}
}

// Submit moves a draft to PENDING_APPROVAL. An empty proposal cannot be
// submitted; a director cannot be asked to review nothing.
func (s *ProposalService) Submit(ctx context.Context, id string, req dto.SubmitProposalRequest, claims *models.JWTClaims) (*models.Proposal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submit payload")
	}
	now := time.Now().UTC()
	params := repository.TransitionParams{SubmittedAt: &now}
	if req.Notes != "" {
		params.CoordinatorNotes = &req.Notes
	}
	proposal, err := s.transition(ctx, id, models.ProposalEventSubmit, claims, params,
		func(p *models.Proposal) error {
			if p.AllocationCount < 1 {
				return appErrors.Clone(appErrors.ErrPreconditionFailed, "proposal has no allocations; add at least one before submitting")
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	s.notifier.ProposalSubmitted(ctx, proposal)
	return proposal, nil
}

// Approve moves a pending proposal to APPROVED.
func (s *ProposalService) Approve(ctx context.Context, id string, req dto.ApproveProposalRequest, claims *models.JWTClaims) (*models.Proposal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approve payload")
	}
	now := time.Now().UTC()
	params := repository.TransitionParams{DecidedAt: &now}
	if req.Notes != "" {
		params.DirectorNotes = &req.Notes
	}
	proposal, err := s.transition(ctx, id, models.ProposalEventApprove, claims, params, nil)
	if err != nil {
		return nil, err
	}
	s.notifier.ProposalDecided(ctx, proposal, models.NotificationProposalApproved, "")
	return proposal, nil
}

// Reject moves a pending proposal to REJECTED. The justification is part of
// the transition itself, not an afterthought.
func (s *ProposalService) Reject(ctx context.Context, id string, req dto.RejectProposalRequest, claims *models.JWTClaims) (*models.Proposal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rejection requires a justification between 10 and 2000 characters")
	}
	now := time.Now().UTC()
	params := repository.TransitionParams{
		DecidedAt:              &now,
		RejectionJustification: &req.Justification,
	}
	if req.Notes != "" {
		params.DirectorNotes = &req.Notes
	}
	proposal, err := s.transition(ctx, id, models.ProposalEventReject, claims, params, nil)
	if err != nil {
		return nil, err
	}
	s.notifier.ProposalDecided(ctx, proposal, models.NotificationProposalRejected, req.Justification)
	return proposal, nil
}

// Reopen returns a rejected proposal to draft so the coordinator can rework
// it. The rejection justification is cleared along with the decision stamp.
func (s *ProposalService) Reopen(ctx context.Context, id string, req dto.ReopenProposalRequest, claims *models.JWTClaims) (*models.Proposal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "reopen reason must be between 10 and 500 characters when provided")
	}
	params := repository.TransitionParams{}
	if req.Reason != "" {
		params.CoordinatorNotes = &req.Reason
	}
	proposal, err := s.transition(ctx, id, models.ProposalEventReopen, claims, params, nil)
	if err != nil {
		return nil, err
	}
	s.notifier.ProposalDecided(ctx, proposal, models.NotificationProposalReopened, req.Reason)
	return proposal, nil
}

// SendBack returns an approved proposal to draft. Unlike reopen, the reason
// is mandatory: undoing an approval must leave a trace.
func (s *ProposalService) SendBack(ctx context.Context, id string, req dto.SendBackProposalRequest, claims *models.JWTClaims) (*models.Proposal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "send-back requires a reason between 10 and 500 characters")
	}
	params := repository.TransitionParams{DirectorNotes: &req.Reason}
	proposal, err := s.transition(ctx, id, models.ProposalEventSendBack, claims, params, nil)
	if err != nil {
		return nil, err
	}
	s.notifier.ProposalDecided(ctx, proposal, models.NotificationProposalSentBack, req.Reason)
	return proposal, nil
}

// Grid positions the proposal's allocations on the weekday × slot grid.
func (s *ProposalService) Grid(ctx context.Context, id string) (*dto.AllocationGridResponse, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	allocations, err := s.allocations.List(ctx, models.AllocationFilter{ProposalID: id})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list proposal allocations")
	}
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	resp := BuildAllocationGrid(catalog, allocations).Response(len(allocations))
	return &resp, nil
}

// ExportPDF renders the proposal timetable as a printable grid.
func (s *ProposalService) ExportPDF(ctx context.Context, id string) ([]byte, string, error) {
	if !s.exportEnabled || s.pdf == nil {
		return nil, "", appErrors.Clone(appErrors.ErrPreconditionFailed, "export is disabled")
	}
	proposal, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	allocations, err := s.allocations.List(ctx, models.AllocationFilter{ProposalID: id})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list proposal allocations")
	}
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, "", err
	}

	grid := BuildAllocationGrid(catalog, allocations)
	slots := catalog.Slots()
	cells := make(map[int]map[models.Weekday]string)
	for idx := range slots {
		for _, day := range models.Weekdays {
			occupants := grid.At(day, idx)
			if len(occupants) == 0 {
				continue
			}
			text := occupants[0].SectionCode
			if occupants[0].ProfessorName != nil {
				text = fmt.Sprintf("%s / %s", text, *occupants[0].ProfessorName)
			}
			if len(occupants) > 1 {
				text = fmt.Sprintf("%s (+%d)", text, len(occupants)-1)
			}
			if cells[idx] == nil {
				cells[idx] = make(map[models.Weekday]string)
			}
			cells[idx][day] = text
		}
	}

	doc := export.TimetableDocument{
		Title: fmt.Sprintf("%s - %s", proposal.CourseName, proposal.PeriodID),
		Slots: slots,
		Cells: cells,
	}
	payload, err := s.pdf.Render(doc)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable pdf")
	}
	filename := fmt.Sprintf("timetable-%s.pdf", proposal.ID)
	return payload, filename, nil
}

// ExportCSV renders the proposal's allocations as a flat CSV listing, one
// row per allocation.
func (s *ProposalService) ExportCSV(ctx context.Context, id string) ([]byte, string, error) {
	if !s.exportEnabled {
		return nil, "", appErrors.Clone(appErrors.ErrPreconditionFailed, "export is disabled")
	}
	proposal, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	allocations, err := s.allocations.List(ctx, models.AllocationFilter{ProposalID: id})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list proposal allocations")
	}

	dataset := export.Dataset{
		Headers: []string{"weekday", "start", "end", "section", "discipline", "professor"},
	}
	for _, alloc := range allocations {
		professor := ""
		if alloc.ProfessorName != nil {
			professor = *alloc.ProfessorName
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"weekday":    alloc.Weekday.Label(),
			"start":      alloc.StartMinute.Clock(),
			"end":        alloc.EndMinute.Clock(),
			"section":    alloc.SectionCode,
			"discipline": alloc.DisciplineName,
			"professor":  professor,
		})
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable csv")
	}
	filename := fmt.Sprintf("timetable-%s.csv", proposal.ID)
	return payload, filename, nil
}

// transition is the single path for every lifecycle event: load, authorize,
// resolve against the transition table, run the event precondition, then
// apply the guarded update.
func (s *ProposalService) transition(
	ctx context.Context,
	id string,
	event models.ProposalEvent,
	claims *models.JWTClaims,
	params repository.TransitionParams,
	precondition func(*models.Proposal) error,
) (*models.Proposal, error) {
	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(proposal, event, claims); err != nil {
		return nil, err
	}

	next, ok := models.NextStatus(proposal.Status, event)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("cannot %s a proposal in status %s", event, proposal.Status))
	}
	if precondition != nil {
		if err := precondition(proposal); err != nil {
			return nil, err
		}
	}

	params.Status = next
	if err := s.repo.UpdateStatus(ctx, id, proposal.Status, params); err != nil {
		if errors.Is(err, repository.ErrStaleTransition) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "proposal status changed concurrently; reload and retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update proposal status")
	}

	s.cache.InvalidateProposal(ctx, id)
	s.logger.Info("proposal transitioned",
		zap.String("proposal_id", id),
		zap.String("event", string(event)),
		zap.String("from", string(proposal.Status)),
		zap.String("to", string(next)),
		zap.String("actor_id", claims.UserID))

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// authorize checks that the caller's role owns the event. Admins may perform
// any event; coordinators additionally must own the proposal.
func (s *ProposalService) authorize(proposal *models.Proposal, event models.ProposalEvent, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role == models.RoleAdmin {
		return nil
	}
	actor, ok := models.ProposalEventActor[event]
	if !ok || claims.Role != actor {
		return appErrors.ErrForbidden
	}
	if actor == models.RoleCoordinator && proposal.CoordinatorID != claims.UserID {
		return appErrors.ErrForbidden
	}
	return nil
}

func (s *ProposalService) load(ctx context.Context, id string) (*models.Proposal, error) {
	proposal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load proposal")
	}
	return proposal, nil
}
