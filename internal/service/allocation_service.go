package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
)

type allocationStore interface {
	List(ctx context.Context, filter models.AllocationFilter) ([]models.Allocation, error)
	FindByID(ctx context.Context, id string) (*models.Allocation, error)
	Create(ctx context.Context, alloc *models.Allocation) error
	Delete(ctx context.Context, id string) error
}

type allocationSectionReader interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
}

type allocationProposalReader interface {
	FindByID(ctx context.Context, id string) (*models.Proposal, error)
}

// AllocationService guards allocation creation with a validate-then-create
// protocol. Validate never writes; Create re-runs the same checks inside the
// request so a slot taken between the two phases still fails authoritatively.
type AllocationService struct {
	repo      allocationStore
	sections  allocationSectionReader
	proposals allocationProposalReader
	catalog   conflictCatalogProvider
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAllocationService wires allocation dependencies.
func NewAllocationService(
	repo allocationStore,
	sections allocationSectionReader,
	proposals allocationProposalReader,
	catalog conflictCatalogProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *AllocationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		repo:      repo,
		sections:  sections,
		proposals: proposals,
		catalog:   catalog,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// List returns allocations for the filter, caching pure period and pure
// proposal scopes.
func (s *AllocationService) List(ctx context.Context, filter models.AllocationFilter) ([]models.Allocation, error) {
	if filter.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one filter of periodId, proposalId, sectionId or professorId is required")
	}

	cacheKey := allocationCacheKey(filter)
	if cacheKey != "" {
		var cached []models.Allocation
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return cached, nil
		}
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list allocations")
	}

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, items, 0); err != nil {
			s.logger.Warn("failed to cache allocations", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return items, nil
}

// Grid positions the filtered allocations on the weekday × slot grid.
func (s *AllocationService) Grid(ctx context.Context, filter models.AllocationFilter) (*dto.AllocationGridResponse, error) {
	allocations, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	resp := BuildAllocationGrid(catalog, allocations).Response(len(allocations))
	return &resp, nil
}

// Validate is the first phase of allocation creation: it checks the
// candidate against the catalog and the scoped allocation set without
// writing anything. Business rejections come back as Valid=false; malformed
// input, missing resources and non-editable proposals are errors.
func (s *AllocationService) Validate(ctx context.Context, req dto.CreateAllocationRequest) (*dto.ValidateAllocationResult, error) {
	candidate, _, err := s.buildCandidate(ctx, req)
	if err != nil {
		return nil, err
	}
	result, err := s.check(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordValidation(result.Valid)
	}
	return result, nil
}

// Create is the second phase: it re-validates inside the request and
// persists on success. The re-check is the only defense against the gap
// between a client's validate call and its create call.
func (s *AllocationService) Create(ctx context.Context, req dto.CreateAllocationRequest, claims *models.JWTClaims) (*models.Allocation, error) {
	if err := s.ensureEditor(ctx, req.ProposalID, claims); err != nil {
		return nil, err
	}

	candidate, section, err := s.buildCandidate(ctx, req)
	if err != nil {
		return nil, err
	}
	result, err := s.check(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordValidation(result.Valid)
	}
	if !result.Valid {
		return nil, appErrors.Wrap(
			fmt.Errorf("%s", strings.Join(result.Details, "; ")),
			appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, result.Error,
		)
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create allocation")
	}

	s.cache.InvalidateAllocationScope(ctx, section.PeriodID, candidate.ProposalID)
	s.logger.Info("allocation created",
		zap.String("allocation_id", candidate.ID),
		zap.String("section_id", candidate.SectionID),
		zap.String("weekday", string(candidate.Weekday)))

	created, err := s.repo.FindByID(ctx, candidate.ID)
	if err != nil {
		return candidate, nil
	}
	return created, nil
}

// Delete removes an allocation. There is no validate phase: removal cannot
// create a new conflict. Cache invalidation mirrors Create.
func (s *AllocationService) Delete(ctx context.Context, id string, claims *models.JWTClaims) error {
	alloc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "allocation not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocation")
	}

	proposalID := ""
	if alloc.ProposalID != nil {
		proposalID = *alloc.ProposalID
	}
	if err := s.ensureEditor(ctx, proposalID, claims); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete allocation")
	}

	s.cache.InvalidateAllocationScope(ctx, alloc.PeriodID, alloc.ProposalID)
	s.logger.Info("allocation removed", zap.String("allocation_id", id))
	return nil
}

// ensureEditor enforces the local guard: only the owning coordinator (or an
// admin) may touch allocations, and only while the proposal is in DRAFT.
// The check runs before any other work so a non-editable proposal never
// costs a catalog or allocation load.
func (s *AllocationService) ensureEditor(ctx context.Context, proposalID string, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleCoordinator && claims.Role != models.RoleAdmin {
		return appErrors.ErrForbidden
	}
	if proposalID == "" {
		return nil
	}

	proposal, err := s.proposals.FindByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "proposal not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load proposal")
	}
	if claims.Role == models.RoleCoordinator && proposal.CoordinatorID != claims.UserID {
		return appErrors.ErrForbidden
	}
	if !proposal.Status.CanEdit() {
		return appErrors.Clone(appErrors.ErrNotEditable, fmt.Sprintf("proposal is %s; only DRAFT proposals accept allocation changes", proposal.Status))
	}
	return nil
}

// buildCandidate parses and resolves the request into an allocation carrying
// the section snapshot.
func (s *AllocationService) buildCandidate(ctx context.Context, req dto.CreateAllocationRequest) (*models.Allocation, *models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation payload")
	}

	weekday, ok := models.ParseWeekday(req.Weekday)
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown weekday %q", req.Weekday))
	}
	start, err := models.ParseClock(req.Start)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	end, err := models.ParseClock(req.End)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if start >= end {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "start must be before end")
	}

	section, err := s.sections.FindByID(ctx, req.SectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	candidate := &models.Allocation{
		SectionID:      section.ID,
		SectionCode:    section.Code,
		DisciplineName: section.DisciplineName,
		ProfessorID:    section.ProfessorID,
		ProfessorName:  section.ProfessorName,
		PeriodID:       section.PeriodID,
		Weekday:        weekday,
		StartMinute:    start,
		EndMinute:      end,
	}
	if req.ProposalID != "" {
		proposalID := req.ProposalID
		candidate.ProposalID = &proposalID
	}
	return candidate, section, nil
}

// check evaluates the candidate against the catalog and the scoped
// allocation set. Overlap invariants are evaluated against the proposal's
// own allocations when the candidate is proposal-scoped, otherwise against
// the whole academic period.
func (s *AllocationService) check(ctx context.Context, candidate *models.Allocation) (*dto.ValidateAllocationResult, error) {
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	var details []string
	if _, ok := catalog.IndexOf(candidate.Range()); !ok {
		details = append(details, fmt.Sprintf("time range %s does not match any catalog slot", candidate.Range()))
	}

	filter := models.AllocationFilter{PeriodID: candidate.PeriodID}
	if candidate.ProposalID != nil {
		filter = models.AllocationFilter{ProposalID: *candidate.ProposalID}
	}
	existing, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocations")
	}

	for _, other := range existing {
		if !candidate.CollidesWith(other) {
			continue
		}
		if other.SectionID == candidate.SectionID {
			details = append(details, fmt.Sprintf("section %s already meets on %s %s", other.SectionCode, other.Weekday.Label(), other.Range()))
			continue
		}
		if candidate.ProfessorID != nil && other.ProfessorID != nil && *candidate.ProfessorID == *other.ProfessorID {
			professor := ""
			if candidate.ProfessorName != nil {
				professor = *candidate.ProfessorName
			}
			details = append(details, fmt.Sprintf("professor %s already teaches %s on %s %s", professor, other.SectionCode, other.Weekday.Label(), other.Range()))
		}
	}

	result := &dto.ValidateAllocationResult{Valid: len(details) == 0, Details: details}
	if !result.Valid {
		result.Error = "allocation conflicts with the current timetable"
	}
	return result, nil
}

func allocationCacheKey(filter models.AllocationFilter) string {
	if filter.SectionID != "" || filter.ProfessorID != "" {
		return ""
	}
	if filter.ProposalID != "" {
		return CacheKeyProposalAllocations + filter.ProposalID
	}
	if filter.PeriodID != "" {
		return CacheKeyPeriodAllocations + filter.PeriodID
	}
	return ""
}
