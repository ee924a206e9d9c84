package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
)

type conflictAllocationLister interface {
	List(ctx context.Context, filter models.AllocationFilter) ([]models.Allocation, error)
}

type conflictCatalogProvider interface {
	Catalog(ctx context.Context) (*models.SlotCatalog, error)
}

// ConflictService scans allocation sets for timetable violations. Detection
// itself is pure and recomputed from scratch on every scan; the service only
// adds scope resolution, filtering and resolution feasibility checks.
type ConflictService struct {
	allocations conflictAllocationLister
	catalog     conflictCatalogProvider
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewConflictService wires the conflict detection dependencies.
func NewConflictService(allocations conflictAllocationLister, catalog conflictCatalogProvider, metrics *MetricsService, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{allocations: allocations, catalog: catalog, metrics: metrics, logger: logger}
}

// DetectConflicts runs the three detection passes over the given allocation
// set and returns the concatenated result sorted most severe first. The
// function is pure: same input, same output.
func DetectConflicts(allocations []models.Allocation) []models.ConflictDetails {
	conflicts := detectProfessorOverlaps(allocations)
	conflicts = append(conflicts, detectSectionOverlaps(allocations)...)
	conflicts = append(conflicts, detectSlotOvercrowding(allocations)...)

	sort.SliceStable(conflicts, func(i, j int) bool {
		if conflicts[i].Severity.Rank() != conflicts[j].Severity.Rank() {
			return conflicts[i].Severity.Rank() < conflicts[j].Severity.Rank()
		}
		return conflicts[i].ID < conflicts[j].ID
	})
	return conflicts
}

func detectProfessorOverlaps(allocations []models.Allocation) []models.ConflictDetails {
	byProfessor := make(map[string][]models.Allocation)
	for _, alloc := range allocations {
		if alloc.ProfessorID == nil || *alloc.ProfessorID == "" {
			continue
		}
		byProfessor[*alloc.ProfessorID] = append(byProfessor[*alloc.ProfessorID], alloc)
	}

	var conflicts []models.ConflictDetails
	for _, group := range byProfessor {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if !group[i].CollidesWith(group[j]) {
					continue
				}
				a, b := group[i], group[j]
				professor := a.SectionCode
				if a.ProfessorName != nil {
					professor = *a.ProfessorName
				}
				conflicts = append(conflicts, models.ConflictDetails{
					ID:          pairConflictID(models.ConflictProfessorOverlap, a.ID, b.ID),
					Type:        models.ConflictProfessorOverlap,
					Severity:    models.SeverityCritical,
					Allocations: []models.Allocation{a, b},
					Description: fmt.Sprintf("Professor %s is double-booked on %s: %s (%s) and %s (%s)",
						professor, a.Weekday.Label(), a.SectionCode, a.Range(), b.SectionCode, b.Range()),
					Suggestions:    suggestionsFor(models.ConflictProfessorOverlap),
					CanAutoResolve: false,
				})
			}
		}
	}
	return conflicts
}

func detectSectionOverlaps(allocations []models.Allocation) []models.ConflictDetails {
	bySection := make(map[string][]models.Allocation)
	for _, alloc := range allocations {
		bySection[alloc.SectionID] = append(bySection[alloc.SectionID], alloc)
	}

	var conflicts []models.ConflictDetails
	for _, group := range bySection {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if !group[i].CollidesWith(group[j]) {
					continue
				}
				a, b := group[i], group[j]
				conflicts = append(conflicts, models.ConflictDetails{
					ID:          pairConflictID(models.ConflictSectionOverlap, a.ID, b.ID),
					Type:        models.ConflictSectionOverlap,
					Severity:    models.SeverityCritical,
					Allocations: []models.Allocation{a, b},
					Description: fmt.Sprintf("Section %s (%s) has overlapping classes on %s: %s and %s",
						a.SectionCode, a.DisciplineName, a.Weekday.Label(), a.Range(), b.Range()),
					Suggestions:    suggestionsFor(models.ConflictSectionOverlap),
					CanAutoResolve: false,
				})
			}
		}
	}
	return conflicts
}

func detectSlotOvercrowding(allocations []models.Allocation) []models.ConflictDetails {
	type cellKey struct {
		Weekday models.Weekday
		Range   models.TimeRange
	}
	byCell := make(map[cellKey][]models.Allocation)
	for _, alloc := range allocations {
		key := cellKey{Weekday: alloc.Weekday, Range: alloc.Range()}
		byCell[key] = append(byCell[key], alloc)
	}

	var conflicts []models.ConflictDetails
	for key, group := range byCell {
		if len(group) < 2 {
			continue
		}
		members := make([]models.Allocation, len(group))
		copy(members, group)
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

		codes := make([]string, len(members))
		for i, member := range members {
			codes[i] = member.SectionCode
		}
		conflicts = append(conflicts, models.ConflictDetails{
			ID:          fmt.Sprintf("%s:%s:%s", models.ConflictSlotOverlap, key.Weekday, key.Range),
			Type:        models.ConflictSlotOverlap,
			Severity:    models.SeverityHigh,
			Allocations: members,
			Description: fmt.Sprintf("%d sections share the %s %s slot: %s",
				len(members), key.Weekday.Label(), key.Range, strings.Join(codes, ", ")),
			Suggestions:    suggestionsFor(models.ConflictSlotOverlap),
			CanAutoResolve: true,
		})
	}
	return conflicts
}

func pairConflictID(kind models.ConflictType, a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s:%s:%s", kind, a, b)
}

// suggestionsFor orders candidate strategies by conflict type. Professor and
// section overlaps never offer keep-first/keep-last: dropping one side
// silently would lose a class.
func suggestionsFor(kind models.ConflictType) []models.ResolutionStrategy {
	switch kind {
	case models.ConflictSlotOverlap:
		return []models.ResolutionStrategy{models.ResolutionMoveToFreeSlot, models.ResolutionKeepPriority, models.ResolutionManual}
	case models.ConflictProfessorOverlap, models.ConflictSectionOverlap:
		return []models.ResolutionStrategy{models.ResolutionMoveToFreeSlot, models.ResolutionManual}
	default:
		return []models.ResolutionStrategy{models.ResolutionManual}
	}
}

// FilterBySeverity keeps conflicts whose severity is in the given set.
func FilterBySeverity(conflicts []models.ConflictDetails, severities []models.ConflictSeverity) []models.ConflictDetails {
	if len(severities) == 0 {
		return conflicts
	}
	allowed := make(map[models.ConflictSeverity]bool, len(severities))
	for _, severity := range severities {
		allowed[severity] = true
	}
	var result []models.ConflictDetails
	for _, conflict := range conflicts {
		if allowed[conflict.Severity] {
			result = append(result, conflict)
		}
	}
	return result
}

// FilterByType keeps conflicts whose type is in the given set.
func FilterByType(conflicts []models.ConflictDetails, types []models.ConflictType) []models.ConflictDetails {
	if len(types) == 0 {
		return conflicts
	}
	allowed := make(map[models.ConflictType]bool, len(types))
	for _, kind := range types {
		allowed[kind] = true
	}
	var result []models.ConflictDetails
	for _, conflict := range conflicts {
		if allowed[conflict.Type] {
			result = append(result, conflict)
		}
	}
	return result
}

// ConflictsForAllocation returns every conflict touching the allocation.
func ConflictsForAllocation(conflicts []models.ConflictDetails, allocationID string) []models.ConflictDetails {
	var result []models.ConflictDetails
	for _, conflict := range conflicts {
		if conflict.Involves(allocationID) {
			result = append(result, conflict)
		}
	}
	return result
}

// ConflictStatistics aggregates counts per severity and type.
func ConflictStatistics(conflicts []models.ConflictDetails) models.ConflictStats {
	stats := models.ConflictStats{
		Total:      len(conflicts),
		BySeverity: make(map[models.ConflictSeverity]int),
		ByType:     make(map[models.ConflictType]int),
	}
	for _, conflict := range conflicts {
		stats.BySeverity[conflict.Severity]++
		stats.ByType[conflict.Type]++
		if conflict.CanAutoResolve {
			stats.AutoResolvable++
		}
	}
	return stats
}

// Detect loads the scoped allocation set and runs detection, applying any
// severity/type/allocation filters from the query.
func (s *ConflictService) Detect(ctx context.Context, query dto.ConflictQuery) ([]models.ConflictDetails, error) {
	allocations, err := s.scopedAllocations(ctx, query)
	if err != nil {
		return nil, err
	}

	conflicts := DetectConflicts(allocations)
	conflicts = FilterBySeverity(conflicts, query.Severities)
	conflicts = FilterByType(conflicts, query.Types)
	if query.AllocationID != "" {
		conflicts = ConflictsForAllocation(conflicts, query.AllocationID)
	}

	if s.metrics != nil {
		s.metrics.RecordConflictScan(len(allocations), len(conflicts))
	}
	s.logger.Debug("conflict scan",
		zap.Int("allocations", len(allocations)),
		zap.Int("conflicts", len(conflicts)),
		zap.String("proposal_id", query.ProposalID),
		zap.String("period_id", query.PeriodID))
	return conflicts, nil
}

// Stats runs detection and aggregates the result.
func (s *ConflictService) Stats(ctx context.Context, query dto.ConflictQuery) (*models.ConflictStats, error) {
	conflicts, err := s.Detect(ctx, query)
	if err != nil {
		return nil, err
	}
	stats := ConflictStatistics(conflicts)
	return &stats, nil
}

// ValidateResolution checks whether a strategy can actually clear the
// identified conflict given the current allocation set and catalog.
func (s *ConflictService) ValidateResolution(ctx context.Context, query dto.ConflictQuery, conflictID string, strategy models.ResolutionStrategy) (*dto.ValidateResolutionResult, error) {
	if !strategy.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown resolution strategy %q", strategy))
	}

	allocations, err := s.scopedAllocations(ctx, query)
	if err != nil {
		return nil, err
	}
	var target *models.ConflictDetails
	for _, conflict := range DetectConflicts(allocations) {
		if conflict.ID == conflictID {
			c := conflict
			target = &c
			break
		}
	}
	if target == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "conflict not found in current allocation set")
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	result := validateResolution(*target, strategy, catalog, allocations)
	return &result, nil
}

func validateResolution(conflict models.ConflictDetails, strategy models.ResolutionStrategy, catalog *models.SlotCatalog, allocations []models.Allocation) dto.ValidateResolutionResult {
	result := dto.ValidateResolutionResult{Strategy: strategy}

	switch strategy {
	case models.ResolutionManual:
		result.Valid = true
	case models.ResolutionKeepFirst, models.ResolutionKeepLast, models.ResolutionKeepPriority:
		if conflict.Type != models.ConflictSlotOverlap {
			result.Reason = "keep strategies would silently drop a class; only slot over-crowding supports them"
			return result
		}
		result.Valid = true
	case models.ResolutionMoveToFreeSlot:
		for _, candidate := range conflict.Allocations {
			if hasFreeCompatibleSlot(candidate, catalog, allocations) {
				result.Valid = true
				return result
			}
		}
		result.Reason = "no free compatible slot exists for any involved allocation"
	}
	return result
}

// hasFreeCompatibleSlot scans the weekday × catalog grid for a cell where the
// allocation could move without recreating a professor or section overlap.
func hasFreeCompatibleSlot(alloc models.Allocation, catalog *models.SlotCatalog, allocations []models.Allocation) bool {
	others := make([]models.Allocation, 0, len(allocations))
	for _, other := range allocations {
		if other.ID != alloc.ID {
			others = append(others, other)
		}
	}

	for _, day := range models.Weekdays {
		for _, slot := range catalog.Slots() {
			moved := alloc
			moved.Weekday = day
			moved.StartMinute = slot.StartMinute
			moved.EndMinute = slot.EndMinute

			if cellAvailable(moved, others) {
				return true
			}
		}
	}
	return false
}

func cellAvailable(moved models.Allocation, others []models.Allocation) bool {
	for _, other := range others {
		if !moved.CollidesWith(other) {
			continue
		}
		if other.SectionID == moved.SectionID {
			return false
		}
		if moved.ProfessorID != nil && other.ProfessorID != nil && *moved.ProfessorID == *other.ProfessorID {
			return false
		}
		if other.Weekday == moved.Weekday && other.Range().Equal(moved.Range()) {
			return false
		}
	}
	return true
}

func (s *ConflictService) scopedAllocations(ctx context.Context, query dto.ConflictQuery) ([]models.Allocation, error) {
	if query.ProposalID == "" && query.PeriodID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "either proposalId or periodId is required")
	}
	filter := models.AllocationFilter{PeriodID: query.PeriodID, ProposalID: query.ProposalID}
	if filter.ProposalID != "" {
		// Proposal scope wins: invariants are evaluated against the
		// proposal's own allocations, not globally.
		filter.PeriodID = ""
	}
	allocations, err := s.allocations.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocations")
	}
	return allocations, nil
}
