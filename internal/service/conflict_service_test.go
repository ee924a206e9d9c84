package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
)

type allocationListerStub struct {
	items      []models.Allocation
	err        error
	lastFilter models.AllocationFilter
}

func (s *allocationListerStub) List(ctx context.Context, filter models.AllocationFilter) ([]models.Allocation, error) {
	s.lastFilter = filter
	return s.items, s.err
}

type catalogStub struct {
	catalog *models.SlotCatalog
	err     error
}

func (s catalogStub) Catalog(ctx context.Context) (*models.SlotCatalog, error) {
	return s.catalog, s.err
}

func testAllocation(id, sectionID, professorID string, day models.Weekday, start, end int) models.Allocation {
	alloc := models.Allocation{
		ID:             id,
		SectionID:      sectionID,
		SectionCode:    "SEC-" + sectionID,
		DisciplineName: "Discipline " + sectionID,
		PeriodID:       "period-1",
		Weekday:        day,
		StartMinute:    models.MinuteOfDay(start),
		EndMinute:      models.MinuteOfDay(end),
	}
	if professorID != "" {
		profID := professorID
		profName := "Prof " + professorID
		alloc.ProfessorID = &profID
		alloc.ProfessorName = &profName
	}
	return alloc
}

func testCatalog(windows ...[2]int) *models.SlotCatalog {
	slots := make([]models.ClassSlot, len(windows))
	for i, w := range windows {
		slots[i] = models.ClassSlot{
			ID:          string(rune('a' + i)),
			Shift:       models.ShiftMorning,
			StartMinute: models.MinuteOfDay(w[0]),
			EndMinute:   models.MinuteOfDay(w[1]),
			Position:    i,
		}
	}
	return models.NewSlotCatalog(slots)
}

func TestDetectConflictsProfessorOverlap(t *testing.T) {
	allocations := []models.Allocation{
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayMonday, 450, 500),
		testAllocation("a2", "sec-2", "prof-1", models.WeekdayMonday, 460, 510),
	}

	conflicts := DetectConflicts(allocations)
	require.Len(t, conflicts, 1)
	conflict := conflicts[0]
	assert.Equal(t, models.ConflictProfessorOverlap, conflict.Type)
	assert.Equal(t, models.SeverityCritical, conflict.Severity)
	assert.False(t, conflict.CanAutoResolve)
	assert.True(t, conflict.Involves("a1"))
	assert.True(t, conflict.Involves("a2"))
	assert.Contains(t, conflict.Suggestions, models.ResolutionManual)
	assert.NotContains(t, conflict.Suggestions, models.ResolutionKeepFirst)
}

func TestDetectConflictsSectionOverlap(t *testing.T) {
	allocations := []models.Allocation{
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayTuesday, 450, 500),
		testAllocation("a2", "sec-1", "prof-2", models.WeekdayTuesday, 480, 530),
	}

	conflicts := DetectConflicts(allocations)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictSectionOverlap, conflicts[0].Type)
	assert.Equal(t, models.SeverityCritical, conflicts[0].Severity)
	assert.False(t, conflicts[0].CanAutoResolve)
}

func TestDetectConflictsSlotOvercrowding(t *testing.T) {
	allocations := []models.Allocation{
		testAllocation("a3", "sec-3", "prof-3", models.WeekdayMonday, 450, 500),
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayMonday, 450, 500),
		testAllocation("a2", "sec-2", "prof-2", models.WeekdayMonday, 450, 500),
	}

	conflicts := DetectConflicts(allocations)
	require.Len(t, conflicts, 1, "one conflict per crowded cell, not one per pair")
	conflict := conflicts[0]
	assert.Equal(t, models.ConflictSlotOverlap, conflict.Type)
	assert.Equal(t, models.SeverityHigh, conflict.Severity)
	assert.True(t, conflict.CanAutoResolve)
	require.Len(t, conflict.Allocations, 3)
	assert.Equal(t, "a1", conflict.Allocations[0].ID, "members sorted by ID")
	assert.Equal(t, "a3", conflict.Allocations[2].ID)
}

func TestDetectConflictsNoFalsePositives(t *testing.T) {
	allocations := []models.Allocation{
		// Same professor, back-to-back windows.
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayMonday, 600, 650),
		testAllocation("a2", "sec-2", "prof-1", models.WeekdayMonday, 650, 700),
		// Same window, different weekday.
		testAllocation("a3", "sec-3", "prof-2", models.WeekdayTuesday, 600, 650),
		// Overlapping window, everything else distinct.
		testAllocation("a4", "sec-4", "prof-3", models.WeekdayMonday, 620, 670),
	}

	assert.Empty(t, DetectConflicts(allocations))
}

func TestDetectConflictsIsDeterministic(t *testing.T) {
	allocations := []models.Allocation{
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayMonday, 450, 500),
		testAllocation("a2", "sec-2", "prof-1", models.WeekdayMonday, 450, 500),
		testAllocation("a3", "sec-2", "prof-1", models.WeekdayMonday, 470, 520),
	}

	first := DetectConflicts(allocations)
	second := DetectConflicts(allocations)
	assert.Equal(t, first, second)

	require.NotEmpty(t, first)
	for i := 1; i < len(first); i++ {
		assert.LessOrEqual(t, first[i-1].Severity.Rank(), first[i].Severity.Rank(), "sorted most severe first")
	}
}

func TestConflictStatistics(t *testing.T) {
	allocations := []models.Allocation{
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayMonday, 450, 500),
		testAllocation("a2", "sec-2", "prof-1", models.WeekdayMonday, 450, 500),
	}

	conflicts := DetectConflicts(allocations)
	stats := ConflictStatistics(conflicts)
	assert.Equal(t, len(conflicts), stats.Total)
	assert.Equal(t, 1, stats.BySeverity[models.SeverityCritical])
	assert.Equal(t, 1, stats.BySeverity[models.SeverityHigh])
	assert.Equal(t, 1, stats.ByType[models.ConflictProfessorOverlap])
	assert.Equal(t, 1, stats.ByType[models.ConflictSlotOverlap])
	assert.Equal(t, 1, stats.AutoResolvable)
}

func TestConflictServiceDetectRequiresScope(t *testing.T) {
	svc := NewConflictService(&allocationListerStub{}, catalogStub{}, nil, nil)
	_, err := svc.Detect(context.Background(), dto.ConflictQuery{})
	assert.Error(t, err)
}

func TestConflictServiceProposalScopeWins(t *testing.T) {
	lister := &allocationListerStub{}
	svc := NewConflictService(lister, catalogStub{}, nil, nil)

	_, err := svc.Detect(context.Background(), dto.ConflictQuery{PeriodID: "period-1", ProposalID: "prop-1"})
	require.NoError(t, err)
	assert.Equal(t, "prop-1", lister.lastFilter.ProposalID)
	assert.Empty(t, lister.lastFilter.PeriodID, "proposal scope excludes the period filter")
}

func TestConflictServiceSeverityFilter(t *testing.T) {
	lister := &allocationListerStub{items: []models.Allocation{
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayMonday, 450, 500),
		testAllocation("a2", "sec-2", "prof-1", models.WeekdayMonday, 450, 500),
	}}
	svc := NewConflictService(lister, catalogStub{}, nil, nil)

	conflicts, err := svc.Detect(context.Background(), dto.ConflictQuery{
		PeriodID:   "period-1",
		Severities: []models.ConflictSeverity{models.SeverityCritical},
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.SeverityCritical, conflicts[0].Severity)
}

func TestValidateResolutionManualAlwaysFeasible(t *testing.T) {
	lister := &allocationListerStub{items: []models.Allocation{
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayMonday, 450, 500),
		testAllocation("a2", "sec-2", "prof-1", models.WeekdayMonday, 450, 500),
	}}
	svc := NewConflictService(lister, catalogStub{catalog: testCatalog([2]int{450, 500})}, nil, nil)
	query := dto.ConflictQuery{PeriodID: "period-1"}

	conflicts, err := svc.Detect(context.Background(), query)
	require.NoError(t, err)
	require.NotEmpty(t, conflicts)

	result, err := svc.ValidateResolution(context.Background(), query, conflicts[0].ID, models.ResolutionManual)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateResolutionKeepOnlyForSlotOvercrowding(t *testing.T) {
	lister := &allocationListerStub{items: []models.Allocation{
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayMonday, 450, 500),
		testAllocation("a2", "sec-2", "prof-1", models.WeekdayMonday, 460, 510),
	}}
	svc := NewConflictService(lister, catalogStub{catalog: testCatalog([2]int{450, 500}, [2]int{460, 510})}, nil, nil)
	query := dto.ConflictQuery{PeriodID: "period-1"}

	conflicts, err := svc.Detect(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	require.Equal(t, models.ConflictProfessorOverlap, conflicts[0].Type)

	result, err := svc.ValidateResolution(context.Background(), query, conflicts[0].ID, models.ResolutionKeepFirst)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Reason)
}

func TestValidateResolutionMoveToFreeSlot(t *testing.T) {
	crowded := []models.Allocation{
		testAllocation("a1", "sec-1", "prof-1", models.WeekdayMonday, 450, 500),
		testAllocation("a2", "sec-2", "prof-2", models.WeekdayMonday, 450, 500),
	}
	lister := &allocationListerStub{items: crowded}
	svc := NewConflictService(lister, catalogStub{catalog: testCatalog([2]int{450, 500})}, nil, nil)
	query := dto.ConflictQuery{PeriodID: "period-1"}

	conflicts, err := svc.Detect(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)

	result, err := svc.ValidateResolution(context.Background(), query, conflicts[0].ID, models.ResolutionMoveToFreeSlot)
	require.NoError(t, err)
	assert.True(t, result.Valid, "another weekday cell is free")

	// Fill the single catalog slot on every weekday; nothing can move.
	full := append([]models.Allocation{}, crowded...)
	fillers := []models.Weekday{models.WeekdayTuesday, models.WeekdayWednesday, models.WeekdayThursday, models.WeekdayFriday, models.WeekdaySaturday}
	for i, day := range fillers {
		full = append(full, testAllocation(
			"f"+string(rune('1'+i)), "sec-f"+string(rune('1'+i)), "prof-f"+string(rune('1'+i)), day, 450, 500))
	}
	lister.items = full

	conflicts, err = svc.Detect(context.Background(), query)
	require.NoError(t, err)
	var target *models.ConflictDetails
	for i := range conflicts {
		if conflicts[i].Type == models.ConflictSlotOverlap && conflicts[i].Involves("a1") {
			target = &conflicts[i]
		}
	}
	require.NotNil(t, target)

	result, err = svc.ValidateResolution(context.Background(), query, target.ID, models.ResolutionMoveToFreeSlot)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Reason)
}

func TestValidateResolutionUnknownStrategy(t *testing.T) {
	svc := NewConflictService(&allocationListerStub{}, catalogStub{}, nil, nil)
	_, err := svc.ValidateResolution(context.Background(), dto.ConflictQuery{PeriodID: "period-1"}, "whatever", models.ResolutionStrategy("DELETE_EVERYTHING"))
	assert.Error(t, err)
}
