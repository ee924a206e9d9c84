package models

// ConflictType classifies a detected timetable violation.
type ConflictType string

const (
	ConflictProfessorOverlap ConflictType = "PROFESSOR_OVERLAP"
	ConflictSectionOverlap   ConflictType = "SECTION_OVERLAP"
	ConflictSlotOverlap      ConflictType = "SLOT_OVERLAP"
	// ConflictHoursExceeded is reserved for workload checks not yet emitted
	// by the detector.
	ConflictHoursExceeded ConflictType = "HOURS_EXCEEDED"
)

// ConflictSeverity orders conflicts from most to least urgent.
type ConflictSeverity string

const (
	SeverityCritical ConflictSeverity = "CRITICAL"
	SeverityHigh     ConflictSeverity = "HIGH"
	SeverityMedium   ConflictSeverity = "MEDIUM"
	SeverityLow      ConflictSeverity = "LOW"
)

var severityRank = map[ConflictSeverity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// Rank returns the sort weight of the severity, critical first.
func (s ConflictSeverity) Rank() int {
	if rank, ok := severityRank[s]; ok {
		return rank
	}
	return len(severityRank)
}

// ResolutionStrategy is an advisory option for clearing a conflict. The
// engine suggests strategies and checks feasibility; it never executes them.
type ResolutionStrategy string

const (
	ResolutionMoveToFreeSlot ResolutionStrategy = "MOVE_TO_FREE_SLOT"
	ResolutionKeepFirst      ResolutionStrategy = "KEEP_FIRST"
	ResolutionKeepLast       ResolutionStrategy = "KEEP_LAST"
	ResolutionKeepPriority   ResolutionStrategy = "KEEP_PRIORITY"
	ResolutionManual         ResolutionStrategy = "MANUAL"
)

// Valid reports whether the strategy is one of the known options.
func (r ResolutionStrategy) Valid() bool {
	switch r {
	case ResolutionMoveToFreeSlot, ResolutionKeepFirst, ResolutionKeepLast, ResolutionKeepPriority, ResolutionManual:
		return true
	default:
		return false
	}
}

// ConflictDetails describes one detected violation and the allocations
// involved in it.
type ConflictDetails struct {
	ID             string               `json:"id"`
	Type           ConflictType         `json:"type"`
	Severity       ConflictSeverity     `json:"severity"`
	Allocations    []Allocation         `json:"allocations"`
	Description    string               `json:"description"`
	Suggestions    []ResolutionStrategy `json:"suggestions"`
	CanAutoResolve bool                 `json:"can_auto_resolve"`
}

// Involves reports whether the conflict touches the given allocation.
func (c ConflictDetails) Involves(allocationID string) bool {
	for _, alloc := range c.Allocations {
		if alloc.ID == allocationID {
			return true
		}
	}
	return false
}

// ConflictStats aggregates a conflict list for dashboards.
type ConflictStats struct {
	Total          int                      `json:"total"`
	BySeverity     map[ConflictSeverity]int `json:"by_severity"`
	ByType         map[ConflictType]int     `json:"by_type"`
	AutoResolvable int                      `json:"auto_resolvable"`
}
