package models

import "time"

// Allocation binds a section to one weekday/time-slot, optionally scoped to a
// timetable proposal. The section columns are denormalised so conflict
// descriptions and grid cells render without extra lookups. Allocations are
// never mutated in place; a change is a delete followed by a create.
type Allocation struct {
	ID             string      `db:"id" json:"id"`
	SectionID      string      `db:"section_id" json:"section_id"`
	SectionCode    string      `db:"section_code" json:"section_code"`
	DisciplineName string      `db:"discipline_name" json:"discipline_name"`
	ProfessorID    *string     `db:"professor_id" json:"professor_id,omitempty"`
	ProfessorName  *string     `db:"professor_name" json:"professor_name,omitempty"`
	PeriodID       string      `db:"period_id" json:"period_id"`
	ProposalID     *string     `db:"proposal_id" json:"proposal_id,omitempty"`
	Weekday        Weekday     `db:"weekday" json:"weekday"`
	StartMinute    MinuteOfDay `db:"start_minute" json:"start_minute"`
	EndMinute      MinuteOfDay `db:"end_minute" json:"end_minute"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// Range returns the allocation window as a TimeRange.
func (a Allocation) Range() TimeRange {
	return TimeRange{Start: a.StartMinute, End: a.EndMinute}
}

// CollidesWith reports whether two allocations occupy overlapping time on the
// same weekday.
func (a Allocation) CollidesWith(b Allocation) bool {
	return a.Weekday == b.Weekday && a.Range().Overlaps(b.Range())
}

// AllocationFilter narrows allocation listings. Exactly one of the scope
// fields is normally set; ProposalID scopes the conflict invariants to a
// single proposal while PeriodID evaluates them across the whole period.
type AllocationFilter struct {
	PeriodID    string
	ProposalID  string
	SectionID   string
	ProfessorID string
}

// Empty reports whether the filter carries no criteria at all.
func (f AllocationFilter) Empty() bool {
	return f.PeriodID == "" && f.ProposalID == "" && f.SectionID == "" && f.ProfessorID == ""
}
