package models

import (
	"sort"
	"time"
)

// Shift partitions the slot catalog into teaching periods of the day.
type Shift string

const (
	ShiftMorning   Shift = "MORNING"
	ShiftAfternoon Shift = "AFTERNOON"
	ShiftEvening   Shift = "EVENING"
)

// Shifts lists shifts in day order.
var Shifts = []Shift{ShiftMorning, ShiftAfternoon, ShiftEvening}

// Valid reports whether the shift is one of the three known periods.
func (s Shift) Valid() bool {
	return s == ShiftMorning || s == ShiftAfternoon || s == ShiftEvening
}

// ClassSlot is one fixed window of the institutional slot catalog.
// Slots never overlap within a shift and are ordered by start time.
type ClassSlot struct {
	ID          string      `db:"id" json:"id"`
	Shift       Shift       `db:"shift" json:"shift"`
	StartMinute MinuteOfDay `db:"start_minute" json:"start_minute"`
	EndMinute   MinuteOfDay `db:"end_minute" json:"end_minute"`
	Position    int         `db:"position" json:"position"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// Range returns the slot window as a TimeRange.
func (s ClassSlot) Range() TimeRange {
	return TimeRange{Start: s.StartMinute, End: s.EndMinute}
}

// SlotCatalog is the ordered list of class slots for an institution.
type SlotCatalog struct {
	slots   []ClassSlot
	byRange map[TimeRange]int
}

// NewSlotCatalog builds a catalog with O(1) lookup by exact time range.
// Input slots are re-sorted by shift then start time.
func NewSlotCatalog(slots []ClassSlot) *SlotCatalog {
	ordered := make([]ClassSlot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Shift != ordered[j].Shift {
			return shiftOrder(ordered[i].Shift) < shiftOrder(ordered[j].Shift)
		}
		return ordered[i].StartMinute < ordered[j].StartMinute
	})

	byRange := make(map[TimeRange]int, len(ordered))
	for i, slot := range ordered {
		byRange[slot.Range()] = i
	}
	return &SlotCatalog{slots: ordered, byRange: byRange}
}

// Slots returns the catalog in shift/start order.
func (c *SlotCatalog) Slots() []ClassSlot {
	return c.slots
}

// Len returns the number of catalog slots.
func (c *SlotCatalog) Len() int {
	return len(c.slots)
}

// IndexOf returns the catalog position of the slot whose window exactly
// equals the given range. A contained sub-range does not match.
func (c *SlotCatalog) IndexOf(r TimeRange) (int, bool) {
	idx, ok := c.byRange[r]
	return idx, ok
}

// ByShift groups the catalog per shift preserving order.
func (c *SlotCatalog) ByShift() map[Shift][]ClassSlot {
	grouped := make(map[Shift][]ClassSlot, len(Shifts))
	for _, slot := range c.slots {
		grouped[slot.Shift] = append(grouped[slot.Shift], slot)
	}
	return grouped
}

func shiftOrder(s Shift) int {
	switch s {
	case ShiftMorning:
		return 0
	case ShiftAfternoon:
		return 1
	case ShiftEvening:
		return 2
	default:
		return 3
	}
}
