package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MinuteOfDay counts minutes since midnight (07:30 = 450).
type MinuteOfDay int

// Clock renders the minute as HH:MM.
func (m MinuteOfDay) Clock() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// ParseClock converts HH:MM into a MinuteOfDay.
func ParseClock(raw string) (MinuteOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	return MinuteOfDay(hour*60 + minute), nil
}

// TimeRange is a half-open [Start, End) window within a single day.
// Callers must keep Start < End; Overlaps assumes well-formed ranges.
type TimeRange struct {
	Start MinuteOfDay `db:"start_minute" json:"start_minute"`
	End   MinuteOfDay `db:"end_minute" json:"end_minute"`
}

// Overlaps reports whether two ranges share any time. Touching endpoints
// (a.End == b.Start) do not overlap.
func (a TimeRange) Overlaps(b TimeRange) bool {
	return a.Start < b.End && b.Start < a.End
}

// Equal reports exact boundary equality.
func (a TimeRange) Equal(b TimeRange) bool {
	return a.Start == b.Start && a.End == b.End
}

// String renders the range as HH:MM-HH:MM.
func (a TimeRange) String() string {
	return a.Start.Clock() + "-" + a.End.Clock()
}
