package models

import "strings"

// Weekday represents a teaching day. Sunday is not part of the academic week.
type Weekday string

const (
	WeekdayMonday    Weekday = "MONDAY"
	WeekdayTuesday   Weekday = "TUESDAY"
	WeekdayWednesday Weekday = "WEDNESDAY"
	WeekdayThursday  Weekday = "THURSDAY"
	WeekdayFriday    Weekday = "FRIDAY"
	WeekdaySaturday  Weekday = "SATURDAY"
)

// Weekdays lists the academic week in display order.
var Weekdays = []Weekday{
	WeekdayMonday,
	WeekdayTuesday,
	WeekdayWednesday,
	WeekdayThursday,
	WeekdayFriday,
	WeekdaySaturday,
}

var weekdayIndex = map[Weekday]int{
	WeekdayMonday:    1,
	WeekdayTuesday:   2,
	WeekdayWednesday: 3,
	WeekdayThursday:  4,
	WeekdayFriday:    5,
	WeekdaySaturday:  6,
}

var weekdayLabels = map[Weekday]string{
	WeekdayMonday:    "Monday",
	WeekdayTuesday:   "Tuesday",
	WeekdayWednesday: "Wednesday",
	WeekdayThursday:  "Thursday",
	WeekdayFriday:    "Friday",
	WeekdaySaturday:  "Saturday",
}

// Valid reports whether the weekday belongs to the academic week.
func (w Weekday) Valid() bool {
	_, ok := weekdayIndex[w]
	return ok
}

// Index returns the 1-based position of the weekday (Monday = 1), 0 when invalid.
func (w Weekday) Index() int {
	return weekdayIndex[w]
}

// Label returns the human readable name used in conflict descriptions.
func (w Weekday) Label() string {
	if label, ok := weekdayLabels[w]; ok {
		return label
	}
	return string(w)
}

// ParseWeekday normalises raw input into a Weekday, returning false when unknown.
func ParseWeekday(raw string) (Weekday, bool) {
	day := Weekday(strings.ToUpper(strings.TrimSpace(raw)))
	return day, day.Valid()
}
