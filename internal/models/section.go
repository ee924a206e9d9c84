package models

import "time"

// Section is a scheduled instance of a course offering (a "turma"),
// optionally assigned a professor.
type Section struct {
	ID             string    `db:"id" json:"id"`
	Code           string    `db:"code" json:"code"`
	CourseID       string    `db:"course_id" json:"course_id"`
	PeriodID       string    `db:"period_id" json:"period_id"`
	DisciplineID   string    `db:"discipline_id" json:"discipline_id"`
	DisciplineName string    `db:"discipline_name" json:"discipline_name"`
	ProfessorID    *string   `db:"professor_id" json:"professor_id,omitempty"`
	ProfessorName  *string   `db:"professor_name" json:"professor_name,omitempty"`
	WeeklyHours    int       `db:"weekly_hours" json:"weekly_hours"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
