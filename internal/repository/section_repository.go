package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/uniplan/timetable-api/internal/models"
)

// SectionRepository provides read access to course sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository creates a new section repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// FindByID returns a section by id.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	const query = `SELECT id, code, course_id, period_id, discipline_id, discipline_name,
professor_id, professor_name, weekly_hours, created_at, updated_at
FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// ListByPeriod returns sections offered in an academic period.
func (r *SectionRepository) ListByPeriod(ctx context.Context, periodID string) ([]models.Section, error) {
	const query = `SELECT id, code, course_id, period_id, discipline_id, discipline_name,
professor_id, professor_name, weekly_hours, created_at, updated_at
FROM sections WHERE period_id = $1 ORDER BY code ASC`
	var items []models.Section
	if err := r.db.SelectContext(ctx, &items, query, periodID); err != nil {
		return nil, err
	}
	return items, nil
}
