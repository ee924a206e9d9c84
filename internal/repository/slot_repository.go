package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/uniplan/timetable-api/internal/models"
)

// SlotRepository provides read access to the institutional slot catalog.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository creates a new slot repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// ListAll returns the full slot catalog ordered by shift and start time.
func (r *SlotRepository) ListAll(ctx context.Context) ([]models.ClassSlot, error) {
	const query = `SELECT id, shift, start_minute, end_minute, position, created_at
FROM class_slots
ORDER BY CASE shift WHEN 'MORNING' THEN 0 WHEN 'AFTERNOON' THEN 1 ELSE 2 END, start_minute ASC`
	var slots []models.ClassSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, err
	}
	return slots, nil
}
