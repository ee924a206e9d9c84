package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplan/timetable-api/internal/models"
)

const allocationColumns = `
a.id,
a.section_id,
s.code AS section_code,
s.discipline_name,
s.professor_id,
s.professor_name,
a.period_id,
a.proposal_id,
a.weekday,
a.start_minute,
a.end_minute,
a.created_at`

// AllocationRepository provides persistence for timetable allocations.
type AllocationRepository struct {
	db *sqlx.DB
}

// NewAllocationRepository creates a new allocation repository.
func NewAllocationRepository(db *sqlx.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// List returns allocations matching the filter, joined with their section
// snapshot, ordered for stable grid rendering.
func (r *AllocationRepository) List(ctx context.Context, filter models.AllocationFilter) ([]models.Allocation, error) {
	base := "FROM allocations a JOIN sections s ON s.id = a.section_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.PeriodID != "" {
		conditions = append(conditions, fmt.Sprintf("a.period_id = $%d", len(args)+1))
		args = append(args, filter.PeriodID)
	}
	if filter.ProposalID != "" {
		conditions = append(conditions, fmt.Sprintf("a.proposal_id = $%d", len(args)+1))
		args = append(args, filter.ProposalID)
	}
	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("a.section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.ProfessorID != "" {
		conditions = append(conditions, fmt.Sprintf("s.professor_id = $%d", len(args)+1))
		args = append(args, filter.ProfessorID)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := "SELECT " + allocationColumns + " " + base + " ORDER BY a.weekday ASC, a.start_minute ASC, s.code ASC"

	var items []models.Allocation
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return items, nil
}

// FindByID returns a single allocation with its section snapshot.
func (r *AllocationRepository) FindByID(ctx context.Context, id string) (*models.Allocation, error) {
	query := "SELECT " + allocationColumns + " FROM allocations a JOIN sections s ON s.id = a.section_id WHERE a.id = $1"
	var item models.Allocation
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts the allocation and bumps the owning proposal's allocation
// count inside one transaction so the aggregate never drifts.
func (r *AllocationRepository) Create(ctx context.Context, alloc *models.Allocation) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin allocation transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if alloc.ID == "" {
		alloc.ID = uuid.NewString()
	}
	alloc.CreatedAt = time.Now().UTC()

	const insertQuery = `INSERT INTO allocations (id, section_id, period_id, proposal_id, weekday, start_minute, end_minute, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err = tx.ExecContext(ctx, insertQuery,
		alloc.ID, alloc.SectionID, alloc.PeriodID, alloc.ProposalID,
		alloc.Weekday, alloc.StartMinute, alloc.EndMinute, alloc.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert allocation: %w", err)
	}

	if alloc.ProposalID != nil {
		const bumpQuery = `UPDATE proposals SET allocation_count = allocation_count + 1, updated_at = $2 WHERE id = $1`
		if _, err = tx.ExecContext(ctx, bumpQuery, *alloc.ProposalID, time.Now().UTC()); err != nil {
			return fmt.Errorf("bump proposal allocation count: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit allocation: %w", err)
	}
	return nil
}

// Delete removes the allocation and decrements the owning proposal's count.
func (r *AllocationRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin allocation transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var proposalID sql.NullString
	const selectQuery = `SELECT proposal_id FROM allocations WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &proposalID, selectQuery, id); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM allocations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete allocation: %w", err)
	}

	if proposalID.Valid {
		const dropQuery = `UPDATE proposals SET allocation_count = GREATEST(allocation_count - 1, 0), updated_at = $2 WHERE id = $1`
		if _, err = tx.ExecContext(ctx, dropQuery, proposalID.String, time.Now().UTC()); err != nil {
			return fmt.Errorf("drop proposal allocation count: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit allocation delete: %w", err)
	}
	return nil
}
