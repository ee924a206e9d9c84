package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplan/timetable-api/internal/models"
)

const proposalColumns = `
id, course_id, course_name, period_id, coordinator_id, status,
submitted_at, decided_at, rejection_justification,
coordinator_notes, director_notes, allocation_count,
created_at, updated_at`

// ProposalRepository provides persistence for timetable proposals.
type ProposalRepository struct {
	db *sqlx.DB
}

// NewProposalRepository creates a new proposal repository.
func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create inserts a fresh draft proposal.
func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	if proposal.ID == "" {
		proposal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	proposal.CreatedAt = now
	proposal.UpdatedAt = now
	proposal.Status = models.ProposalStatusDraft

	const query = `INSERT INTO proposals (id, course_id, course_name, period_id, coordinator_id, status, allocation_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		proposal.ID, proposal.CourseID, proposal.CourseName, proposal.PeriodID,
		proposal.CoordinatorID, proposal.Status, proposal.CreatedAt, proposal.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

// FindByID returns a single proposal.
func (r *ProposalRepository) FindByID(ctx context.Context, id string) (*models.Proposal, error) {
	query := "SELECT " + proposalColumns + " FROM proposals WHERE id = $1"
	var proposal models.Proposal
	if err := r.db.GetContext(ctx, &proposal, query, id); err != nil {
		return nil, err
	}
	return &proposal, nil
}

// List returns proposals matching the filter, newest first.
func (r *ProposalRepository) List(ctx context.Context, filter models.ProposalFilter) ([]models.Proposal, error) {
	base := "FROM proposals WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.PeriodID != "" {
		conditions = append(conditions, fmt.Sprintf("period_id = $%d", len(args)+1))
		args = append(args, filter.PeriodID)
	}
	if filter.CoordinatorID != "" {
		conditions = append(conditions, fmt.Sprintf("coordinator_id = $%d", len(args)+1))
		args = append(args, filter.CoordinatorID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := "SELECT " + proposalColumns + " " + base + " ORDER BY created_at DESC"

	var items []models.Proposal
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return items, nil
}

// TransitionParams carries the mutable columns written by a status change.
type TransitionParams struct {
	Status                 models.ProposalStatus
	SubmittedAt            *time.Time
	DecidedAt              *time.Time
	RejectionJustification *string
	CoordinatorNotes       *string
	DirectorNotes          *string
}

// UpdateStatus applies a lifecycle transition guarded by the expected current
// status, so two racing actors cannot both win the same transition.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id string, expected models.ProposalStatus, params TransitionParams) error {
	const query = `UPDATE proposals SET
	status = $3,
	submitted_at = COALESCE($4, submitted_at),
	decided_at = $5,
	rejection_justification = $6,
	coordinator_notes = COALESCE($7, coordinator_notes),
	director_notes = COALESCE($8, director_notes),
	updated_at = $9
WHERE id = $1 AND status = $2`

	result, err := r.db.ExecContext(ctx, query,
		id, expected, params.Status,
		params.SubmittedAt, params.DecidedAt, params.RejectionJustification,
		params.CoordinatorNotes, params.DirectorNotes, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update proposal status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update proposal status: %w", err)
	}
	if affected == 0 {
		return ErrStaleTransition
	}
	return nil
}

// ErrStaleTransition is returned when the guarded status update matched no
// row: the proposal moved on since the caller last read it.
var ErrStaleTransition = fmt.Errorf("proposal status changed concurrently")
