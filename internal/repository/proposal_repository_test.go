package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/timetable-api/internal/models"
)

func TestProposalRepositoryCreateStartsAsDraft(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProposalRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO proposals")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	proposal := &models.Proposal{
		CourseID:      "course-1",
		CourseName:    "Computer Science",
		PeriodID:      "period-1",
		CoordinatorID: "coord-1",
		// Status from the caller is ignored; inserts always start at DRAFT.
		Status: models.ProposalStatusApproved,
	}
	require.NoError(t, repo.Create(context.Background(), proposal))
	require.Equal(t, models.ProposalStatusDraft, proposal.Status)
	require.NotEmpty(t, proposal.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProposalRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "course_id", "course_name", "period_id", "coordinator_id", "status",
		"submitted_at", "decided_at", "rejection_justification",
		"coordinator_notes", "director_notes", "allocation_count",
		"created_at", "updated_at",
	}).AddRow("prop-1", "course-1", "Computer Science", "period-1", "coord-1", "DRAFT",
		nil, nil, nil, nil, nil, 4, time.Now(), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM proposals WHERE 1=1")).
		WithArgs("period-1", "DRAFT").
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), models.ProposalFilter{
		PeriodID: "period-1",
		Status:   models.ProposalStatusDraft,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 4, items[0].AllocationCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalRepositoryUpdateStatusGuard(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProposalRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE proposals SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "prop-1", models.ProposalStatusDraft, TransitionParams{
		Status:      models.ProposalStatusPendingApproval,
		SubmittedAt: &now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalRepositoryUpdateStatusStale(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProposalRepository(db)

	// Zero rows affected means the row no longer carries the expected status.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE proposals SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "prop-1", models.ProposalStatusDraft, TransitionParams{
		Status: models.ProposalStatusPendingApproval,
	})
	require.ErrorIs(t, err, ErrStaleTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}
