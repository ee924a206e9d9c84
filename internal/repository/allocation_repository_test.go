package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func allocationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "section_id", "section_code", "discipline_name", "professor_id", "professor_name",
		"period_id", "proposal_id", "weekday", "start_minute", "end_minute", "created_at",
	})
}

func TestAllocationRepositoryListByProposal(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAllocationRepository(db)
	rows := allocationRows().
		AddRow("a1", "sec-1", "CS101-A", "Algorithms", "prof-1", "Ada", "period-1", "prop-1", "MONDAY", 450, 500, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM allocations a JOIN sections s ON s.id = a.section_id")).
		WithArgs("prop-1").
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), models.AllocationFilter{ProposalID: "prop-1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "CS101-A", items[0].SectionCode)
	require.Equal(t, models.WeekdayMonday, items[0].Weekday)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationRepositoryCreateBumpsProposalCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAllocationRepository(db)
	proposalID := "prop-1"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO allocations")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE proposals SET allocation_count = allocation_count + 1")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	alloc := &models.Allocation{
		SectionID:   "sec-1",
		PeriodID:    "period-1",
		ProposalID:  &proposalID,
		Weekday:     models.WeekdayMonday,
		StartMinute: 450,
		EndMinute:   500,
	}
	require.NoError(t, repo.Create(context.Background(), alloc))
	require.NotEmpty(t, alloc.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationRepositoryCreateWithoutProposalSkipsBump(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAllocationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO allocations")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	alloc := &models.Allocation{
		SectionID:   "sec-1",
		PeriodID:    "period-1",
		Weekday:     models.WeekdayTuesday,
		StartMinute: 450,
		EndMinute:   500,
	}
	require.NoError(t, repo.Create(context.Background(), alloc))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationRepositoryDeleteDropsProposalCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAllocationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT proposal_id FROM allocations WHERE id = $1 FOR UPDATE")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"proposal_id"}).AddRow("prop-1"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM allocations WHERE id = $1")).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("GREATEST(allocation_count - 1, 0)")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "a1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
