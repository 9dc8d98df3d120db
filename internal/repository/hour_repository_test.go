package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-tools/tutor-hours-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestListActiveFiltersByUntilDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHourRepository(db)

	today := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "ta_id", "day_of_week", "start_time", "end_time", "is_recurring", "until_date", "created_at", "updated_at", "ta_name", "ta_major", "course_codes"}).
		AddRow("h1", "ta-1", 0, "09:00", "10:00", true, nil, now, now, "Jane Doe", "Computer Science", "{CSCI 150}")
	mock.ExpectQuery(`until_date IS NULL OR h.until_date >= \$1`).
		WithArgs(today).
		WillReturnRows(rows)

	hours, err := repo.ListActive(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, hours, 1)
	assert.Equal(t, "Jane Doe", hours[0].TAName)
	assert.Equal(t, "09:00", hours[0].StartTime)
	assert.Equal(t, []string{"CSCI 150"}, []string(hours[0].CourseCodes))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveByTA(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHourRepository(db)

	today := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "ta_id", "day_of_week", "start_time", "end_time", "is_recurring", "until_date", "created_at", "updated_at"}).
		AddRow("h1", "ta-1", 3, "11:00", "12:00", true, nil, now, now)
	mock.ExpectQuery(`WHERE h.ta_id = \$1 AND \(h.until_date IS NULL OR h.until_date >= \$2\)`).
		WithArgs("ta-1", today).
		WillReturnRows(rows)

	hours, err := repo.ListActiveByTA(context.Background(), "ta-1", today)
	require.NoError(t, err)
	require.Len(t, hours, 1)
	assert.Equal(t, models.Thursday, hours[0].DayOfWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOwnedScopesByOwner(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHourRepository(db)

	mock.ExpectQuery(`WHERE h.id = \$1 AND h.ta_id = \$2`).
		WithArgs("h1", "ta-other").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindOwned(context.Background(), "h1", "ta-other")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateHour(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHourRepository(db)

	mock.ExpectExec("INSERT INTO tutoring_hours").WillReturnResult(sqlmock.NewResult(1, 1))

	hour := &models.TutoringHour{TAID: "ta-1", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00", IsRecurring: true}
	require.NoError(t, repo.Create(context.Background(), hour))
	assert.NotEmpty(t, hour.ID)
	assert.False(t, hour.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateHourNoRowsMeansNotOwned(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHourRepository(db)

	mock.ExpectExec("UPDATE tutoring_hours").WillReturnResult(sqlmock.NewResult(0, 0))

	hour := &models.TutoringHour{ID: "h1", TAID: "ta-other", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"}
	err := repo.Update(context.Background(), hour)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwned(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHourRepository(db)

	mock.ExpectExec("DELETE FROM tutoring_hours").
		WithArgs("h1", "ta-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteOwned(context.Background(), "h1", "ta-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwnedForeignHour(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHourRepository(db)

	mock.ExpectExec("DELETE FROM tutoring_hours").
		WithArgs("h1", "ta-other").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteOwned(context.Background(), "h1", "ta-other")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
