package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-tools/tutor-hours-api/internal/models"
)

func TestFindByUserIDJoinsAccountFields(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTARepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "major", "bio", "created_at", "updated_at", "full_name", "email"}).
		AddRow("ta-1", "user-1", "Computer Science", nil, now, now, "Jane Doe", "jane@example.edu")
	mock.ExpectQuery(`FROM tas t JOIN users u ON u.id = t.user_id WHERE t.user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(rows)

	ta, err := repo.FindByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", ta.FullName)
	assert.Equal(t, "jane@example.edu", ta.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTARepository(db)

	mock.ExpectQuery(`WHERE t.id = \$1`).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "gone")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoursesForTA(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTARepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "code", "name", "created_at", "updated_at"}).
		AddRow("c1", "CSCI 150", nil, now, now)
	mock.ExpectQuery(`JOIN ta_courses tc ON tc.course_id = c.id`).
		WithArgs("ta-1").
		WillReturnRows(rows)

	courses, err := repo.CoursesForTA(context.Background(), "ta-1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CSCI 150", courses[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileReplacesCourseSet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTARepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tas SET major").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM ta_courses").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO ta_courses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ta := &models.TA{ID: "ta-1", UserID: "user-1", Major: "Applied Mathematics"}
	require.NoError(t, repo.UpdateProfile(context.Background(), ta, []string{"c1"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileMissingProfileRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTARepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tas SET major").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ta := &models.TA{ID: "ta-gone", Major: "Computer Science"}
	err := repo.UpdateProfile(context.Background(), ta, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
