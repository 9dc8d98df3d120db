package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campus-tools/tutor-hours-api/internal/models"
)

// TARepository manages persistence for TA profiles and their course links.
type TARepository struct {
	db *sqlx.DB
}

// NewTARepository constructs a TARepository.
func NewTARepository(db *sqlx.DB) *TARepository {
	return &TARepository{db: db}
}

const taColumns = `t.id, t.user_id, t.major, t.bio, t.created_at, t.updated_at, u.full_name, u.email`

// FindByID fetches a TA profile with its account display fields.
func (r *TARepository) FindByID(ctx context.Context, id string) (*models.TA, error) {
	query := fmt.Sprintf(`SELECT %s FROM tas t JOIN users u ON u.id = t.user_id WHERE t.id = $1`, taColumns)
	var ta models.TA
	if err := r.db.GetContext(ctx, &ta, query, id); err != nil {
		return nil, err
	}
	return &ta, nil
}

// FindByUserID fetches the TA profile bound to an account, if any.
func (r *TARepository) FindByUserID(ctx context.Context, userID string) (*models.TA, error) {
	query := fmt.Sprintf(`SELECT %s FROM tas t JOIN users u ON u.id = t.user_id WHERE t.user_id = $1`, taColumns)
	var ta models.TA
	if err := r.db.GetContext(ctx, &ta, query, userID); err != nil {
		return nil, err
	}
	return &ta, nil
}

// CoursesForTA returns the courses a TA tutors, ordered by code.
func (r *TARepository) CoursesForTA(ctx context.Context, taID string) ([]models.Course, error) {
	const query = `SELECT c.id, c.code, c.name, c.created_at, c.updated_at
		FROM courses c
		JOIN ta_courses tc ON tc.course_id = c.id
		WHERE tc.ta_id = $1
		ORDER BY c.code`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, taID); err != nil {
		return nil, fmt.Errorf("list ta courses: %w", err)
	}
	return courses, nil
}

// UpdateProfile rewrites the mutable profile fields and replaces the course
// set in one transaction.
func (r *TARepository) UpdateProfile(ctx context.Context, ta *models.TA, courseIDs []string) error {
	ta.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin profile tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateQuery = `UPDATE tas SET major = :major, bio = :bio, updated_at = :updated_at WHERE id = :id`
	var res sql.Result
	if res, err = tx.NamedExecContext(ctx, updateQuery, ta); err != nil {
		return fmt.Errorf("update ta profile: %w", err)
	}
	if affected, raErr := res.RowsAffected(); raErr == nil && affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM ta_courses WHERE ta_id = $1`, ta.ID); err != nil {
		return fmt.Errorf("clear ta courses: %w", err)
	}

	const courseQuery = `INSERT INTO ta_courses (ta_id, course_id) VALUES ($1, $2)`
	for _, courseID := range courseIDs {
		if _, err = tx.ExecContext(ctx, courseQuery, ta.ID, courseID); err != nil {
			return fmt.Errorf("link ta course: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit profile tx: %w", err)
	}
	return nil
}
