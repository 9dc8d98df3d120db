package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-tools/tutor-hours-api/internal/models"
)

// HourRepository manages persistence for tutoring hours. Every mutating query
// is scoped by owner so a foreign or missing hour is indistinguishable.
type HourRepository struct {
	db *sqlx.DB
}

// NewHourRepository constructs an HourRepository.
func NewHourRepository(db *sqlx.DB) *HourRepository {
	return &HourRepository{db: db}
}

const hourColumns = `h.id, h.ta_id, h.day_of_week, to_char(h.start_time, 'HH24:MI') AS start_time, to_char(h.end_time, 'HH24:MI') AS end_time, h.is_recurring, h.until_date, h.created_at, h.updated_at`

// ListActive returns every hour still active on the given date, enriched with
// TA display fields and course codes, in day-of-week then start-time order.
func (r *HourRepository) ListActive(ctx context.Context, today time.Time) ([]models.AvailabilityHour, error) {
	query := fmt.Sprintf(`SELECT %s, u.full_name AS ta_name, t.major AS ta_major,
		COALESCE(array_remove(array_agg(c.code ORDER BY c.code), NULL), '{}') AS course_codes
		FROM tutoring_hours h
		JOIN tas t ON t.id = h.ta_id
		JOIN users u ON u.id = t.user_id
		LEFT JOIN ta_courses tc ON tc.ta_id = t.id
		LEFT JOIN courses c ON c.id = tc.course_id
		WHERE h.until_date IS NULL OR h.until_date >= $1
		GROUP BY h.id, h.ta_id, h.day_of_week, h.start_time, h.end_time, h.is_recurring, h.until_date, h.created_at, h.updated_at, u.full_name, t.major
		ORDER BY h.day_of_week, h.start_time`, hourColumns)
	var hours []models.AvailabilityHour
	if err := r.db.SelectContext(ctx, &hours, query, today); err != nil {
		return nil, fmt.Errorf("list active hours: %w", err)
	}
	return hours, nil
}

// ListActiveByTA returns a TA's hours still active on the given date.
func (r *HourRepository) ListActiveByTA(ctx context.Context, taID string, today time.Time) ([]models.TutoringHour, error) {
	query := fmt.Sprintf(`SELECT %s FROM tutoring_hours h
		WHERE h.ta_id = $1 AND (h.until_date IS NULL OR h.until_date >= $2)
		ORDER BY h.day_of_week, h.start_time`, hourColumns)
	var hours []models.TutoringHour
	if err := r.db.SelectContext(ctx, &hours, query, taID, today); err != nil {
		return nil, fmt.Errorf("list ta hours: %w", err)
	}
	return hours, nil
}

// FindOwned fetches an hour only when it belongs to the TA. A foreign hour
// yields sql.ErrNoRows exactly like a missing one.
func (r *HourRepository) FindOwned(ctx context.Context, id, taID string) (*models.TutoringHour, error) {
	query := fmt.Sprintf(`SELECT %s FROM tutoring_hours h WHERE h.id = $1 AND h.ta_id = $2`, hourColumns)
	var hour models.TutoringHour
	if err := r.db.GetContext(ctx, &hour, query, id, taID); err != nil {
		return nil, err
	}
	return &hour, nil
}

// Create inserts a new tutoring hour.
func (r *HourRepository) Create(ctx context.Context, hour *models.TutoringHour) error {
	if hour.ID == "" {
		hour.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	hour.CreatedAt = now
	hour.UpdatedAt = now

	const query = `INSERT INTO tutoring_hours (id, ta_id, day_of_week, start_time, end_time, is_recurring, until_date, created_at, updated_at)
		VALUES (:id, :ta_id, :day_of_week, :start_time, :end_time, :is_recurring, :until_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hour); err != nil {
		return fmt.Errorf("create tutoring hour: %w", err)
	}
	return nil
}

// Update overwrites the slot fields of an owned hour. Identifier and owner
// are immutable.
func (r *HourRepository) Update(ctx context.Context, hour *models.TutoringHour) error {
	hour.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tutoring_hours SET day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, is_recurring = :is_recurring, until_date = :until_date, updated_at = :updated_at
		WHERE id = :id AND ta_id = :ta_id`
	res, err := r.db.NamedExecContext(ctx, query, hour)
	if err != nil {
		return fmt.Errorf("update tutoring hour: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteOwned permanently removes an owned hour.
func (r *HourRepository) DeleteOwned(ctx context.Context, id, taID string) error {
	const query = `DELETE FROM tutoring_hours WHERE id = $1 AND ta_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, taID)
	if err != nil {
		return fmt.Errorf("delete tutoring hour: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
