package models

import (
	"time"

	"github.com/lib/pq"
)

// Days of the week as stored in tutoring_hours.day_of_week. Monday-first,
// matching the public listing order.
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DayNames maps day_of_week values to display names.
var DayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// TutoringHour is one weekly availability slot owned by a TA. Start and end
// times travel as "HH:MM" strings. A nil UntilDate means the slot never
// expires, regardless of IsRecurring.
type TutoringHour struct {
	ID          string     `db:"id" json:"id"`
	TAID        string     `db:"ta_id" json:"ta_id"`
	DayOfWeek   int        `db:"day_of_week" json:"day_of_week"`
	StartTime   string     `db:"start_time" json:"start_time"`
	EndTime     string     `db:"end_time" json:"end_time"`
	IsRecurring bool       `db:"is_recurring" json:"is_recurring"`
	UntilDate   *time.Time `db:"until_date" json:"until_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// DayName returns the display name for the slot's weekday.
func (h TutoringHour) DayName() string {
	if h.DayOfWeek < 0 || h.DayOfWeek > 6 {
		return ""
	}
	return DayNames[h.DayOfWeek]
}

// ActiveOn reports whether the slot is still active on the given date. The
// date comparison is inclusive: a slot is active through its until_date.
func (h TutoringHour) ActiveOn(date time.Time) bool {
	if h.UntilDate == nil {
		return true
	}
	return !h.UntilDate.Before(date)
}

// AvailabilityHour is a tutoring hour enriched with the owning TA's display
// fields and the codes of the courses that TA tutors. It backs the public
// listing and the schedule export.
type AvailabilityHour struct {
	TutoringHour
	TAName      string         `db:"ta_name" json:"ta_name"`
	TAMajor     string         `db:"ta_major" json:"ta_major"`
	CourseCodes pq.StringArray `db:"course_codes" json:"course_codes" swaggertype:"array,string"`
}

// TutorsCourse reports whether the hour's TA is associated with the course code.
func (h AvailabilityHour) TutorsCourse(code string) bool {
	for _, c := range h.CourseCodes {
		if c == code {
			return true
		}
	}
	return false
}
