package dto

import "github.com/campus-tools/tutor-hours-api/internal/models"

// DayGroup is one weekday bucket of the home listing. All seven buckets are
// always emitted, empty or not, Monday first.
type DayGroup struct {
	Day   int                       `json:"day"`
	Name  string                    `json:"name"`
	Hours []models.AvailabilityHour `json:"hours"`
}

// CourseGroup holds the active hours offered for one course. Courses without
// active hours never appear.
type CourseGroup struct {
	Course models.Course             `json:"course"`
	Hours  []models.AvailabilityHour `json:"hours"`
}

// HomeAvailability is the public home listing payload.
type HomeAvailability struct {
	Date          string                    `json:"date"`
	AllHours      []models.AvailabilityHour `json:"all_hours"`
	HoursByDay    []DayGroup                `json:"hours_by_day"`
	HoursByCourse []CourseGroup             `json:"hours_by_course"`
}

// TADetail is the public detail payload for one TA.
type TADetail struct {
	TA          models.TA             `json:"ta"`
	ActiveHours []models.TutoringHour `json:"active_hours"`
}
