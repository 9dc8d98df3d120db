package dto

import "github.com/campus-tools/tutor-hours-api/internal/models"

// DashboardView is what an authenticated TA sees: their own profile and the
// hours still active today.
type DashboardView struct {
	TA          models.TA             `json:"ta"`
	ActiveHours []models.TutoringHour `json:"active_hours"`
}
