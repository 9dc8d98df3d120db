package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campus-tools/tutor-hours-api/internal/dto"
	"github.com/campus-tools/tutor-hours-api/internal/models"
	appErrors "github.com/campus-tools/tutor-hours-api/pkg/errors"
	"github.com/campus-tools/tutor-hours-api/pkg/export"
)

const homeCacheKeyPrefix = "availability:home:"

// AvailabilityCachePattern matches every cached availability payload. Hour
// and profile mutations invalidate with it.
const AvailabilityCachePattern = "availability:*"

type availabilityHourRepository interface {
	ListActive(ctx context.Context, today time.Time) ([]models.AvailabilityHour, error)
	ListActiveByTA(ctx context.Context, taID string, today time.Time) ([]models.TutoringHour, error)
}

type availabilityTARepository interface {
	FindByID(ctx context.Context, id string) (*models.TA, error)
	CoursesForTA(ctx context.Context, taID string) ([]models.Course, error)
}

type availabilityCourseCatalog interface {
	List(ctx context.Context) ([]models.Course, error)
}

// AvailabilityService computes the public views over active tutoring hours.
// An hour is active while its until_date is unset or not yet past; the
// is_recurring flag never affects inclusion.
type AvailabilityService struct {
	hours   availabilityHourRepository
	tas     availabilityTARepository
	courses availabilityCourseCatalog
	cache   *CacheService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
	now     func() time.Time
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(hours availabilityHourRepository, tas availabilityTARepository, courses availabilityCourseCatalog, cache *CacheService, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		hours:   hours,
		tas:     tas,
		courses: courses,
		cache:   cache,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		now:     time.Now,
	}
}

// HomeListing returns all currently-active hours plus the day and course
// groupings. The payload is cached per calendar day when caching is enabled.
func (s *AvailabilityService) HomeListing(ctx context.Context) (*dto.HomeAvailability, error) {
	today := dateOnly(s.now().UTC())
	cacheKey := homeCacheKeyPrefix + today.Format("2006-01-02")

	if s.cache.Enabled() {
		var cached dto.HomeAvailability
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			if listingFresh(&cached, today) {
				return &cached, nil
			}
			s.logger.Warn("cached home listing went stale, rebuilding", zap.String("key", cacheKey))
		}
	}

	hours, err := s.hours.ListActive(ctx, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active hours")
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	listing := &dto.HomeAvailability{
		Date:          today.Format("2006-01-02"),
		AllHours:      hours,
		HoursByDay:    groupByDay(hours),
		HoursByCourse: groupByCourse(hours, courses),
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, listing, 0); err != nil {
			s.logger.Warn("failed to cache home listing", zap.Error(err))
		}
	}

	return listing, nil
}

// TADetail returns a TA's public profile together with its active hours.
func (s *AvailabilityService) TADetail(ctx context.Context, taID string) (*dto.TADetail, error) {
	ta, err := s.tas.FindByID(ctx, taID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ta not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ta")
	}

	courses, err := s.tas.CoursesForTA(ctx, ta.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ta courses")
	}
	ta.Courses = courses

	today := dateOnly(s.now().UTC())
	hours, err := s.hours.ListActiveByTA(ctx, ta.ID, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ta hours")
	}

	return &dto.TADetail{TA: *ta, ActiveHours: hours}, nil
}

// Export renders the active schedule as a downloadable table. Supported
// formats are "csv" and "pdf".
func (s *AvailabilityService) Export(ctx context.Context, format string) ([]byte, string, string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "csv" && format != "pdf" {
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	today := dateOnly(s.now().UTC())
	hours, err := s.hours.ListActive(ctx, today)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active hours")
	}

	table := export.Table{
		Headers: []string{"Day", "Start", "End", "TA", "Major", "Courses", "Until"},
		Rows:    make([][]string, 0, len(hours)),
	}
	for _, hour := range hours {
		until := ""
		if hour.UntilDate != nil {
			until = hour.UntilDate.Format("2006-01-02")
		}
		table.Rows = append(table.Rows, []string{
			hour.DayName(),
			hour.StartTime,
			hour.EndTime,
			hour.TAName,
			hour.TAMajor,
			strings.Join(hour.CourseCodes, ", "),
			until,
		})
	}

	filename := fmt.Sprintf("tutoring-hours-%s.%s", today.Format("2006-01-02"), format)
	if format == "csv" {
		payload, err := s.csv.Render(table)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", filename, nil
	}

	payload, err := s.pdf.Render(table, "Tutoring Hours")
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, "application/pdf", filename, nil
}

// listingFresh reports whether a cached listing can still be served. Hour
// mutations invalidate the cache on a best-effort basis, so a payload that
// was built for another day or that carries an hour past its until date is
// rebuilt instead of served.
func listingFresh(listing *dto.HomeAvailability, today time.Time) bool {
	if listing.Date != today.Format("2006-01-02") {
		return false
	}
	for _, hour := range listing.AllHours {
		if !hour.ActiveOn(today) {
			return false
		}
	}
	return true
}

// groupByDay buckets hours into the seven weekdays, Monday first. Every
// bucket is present even when empty; within a bucket the repository ordering
// (start time) is preserved.
func groupByDay(hours []models.AvailabilityHour) []dto.DayGroup {
	groups := make([]dto.DayGroup, len(models.DayNames))
	for day := range groups {
		groups[day] = dto.DayGroup{Day: day, Name: models.DayNames[day], Hours: []models.AvailabilityHour{}}
	}
	for _, hour := range hours {
		if hour.DayOfWeek < 0 || hour.DayOfWeek >= len(groups) {
			continue
		}
		groups[hour.DayOfWeek].Hours = append(groups[hour.DayOfWeek].Hours, hour)
	}
	return groups
}

// groupByCourse buckets hours under every catalog course one of their TAs
// tutors. Courses with no matching active hour are omitted.
func groupByCourse(hours []models.AvailabilityHour, courses []models.Course) []dto.CourseGroup {
	groups := make([]dto.CourseGroup, 0, len(courses))
	for _, course := range courses {
		var matched []models.AvailabilityHour
		for _, hour := range hours {
			if hour.TutorsCourse(course.Code) {
				matched = append(matched, hour)
			}
		}
		if len(matched) == 0 {
			continue
		}
		groups = append(groups, dto.CourseGroup{Course: course, Hours: matched})
	}
	return groups
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
