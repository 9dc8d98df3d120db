package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-tools/tutor-hours-api/internal/dto"
	"github.com/campus-tools/tutor-hours-api/internal/models"
	appErrors "github.com/campus-tools/tutor-hours-api/pkg/errors"
)

type taRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.TA, error)
	CoursesForTA(ctx context.Context, taID string) ([]models.Course, error)
	UpdateProfile(ctx context.Context, ta *models.TA, courseIDs []string) error
}

type taHourLister interface {
	ListActiveByTA(ctx context.Context, taID string, today time.Time) ([]models.TutoringHour, error)
}

// ProfileRequest carries the mutable TA profile fields.
type ProfileRequest struct {
	Major     string   `json:"major" validate:"required"`
	Bio       *string  `json:"bio" validate:"omitempty,max=2000"`
	CourseIDs []string `json:"course_ids" validate:"omitempty,dive,uuid4"`
}

// TAService serves the authenticated TA's own dashboard and profile.
type TAService struct {
	repo      taRepository
	hours     taHourLister
	courses   signupCourseCatalog
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTAService constructs a TAService.
func NewTAService(repo taRepository, hours taHourLister, courses signupCourseCatalog, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TAService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TAService{repo: repo, hours: hours, courses: courses, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// Dashboard returns the TA's own profile and currently-active hours. An
// authenticated account without a TA profile gets a typed, recoverable error.
func (s *TAService) Dashboard(ctx context.Context, userID string) (*dto.DashboardView, error) {
	ta, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	courses, err := s.repo.CoursesForTA(ctx, ta.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ta courses")
	}
	ta.Courses = courses

	today := dateOnly(s.now().UTC())
	hours, err := s.hours.ListActiveByTA(ctx, ta.ID, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ta hours")
	}

	return &dto.DashboardView{TA: *ta, ActiveHours: hours}, nil
}

// UpdateProfile rewrites the TA's major, bio and course set.
func (s *TAService) UpdateProfile(ctx context.Context, userID string, req ProfileRequest) (*models.TA, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	ta, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	courseIDs := dedupe(req.CourseIDs)
	if len(courseIDs) > 0 {
		count, err := s.courses.CountByIDs(ctx, courseIDs)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify courses")
		}
		if count != len(courseIDs) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "one or more selected courses do not exist")
		}
	}

	ta.Major = strings.TrimSpace(req.Major)
	ta.Bio = normalizeOptional(req.Bio)

	if err := s.repo.UpdateProfile(ctx, ta, courseIDs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrTAProfileRequired, "account has no TA profile")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	courses, err := s.repo.CoursesForTA(ctx, ta.ID)
	if err == nil {
		ta.Courses = courses
	}

	if err := s.cache.Invalidate(ctx, AvailabilityCachePattern); err != nil {
		s.logger.Warn("failed to invalidate availability cache", zap.Error(err))
	}

	return ta, nil
}

func (s *TAService) resolve(ctx context.Context, userID string) (*models.TA, error) {
	ta, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrTAProfileRequired, "account has no TA profile")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ta profile")
	}
	return ta, nil
}
