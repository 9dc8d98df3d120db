package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-tools/tutor-hours-api/internal/models"
	appErrors "github.com/campus-tools/tutor-hours-api/pkg/errors"
)

type hourRepository interface {
	FindOwned(ctx context.Context, id, taID string) (*models.TutoringHour, error)
	Create(ctx context.Context, hour *models.TutoringHour) error
	Update(ctx context.Context, hour *models.TutoringHour) error
	DeleteOwned(ctx context.Context, id, taID string) error
}

type hourTAResolver interface {
	FindByUserID(ctx context.Context, userID string) (*models.TA, error)
}

// HourRequest carries the slot fields for adding or editing a tutoring hour.
// The owning TA always comes from the session, never from the payload.
type HourRequest struct {
	DayOfWeek   *int    `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime   string  `json:"start_time" validate:"required"`
	EndTime     string  `json:"end_time" validate:"required"`
	IsRecurring *bool   `json:"is_recurring"`
	UntilDate   *string `json:"until_date" validate:"omitempty,datetime=2006-01-02"`
}

// HourService manages a TA's own tutoring hours.
type HourService struct {
	repo      hourRepository
	tas       hourTAResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHourService constructs an HourService.
func NewHourService(repo hourRepository, tas hourTAResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *HourService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HourService{repo: repo, tas: tas, cache: cache, validator: validate, logger: logger}
}

// Add creates a new tutoring hour owned by the requesting account's TA.
func (s *HourService) Add(ctx context.Context, userID string, req HourRequest) (*models.TutoringHour, error) {
	ta, err := s.resolveTA(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields, err := s.parseRequest(req)
	if err != nil {
		return nil, err
	}

	hour := &models.TutoringHour{
		TAID:        ta.ID,
		DayOfWeek:   fields.day,
		StartTime:   fields.start,
		EndTime:     fields.end,
		IsRecurring: fields.recurring,
		UntilDate:   fields.until,
	}

	if err := s.repo.Create(ctx, hour); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create tutoring hour")
	}

	s.invalidateListing(ctx)
	return hour, nil
}

// Get returns one of the TA's own hours, backing the edit form and the
// delete-confirmation view. Foreign and missing hours are the same NotFound.
func (s *HourService) Get(ctx context.Context, userID, hourID string) (*models.TutoringHour, error) {
	ta, err := s.resolveTA(ctx, userID)
	if err != nil {
		return nil, err
	}

	hour, err := s.repo.FindOwned(ctx, hourID, ta.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutoring hour not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutoring hour")
	}
	return hour, nil
}

// Update overwrites an owned hour's slot fields in place.
func (s *HourService) Update(ctx context.Context, userID, hourID string, req HourRequest) (*models.TutoringHour, error) {
	ta, err := s.resolveTA(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields, err := s.parseRequest(req)
	if err != nil {
		return nil, err
	}

	hour, err := s.repo.FindOwned(ctx, hourID, ta.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutoring hour not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutoring hour")
	}

	hour.DayOfWeek = fields.day
	hour.StartTime = fields.start
	hour.EndTime = fields.end
	hour.IsRecurring = fields.recurring
	hour.UntilDate = fields.until

	if err := s.repo.Update(ctx, hour); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutoring hour not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update tutoring hour")
	}

	s.invalidateListing(ctx)
	return hour, nil
}

// Delete permanently removes an owned hour. The read-only confirmation step
// is Get; only this call mutates.
func (s *HourService) Delete(ctx context.Context, userID, hourID string) error {
	ta, err := s.resolveTA(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteOwned(ctx, hourID, ta.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "tutoring hour not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete tutoring hour")
	}

	s.invalidateListing(ctx)
	return nil
}

func (s *HourService) resolveTA(ctx context.Context, userID string) (*models.TA, error) {
	ta, err := s.tas.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrTAProfileRequired, "account has no TA profile")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ta profile")
	}
	return ta, nil
}

type hourFields struct {
	day       int
	start     string
	end       string
	recurring bool
	until     *time.Time
}

func (s *HourService) parseRequest(req HourRequest) (*hourFields, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tutoring hour payload")
	}

	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be HH:MM")
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be HH:MM")
	}
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}

	fields := &hourFields{
		day:       *req.DayOfWeek,
		start:     start.Format("15:04"),
		end:       end.Format("15:04"),
		recurring: true,
	}
	if req.IsRecurring != nil {
		fields.recurring = *req.IsRecurring
	}
	if req.UntilDate != nil && *req.UntilDate != "" {
		until, err := time.ParseInLocation("2006-01-02", *req.UntilDate, time.UTC)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "until_date must be YYYY-MM-DD")
		}
		fields.until = &until
	}
	return fields, nil
}

func (s *HourService) invalidateListing(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, AvailabilityCachePattern); err != nil {
		s.logger.Warn("failed to invalidate availability cache", zap.Error(err))
	}
}
