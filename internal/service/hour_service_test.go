package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-tools/tutor-hours-api/internal/models"
	appErrors "github.com/campus-tools/tutor-hours-api/pkg/errors"
)

type mockHourRepo struct {
	hours   map[string]*models.TutoringHour
	created []*models.TutoringHour
	deleted []string
}

func (m *mockHourRepo) FindOwned(ctx context.Context, id, taID string) (*models.TutoringHour, error) {
	hour, ok := m.hours[id]
	if !ok || hour.TAID != taID {
		return nil, sql.ErrNoRows
	}
	copied := *hour
	return &copied, nil
}

func (m *mockHourRepo) Create(ctx context.Context, hour *models.TutoringHour) error {
	hour.ID = "hour-new"
	if m.hours == nil {
		m.hours = make(map[string]*models.TutoringHour)
	}
	m.hours[hour.ID] = hour
	m.created = append(m.created, hour)
	return nil
}

func (m *mockHourRepo) Update(ctx context.Context, hour *models.TutoringHour) error {
	existing, ok := m.hours[hour.ID]
	if !ok || existing.TAID != hour.TAID {
		return sql.ErrNoRows
	}
	m.hours[hour.ID] = hour
	return nil
}

func (m *mockHourRepo) DeleteOwned(ctx context.Context, id, taID string) error {
	hour, ok := m.hours[id]
	if !ok || hour.TAID != taID {
		return sql.ErrNoRows
	}
	delete(m.hours, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockTAResolver struct {
	tas map[string]*models.TA
}

func (m *mockTAResolver) FindByUserID(ctx context.Context, userID string) (*models.TA, error) {
	ta, ok := m.tas[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return ta, nil
}

func newHourService(repo *mockHourRepo, resolver *mockTAResolver) *HourService {
	return NewHourService(repo, resolver, nil, validator.New(), zap.NewNop())
}

func ownedResolver() *mockTAResolver {
	return &mockTAResolver{tas: map[string]*models.TA{
		"user-1": {ID: "ta-1", UserID: "user-1", Major: "Computer Science"},
	}}
}

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func TestAddHourDefaultsRecurring(t *testing.T) {
	repo := &mockHourRepo{}
	svc := newHourService(repo, ownedResolver())

	hour, err := svc.Add(context.Background(), "user-1", HourRequest{
		DayOfWeek: intPtr(models.Monday),
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "ta-1", hour.TAID)
	assert.True(t, hour.IsRecurring)
	assert.Nil(t, hour.UntilDate)
	require.Len(t, repo.created, 1)
}

func TestAddHourWithUntilDate(t *testing.T) {
	repo := &mockHourRepo{}
	svc := newHourService(repo, ownedResolver())

	hour, err := svc.Add(context.Background(), "user-1", HourRequest{
		DayOfWeek:   intPtr(models.Friday),
		StartTime:   "14:00",
		EndTime:     "16:00",
		IsRecurring: boolPtr(false),
		UntilDate:   strPtr("2026-12-19"),
	})
	require.NoError(t, err)
	assert.False(t, hour.IsRecurring)
	require.NotNil(t, hour.UntilDate)
	assert.Equal(t, time.Date(2026, 12, 19, 0, 0, 0, 0, time.UTC), *hour.UntilDate)
}

func TestAddHourWithoutProfile(t *testing.T) {
	repo := &mockHourRepo{}
	svc := newHourService(repo, &mockTAResolver{})

	_, err := svc.Add(context.Background(), "user-1", HourRequest{
		DayOfWeek: intPtr(models.Monday),
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTAProfileRequired.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestAddHourEndBeforeStart(t *testing.T) {
	repo := &mockHourRepo{}
	svc := newHourService(repo, ownedResolver())

	_, err := svc.Add(context.Background(), "user-1", HourRequest{
		DayOfWeek: intPtr(models.Monday),
		StartTime: "10:00",
		EndTime:   "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestAddHourInvalidDay(t *testing.T) {
	svc := newHourService(&mockHourRepo{}, ownedResolver())

	_, err := svc.Add(context.Background(), "user-1", HourRequest{
		DayOfWeek: intPtr(7),
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGetHourConcealsForeignRecords(t *testing.T) {
	repo := &mockHourRepo{hours: map[string]*models.TutoringHour{
		"hour-1": {ID: "hour-1", TAID: "ta-other", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"},
	}}
	svc := newHourService(repo, ownedResolver())

	_, err := svc.Get(context.Background(), "user-1", "hour-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGetHourDoesNotMutate(t *testing.T) {
	repo := &mockHourRepo{hours: map[string]*models.TutoringHour{
		"hour-1": {ID: "hour-1", TAID: "ta-1", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"},
	}}
	svc := newHourService(repo, ownedResolver())

	hour, err := svc.Get(context.Background(), "user-1", "hour-1")
	require.NoError(t, err)
	assert.Equal(t, "hour-1", hour.ID)
	assert.Empty(t, repo.deleted)
	assert.Contains(t, repo.hours, "hour-1")
}

func TestUpdateHourOverwritesSlot(t *testing.T) {
	repo := &mockHourRepo{hours: map[string]*models.TutoringHour{
		"hour-1": {ID: "hour-1", TAID: "ta-1", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00", IsRecurring: true},
	}}
	svc := newHourService(repo, ownedResolver())

	hour, err := svc.Update(context.Background(), "user-1", "hour-1", HourRequest{
		DayOfWeek: intPtr(models.Wednesday),
		StartTime: "13:00",
		EndTime:   "15:00",
		UntilDate: strPtr("2026-06-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.Wednesday, hour.DayOfWeek)
	assert.Equal(t, "13:00", hour.StartTime)
	require.NotNil(t, hour.UntilDate)
}

func TestUpdateForeignHourNotFound(t *testing.T) {
	repo := &mockHourRepo{hours: map[string]*models.TutoringHour{
		"hour-1": {ID: "hour-1", TAID: "ta-other", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"},
	}}
	svc := newHourService(repo, ownedResolver())

	_, err := svc.Update(context.Background(), "user-1", "hour-1", HourRequest{
		DayOfWeek: intPtr(models.Monday),
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDeleteHourInvalidatesCache(t *testing.T) {
	cacheRepo := &memoryCacheRepo{values: map[string][]byte{
		"availability:home:2026-03-09": []byte(`{}`),
	}}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	repo := &mockHourRepo{hours: map[string]*models.TutoringHour{
		"hour-1": {ID: "hour-1", TAID: "ta-1", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"},
	}}
	svc := NewHourService(repo, ownedResolver(), cache, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "user-1", "hour-1"))
	assert.Equal(t, []string{"hour-1"}, repo.deleted)
	assert.Empty(t, cacheRepo.values)
}

func TestDeleteForeignHourNotFound(t *testing.T) {
	repo := &mockHourRepo{hours: map[string]*models.TutoringHour{
		"hour-1": {ID: "hour-1", TAID: "ta-other", DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"},
	}}
	svc := newHourService(repo, ownedResolver())

	err := svc.Delete(context.Background(), "user-1", "hour-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Contains(t, repo.hours, "hour-1")
}
