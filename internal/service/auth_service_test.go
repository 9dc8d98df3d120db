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
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-tools/tutor-hours-api/internal/models"
	appErrors "github.com/campus-tools/tutor-hours-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail      *models.User
	userByID         *models.User
	emailTaken       bool
	createdUser      *models.User
	createdTA        *models.TA
	createdCourses   []string
	createProfileErr error
	refreshTokens    map[string]*models.RefreshToken
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.userByID == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByID, nil
}

func (m *mockAuthRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.emailTaken, nil
}

func (m *mockAuthRepo) CreateWithProfile(ctx context.Context, user *models.User, ta *models.TA, courseIDs []string) error {
	if m.createProfileErr != nil {
		return m.createProfileErr
	}
	user.ID = "user-1"
	ta.ID = "ta-1"
	ta.UserID = user.ID
	m.createdUser = user
	m.createdTA = ta
	m.createdCourses = courseIDs
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	for _, token := range m.refreshTokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

type mockCourseCatalog struct {
	count int
	err   error
}

func (m *mockCourseCatalog) CountByIDs(ctx context.Context, ids []string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.count, nil
}

func newAuthService(repo *mockAuthRepo, catalog *mockCourseCatalog) *AuthService {
	return NewAuthService(repo, catalog, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "tutor-hours-api",
	})
}

func validSignup() models.SignupRequest {
	bio := "Happy to help with intro courses."
	return models.SignupRequest{
		Email:           "jane@example.edu",
		Password:        "supersecret",
		PasswordConfirm: "supersecret",
		FullName:        "Jane Doe",
		Major:           "Computer Science",
		Bio:             &bio,
	}
}

func TestSignupCreatesAccountAndProfile(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := newAuthService(repo, &mockCourseCatalog{})

	res, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	require.NotNil(t, repo.createdUser)
	require.NotNil(t, repo.createdTA)
	assert.Equal(t, "jane@example.edu", repo.createdUser.Email)
	assert.Equal(t, "Computer Science", repo.createdTA.Major)
	assert.Equal(t, repo.createdUser.ID, repo.createdTA.UserID)
	assert.Equal(t, models.RoleTA, repo.createdUser.Role)
	assert.NotEqual(t, "supersecret", repo.createdUser.PasswordHash)

	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "Jane Doe", res.User.FullName)
}

func TestSignupPasswordMismatchPersistsNothing(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := newAuthService(repo, &mockCourseCatalog{})

	req := validSignup()
	req.PasswordConfirm = "different"

	_, err := svc.Signup(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Nil(t, repo.createdUser)
	assert.Nil(t, repo.createdTA)
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := &mockAuthRepo{emailTaken: true}
	svc := newAuthService(repo, &mockCourseCatalog{})

	_, err := svc.Signup(context.Background(), validSignup())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Nil(t, repo.createdUser)
}

func TestSignupUnknownCourseRejected(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := newAuthService(repo, &mockCourseCatalog{count: 1})

	req := validSignup()
	req.CourseIDs = []string{
		"5f6a1c9e-2b3d-4e5f-8a9b-0c1d2e3f4a5b",
		"6a7b2d0e-3c4e-5f60-9bac-1d2e3f4a5b6c",
	}

	_, err := svc.Signup(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Nil(t, repo.createdUser)
}

func TestSignupDeduplicatesCourses(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := newAuthService(repo, &mockCourseCatalog{count: 1})

	req := validSignup()
	req.CourseIDs = []string{
		"5f6a1c9e-2b3d-4e5f-8a9b-0c1d2e3f4a5b",
		"5f6a1c9e-2b3d-4e5f-8a9b-0c1d2e3f4a5b",
	}

	_, err := svc.Signup(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, repo.createdCourses, 1)
}

func TestLoginSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "user-1", Email: "jane@example.edu", PasswordHash: string(hash), FullName: "Jane Doe", Role: models.RoleTA, Active: true}}
	svc := newAuthService(repo, &mockCourseCatalog{})

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.edu", Password: "supersecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jane@example.edu", claims.Email)
	assert.Equal(t, models.RoleTA, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "user-1", Email: "jane@example.edu", PasswordHash: string(hash), Active: true}}
	svc := newAuthService(repo, &mockCourseCatalog{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.edu", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := newAuthService(repo, &mockCourseCatalog{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.edu", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenRotates(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-1", Email: "jane@example.edu", PasswordHash: string(hash), FullName: "Jane Doe", Active: true}
	repo := &mockAuthRepo{userByEmail: user, userByID: user}
	svc := newAuthService(repo, &mockCourseCatalog{})

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.edu", Password: "supersecret"})
	require.NoError(t, err)

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, res.RefreshToken)

	// The used token is revoked and cannot be replayed.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenReuseRevokesAllSessions(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-1", Email: "jane@example.edu", PasswordHash: string(hash), FullName: "Jane Doe", Active: true}
	repo := &mockAuthRepo{userByEmail: user, userByID: user}
	svc := newAuthService(repo, &mockCourseCatalog{})

	// Two independent sessions for the same account.
	first, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.edu", Password: "supersecret"})
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.edu", Password: "supersecret"})
	require.NoError(t, err)

	// Rotate the first token, then replay the now-revoked original.
	rotated, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	// The replay kills every session, not just the replayed one.
	assert.True(t, repo.refreshTokens[second.RefreshToken].Revoked)
	assert.True(t, repo.refreshTokens[rotated.RefreshToken].Revoked)
}

func TestLogoutRevokesToken(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-1", Email: "jane@example.edu", PasswordHash: string(hash), Active: true}
	repo := &mockAuthRepo{userByEmail: user, userByID: user}
	svc := newAuthService(repo, &mockCourseCatalog{})

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.edu", Password: "supersecret"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken, "user-1"))
	assert.True(t, repo.refreshTokens[login.RefreshToken].Revoked)
}

func TestLogoutForeignTokenForbidden(t *testing.T) {
	repo := &mockAuthRepo{refreshTokens: map[string]*models.RefreshToken{
		"tok": {ID: "rt-1", UserID: "someone-else", Token: "tok", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := newAuthService(repo, &mockCourseCatalog{})

	err := svc.Logout(context.Background(), "tok", "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(&mockAuthRepo{}, &mockCourseCatalog{})

	_, err := svc.ValidateToken("not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
