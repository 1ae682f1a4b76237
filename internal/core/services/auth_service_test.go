package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"
)

func TestLoginSuccess(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())
	user := seedUser(t, db, "staff@example.com", models.RoleStaff, true)

	result, err := svc.Login(context.Background(), &LoginInput{Email: "staff@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	// Login persists the refresh token slot
	stored, err := repositories.NewUserRepository(db).GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshTokenHash)
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())
	seedUser(t, db, "staff@example.com", models.RoleStaff, true)

	_, err := svc.Login(context.Background(), &LoginInput{Email: "staff@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())

	_, err := svc.Login(context.Background(), &LoginInput{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())
	seedUser(t, db, "gone@example.com", models.RoleStaff, false)

	_, err := svc.Login(context.Background(), &LoginInput{Email: "gone@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestRefreshRotatesAndRevokesOldToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())
	seedUser(t, db, "staff@example.com", models.RoleStaff, true)

	login, err := svc.Login(context.Background(), &LoginInput{Email: "staff@example.com", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEmpty(t, refreshed.RefreshToken)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The superseded token is dead even though its signature is still valid
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The rotated token still works
	_, err = svc.Refresh(context.Background(), refreshed.RefreshToken)
	assert.NoError(t, err)
}

func TestSecondLoginRevokesFirstRefreshToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())
	seedUser(t, db, "staff@example.com", models.RoleStaff, true)

	first, err := svc.Login(context.Background(), &LoginInput{Email: "staff@example.com", Password: "secret123"})
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), &LoginInput{Email: "staff@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Refresh(context.Background(), second.RefreshToken)
	assert.NoError(t, err)
}

func TestLogoutClearsRefreshSlot(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())
	user := seedUser(t, db, "staff@example.com", models.RoleStaff, true)

	login, err := svc.Login(context.Background(), &LoginInput{Email: "staff@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), user.ID))

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestViewerLoginSuccess(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())
	student := seedStudent(t, db, "MDS250001", models.StudentActive)

	result, err := svc.ViewerLogin(context.Background(), "MDS250001")
	require.NoError(t, err)
	assert.Equal(t, student.ID, result.Student.ID)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
}

func TestViewerLoginSuspendedStudent(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())
	seedStudent(t, db, "MDS250002", models.StudentSuspended)

	_, err := svc.ViewerLogin(context.Background(), "MDS250002")
	assert.ErrorIs(t, err, ErrStudentInactive)
}

func TestViewerLoginUnknownCode(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())

	_, err := svc.ViewerLogin(context.Background(), "MDS999999")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestViewerRefreshIsStateless(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())
	seedStudent(t, db, "MDS250003", models.StudentActive)

	login, err := svc.ViewerLogin(context.Background(), "MDS250003")
	require.NoError(t, err)

	// Viewer refresh re-issues an access token without rotation, so the
	// same refresh token stays usable until it expires
	first, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, first.AccessToken)
	assert.Empty(t, first.RefreshToken)

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())
	seedUser(t, db, "taken@example.com", models.RoleStaff, true)

	_, err := svc.Register(context.Background(), &RegisterInput{
		Email:    "taken@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterDefaultsToStaffRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())

	user, err := svc.Register(context.Background(), &RegisterInput{
		Email:     "new@example.com",
		Password:  "secret123",
		FirstName: "New",
		LastName:  "Staff",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, user.Role)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db), repositories.NewStudentRepository(db), newTestConfig())
	user := seedUser(t, db, "staff@example.com", models.RoleStaff, true)

	err := svc.ChangePassword(context.Background(), user.ID, "wrong", "newsecret")
	assert.ErrorIs(t, err, ErrWrongPassword)
}
