package services

import (
	"context"
	"errors"
	"log"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"
	"github.com/ugonnamorgan8-netizen/marvel/internal/config"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/jwt"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/password"

	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrEmailTaken         = errors.New("email already registered")
	ErrStudentInactive    = errors.New("student account is not active")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// AuthService handles authentication business logic for both principal
// types: staff users (email + password) and student viewers (student code)
type AuthService struct {
	userRepo    repositories.UserRepository
	studentRepo repositories.StudentRepository
	cfg         *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	studentRepo repositories.StudentRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		studentRepo: studentRepo,
		cfg:         cfg,
	}
}

// LoginInput represents staff login input
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents a staff authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
}

// ViewerAuthResponse represents a viewer authentication response
type ViewerAuthResponse struct {
	Student      *models.StudentSummary `json:"student"`
	AccessToken  string                 `json:"accessToken"`
	RefreshToken string                 `json:"refreshToken"`
}

// RefreshResult holds re-issued tokens. RefreshToken is empty for viewer
// principals, whose refresh tokens are not rotated.
type RefreshResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Login authenticates a staff user
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueStaffTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Email)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// ViewerLogin authenticates a student viewer by student code. Only
// students in active status may obtain viewer tokens.
func (s *AuthService) ViewerLogin(ctx context.Context, studentCode string) (*ViewerAuthResponse, error) {
	student, err := s.studentRepo.GetByCode(ctx, studentCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if student.Status != models.StudentActive {
		return nil, ErrStudentInactive
	}

	accessToken, err := jwt.GenerateAccessToken(
		0, student.Email, string(models.RoleViewer), student.ID,
		s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	// Viewer refresh tokens are stateless: a viewer has no destructive
	// capabilities, so there is no single-slot persistence for them.
	refreshToken, err := jwt.GenerateRefreshToken(
		0, student.Email, string(models.RoleViewer), student.ID,
		s.cfg.JWT.RefreshSecret, s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Viewer logged in: %s", student.StudentCode)

	return &ViewerAuthResponse{
		Student:      student.ToSummary(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. Staff
// tokens must match the stored single slot exactly and are rotated; viewer
// tokens are re-issued statelessly.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims.Role == string(models.RoleViewer) {
		accessToken, err := jwt.GenerateAccessToken(
			0, claims.Email, claims.Role, claims.StudentID,
			s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins,
		)
		if err != nil {
			return nil, err
		}
		return &RefreshResult{AccessToken: accessToken}, nil
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// The presented token must be the current one. A token superseded by a
	// later login or refresh, or cleared by logout, is rejected even though
	// its signature is still valid — this is the revocation mechanism.
	if user.RefreshTokenHash == nil || *user.RefreshTokenHash != password.HashToken(refreshToken) {
		return nil, ErrInvalidToken
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	tokens, err := s.issueStaffTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for user: %s", user.Email)

	return &RefreshResult{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout clears the user's stored refresh token
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if err := s.userRepo.SetRefreshTokenHash(ctx, userID, nil); err != nil {
		return err
	}

	log.Printf("✅ User logged out: id=%d", userID)
	return nil
}

// RegisterInput represents staff registration input
type RegisterInput struct {
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      models.Role `json:"role"`
}

// Register creates a new staff user (admin operation)
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.UserResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleStaff
	}

	user := &models.User{
		Email:     input.Email,
		Password:  hashedPassword,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      role,
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User registered: %s (%s)", user.Email, user.Role)

	return user.ToResponse(), nil
}

// ChangePassword changes a staff user's password
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	if !password.Verify(currentPassword, user.Password) {
		return ErrWrongPassword
	}

	hashedPassword, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// GetStudentByID gets a student by ID
func (s *AuthService) GetStudentByID(ctx context.Context, studentID uint) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, studentID)
}

// issueStaffTokens generates an access/refresh pair and persists the hash
// of the refresh token into the user's single slot before returning. The
// persist happens first so a returned token is always redeemable.
func (s *AuthService) issueStaffTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID, user.Email, string(user.Role), 0,
		s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID, user.Email, string(user.Role), 0,
		s.cfg.JWT.RefreshSecret, s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	tokenHash := password.HashToken(refreshToken)
	if err := s.userRepo.SetRefreshTokenHash(ctx, user.ID, &tokenHash); err != nil {
		return nil, err
	}
	user.RefreshTokenHash = &tokenHash

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
