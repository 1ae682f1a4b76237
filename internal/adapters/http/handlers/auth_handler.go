package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/http/middleware"
	"github.com/ugonnamorgan8-netizen/marvel/internal/core/services"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/password"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/response"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary Staff login
// @Description Authenticates a staff user with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginInput true "Login credentials"
// @Success 200 {object} response.Response{data=services.AuthResponse}
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" {
		return response.ValidationFailed(c, []response.FieldError{
			{Field: "email", Message: "email and password are required"},
		})
	}

	result, err := h.authService.Login(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid email or password")
		case errors.Is(err, services.ErrUserInactive):
			return response.Forbidden(c, "Account is deactivated")
		default:
			return response.InternalServerError(c, "Login failed")
		}
	}

	return response.Success(c, result)
}

type viewerLoginRequest struct {
	StudentCode string `json:"student_code"`
}

// ViewerLogin godoc
// @Summary Student viewer login
// @Description Authenticates a student viewer by student code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body viewerLoginRequest true "Student code"
// @Success 200 {object} response.Response{data=services.ViewerAuthResponse}
// @Failure 401 {object} response.Response
// @Router /auth/viewer-login [post]
func (h *AuthHandler) ViewerLogin(c *fiber.Ctx) error {
	var req viewerLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.StudentCode = strings.TrimSpace(strings.ToUpper(req.StudentCode))
	if req.StudentCode == "" {
		return response.ValidationFailed(c, []response.FieldError{
			{Field: "student_code", Message: "student code is required"},
		})
	}

	result, err := h.authService.ViewerLogin(c.Context(), req.StudentCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid student code")
		case errors.Is(err, services.ErrStudentInactive):
			return response.Forbidden(c, "Student account is not active")
		default:
			return response.InternalServerError(c, "Login failed")
		}
	}

	return response.Success(c, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh godoc
// @Summary Refresh tokens
// @Description Exchanges a refresh token for new tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Refresh token"
// @Success 200 {object} response.Response{data=services.RefreshResult}
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	result, err := h.authService.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			return response.Unauthorized(c, "Refresh token expired")
		case errors.Is(err, services.ErrInvalidToken):
			return response.Unauthorized(c, "Invalid refresh token")
		case errors.Is(err, services.ErrUserInactive):
			return response.Forbidden(c, "Account is deactivated")
		default:
			return response.InternalServerError(c, "Token refresh failed")
		}
	}

	return response.Success(c, result)
}

// Logout godoc
// @Summary Logout
// @Description Revokes the caller's refresh token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(c)
	if principal == nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	// Viewers hold no server-side token state; logout is a client concern.
	if !principal.IsViewer() {
		if err := h.authService.Logout(c.Context(), principal.UserID); err != nil {
			return response.InternalServerError(c, "Logout failed")
		}
	}

	return response.SuccessMessage(c, "Logged out successfully", nil)
}

// Me godoc
// @Summary Current principal
// @Description Returns the authenticated user or student profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(c)
	if principal == nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	if principal.IsViewer() {
		student, err := h.authService.GetStudentByID(c.Context(), principal.StudentID)
		if err != nil {
			return response.NotFound(c, "Student not found")
		}
		return response.Success(c, fiber.Map{
			"role":    principal.Role,
			"student": student,
		})
	}

	user, err := h.authService.GetUserByID(c.Context(), principal.UserID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}
	return response.Success(c, fiber.Map{
		"role": principal.Role,
		"user": user.ToResponse(),
	})
}

// Register godoc
// @Summary Register staff user
// @Description Creates a new staff user (admin only)
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.RegisterInput true "User details"
// @Success 201 {object} response.Response{data=models.UserResponse}
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	var fieldErrors []response.FieldError
	if input.Email == "" {
		fieldErrors = append(fieldErrors, response.FieldError{Field: "email", Message: "email is required"})
	}
	if !password.ValidatePassword(input.Password) {
		fieldErrors = append(fieldErrors, response.FieldError{Field: "password", Message: "password must be at least 6 characters"})
	}
	if len(fieldErrors) > 0 {
		return response.ValidationFailed(c, fieldErrors)
	}

	user, err := h.authService.Register(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return response.Conflict(c, "Email is already registered")
		default:
			return response.InternalServerError(c, "Registration failed")
		}
	}

	return response.Created(c, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword godoc
// @Summary Change password
// @Description Changes the authenticated staff user's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body changePasswordRequest true "Passwords"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal := middleware.PrincipalFromCtx(c)
	if principal == nil || principal.IsViewer() {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if !password.ValidatePassword(req.NewPassword) {
		return response.ValidationFailed(c, []response.FieldError{
			{Field: "new_password", Message: "password must be at least 6 characters"},
		})
	}

	if err := h.authService.ChangePassword(c.Context(), principal.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrWrongPassword):
			return response.Unauthorized(c, "Current password is incorrect")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Password change failed")
		}
	}

	return response.SuccessMessage(c, "Password changed successfully", nil)
}
