package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"
	"github.com/ugonnamorgan8-netizen/marvel/internal/config"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/jwt"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/response"
)

const principalKey = "principal"

// Principal is the authenticated caller attached to the request context.
// StudentID is set only for viewer principals; UserID only for staff.
type Principal struct {
	UserID    uint
	Email     string
	Role      models.Role
	StudentID uint
}

// IsViewer reports whether the principal is a student viewer
func (p *Principal) IsViewer() bool {
	return p.Role == models.RoleViewer
}

// AuthMiddleware validates the bearer token and re-checks the principal
// against the database on every request, so deactivation takes effect
// immediately rather than at token expiry.
func AuthMiddleware(cfg *config.Config, userRepo repositories.UserRepository, studentRepo repositories.StudentRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return response.Unauthorized(c, "No token provided")
		}

		claims, err := jwt.ValidateAccessToken(token, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Token expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		principal := &Principal{
			UserID:    claims.UserID,
			Email:     claims.Email,
			Role:      models.Role(claims.Role),
			StudentID: claims.StudentID,
		}

		if principal.IsViewer() {
			// Viewers only need to still exist. Status changes do not cut
			// off read access mid-session; they take effect at next login.
			if _, err := studentRepo.GetByID(c.Context(), claims.StudentID); err != nil {
				return response.Unauthorized(c, "Student not found")
			}
		} else {
			user, err := userRepo.GetByID(c.Context(), claims.UserID)
			if err != nil || !user.IsActive {
				return response.Unauthorized(c, "User not found or inactive")
			}
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// OptionalAuth attaches a principal when a valid token is present but never
// rejects the request. Any failure, including an invalid or expired token,
// just leaves the request anonymous.
func OptionalAuth(cfg *config.Config, userRepo repositories.UserRepository, studentRepo repositories.StudentRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return c.Next()
		}

		claims, err := jwt.ValidateAccessToken(token, cfg.JWT.Secret)
		if err != nil {
			return c.Next()
		}

		principal := &Principal{
			UserID:    claims.UserID,
			Email:     claims.Email,
			Role:      models.Role(claims.Role),
			StudentID: claims.StudentID,
		}

		if principal.IsViewer() {
			if _, err := studentRepo.GetByID(c.Context(), claims.StudentID); err != nil {
				return c.Next()
			}
		} else {
			user, err := userRepo.GetByID(c.Context(), claims.UserID)
			if err != nil || !user.IsActive {
				return c.Next()
			}
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// RequireRoles restricts a route to the given roles. Must run after
// AuthMiddleware.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := PrincipalFromCtx(c)
		if principal == nil {
			return response.Unauthorized(c, "Not authenticated")
		}

		for _, role := range roles {
			if principal.Role == role {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}

// PrincipalFromCtx returns the authenticated principal, or nil when the
// request is unauthenticated
func PrincipalFromCtx(c *fiber.Ctx) *Principal {
	principal, ok := c.Locals(principalKey).(*Principal)
	if !ok {
		return nil
	}
	return principal
}

func extractToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
