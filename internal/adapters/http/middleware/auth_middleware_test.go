package middleware

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"
	"github.com/ugonnamorgan8-netizen/marvel/internal/config"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/jwt"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/response"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}

	userRepo := repositories.NewUserRepository(db)
	studentRepo := repositories.NewStudentRepository(db)

	app := fiber.New()
	app.Get("/protected", AuthMiddleware(cfg, userRepo, studentRepo), func(c *fiber.Ctx) error {
		return response.Success(c, PrincipalFromCtx(c).Email)
	})
	app.Get("/admin", AuthMiddleware(cfg, userRepo, studentRepo), RequireRoles(models.RoleAdmin), func(c *fiber.Ctx) error {
		return response.Success(c, "ok")
	})
	app.Get("/open", OptionalAuth(cfg, userRepo, studentRepo), func(c *fiber.Ctx) error {
		if principal := PrincipalFromCtx(c); principal != nil {
			return response.Success(c, principal.Email)
		}
		return response.Success(c, "anonymous")
	})

	return app, db, cfg
}

func seedActiveUser(t *testing.T, db *gorm.DB, role models.Role, active bool) *models.User {
	t.Helper()

	user := &models.User{
		Email:    fmt.Sprintf("%s@example.com", role),
		Password: "irrelevant",
		Role:     role,
		IsActive: active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func accessTokenFor(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()

	token, err := jwt.GenerateAccessToken(user.ID, user.Email, string(user.Role), 0, cfg.JWT.Secret, cfg.JWT.AccessTokenMins)
	require.NoError(t, err)
	return token
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsValidStaffToken(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user := seedActiveUser(t, db, models.RoleStaff, true)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, cfg, user))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareRejectsDeactivatedUser(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user := seedActiveUser(t, db, models.RoleStaff, true)
	token := accessTokenFor(t, cfg, user)

	// Deactivation cuts off access immediately, before the token expires
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRolesForbidsStaffOnAdminRoute(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user := seedActiveUser(t, db, models.RoleStaff, true)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, cfg, user))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRolesAllowsAdmin(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user := seedActiveUser(t, db, models.RoleAdmin, true)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, cfg, user))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOptionalAuthProceedsWithoutToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/open", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOptionalAuthSwallowsInvalidToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	// An unusable token leaves the request anonymous instead of rejecting it
	req := httptest.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOptionalAuthAttachesValidPrincipal(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user := seedActiveUser(t, db, models.RoleStaff, true)

	req := httptest.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, cfg, user))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, user.Email, envelope.Data)
}

func TestViewerTokenChecksStudentExists(t *testing.T) {
	app, db, cfg := newTestApp(t)

	student := &models.Student{
		StudentCode: "MDS250099",
		FirstName:   "Ada",
		LastName:    "Okafor",
		Phone:       "08030000000",
		CourseType:  "standard",
		Status:      models.StudentActive,
	}
	require.NoError(t, db.Create(student).Error)

	token, err := jwt.GenerateAccessToken(0, "ada@example.com", string(models.RoleViewer), student.ID, cfg.JWT.Secret, 15)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// A token for a deleted student is rejected on the next request
	require.NoError(t, db.Delete(&models.Student{}, student.ID).Error)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
