package config

import (
	"log"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin user.
// For development/bootstrap only; change the password immediately in
// production.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash(getEnv("ADMIN_PASSWORD", "admin123456"))
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:     getEnv("ADMIN_EMAIL", "admin@marvel-driving.com"),
		Password:  hashedPassword,
		FirstName: "System",
		LastName:  "Admin",
		Role:      models.RoleAdmin,
		IsActive:  true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Default admin user seeded: %s", admin.Email)
	return nil
}
