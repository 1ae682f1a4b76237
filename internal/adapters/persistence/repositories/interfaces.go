package repositories

import (
	"context"
	"time"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// SetRefreshTokenHash overwrites the user's single refresh token slot;
	// nil clears it (logout)
	SetRefreshTokenHash(ctx context.Context, userID uint, tokenHash *string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// StudentFilter holds optional student list filters
type StudentFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// StudentRepository defines student repository interface
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	GetByCode(ctx context.Context, code string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter *StudentFilter) ([]*models.Student, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	CountByStatus(ctx context.Context, status models.StudentStatus) (int64, error)
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]*models.Student, error)
}

// PaymentFilter holds optional payment list filters
type PaymentFilter struct {
	StudentID uint
	Status    string
}

// PaymentRepository defines payment repository interface
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByReference(ctx context.Context, reference string) (*models.Payment, error)
	List(ctx context.Context, filter *PaymentFilter) ([]*models.Payment, error)
	SetPaymentLink(ctx context.Context, id uint, link string) error
	// ApplyTerminalState performs the conditional pending -> terminal
	// transition in a single statement. It reports whether a row was
	// actually transitioned; an already-terminal payment is left untouched.
	ApplyTerminalState(ctx context.Context, reference string, status models.PaymentStatus, flutterwaveRef, transactionID string, paidAt *time.Time) (bool, error)
	CountByStatus(ctx context.Context, status models.PaymentStatus) (int64, error)
	Recent(ctx context.Context, limit int) ([]*models.Payment, error)
}

// AttendanceFilter holds optional attendance list filters
type AttendanceFilter struct {
	StudentID uint
	StartDate string
	EndDate   string
	Type      string
}

// AttendanceRepository defines attendance repository interface
type AttendanceRepository interface {
	Create(ctx context.Context, record *models.Attendance) error
	GetByID(ctx context.Context, id uint) (*models.Attendance, error)
	Update(ctx context.Context, record *models.Attendance) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter *AttendanceFilter) ([]*models.Attendance, error)
	CountPresentOn(ctx context.Context, date time.Time) (int64, error)
}

// TrainingLogRepository defines training log repository interface
type TrainingLogRepository interface {
	Create(ctx context.Context, log *models.TrainingLog) error
	GetByID(ctx context.Context, id uint) (*models.TrainingLog, error)
	ListByStudent(ctx context.Context, studentID uint) ([]*models.TrainingLog, error)
	Update(ctx context.Context, log *models.TrainingLog) error
	Delete(ctx context.Context, id uint) error
}

// DocumentRepository defines document repository interface
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uint) (*models.Document, error)
	ListByStudent(ctx context.Context, studentID uint) ([]*models.Document, error)
	Delete(ctx context.Context, id uint) error
}
