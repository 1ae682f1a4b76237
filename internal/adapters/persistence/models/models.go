package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Role is the closed set of principal roles
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleViewer Role = "viewer"
)

// StudentStatus is the closed set of student statuses
type StudentStatus string

const (
	StudentActive    StudentStatus = "active"
	StudentInactive  StudentStatus = "inactive"
	StudentGraduated StudentStatus = "graduated"
	StudentSuspended StudentStatus = "suspended"
)

// PaymentStatus is the closed set of payment statuses
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// AttendanceType is the closed set of attendance session types
type AttendanceType string

const (
	AttendanceTheory    AttendanceType = "theory"
	AttendancePractical AttendanceType = "practical"
	AttendanceTest      AttendanceType = "test"
)

// DocumentType is the closed set of document categories
type DocumentType string

const (
	DocumentPassport    DocumentType = "passport"
	DocumentIDCard      DocumentType = "id_card"
	DocumentLicense     DocumentType = "license"
	DocumentCertificate DocumentType = "certificate"
	DocumentOther       DocumentType = "other"
)

// User represents the users table (staff principals)
type User struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Email     string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string  `gorm:"size:255;not null" json:"-"`
	Role      Role    `gorm:"size:20;not null;default:'staff'" json:"role"`
	FirstName string  `gorm:"size:100" json:"first_name"`
	LastName  string  `gorm:"size:100" json:"last_name"`
	// No column default here. GORM omits zero-valued fields that carry a
	// default, so creating a deactivated user would silently store true.
	IsActive bool `gorm:"not null" json:"is_active"`
	// Single-slot refresh token, stored hashed. Overwritten on every login
	// and refresh; nulled on logout.
	RefreshTokenHash *string   `gorm:"size:64" json:"-"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// Student represents the students table
type Student struct {
	ID                     uint          `gorm:"primaryKey" json:"id"`
	StudentCode            string        `gorm:"uniqueIndex;size:20;not null" json:"student_code"`
	FirstName              string        `gorm:"size:100;not null" json:"first_name"`
	LastName               string        `gorm:"size:100;not null" json:"last_name"`
	Email                  string        `gorm:"size:255" json:"email"`
	Phone                  string        `gorm:"size:20;not null" json:"phone"`
	DateOfBirth            *time.Time    `gorm:"type:date" json:"date_of_birth"`
	Address                string        `gorm:"type:text" json:"address"`
	EmergencyContact       string        `gorm:"size:20" json:"emergency_contact"`
	EmergencyContactName   string        `gorm:"size:100" json:"emergency_contact_name"`
	CourseType             string        `gorm:"size:50;not null;default:'standard'" json:"course_type"`
	Status                 StudentStatus `gorm:"size:20;not null;default:'active';index" json:"status"`
	InstructorID           *uint         `json:"instructor_id"`
	EnrollmentDate         *time.Time    `gorm:"type:date" json:"enrollment_date"`
	ExpectedGraduationDate *time.Time    `gorm:"type:date" json:"expected_graduation_date"`
	Notes                  string        `gorm:"type:text" json:"notes"`
	ProfileImageURL        string        `gorm:"type:text" json:"profile_image_url"`
	CreatedAt              time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Student) TableName() string {
	return "students"
}

// StudentSummary DTO used in auth responses
type StudentSummary struct {
	ID          uint   `json:"id"`
	StudentCode string `json:"student_code"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

func (s *Student) ToSummary() *StudentSummary {
	return &StudentSummary{
		ID:          s.ID,
		StudentCode: s.StudentCode,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
	}
}

// FullName returns the student's display name
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Payment represents the payments table
type Payment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	StudentID uint            `gorm:"not null;index" json:"student_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency  string          `gorm:"size:3;not null;default:'NGN'" json:"currency"`
	Status    PaymentStatus   `gorm:"size:20;not null;default:'pending';index" json:"status"`
	// Reference is the system-generated unique correlation id shared with
	// the payment provider (tx_ref)
	Reference      string     `gorm:"uniqueIndex;size:100;not null" json:"reference"`
	FlutterwaveRef *string    `gorm:"size:100" json:"flutterwave_ref"`
	TransactionID  *string    `gorm:"size:100" json:"transaction_id"`
	PaymentLink    *string    `gorm:"type:text" json:"payment_link"`
	Description    string     `gorm:"type:text" json:"description"`
	PaidAt         *time.Time `json:"paid_at"`
	CreatedByID    *uint      `json:"created_by_id"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}

// IsTerminal reports whether the payment reached a terminal state
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentPaid || p.Status == PaymentFailed
}

// Attendance represents the attendance table
type Attendance struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	StudentID  uint           `gorm:"not null;index" json:"student_id"`
	Date       time.Time      `gorm:"type:date;not null;index" json:"date"`
	Type       AttendanceType `gorm:"size:20;not null" json:"type"`
	Present    bool           `gorm:"not null" json:"present"`
	Notes      string         `gorm:"type:text" json:"notes"`
	MarkedByID *uint          `json:"marked_by_id"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`

	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Attendance) TableName() string {
	return "attendance"
}

// TrainingLog represents the training_logs table
type TrainingLog struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	StudentID          uint      `gorm:"not null;index" json:"student_id"`
	Day                int       `gorm:"not null" json:"day"`
	SessionDate        time.Time `gorm:"type:date;not null" json:"session_date"`
	Duration           *int      `json:"duration"`
	Topic              string    `gorm:"size:255" json:"topic"`
	Notes              string    `gorm:"type:text" json:"notes"`
	SkillsCovered      string    `gorm:"type:text" json:"skills_covered"`
	InstructorComments string    `gorm:"type:text" json:"instructor_comments"`
	StudentProgress    string    `gorm:"size:50" json:"student_progress"`
	InstructorID       *uint     `json:"instructor_id"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (TrainingLog) TableName() string {
	return "training_logs"
}

// Document represents the documents table
type Document struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`
	StudentID          uint         `gorm:"not null;index" json:"student_id"`
	Type               DocumentType `gorm:"size:20;not null" json:"type"`
	Name               string       `gorm:"size:255;not null" json:"name"`
	URL                string       `gorm:"type:text;not null" json:"url"`
	CloudinaryPublicID *string      `gorm:"type:text" json:"cloudinary_public_id"`
	FileSize           *int         `json:"file_size"`
	MimeType           string       `gorm:"size:100" json:"mime_type"`
	UploadedByID       *uint        `json:"uploaded_by_id"`
	CreatedAt          time.Time    `gorm:"autoCreateTime" json:"created_at"`

	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Document) TableName() string {
	return "documents"
}

// AutoMigrate migrates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Student{},
		&Payment{},
		&Attendance{},
		&TrainingLog{},
		&Document{},
	)
}
