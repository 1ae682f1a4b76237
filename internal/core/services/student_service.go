package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Student errors
var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrStudentCodeTaken = errors.New("student code already exists")
)

// StudentService handles student business logic
type StudentService struct {
	studentRepo repositories.StudentRepository
}

// NewStudentService creates a new student service
func NewStudentService(studentRepo repositories.StudentRepository) *StudentService {
	return &StudentService{studentRepo: studentRepo}
}

// CreateStudentInput represents student creation input
type CreateStudentInput struct {
	FirstName              string     `json:"first_name"`
	LastName               string     `json:"last_name"`
	Email                  string     `json:"email"`
	Phone                  string     `json:"phone"`
	DateOfBirth            *time.Time `json:"date_of_birth"`
	Address                string     `json:"address"`
	EmergencyContact       string     `json:"emergency_contact"`
	EmergencyContactName   string     `json:"emergency_contact_name"`
	CourseType             string     `json:"course_type"`
	EnrollmentDate         *time.Time `json:"enrollment_date"`
	ExpectedGraduationDate *time.Time `json:"expected_graduation_date"`
	Notes                  string     `json:"notes"`
}

// Create enrolls a new student with a generated student code
func (s *StudentService) Create(ctx context.Context, input *CreateStudentInput) (*models.Student, error) {
	code, err := s.generateStudentCode(ctx)
	if err != nil {
		return nil, err
	}

	courseType := input.CourseType
	if courseType == "" {
		courseType = "standard"
	}

	enrollmentDate := input.EnrollmentDate
	if enrollmentDate == nil {
		now := time.Now()
		enrollmentDate = &now
	}

	student := &models.Student{
		StudentCode:            code,
		FirstName:              input.FirstName,
		LastName:               input.LastName,
		Email:                  input.Email,
		Phone:                  input.Phone,
		DateOfBirth:            input.DateOfBirth,
		Address:                input.Address,
		EmergencyContact:       input.EmergencyContact,
		EmergencyContactName:   input.EmergencyContactName,
		CourseType:             courseType,
		Status:                 models.StudentActive,
		EnrollmentDate:         enrollmentDate,
		ExpectedGraduationDate: input.ExpectedGraduationDate,
		Notes:                  input.Notes,
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrStudentCodeTaken
		}
		return nil, err
	}

	log.Printf("✅ Student enrolled: %s (%s)", student.FullName(), student.StudentCode)

	return student, nil
}

// UpdateStudentInput represents student update input. Pointer fields are
// only applied when present.
type UpdateStudentInput struct {
	FirstName              *string               `json:"first_name"`
	LastName               *string               `json:"last_name"`
	Email                  *string               `json:"email"`
	Phone                  *string               `json:"phone"`
	DateOfBirth            *time.Time            `json:"date_of_birth"`
	Address                *string               `json:"address"`
	EmergencyContact       *string               `json:"emergency_contact"`
	EmergencyContactName   *string               `json:"emergency_contact_name"`
	CourseType             *string               `json:"course_type"`
	Status                 *models.StudentStatus `json:"status"`
	InstructorID           *uint                 `json:"instructor_id"`
	ExpectedGraduationDate *time.Time            `json:"expected_graduation_date"`
	Notes                  *string               `json:"notes"`
	ProfileImageURL        *string               `json:"profile_image_url"`
}

// Update applies a partial update to a student
func (s *StudentService) Update(ctx context.Context, id uint, input *UpdateStudentInput) (*models.Student, error) {
	student, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		student.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		student.LastName = *input.LastName
	}
	if input.Email != nil {
		student.Email = *input.Email
	}
	if input.Phone != nil {
		student.Phone = *input.Phone
	}
	if input.DateOfBirth != nil {
		student.DateOfBirth = input.DateOfBirth
	}
	if input.Address != nil {
		student.Address = *input.Address
	}
	if input.EmergencyContact != nil {
		student.EmergencyContact = *input.EmergencyContact
	}
	if input.EmergencyContactName != nil {
		student.EmergencyContactName = *input.EmergencyContactName
	}
	if input.CourseType != nil {
		student.CourseType = *input.CourseType
	}
	if input.Status != nil {
		student.Status = *input.Status
	}
	if input.InstructorID != nil {
		student.InstructorID = input.InstructorID
	}
	if input.ExpectedGraduationDate != nil {
		student.ExpectedGraduationDate = input.ExpectedGraduationDate
	}
	if input.Notes != nil {
		student.Notes = *input.Notes
	}
	if input.ProfileImageURL != nil {
		student.ProfileImageURL = *input.ProfileImageURL
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}

	return student, nil
}

// GetByID gets a student by ID
func (s *StudentService) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

// GetByCode gets a student by student code
func (s *StudentService) GetByCode(ctx context.Context, code string) (*models.Student, error) {
	student, err := s.studentRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

// List returns students matching the filter with a total count
func (s *StudentService) List(ctx context.Context, filter *repositories.StudentFilter) ([]*models.Student, int64, error) {
	return s.studentRepo.List(ctx, filter)
}

// Delete removes a student and, via cascades, their dependent records
func (s *StudentService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.studentRepo.Delete(ctx, id)
}

// generateStudentCode produces a code of the form MDS<yy><4 digits>,
// retrying on the rare collision
func (s *StudentService) generateStudentCode(ctx context.Context) (string, error) {
	year := time.Now().Year() % 100

	for attempt := 0; attempt < 5; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("MDS%02d%04d", year, n.Int64())

		exists, err := s.studentRepo.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	return "", errors.New("could not generate a unique student code")
}
