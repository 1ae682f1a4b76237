package repositories

import (
	"context"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// studentRepository implements StudentRepository interface
type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

// Create creates a new student
func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// GetByID gets a student by ID
func (r *studentRepository) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// GetByCode gets a student by the external-facing student code
func (r *studentRepository) GetByCode(ctx context.Context, code string) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Where("student_code = ?", code).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// Update updates a student
func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

// Delete deletes a student (payments, attendance, training logs and
// documents cascade)
func (r *studentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Student{}, id).Error
}

// List lists students with optional status filter, name/code search and
// pagination
func (r *studentRepository) List(ctx context.Context, filter *StudentFilter) ([]*models.Student, int64, error) {
	var students []*models.Student
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Student{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR student_code LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

// ExistsByCode checks if a student code is taken
func (r *studentRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Where("student_code = ?", code).Count(&count).Error
	return count > 0, err
}

// CountByStatus counts students in a given status
func (r *studentRepository) CountByStatus(ctx context.Context, status models.StudentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// Count counts all students
func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Count(&count).Error
	return count, err
}

// Recent returns the most recently enrolled students
func (r *studentRepository) Recent(ctx context.Context, limit int) ([]*models.Student, error) {
	var students []*models.Student
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&students).Error
	return students, err
}
