package repositories

import (
	"context"
	"time"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// attendanceRepository implements AttendanceRepository interface
type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Create creates a new attendance record
func (r *attendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID gets an attendance record by ID
func (r *attendanceRepository) GetByID(ctx context.Context, id uint) (*models.Attendance, error) {
	var record models.Attendance
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Update updates an attendance record
func (r *attendanceRepository) Update(ctx context.Context, record *models.Attendance) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Delete deletes an attendance record
func (r *attendanceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Attendance{}, id).Error
}

// List lists attendance records with optional filters, newest first
func (r *attendanceRepository) List(ctx context.Context, filter *AttendanceFilter) ([]*models.Attendance, error) {
	var records []*models.Attendance

	query := r.db.WithContext(ctx).Model(&models.Attendance{})
	if filter != nil {
		if filter.StudentID != 0 {
			query = query.Where("student_id = ?", filter.StudentID)
		}
		if filter.StartDate != "" {
			query = query.Where("date >= ?", filter.StartDate)
		}
		if filter.EndDate != "" {
			query = query.Where("date <= ?", filter.EndDate)
		}
		if filter.Type != "" {
			query = query.Where("type = ?", filter.Type)
		}
	}

	err := query.Order("date DESC").Find(&records).Error
	return records, err
}

// CountPresentOn counts present records on a given day
func (r *attendanceRepository) CountPresentOn(ctx context.Context, date time.Time) (int64, error) {
	var count int64
	day := date.Format("2006-01-02")
	err := r.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Where("date = ? AND present = ?", day, true).
		Count(&count).Error
	return count, err
}
