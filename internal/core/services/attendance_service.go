package services

import (
	"context"
	"errors"
	"time"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Attendance errors
var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
)

// AttendanceService handles attendance business logic
type AttendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	studentRepo    repositories.StudentRepository
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	attendanceRepo repositories.AttendanceRepository,
	studentRepo repositories.StudentRepository,
) *AttendanceService {
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		studentRepo:    studentRepo,
	}
}

// MarkInput represents a single attendance marking
type MarkInput struct {
	StudentID  uint                  `json:"student_id"`
	Date       time.Time             `json:"date"`
	Type       models.AttendanceType `json:"type"`
	Present    bool                  `json:"present"`
	Notes      string                `json:"notes"`
	MarkedByID *uint                 `json:"-"`
}

// Mark records attendance for one student
func (s *AttendanceService) Mark(ctx context.Context, input *MarkInput) (*models.Attendance, error) {
	if _, err := s.studentRepo.GetByID(ctx, input.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	record := &models.Attendance{
		StudentID:  input.StudentID,
		Date:       input.Date,
		Type:       input.Type,
		Present:    input.Present,
		Notes:      input.Notes,
		MarkedByID: input.MarkedByID,
	}

	if err := s.attendanceRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// MarkBulk records attendance for several students in one call. Unknown
// student ids are skipped and reported back rather than failing the batch.
func (s *AttendanceService) MarkBulk(ctx context.Context, inputs []*MarkInput) ([]*models.Attendance, []uint, error) {
	var records []*models.Attendance
	var skipped []uint

	for _, input := range inputs {
		record, err := s.Mark(ctx, input)
		if err != nil {
			if errors.Is(err, ErrStudentNotFound) {
				skipped = append(skipped, input.StudentID)
				continue
			}
			return nil, nil, err
		}
		records = append(records, record)
	}

	return records, skipped, nil
}

// List returns attendance records matching the filter
func (s *AttendanceService) List(ctx context.Context, filter *repositories.AttendanceFilter) ([]*models.Attendance, error) {
	return s.attendanceRepo.List(ctx, filter)
}

// Update applies changes to an attendance record
func (s *AttendanceService) Update(ctx context.Context, id uint, present *bool, notes *string) (*models.Attendance, error) {
	record, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}

	if present != nil {
		record.Present = *present
	}
	if notes != nil {
		record.Notes = *notes
	}

	if err := s.attendanceRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// Delete removes an attendance record
func (s *AttendanceService) Delete(ctx context.Context, id uint) error {
	if _, err := s.attendanceRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttendanceNotFound
		}
		return err
	}
	return s.attendanceRepo.Delete(ctx, id)
}

// StudentAttendanceSummary aggregates a student's attendance history
type StudentAttendanceSummary struct {
	Total     int     `json:"total"`
	Present   int     `json:"present"`
	Absent    int     `json:"absent"`
	Theory    int     `json:"theory"`
	Practical int     `json:"practical"`
	Rate      float64 `json:"rate"`
}

// StudentSummary returns a student's attendance records with aggregates
func (s *AttendanceService) StudentSummary(ctx context.Context, studentID uint) ([]*models.Attendance, *StudentAttendanceSummary, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrStudentNotFound
		}
		return nil, nil, err
	}

	records, err := s.attendanceRepo.List(ctx, &repositories.AttendanceFilter{StudentID: studentID})
	if err != nil {
		return nil, nil, err
	}

	summary := &StudentAttendanceSummary{Total: len(records)}
	for _, r := range records {
		if r.Present {
			summary.Present++
		} else {
			summary.Absent++
		}
		switch r.Type {
		case models.AttendanceTheory:
			summary.Theory++
		case models.AttendancePractical:
			summary.Practical++
		}
	}
	if summary.Total > 0 {
		summary.Rate = float64(summary.Present) / float64(summary.Total) * 100
	}

	return records, summary, nil
}
