package services

import (
	"context"
	"errors"
	"time"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Training errors
var (
	ErrTrainingLogNotFound = errors.New("training log not found")
)

// TrainingService handles training log business logic
type TrainingService struct {
	trainingRepo repositories.TrainingLogRepository
	studentRepo  repositories.StudentRepository
}

// NewTrainingService creates a new training service
func NewTrainingService(
	trainingRepo repositories.TrainingLogRepository,
	studentRepo repositories.StudentRepository,
) *TrainingService {
	return &TrainingService{
		trainingRepo: trainingRepo,
		studentRepo:  studentRepo,
	}
}

// CreateTrainingLogInput represents training log creation input
type CreateTrainingLogInput struct {
	StudentID          uint      `json:"student_id"`
	Day                int       `json:"day"`
	SessionDate        time.Time `json:"session_date"`
	Duration           *int      `json:"duration"`
	Topic              string    `json:"topic"`
	Notes              string    `json:"notes"`
	SkillsCovered      string    `json:"skills_covered"`
	InstructorComments string    `json:"instructor_comments"`
	StudentProgress    string    `json:"student_progress"`
	InstructorID       *uint     `json:"-"`
}

// Create records a training session for a student
func (s *TrainingService) Create(ctx context.Context, input *CreateTrainingLogInput) (*models.TrainingLog, error) {
	if _, err := s.studentRepo.GetByID(ctx, input.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	entry := &models.TrainingLog{
		StudentID:          input.StudentID,
		Day:                input.Day,
		SessionDate:        input.SessionDate,
		Duration:           input.Duration,
		Topic:              input.Topic,
		Notes:              input.Notes,
		SkillsCovered:      input.SkillsCovered,
		InstructorComments: input.InstructorComments,
		StudentProgress:    input.StudentProgress,
		InstructorID:       input.InstructorID,
	}

	if err := s.trainingRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// UpdateTrainingLogInput represents a partial training log update
type UpdateTrainingLogInput struct {
	Day                *int       `json:"day"`
	SessionDate        *time.Time `json:"session_date"`
	Duration           *int       `json:"duration"`
	Topic              *string    `json:"topic"`
	Notes              *string    `json:"notes"`
	SkillsCovered      *string    `json:"skills_covered"`
	InstructorComments *string    `json:"instructor_comments"`
	StudentProgress    *string    `json:"student_progress"`
}

// Update applies a partial update to a training log
func (s *TrainingService) Update(ctx context.Context, id uint, input *UpdateTrainingLogInput) (*models.TrainingLog, error) {
	entry, err := s.trainingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrainingLogNotFound
		}
		return nil, err
	}

	if input.Day != nil {
		entry.Day = *input.Day
	}
	if input.SessionDate != nil {
		entry.SessionDate = *input.SessionDate
	}
	if input.Duration != nil {
		entry.Duration = input.Duration
	}
	if input.Topic != nil {
		entry.Topic = *input.Topic
	}
	if input.Notes != nil {
		entry.Notes = *input.Notes
	}
	if input.SkillsCovered != nil {
		entry.SkillsCovered = *input.SkillsCovered
	}
	if input.InstructorComments != nil {
		entry.InstructorComments = *input.InstructorComments
	}
	if input.StudentProgress != nil {
		entry.StudentProgress = *input.StudentProgress
	}

	if err := s.trainingRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// GetByID gets a training log by ID
func (s *TrainingService) GetByID(ctx context.Context, id uint) (*models.TrainingLog, error) {
	entry, err := s.trainingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrainingLogNotFound
		}
		return nil, err
	}
	return entry, nil
}

// ListByStudent returns a student's training logs ordered by day
func (s *TrainingService) ListByStudent(ctx context.Context, studentID uint) ([]*models.TrainingLog, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return s.trainingRepo.ListByStudent(ctx, studentID)
}

// Delete removes a training log
func (s *TrainingService) Delete(ctx context.Context, id uint) error {
	if _, err := s.trainingRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTrainingLogNotFound
		}
		return err
	}
	return s.trainingRepo.Delete(ctx, id)
}

// TrainingProgress summarizes how far a student is through training
type TrainingProgress struct {
	SessionsLogged int        `json:"sessionsLogged"`
	LastDay        int        `json:"lastDay"`
	LastSession    *time.Time `json:"lastSession"`
	TotalMinutes   int        `json:"totalMinutes"`
}

// Progress computes a student's training progress from their logs
func (s *TrainingService) Progress(ctx context.Context, studentID uint) (*TrainingProgress, error) {
	logs, err := s.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	progress := &TrainingProgress{SessionsLogged: len(logs)}
	for _, entry := range logs {
		if entry.Day > progress.LastDay {
			progress.LastDay = entry.Day
		}
		if progress.LastSession == nil || entry.SessionDate.After(*progress.LastSession) {
			sessionDate := entry.SessionDate
			progress.LastSession = &sessionDate
		}
		if entry.Duration != nil {
			progress.TotalMinutes += *entry.Duration
		}
	}

	return progress, nil
}
