package repositories

import (
	"context"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// trainingLogRepository implements TrainingLogRepository interface
type trainingLogRepository struct {
	db *gorm.DB
}

// NewTrainingLogRepository creates a new training log repository
func NewTrainingLogRepository(db *gorm.DB) TrainingLogRepository {
	return &trainingLogRepository{db: db}
}

// Create creates a new training log
func (r *trainingLogRepository) Create(ctx context.Context, log *models.TrainingLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetByID gets a training log by ID
func (r *trainingLogRepository) GetByID(ctx context.Context, id uint) (*models.TrainingLog, error) {
	var log models.TrainingLog
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// ListByStudent lists a student's training logs ordered by day
func (r *trainingLogRepository) ListByStudent(ctx context.Context, studentID uint) ([]*models.TrainingLog, error) {
	var logs []*models.TrainingLog
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("day ASC").
		Find(&logs).Error
	return logs, err
}

// Update updates a training log
func (r *trainingLogRepository) Update(ctx context.Context, log *models.TrainingLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

// Delete deletes a training log
func (r *trainingLogRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.TrainingLog{}, id).Error
}
