package repositories

import (
	"context"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// documentRepository implements DocumentRepository interface
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create creates a new document record
func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// GetByID gets a document by ID
func (r *documentRepository) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByStudent lists a student's documents, newest first
func (r *documentRepository) ListByStudent(ctx context.Context, studentID uint) ([]*models.Document, error) {
	var docs []*models.Document
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

// Delete deletes a document record
func (r *documentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Document{}, id).Error
}
