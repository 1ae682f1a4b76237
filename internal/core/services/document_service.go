package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Document errors
var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrStorageUnavailable = errors.New("file storage is not configured")
)

// DocumentService handles student document business logic
type DocumentService struct {
	documentRepo repositories.DocumentRepository
	studentRepo  repositories.StudentRepository
	storage      FileStorage
}

// NewDocumentService creates a new document service. storage may be nil
// when no provider is configured; uploads then fail cleanly.
func NewDocumentService(
	documentRepo repositories.DocumentRepository,
	studentRepo repositories.StudentRepository,
	storage FileStorage,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		studentRepo:  studentRepo,
		storage:      storage,
	}
}

// UploadInput represents document upload input
type UploadInput struct {
	StudentID    uint
	Type         models.DocumentType
	Name         string
	MimeType     string
	File         io.Reader
	UploadedByID *uint
}

// Upload stores a file with the storage provider and records it
func (s *DocumentService) Upload(ctx context.Context, input *UploadInput) (*models.Document, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}

	student, err := s.studentRepo.GetByID(ctx, input.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	folder := fmt.Sprintf("marvel-driving-school/students/%d", student.ID)
	result, err := s.storage.Upload(ctx, input.File, folder)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		StudentID:          student.ID,
		Type:               input.Type,
		Name:               input.Name,
		URL:                result.URL,
		CloudinaryPublicID: &result.PublicID,
		FileSize:           &result.Bytes,
		MimeType:           input.MimeType,
		UploadedByID:       input.UploadedByID,
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		// The file is already in storage; try not to leak it.
		if delErr := s.storage.Delete(ctx, result.PublicID); delErr != nil {
			log.Printf("⚠️ Orphaned upload %s: %v", result.PublicID, delErr)
		}
		return nil, err
	}

	log.Printf("✅ Document uploaded for student %s: %s", student.StudentCode, doc.Name)

	return doc, nil
}

// ListByStudent returns a student's documents
func (s *DocumentService) ListByStudent(ctx context.Context, studentID uint) ([]*models.Document, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return s.documentRepo.ListByStudent(ctx, studentID)
}

// GetByID gets a document by ID
func (s *DocumentService) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Delete removes a document record and best-effort deletes the stored file
func (s *DocumentService) Delete(ctx context.Context, id uint) error {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.storage != nil && doc.CloudinaryPublicID != nil {
		if err := s.storage.Delete(ctx, *doc.CloudinaryPublicID); err != nil {
			log.Printf("⚠️ Failed to delete stored file %s: %v", *doc.CloudinaryPublicID, err)
		}
	}

	return nil
}
