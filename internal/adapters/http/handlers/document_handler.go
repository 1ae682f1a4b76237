package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/http/middleware"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/core/services"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/response"
)

// maxUploadSize caps document uploads at 10MB
const maxUploadSize = 10 << 20

// DocumentHandler handles student document requests
type DocumentHandler struct {
	documentService *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload godoc
// @Summary Upload document
// @Description Uploads a document file for a student
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Param type formData string true "Document type"
// @Param file formData file true "Document file"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /documents/student/{studentId} [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	studentID, err := parseID(c, "studentId")
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "File is required")
	}
	if fileHeader.Size > maxUploadSize {
		return response.BadRequest(c, "File exceeds the 10MB limit")
	}

	docType := models.DocumentType(c.FormValue("type", string(models.DocumentOther)))
	switch docType {
	case models.DocumentPassport, models.DocumentIDCard, models.DocumentLicense,
		models.DocumentCertificate, models.DocumentOther:
	default:
		return response.BadRequest(c, "Invalid document type")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Could not read uploaded file")
	}
	defer file.Close()

	input := &services.UploadInput{
		StudentID: studentID,
		Type:      docType,
		Name:      fileHeader.Filename,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		File:      file,
	}

	if principal := middleware.PrincipalFromCtx(c); principal != nil {
		input.UploadedByID = &principal.UserID
	}

	doc, err := h.documentService.Upload(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrStorageUnavailable):
			return response.Error(c, fiber.StatusServiceUnavailable, "File storage is not configured")
		default:
			return response.InternalServerError(c, "Failed to upload document")
		}
	}

	return response.Created(c, doc)
}

// ListByStudent godoc
// @Summary Student documents
// @Description Returns a student's documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /documents/student/{studentId} [get]
func (h *DocumentHandler) ListByStudent(c *fiber.Ctx) error {
	studentID, err := parseID(c, "studentId")
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	if err := requireOwnStudent(c, studentID); err != nil {
		return err
	}

	docs, err := h.documentService.ListByStudent(c.Context(), studentID)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch documents")
	}

	return response.Success(c, docs)
}

// Get godoc
// @Summary Get document
// @Description Returns a single document record
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document id")
	}

	doc, err := h.documentService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			return response.NotFound(c, "Document not found")
		}
		return response.InternalServerError(c, "Failed to fetch document")
	}

	if err := requireOwnStudent(c, doc.StudentID); err != nil {
		return err
	}

	return response.Success(c, doc)
}

// Delete godoc
// @Summary Delete document
// @Description Removes a document and its stored file
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document id")
	}

	if err := h.documentService.Delete(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			return response.NotFound(c, "Document not found")
		}
		return response.InternalServerError(c, "Failed to delete document")
	}

	return response.SuccessMessage(c, "Document deleted", nil)
}
