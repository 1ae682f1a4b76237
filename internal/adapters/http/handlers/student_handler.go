package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/http/middleware"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"
	"github.com/ugonnamorgan8-netizen/marvel/internal/core/services"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/pagination"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/response"
)

// StudentHandler handles student requests
type StudentHandler struct {
	studentService    *services.StudentService
	paymentService    *services.PaymentService
	attendanceService *services.AttendanceService
	trainingService   *services.TrainingService
	documentService   *services.DocumentService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(
	studentService *services.StudentService,
	paymentService *services.PaymentService,
	attendanceService *services.AttendanceService,
	trainingService *services.TrainingService,
	documentService *services.DocumentService,
) *StudentHandler {
	return &StudentHandler{
		studentService:    studentService,
		paymentService:    paymentService,
		attendanceService: attendanceService,
		trainingService:   trainingService,
		documentService:   documentService,
	}
}

// List godoc
// @Summary List students
// @Description Returns students with optional status and search filters
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param search query string false "Search by name or code"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /students [get]
func (h *StudentHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := &repositories.StudentFilter{
		Status: c.Query("status"),
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  params.Limit,
		Offset: params.Offset,
	}

	students, total, err := h.studentService.List(c.Context(), filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to list students")
	}

	return response.Success(c, fiber.Map{
		"students":   students,
		"pagination": pagination.GetMeta(params, total),
	})
}

// Get godoc
// @Summary Get student
// @Description Returns a student with their payments, attendance, training logs and documents
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	if err := requireOwnStudent(c, id); err != nil {
		return err
	}

	student, err := h.studentService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	// Related records are best effort; the detail view degrades to the
	// student alone rather than failing outright.
	payments, _, _ := h.paymentService.StudentPayments(c.Context(), id)
	attendance, _, _ := h.attendanceService.StudentSummary(c.Context(), id)
	trainingLogs, _ := h.trainingService.ListByStudent(c.Context(), id)
	documents, _ := h.documentService.ListByStudent(c.Context(), id)

	return response.Success(c, fiber.Map{
		"student":      student,
		"payments":     payments,
		"attendance":   attendance,
		"trainingLogs": trainingLogs,
		"documents":    documents,
	})
}

// GetByCode godoc
// @Summary Get student by code
// @Description Returns a single student by student code
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param code path string true "Student code"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /students/code/{code} [get]
func (h *StudentHandler) GetByCode(c *fiber.Ctx) error {
	code := strings.ToUpper(strings.TrimSpace(c.Params("code")))
	if code == "" {
		return response.BadRequest(c, "Student code is required")
	}

	student, err := h.studentService.GetByCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	if err := requireOwnStudent(c, student.ID); err != nil {
		return err
	}

	return response.Success(c, student)
}

// Create godoc
// @Summary Enroll student
// @Description Creates a student with a generated student code
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateStudentInput true "Student details"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /students [post]
func (h *StudentHandler) Create(c *fiber.Ctx) error {
	var input services.CreateStudentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var fieldErrors []response.FieldError
	if strings.TrimSpace(input.FirstName) == "" {
		fieldErrors = append(fieldErrors, response.FieldError{Field: "first_name", Message: "first name is required"})
	}
	if strings.TrimSpace(input.LastName) == "" {
		fieldErrors = append(fieldErrors, response.FieldError{Field: "last_name", Message: "last name is required"})
	}
	if strings.TrimSpace(input.Phone) == "" {
		fieldErrors = append(fieldErrors, response.FieldError{Field: "phone", Message: "phone is required"})
	}
	if len(fieldErrors) > 0 {
		return response.ValidationFailed(c, fieldErrors)
	}

	student, err := h.studentService.Create(c.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrStudentCodeTaken) {
			return response.Conflict(c, "Student code already exists")
		}
		return response.InternalServerError(c, "Failed to create student")
	}

	return response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Description Applies a partial update to a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body services.UpdateStudentInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	var input services.UpdateStudentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	student, err := h.studentService.Update(c.Context(), id, &input)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to update student")
	}

	return response.Success(c, student)
}

// Delete godoc
// @Summary Delete student
// @Description Removes a student and their dependent records
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	if err := h.studentService.Delete(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to delete student")
	}

	return response.SuccessMessage(c, "Student deleted successfully", nil)
}

// parseID parses a uint path parameter
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// requireOwnStudent rejects viewer principals reaching for another
// student's records. Staff principals pass through.
func requireOwnStudent(c *fiber.Ctx, studentID uint) error {
	principal := middleware.PrincipalFromCtx(c)
	if principal == nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	if principal.IsViewer() && principal.StudentID != studentID {
		return response.Forbidden(c, "Insufficient permissions")
	}
	return nil
}
