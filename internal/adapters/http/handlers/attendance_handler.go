package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/http/middleware"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"
	"github.com/ugonnamorgan8-netizen/marvel/internal/core/services"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/response"
)

// AttendanceHandler handles attendance requests
type AttendanceHandler struct {
	attendanceService *services.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendanceService *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// List godoc
// @Summary List attendance
// @Description Returns attendance records with optional filters
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param student_id query int false "Filter by student"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param type query string false "Session type"
// @Success 200 {object} response.Response
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *fiber.Ctx) error {
	filter := &repositories.AttendanceFilter{
		StudentID: uint(c.QueryInt("student_id")),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Type:      c.Query("type"),
	}

	records, err := h.attendanceService.List(c.Context(), filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to list attendance")
	}

	return response.Success(c, records)
}

// Mark godoc
// @Summary Mark attendance
// @Description Records attendance for one student
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.MarkInput true "Attendance record"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *fiber.Ctx) error {
	var input services.MarkInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.StudentID == 0 || input.Date.IsZero() {
		return response.ValidationFailed(c, []response.FieldError{
			{Field: "student_id", Message: "student id and date are required"},
		})
	}

	if principal := middleware.PrincipalFromCtx(c); principal != nil {
		input.MarkedByID = &principal.UserID
	}

	record, err := h.attendanceService.Mark(c.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to mark attendance")
	}

	return response.Created(c, record)
}

type bulkMarkRequest struct {
	Records []*services.MarkInput `json:"records"`
}

// MarkBulk godoc
// @Summary Mark attendance in bulk
// @Description Records attendance for several students in one call
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body bulkMarkRequest true "Attendance records"
// @Success 201 {object} response.Response
// @Router /attendance/bulk [post]
func (h *AttendanceHandler) MarkBulk(c *fiber.Ctx) error {
	var req bulkMarkRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if len(req.Records) == 0 {
		return response.BadRequest(c, "At least one record is required")
	}

	if principal := middleware.PrincipalFromCtx(c); principal != nil {
		for _, input := range req.Records {
			input.MarkedByID = &principal.UserID
		}
	}

	records, skipped, err := h.attendanceService.MarkBulk(c.Context(), req.Records)
	if err != nil {
		return response.InternalServerError(c, "Failed to mark attendance")
	}

	return response.Created(c, fiber.Map{
		"marked":  records,
		"skipped": skipped,
	})
}

type updateAttendanceRequest struct {
	Present *bool   `json:"present"`
	Notes   *string `json:"notes"`
}

// Update godoc
// @Summary Update attendance
// @Description Updates an attendance record
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attendance ID"
// @Param request body updateAttendanceRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /attendance/{id} [put]
func (h *AttendanceHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid attendance id")
	}

	var req updateAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	record, err := h.attendanceService.Update(c.Context(), id, req.Present, req.Notes)
	if err != nil {
		if errors.Is(err, services.ErrAttendanceNotFound) {
			return response.NotFound(c, "Attendance record not found")
		}
		return response.InternalServerError(c, "Failed to update attendance")
	}

	return response.Success(c, record)
}

// Delete godoc
// @Summary Delete attendance
// @Description Removes an attendance record
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attendance ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid attendance id")
	}

	if err := h.attendanceService.Delete(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrAttendanceNotFound) {
			return response.NotFound(c, "Attendance record not found")
		}
		return response.InternalServerError(c, "Failed to delete attendance")
	}

	return response.SuccessMessage(c, "Attendance record deleted", nil)
}

// StudentSummary godoc
// @Summary Student attendance summary
// @Description Returns a student's attendance records with aggregates
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /attendance/student/{studentId} [get]
func (h *AttendanceHandler) StudentSummary(c *fiber.Ctx) error {
	studentID, err := parseID(c, "studentId")
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	if err := requireOwnStudent(c, studentID); err != nil {
		return err
	}

	records, summary, err := h.attendanceService.StudentSummary(c.Context(), studentID)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch attendance")
	}

	return response.Success(c, fiber.Map{
		"records": records,
		"summary": summary,
	})
}
