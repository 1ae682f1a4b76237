package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/http/middleware"
	"github.com/ugonnamorgan8-netizen/marvel/internal/core/services"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/response"
)

// TrainingHandler handles training log requests
type TrainingHandler struct {
	trainingService *services.TrainingService
}

// NewTrainingHandler creates a new training handler
func NewTrainingHandler(trainingService *services.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingService: trainingService}
}

// Create godoc
// @Summary Log training session
// @Description Records a training session for a student
// @Tags training
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateTrainingLogInput true "Session details"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /training [post]
func (h *TrainingHandler) Create(c *fiber.Ctx) error {
	var input services.CreateTrainingLogInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.StudentID == 0 || input.SessionDate.IsZero() {
		return response.ValidationFailed(c, []response.FieldError{
			{Field: "student_id", Message: "student id and session date are required"},
		})
	}

	if principal := middleware.PrincipalFromCtx(c); principal != nil {
		input.InstructorID = &principal.UserID
	}

	entry, err := h.trainingService.Create(c.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to create training log")
	}

	return response.Created(c, entry)
}

// ListByStudent godoc
// @Summary Student training logs
// @Description Returns a student's training logs
// @Tags training
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /training/student/{studentId} [get]
func (h *TrainingHandler) ListByStudent(c *fiber.Ctx) error {
	studentID, err := parseID(c, "studentId")
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	if err := requireOwnStudent(c, studentID); err != nil {
		return err
	}

	logs, err := h.trainingService.ListByStudent(c.Context(), studentID)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch training logs")
	}

	return response.Success(c, logs)
}

// Progress godoc
// @Summary Student training progress
// @Description Returns a student's training progress summary
// @Tags training
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /training/student/{studentId}/progress [get]
func (h *TrainingHandler) Progress(c *fiber.Ctx) error {
	studentID, err := parseID(c, "studentId")
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	if err := requireOwnStudent(c, studentID); err != nil {
		return err
	}

	progress, err := h.trainingService.Progress(c.Context(), studentID)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to compute progress")
	}

	return response.Success(c, progress)
}

// Get godoc
// @Summary Get training log
// @Description Returns a single training log
// @Tags training
// @Produce json
// @Security BearerAuth
// @Param id path int true "Training log ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /training/{id} [get]
func (h *TrainingHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid training log id")
	}

	entry, err := h.trainingService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTrainingLogNotFound) {
			return response.NotFound(c, "Training log not found")
		}
		return response.InternalServerError(c, "Failed to fetch training log")
	}

	if err := requireOwnStudent(c, entry.StudentID); err != nil {
		return err
	}

	return response.Success(c, entry)
}

// Update godoc
// @Summary Update training log
// @Description Applies a partial update to a training log
// @Tags training
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Training log ID"
// @Param request body services.UpdateTrainingLogInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /training/{id} [put]
func (h *TrainingHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid training log id")
	}

	var input services.UpdateTrainingLogInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	entry, err := h.trainingService.Update(c.Context(), id, &input)
	if err != nil {
		if errors.Is(err, services.ErrTrainingLogNotFound) {
			return response.NotFound(c, "Training log not found")
		}
		return response.InternalServerError(c, "Failed to update training log")
	}

	return response.Success(c, entry)
}

// Delete godoc
// @Summary Delete training log
// @Description Removes a training log
// @Tags training
// @Produce json
// @Security BearerAuth
// @Param id path int true "Training log ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /training/{id} [delete]
func (h *TrainingHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid training log id")
	}

	if err := h.trainingService.Delete(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrTrainingLogNotFound) {
			return response.NotFound(c, "Training log not found")
		}
		return response.InternalServerError(c, "Failed to delete training log")
	}

	return response.SuccessMessage(c, "Training log deleted", nil)
}
