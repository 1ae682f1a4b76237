package handlers

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/http/middleware"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"
	"github.com/ugonnamorgan8-netizen/marvel/internal/config"
	"github.com/ugonnamorgan8-netizen/marvel/internal/core/services"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/response"
)

// PaymentHandler handles payment requests
type PaymentHandler struct {
	paymentService *services.PaymentService
	cfg            *config.Config
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, cfg: cfg}
}

// List godoc
// @Summary List payments
// @Description Returns payments with optional status filter
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Response
// @Router /payments [get]
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	filter := &repositories.PaymentFilter{
		Status: c.Query("status"),
	}

	payments, err := h.paymentService.List(c.Context(), filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payments")
	}

	return response.Success(c, payments)
}

// Get godoc
// @Summary Get payment
// @Description Returns a single payment by id
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid payment id")
	}

	payment, err := h.paymentService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return response.NotFound(c, "Payment not found")
		}
		return response.InternalServerError(c, "Failed to fetch payment")
	}

	if err := requireOwnStudent(c, payment.StudentID); err != nil {
		return err
	}

	return response.Success(c, payment)
}

// StudentPayments godoc
// @Summary Student payment history
// @Description Returns a student's payments with an aggregate summary
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/student/{studentId} [get]
func (h *PaymentHandler) StudentPayments(c *fiber.Ctx) error {
	studentID, err := parseID(c, "studentId")
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	if err := requireOwnStudent(c, studentID); err != nil {
		return err
	}

	payments, summary, err := h.paymentService.StudentPayments(c.Context(), studentID)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch payments")
	}

	return response.Success(c, fiber.Map{
		"payments": payments,
		"summary":  summary,
	})
}

// Initiate godoc
// @Summary Initiate payment
// @Description Creates a pending payment and requests a hosted payment link
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.InitiateInput true "Payment details"
// @Success 201 {object} response.Response{data=services.InitiateResult}
// @Failure 400 {object} response.Response
// @Router /payments/initiate [post]
func (h *PaymentHandler) Initiate(c *fiber.Ctx) error {
	var input services.InitiateInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.StudentID == 0 {
		return response.ValidationFailed(c, []response.FieldError{
			{Field: "student_id", Message: "student id is required"},
		})
	}

	if principal := middleware.PrincipalFromCtx(c); principal != nil && !principal.IsViewer() {
		input.CreatedByID = &principal.UserID
	}

	result, err := h.paymentService.Initiate(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, services.ErrInvalidAmount):
			return response.ValidationFailed(c, []response.FieldError{
				{Field: "amount", Message: "amount must be greater than zero"},
			})
		case errors.Is(err, services.ErrDuplicateReference):
			return response.Conflict(c, "Payment reference already exists")
		default:
			return response.InternalServerError(c, "Failed to initiate payment")
		}
	}

	return response.Created(c, result)
}

// Verify godoc
// @Summary Verify payment
// @Description Reconciles a payment against the provider's record
// @Tags payments
// @Produce json
// @Param reference query string false "Payment reference"
// @Param transaction_id query string false "Provider transaction id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/verify [get]
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	reference := c.Query("reference", c.Query("tx_ref"))
	transactionID := c.Query("transaction_id")
	if reference == "" && transactionID == "" {
		return response.BadRequest(c, "A payment reference or transaction id is required")
	}

	payment, err := h.paymentService.Verify(c.Context(), reference, transactionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			return response.NotFound(c, "Payment not found")
		case errors.Is(err, services.ErrTransactionNotFound):
			return response.NotFound(c, "Transaction not found at provider")
		default:
			return response.Error(c, fiber.StatusBadGateway, "Payment verification failed")
		}
	}

	return response.Success(c, payment)
}

// Callback godoc
// @Summary Payment redirect callback
// @Description Reconciles the payment, then redirects the payer to the frontend
// @Tags payments
// @Param tx_ref query string false "Payment reference"
// @Param transaction_id query string false "Provider transaction id"
// @Param status query string false "Provider-reported status"
// @Success 302
// @Router /payments/callback [get]
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	reference := c.Query("tx_ref")

	// Reconcile from the provider's record, never from the query string the
	// payer's browser carried over.
	h.paymentService.HandleCallback(c.Context(), reference, c.Query("transaction_id"))

	status := "unknown"
	if reference != "" {
		if payment, err := h.paymentService.GetByReference(c.Context(), reference); err == nil {
			status = string(payment.Status)
		}
	}

	redirect := fmt.Sprintf("%s/payments?ref=%s&status=%s",
		h.cfg.FrontendURL, url.QueryEscape(reference), url.QueryEscape(status))
	return c.Redirect(redirect, fiber.StatusFound)
}

// Webhook godoc
// @Summary Payment webhook
// @Description Receives signed provider notifications and reconciles payments
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	signature := c.Get("verif-hash")
	secret := h.cfg.Flutterwave.SecretHash
	if secret == "" || subtle.ConstantTimeCompare([]byte(signature), []byte(secret)) != 1 {
		return response.Unauthorized(c, "Invalid webhook signature")
	}

	var payload services.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return response.BadRequest(c, "Invalid webhook payload")
	}

	h.paymentService.HandleWebhook(c.Context(), &payload)

	// Always acknowledge an authentic webhook so the provider stops
	// retrying; reconciliation problems are logged server-side.
	return response.SuccessMessage(c, "Webhook received", nil)
}
