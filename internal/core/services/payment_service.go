package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"
	"github.com/ugonnamorgan8-netizen/marvel/internal/config"

	"gorm.io/gorm"
)

// Payment errors
var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrDuplicateReference  = errors.New("payment reference already exists")
	ErrTransactionNotFound = errors.New("transaction not found at provider")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
)

// PaymentService handles the payment lifecycle: initiation against the
// provider and reconciliation of terminal states from verification,
// redirect callbacks and webhooks
type PaymentService struct {
	paymentRepo repositories.PaymentRepository
	studentRepo repositories.StudentRepository
	gateway     PaymentGateway
	cfg         *config.Config
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	studentRepo repositories.StudentRepository,
	gateway PaymentGateway,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		studentRepo: studentRepo,
		gateway:     gateway,
		cfg:         cfg,
	}
}

// InitiateInput represents payment initiation input
type InitiateInput struct {
	StudentID   uint            `json:"student_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedByID *uint           `json:"-"`
}

// InitiateResult is the outcome of starting a payment
type InitiateResult struct {
	Payment     *models.Payment `json:"payment"`
	PaymentLink string          `json:"paymentLink,omitempty"`
}

// Initiate creates a pending payment and requests a hosted payment link.
// The pending record is created first; a provider failure on link creation
// leaves the payment in place so it can still be reconciled later.
func (s *PaymentService) Initiate(ctx context.Context, input *InitiateInput) (*InitiateResult, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	student, err := s.studentRepo.GetByID(ctx, input.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	payment := &models.Payment{
		StudentID:   student.ID,
		Amount:      input.Amount,
		Currency:    "NGN",
		Status:      models.PaymentPending,
		Reference:   GenerateReference(),
		Description: input.Description,
		CreatedByID: input.CreatedByID,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateReference
		}
		return nil, err
	}

	customerEmail := student.Email
	if customerEmail == "" {
		customerEmail = fmt.Sprintf("%s@marvel-driving.com", student.StudentCode)
	}

	amount, _ := payment.Amount.Float64()
	link, err := s.gateway.CreatePaymentLink(ctx, &PaymentLinkInput{
		Amount:        amount,
		Currency:      payment.Currency,
		CustomerEmail: customerEmail,
		CustomerName:  student.FullName(),
		Reference:     payment.Reference,
		Description:   payment.Description,
		RedirectURL:   s.cfg.AppURL + "/api/payments/callback",
		Meta: map[string]interface{}{
			"student_id":   student.ID,
			"student_code": student.StudentCode,
		},
	})
	if err != nil {
		// Link creation failing is not fatal: the pending payment exists and
		// the client can retry or pay through another channel.
		log.Printf("⚠️ Payment link creation failed for %s: %v", payment.Reference, err)
		return &InitiateResult{Payment: payment}, nil
	}

	if err := s.paymentRepo.SetPaymentLink(ctx, payment.ID, link); err != nil {
		log.Printf("⚠️ Failed to store payment link for %s: %v", payment.Reference, err)
	}
	payment.PaymentLink = &link

	log.Printf("✅ Payment initiated: %s for student %s", payment.Reference, student.StudentCode)

	return &InitiateResult{Payment: payment, PaymentLink: link}, nil
}

// Verify reconciles a payment against the provider's authoritative record,
// looked up by transaction id when given, otherwise by our reference. The
// local payment is resolved from the tx_ref the provider reports, so an
// outcome can only ever land on the payment it belongs to. Provider errors
// are returned to the caller; the payment is never marked failed on the
// strength of a failed lookup.
func (s *PaymentService) Verify(ctx context.Context, reference, transactionID string) (*models.Payment, error) {
	var txn *TransactionData
	var err error
	switch {
	case transactionID != "":
		txn, err = s.gateway.VerifyTransaction(ctx, transactionID)
	case reference != "":
		txn, err = s.gateway.VerifyTransactionByReference(ctx, reference)
	default:
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	if txn == nil || txn.TxRef == "" {
		return nil, ErrTransactionNotFound
	}

	payment, err := s.paymentRepo.GetByReference(ctx, txn.TxRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	s.applyTransition(ctx, payment.Reference, txn)

	return s.paymentRepo.GetByReference(ctx, payment.Reference)
}

// HandleCallback reconciles a payment after the provider redirects the
// payer back to us. Reconciliation failures are logged and swallowed; the
// redirect must succeed regardless so the payer lands on the frontend.
func (s *PaymentService) HandleCallback(ctx context.Context, reference, transactionID string) {
	if reference == "" && transactionID == "" {
		return
	}

	var txn *TransactionData
	var err error
	if transactionID != "" {
		txn, err = s.gateway.VerifyTransaction(ctx, transactionID)
	} else {
		txn, err = s.gateway.VerifyTransactionByReference(ctx, reference)
	}
	if err != nil {
		log.Printf("⚠️ Callback verification failed for %s: %v", reference, err)
		return
	}
	if txn == nil || txn.TxRef == "" {
		log.Printf("⚠️ Callback for %s: provider has no transaction", reference)
		return
	}

	// Apply to the reference the provider reports, not the one the payer's
	// browser carried over.
	s.applyTransition(ctx, txn.TxRef, txn)
}

// WebhookPayload is the body of a provider webhook notification
type WebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID       int64   `json:"id"`
		TxRef    string  `json:"tx_ref"`
		FlwRef   string  `json:"flw_ref"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		Status   string  `json:"status"`
	} `json:"data"`
}

// HandleWebhook reconciles a payment from a signed webhook notification.
// The signature has already been checked by the transport layer. Only
// charge.completed events carry a terminal outcome; everything else is
// acknowledged and ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload *WebhookPayload) {
	if payload.Event != "charge.completed" {
		return
	}
	if payload.Data.TxRef == "" {
		return
	}

	s.applyTransition(ctx, payload.Data.TxRef, &TransactionData{
		ID:       payload.Data.ID,
		TxRef:    payload.Data.TxRef,
		FlwRef:   payload.Data.FlwRef,
		Amount:   payload.Data.Amount,
		Currency: payload.Data.Currency,
		Status:   payload.Data.Status,
	})
}

// applyTransition maps a provider outcome onto our state machine and
// applies it. The update only touches pending rows, so concurrent
// verification, callback and webhook deliveries for the same payment
// resolve to a single winner and the rest are no-ops.
func (s *PaymentService) applyTransition(ctx context.Context, reference string, txn *TransactionData) {
	status := models.PaymentFailed
	var paidAt *time.Time
	if txn.Status == "successful" {
		status = models.PaymentPaid
		now := time.Now()
		paidAt = &now
	}

	transactionID := ""
	if txn.ID != 0 {
		transactionID = strconv.FormatInt(txn.ID, 10)
	}

	applied, err := s.paymentRepo.ApplyTerminalState(ctx, reference, status, txn.FlwRef, transactionID, paidAt)
	if err != nil {
		log.Printf("⚠️ Failed to apply %s to payment %s: %v", status, reference, err)
		return
	}
	if applied {
		log.Printf("✅ Payment %s marked %s", reference, status)
	}
}

// List returns payments matching the filter
func (s *PaymentService) List(ctx context.Context, filter *repositories.PaymentFilter) ([]*models.Payment, error) {
	return s.paymentRepo.List(ctx, filter)
}

// GetByID gets a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// GetByReference gets a payment by its reference
func (s *PaymentService) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// PaymentSummary aggregates a student's payment history
type PaymentSummary struct {
	Total        int             `json:"total"`
	Paid         int             `json:"paid"`
	Pending      int             `json:"pending"`
	Failed       int             `json:"failed"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	TotalPending decimal.Decimal `json:"totalPending"`
}

// StudentPayments returns a student's payments with an aggregate summary
func (s *PaymentService) StudentPayments(ctx context.Context, studentID uint) ([]*models.Payment, *PaymentSummary, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrStudentNotFound
		}
		return nil, nil, err
	}

	payments, err := s.paymentRepo.List(ctx, &repositories.PaymentFilter{StudentID: studentID})
	if err != nil {
		return nil, nil, err
	}

	summary := &PaymentSummary{
		Total:        len(payments),
		TotalPaid:    decimal.Zero,
		TotalPending: decimal.Zero,
	}
	for _, p := range payments {
		switch p.Status {
		case models.PaymentPaid:
			summary.Paid++
			summary.TotalPaid = summary.TotalPaid.Add(p.Amount)
		case models.PaymentPending:
			summary.Pending++
			summary.TotalPending = summary.TotalPending.Add(p.Amount)
		case models.PaymentFailed:
			summary.Failed++
		}
	}

	return payments, summary, nil
}

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateReference produces a unique payment reference of the form
// MDS-<timestamp base36>-<6 random chars>
func GenerateReference() string {
	ts := big.NewInt(time.Now().UnixMilli()).Text(36)

	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceAlphabet))))
		if err != nil {
			// crypto/rand failing means the platform is broken; fall back to
			// a time-derived digit rather than panicking mid-request.
			suffix[i] = referenceAlphabet[time.Now().UnixNano()%36]
			continue
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}

	return fmt.Sprintf("MDS-%s-%s", ts, string(suffix))
}
