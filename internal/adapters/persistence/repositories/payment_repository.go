package repositories

import (
	"context"
	"time"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// paymentRepository implements PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment
func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByID gets a payment by ID
func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByReference gets a payment by its unique reference
func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// List lists payments with optional filters, newest first
func (r *paymentRepository) List(ctx context.Context, filter *PaymentFilter) ([]*models.Payment, error) {
	var payments []*models.Payment

	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if filter != nil {
		if filter.StudentID != 0 {
			query = query.Where("student_id = ?", filter.StudentID)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	err := query.Order("created_at DESC").Find(&payments).Error
	return payments, err
}

// SetPaymentLink stores the hosted payment page URL
func (r *paymentRepository) SetPaymentLink(ctx context.Context, id uint, link string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Update("payment_link", link).Error
}

// ApplyTerminalState transitions a payment to a terminal state with a
// single conditional UPDATE. The WHERE clause on status makes the write a
// compare-and-set: a payment that already reached a terminal state is not
// touched, so duplicate or conflicting notifications cannot overwrite the
// first outcome or its side fields.
func (r *paymentRepository) ApplyTerminalState(ctx context.Context, reference string, status models.PaymentStatus, flutterwaveRef, transactionID string, paidAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":          status,
		"flutterwave_ref": flutterwaveRef,
		"transaction_id":  transactionID,
	}
	if paidAt != nil {
		updates["paid_at"] = paidAt
	}

	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("reference = ? AND status = ?", reference, models.PaymentPending).
		Updates(updates)

	return result.RowsAffected > 0, result.Error
}

// CountByStatus counts payments in a given status
func (r *paymentRepository) CountByStatus(ctx context.Context, status models.PaymentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// Recent returns the most recent payments
func (r *paymentRepository) Recent(ctx context.Context, limit int) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&payments).Error
	return payments, err
}
