package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"
)

var referencePattern = regexp.MustCompile(`^MDS-[0-9a-z]+-[0-9A-Z]{6}$`)

func TestGenerateReferenceFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		ref := GenerateReference()
		assert.Regexp(t, referencePattern, ref)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

func TestInitiateCreatesPendingPayment(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{link: "https://checkout.example.com/pay/abc"}
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), gateway, newTestConfig())
	student := seedStudent(t, db, "MDS250010", models.StudentActive)

	result, err := svc.Initiate(context.Background(), &InitiateInput{
		StudentID:   student.ID,
		Amount:      decimal.NewFromInt(50000),
		Description: "Course fee",
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPending, result.Payment.Status)
	assert.Regexp(t, referencePattern, result.Payment.Reference)
	assert.Equal(t, "NGN", result.Payment.Currency)
	assert.Equal(t, "https://checkout.example.com/pay/abc", result.PaymentLink)
	require.NotNil(t, result.Payment.PaymentLink)
	assert.Equal(t, 1, gateway.linkCalls)
}

func TestInitiateRejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), &fakeGateway{}, newTestConfig())
	student := seedStudent(t, db, "MDS250011", models.StudentActive)

	_, err := svc.Initiate(context.Background(), &InitiateInput{
		StudentID: student.ID,
		Amount:    decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestInitiateUnknownStudent(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), &fakeGateway{}, newTestConfig())

	_, err := svc.Initiate(context.Background(), &InitiateInput{
		StudentID: 999,
		Amount:    decimal.NewFromInt(1000),
	})
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestInitiateSurvivesGatewayFailure(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{linkErr: errors.New("provider down")}
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), gateway, newTestConfig())
	student := seedStudent(t, db, "MDS250012", models.StudentActive)

	result, err := svc.Initiate(context.Background(), &InitiateInput{
		StudentID: student.ID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	// The pending payment survives the link failure for later reconciliation
	assert.Equal(t, models.PaymentPending, result.Payment.Status)
	assert.Empty(t, result.PaymentLink)
	assert.Nil(t, result.Payment.PaymentLink)

	stored, err := svc.GetByReference(context.Background(), result.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.Status)
}

func TestVerifyMarksPaymentPaid(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{link: "https://checkout.example.com/pay/abc"}
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), gateway, newTestConfig())
	student := seedStudent(t, db, "MDS250013", models.StudentActive)

	created, err := svc.Initiate(context.Background(), &InitiateInput{
		StudentID: student.ID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	gateway.txn = &TransactionData{
		ID:     12345,
		TxRef:  created.Payment.Reference,
		FlwRef: "FLW-REF-1",
		Status: "successful",
	}

	payment, err := svc.Verify(context.Background(), created.Payment.Reference, "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, payment.Status)
	require.NotNil(t, payment.PaidAt)
	require.NotNil(t, payment.FlutterwaveRef)
	assert.Equal(t, "FLW-REF-1", *payment.FlutterwaveRef)
	require.NotNil(t, payment.TransactionID)
	assert.Equal(t, "12345", *payment.TransactionID)
}

func TestVerifyMarksPaymentFailed(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), gateway, newTestConfig())
	student := seedStudent(t, db, "MDS250014", models.StudentActive)

	created, err := svc.Initiate(context.Background(), &InitiateInput{
		StudentID: student.ID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	gateway.txn = &TransactionData{TxRef: created.Payment.Reference, Status: "cancelled"}

	payment, err := svc.Verify(context.Background(), created.Payment.Reference, "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, payment.Status)
	assert.Nil(t, payment.PaidAt)
}

func TestVerifyByTransactionIDAlone(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), gateway, newTestConfig())
	student := seedStudent(t, db, "MDS250022", models.StudentActive)

	created, err := svc.Initiate(context.Background(), &InitiateInput{
		StudentID: student.ID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	gateway.txn = &TransactionData{ID: 888, TxRef: created.Payment.Reference, Status: "successful"}

	// No reference given: the payment is resolved from the provider's tx_ref
	payment, err := svc.Verify(context.Background(), "", "888")
	require.NoError(t, err)
	assert.Equal(t, created.Payment.Reference, payment.Reference)
	assert.Equal(t, models.PaymentPaid, payment.Status)
}

func TestVerifyAppliesOutcomeToProviderReferenceOnly(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), gateway, newTestConfig())
	student := seedStudent(t, db, "MDS250023", models.StudentActive)

	first, err := svc.Initiate(context.Background(), &InitiateInput{StudentID: student.ID, Amount: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	second, err := svc.Initiate(context.Background(), &InitiateInput{StudentID: student.ID, Amount: decimal.NewFromInt(2000)})
	require.NoError(t, err)

	// The transaction belongs to the second payment; naming the first one in
	// the query must not get it marked paid
	gateway.txn = &TransactionData{ID: 999, TxRef: second.Payment.Reference, Status: "successful"}

	payment, err := svc.Verify(context.Background(), first.Payment.Reference, "999")
	require.NoError(t, err)
	assert.Equal(t, second.Payment.Reference, payment.Reference)
	assert.Equal(t, models.PaymentPaid, payment.Status)

	stored, err := svc.GetByReference(context.Background(), first.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.Status)
}

func TestVerifyUnknownProviderReference(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{txn: &TransactionData{ID: 1000, TxRef: "MDS-FOREIGN-REF", Status: "successful"}}
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), gateway, newTestConfig())
	student := seedStudent(t, db, "MDS250024", models.StudentActive)

	created, err := svc.Initiate(context.Background(), &InitiateInput{StudentID: student.ID, Amount: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), created.Payment.Reference, "1000")
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	stored, err := svc.GetByReference(context.Background(), created.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.Status)
}

func TestCallbackAppliesToProviderReference(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), gateway, newTestConfig())
	student := seedStudent(t, db, "MDS250025", models.StudentActive)

	first, err := svc.Initiate(context.Background(), &InitiateInput{StudentID: student.ID, Amount: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	second, err := svc.Initiate(context.Background(), &InitiateInput{StudentID: student.ID, Amount: decimal.NewFromInt(2000)})
	require.NoError(t, err)

	gateway.txn = &TransactionData{ID: 1001, TxRef: second.Payment.Reference, Status: "successful"}
	svc.HandleCallback(context.Background(), first.Payment.Reference, "1001")

	stored, err := svc.GetByReference(context.Background(), first.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.Status)

	stored, err = svc.GetByReference(context.Background(), second.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, stored.Status)
}

func TestVerifyProviderHasNoRecord(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), gateway, newTestConfig())
	student := seedStudent(t, db, "MDS250015", models.StudentActive)

	created, err := svc.Initiate(context.Background(), &InitiateInput{
		StudentID: student.ID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), created.Payment.Reference, "")
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	// An absent provider record never fails the payment
	stored, err := svc.GetByReference(context.Background(), created.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.Status)
}

func TestVerifyProviderErrorLeavesPaymentPending(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{txnErr: errors.New("timeout")}
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), gateway, newTestConfig())
	student := seedStudent(t, db, "MDS250016", models.StudentActive)

	created, err := svc.Initiate(context.Background(), &InitiateInput{
		StudentID: student.ID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), created.Payment.Reference, "")
	require.Error(t, err)

	stored, err := svc.GetByReference(context.Background(), created.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.Status)
}

func TestWebhookDoubleDeliveryIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), &fakeGateway{}, newTestConfig())
	student := seedStudent(t, db, "MDS250017", models.StudentActive)

	created, err := svc.Initiate(context.Background(), &InitiateInput{
		StudentID: student.ID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	payload := &WebhookPayload{Event: "charge.completed"}
	payload.Data.ID = 555
	payload.Data.TxRef = created.Payment.Reference
	payload.Data.FlwRef = "FLW-REF-2"
	payload.Data.Status = "successful"

	svc.HandleWebhook(context.Background(), payload)

	first, err := svc.GetByReference(context.Background(), created.Payment.Reference)
	require.NoError(t, err)
	require.Equal(t, models.PaymentPaid, first.Status)
	require.NotNil(t, first.PaidAt)
	firstPaidAt := *first.PaidAt

	svc.HandleWebhook(context.Background(), payload)

	second, err := svc.GetByReference(context.Background(), created.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, second.Status)
	require.NotNil(t, second.PaidAt)
	assert.Equal(t, firstPaidAt, *second.PaidAt)
}

func TestTerminalStateIsNeverOverwritten(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), &fakeGateway{}, newTestConfig())
	student := seedStudent(t, db, "MDS250018", models.StudentActive)

	created, err := svc.Initiate(context.Background(), &InitiateInput{
		StudentID: student.ID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	paid := &WebhookPayload{Event: "charge.completed"}
	paid.Data.TxRef = created.Payment.Reference
	paid.Data.Status = "successful"
	svc.HandleWebhook(context.Background(), paid)

	failed := &WebhookPayload{Event: "charge.completed"}
	failed.Data.TxRef = created.Payment.Reference
	failed.Data.Status = "failed"
	svc.HandleWebhook(context.Background(), failed)

	stored, err := svc.GetByReference(context.Background(), created.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, stored.Status)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), &fakeGateway{}, newTestConfig())
	student := seedStudent(t, db, "MDS250019", models.StudentActive)

	created, err := svc.Initiate(context.Background(), &InitiateInput{
		StudentID: student.ID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	payload := &WebhookPayload{Event: "transfer.completed"}
	payload.Data.TxRef = created.Payment.Reference
	payload.Data.Status = "successful"
	svc.HandleWebhook(context.Background(), payload)

	stored, err := svc.GetByReference(context.Background(), created.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.Status)
}

func TestCallbackReconcilesFromProvider(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), gateway, newTestConfig())
	student := seedStudent(t, db, "MDS250020", models.StudentActive)

	created, err := svc.Initiate(context.Background(), &InitiateInput{
		StudentID: student.ID,
		Amount:    decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	gateway.txn = &TransactionData{ID: 777, TxRef: created.Payment.Reference, Status: "successful"}
	svc.HandleCallback(context.Background(), created.Payment.Reference, "777")

	stored, err := svc.GetByReference(context.Background(), created.Payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, stored.Status)
}

func TestStudentPaymentsSummary(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{}
	svc := NewPaymentService(repositories.NewPaymentRepository(db), repositories.NewStudentRepository(db), gateway, newTestConfig())
	student := seedStudent(t, db, "MDS250021", models.StudentActive)

	paid, err := svc.Initiate(context.Background(), &InitiateInput{StudentID: student.ID, Amount: decimal.NewFromInt(30000)})
	require.NoError(t, err)
	_, err = svc.Initiate(context.Background(), &InitiateInput{StudentID: student.ID, Amount: decimal.NewFromInt(20000)})
	require.NoError(t, err)

	payload := &WebhookPayload{Event: "charge.completed"}
	payload.Data.TxRef = paid.Payment.Reference
	payload.Data.Status = "successful"
	svc.HandleWebhook(context.Background(), payload)

	payments, summary, err := svc.StudentPayments(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Paid)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, 0, summary.Failed)
	assert.True(t, summary.TotalPaid.Equal(decimal.NewFromInt(30000)))
	assert.True(t, summary.TotalPending.Equal(decimal.NewFromInt(20000)))
}
