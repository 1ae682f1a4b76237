package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/config"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/password"
)

// newTestDB opens an isolated in-memory database per test
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		AppMode:     "dev",
		Port:        "5000",
		AppURL:      "http://localhost:5000",
		FrontendURL: "http://localhost:5173",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Flutterwave: config.FlutterwaveConfig{
			BaseURL:    "http://provider.invalid",
			SecretKey:  "FLWSECK_TEST",
			SecretHash: "test-webhook-hash",
		},
	}
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role, active bool) *models.User {
	t.Helper()

	hash, err := password.Hash("secret123")
	require.NoError(t, err)

	user := &models.User{
		Email:     email,
		Password:  hash,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  active,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

func seedStudent(t *testing.T, db *gorm.DB, code string, status models.StudentStatus) *models.Student {
	t.Helper()

	student := &models.Student{
		StudentCode: code,
		FirstName:   "Ada",
		LastName:    "Okafor",
		Email:       "ada@example.com",
		Phone:       "08030000000",
		CourseType:  "standard",
		Status:      status,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(student).Error)
	return student
}

// fakeGateway is a scriptable PaymentGateway for tests
type fakeGateway struct {
	link        string
	linkErr     error
	txn         *TransactionData
	txnErr      error
	linkCalls   int
	verifyCalls int
}

func (f *fakeGateway) CreatePaymentLink(ctx context.Context, input *PaymentLinkInput) (string, error) {
	f.linkCalls++
	if f.linkErr != nil {
		return "", f.linkErr
	}
	return f.link, nil
}

func (f *fakeGateway) VerifyTransaction(ctx context.Context, transactionID string) (*TransactionData, error) {
	f.verifyCalls++
	return f.txn, f.txnErr
}

func (f *fakeGateway) VerifyTransactionByReference(ctx context.Context, txRef string) (*TransactionData, error) {
	f.verifyCalls++
	return f.txn, f.txnErr
}
