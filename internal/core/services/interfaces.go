package services

import (
	"context"
	"io"
)

// PaymentLinkInput holds everything the provider needs to create a hosted
// payment page
type PaymentLinkInput struct {
	Amount        float64
	Currency      string
	CustomerEmail string
	CustomerName  string
	Reference     string
	Description   string
	RedirectURL   string
	Meta          map[string]interface{}
}

// TransactionData is the provider's authoritative view of a transaction
type TransactionData struct {
	ID       int64   `json:"id"`
	TxRef    string  `json:"tx_ref"`
	FlwRef   string  `json:"flw_ref"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
}

// PaymentGateway abstracts the external payment provider
type PaymentGateway interface {
	CreatePaymentLink(ctx context.Context, input *PaymentLinkInput) (string, error)
	VerifyTransaction(ctx context.Context, transactionID string) (*TransactionData, error)
	// VerifyTransactionByReference returns nil, nil when the provider has
	// no transaction for the reference
	VerifyTransactionByReference(ctx context.Context, txRef string) (*TransactionData, error)
}

// UploadResult is the outcome of a file upload
type UploadResult struct {
	URL      string
	PublicID string
	Bytes    int
}

// FileStorage abstracts the external file storage provider
type FileStorage interface {
	Upload(ctx context.Context, file io.Reader, folder string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}
