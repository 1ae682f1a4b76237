package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// FlutterwaveService implements PaymentGateway against the Flutterwave v3
// REST API
type FlutterwaveService struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewFlutterwaveService creates a new Flutterwave client
func NewFlutterwaveService(secretKey, baseURL string) *FlutterwaveService {
	return &FlutterwaveService{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type flutterwaveEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// CreatePaymentLink requests a hosted payment page and returns its URL
func (s *FlutterwaveService) CreatePaymentLink(ctx context.Context, input *PaymentLinkInput) (string, error) {
	body := map[string]interface{}{
		"tx_ref":       input.Reference,
		"amount":       input.Amount,
		"currency":     input.Currency,
		"redirect_url": input.RedirectURL,
		"customer": map[string]string{
			"email": input.CustomerEmail,
			"name":  input.CustomerName,
		},
		"customizations": map[string]string{
			"title":       "Marvel Driving School",
			"description": input.Description,
		},
		"meta": input.Meta,
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := s.do(ctx, http.MethodPost, "/payments", body, &data); err != nil {
		return "", err
	}
	if data.Link == "" {
		return "", fmt.Errorf("flutterwave returned no payment link")
	}
	return data.Link, nil
}

// VerifyTransaction fetches the authoritative status for a transaction id
func (s *FlutterwaveService) VerifyTransaction(ctx context.Context, transactionID string) (*TransactionData, error) {
	var data TransactionData
	path := fmt.Sprintf("/transactions/%s/verify", url.PathEscape(transactionID))
	if err := s.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// VerifyTransactionByReference looks a transaction up by our reference.
// Returns nil, nil when the provider has nothing for it.
func (s *FlutterwaveService) VerifyTransactionByReference(ctx context.Context, txRef string) (*TransactionData, error) {
	var data []TransactionData
	path := "/transactions?tx_ref=" + url.QueryEscape(txRef)
	if err := s.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &data[0], nil
}

// do performs a request against the Flutterwave API and decodes the data
// field of the response envelope into out
func (s *FlutterwaveService) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("flutterwave request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var envelope flutterwaveEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("flutterwave returned invalid response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || envelope.Status != "success" {
		if envelope.Message != "" {
			return fmt.Errorf("flutterwave API error: %s", envelope.Message)
		}
		return fmt.Errorf("flutterwave API error: status %d", resp.StatusCode)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("flutterwave returned unexpected data shape: %w", err)
		}
	}

	return nil
}
