package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// PaymentService defines the interface to the external payment processor.
// Only the outcome is recorded here; transfer mechanics live with the provider.
type PaymentService interface {
	ProcessPayout(reference string, amountCents int64) (providerID string, err error)
}

// HTTPPaymentService calls a Stripe-style REST API to create transfers
type HTTPPaymentService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var paymentServiceInstance PaymentService

// InitPaymentService initializes the payment service
func InitPaymentService(baseURL, apiKey string) PaymentService {
	paymentServiceInstance = &HTTPPaymentService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	return paymentServiceInstance
}

// GetPaymentService returns the initialized payment service instance
func GetPaymentService() PaymentService {
	return paymentServiceInstance
}

// SetPaymentService sets the payment service instance (primarily for testing)
func SetPaymentService(service PaymentService) {
	paymentServiceInstance = service
}

type payoutRequest struct {
	Reference   string `json:"reference"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

type payoutResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

// ProcessPayout submits a payout to the provider and returns its id.
// The reference is our idempotency key: providers treat repeated
// references as the same transfer.
func (s *HTTPPaymentService) ProcessPayout(reference string, amountCents int64) (string, error) {
	payload, err := json.Marshal(payoutRequest{
		Reference:   reference,
		AmountCents: amountCents,
		Currency:    "usd",
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode payout request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/v1/payouts", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build payout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	var body payoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode payout response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		if body.Error != "" {
			return "", fmt.Errorf("payment provider rejected payout: %s", body.Error)
		}
		return "", fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	return body.ID, nil
}

// MockPaymentService is a PaymentService for tests
type MockPaymentService struct {
	mu        sync.Mutex
	Processed []string // references, in call order
	Amounts   []int64  // cent amounts, in call order
	// Err, when set, is returned from ProcessPayout
	Err error
}

// NewMockPaymentService creates a new mock payment service
func NewMockPaymentService() *MockPaymentService {
	return &MockPaymentService{}
}

// SetAsMockForTesting sets this mock as the global payment service instance
func (m *MockPaymentService) SetAsMockForTesting() {
	SetPaymentService(m)
}

// ProcessPayout records the reference and returns a deterministic provider id
func (m *MockPaymentService) ProcessPayout(reference string, amountCents int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Processed = append(m.Processed, reference)
	m.Amounts = append(m.Amounts, amountCents)
	return "po_mock_" + reference, nil
}

// ProcessedCount returns how many payouts were processed
func (m *MockPaymentService) ProcessedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Processed)
}
