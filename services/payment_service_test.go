package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHTTPPaymentServiceProcessPayout(t *testing.T) {
	var received payoutRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payouts", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		json.NewDecoder(r.Body).Decode(&received)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(payoutResponse{ID: "po_123", Status: "paid"})
	}))
	defer server.Close()

	svc := &HTTPPaymentService{
		baseURL: server.URL,
		apiKey:  "test-key",
		client:  &http.Client{Timeout: 5 * time.Second},
	}

	providerID, err := svc.ProcessPayout("ref-1", 9000)
	assert.NoError(t, err)
	assert.Equal(t, "po_123", providerID)
	assert.Equal(t, "ref-1", received.Reference)
	assert.Equal(t, int64(9000), received.AmountCents)
	assert.Equal(t, "usd", received.Currency)
}

func TestHTTPPaymentServiceProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(payoutResponse{Error: "account not verified"})
	}))
	defer server.Close()

	svc := &HTTPPaymentService{
		baseURL: server.URL,
		apiKey:  "test-key",
		client:  &http.Client{Timeout: 5 * time.Second},
	}

	_, err := svc.ProcessPayout("ref-1", 9000)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "account not verified")
}

func TestHTTPPaymentServiceUnreachable(t *testing.T) {
	svc := &HTTPPaymentService{
		baseURL: "http://127.0.0.1:1",
		apiKey:  "test-key",
		client:  &http.Client{Timeout: time.Second},
	}

	_, err := svc.ProcessPayout("ref-1", 9000)
	assert.Error(t, err)
}

func TestMockPaymentService(t *testing.T) {
	mock := NewMockPaymentService()

	providerID, err := mock.ProcessPayout("ref-1", 100)
	assert.NoError(t, err)
	assert.Equal(t, "po_mock_ref-1", providerID)
	assert.Equal(t, 1, mock.ProcessedCount())
}
