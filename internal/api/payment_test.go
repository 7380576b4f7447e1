// File: internal/api/payment_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAwaiter plays the loopback server's part of the handshake.
type fakeAwaiter struct {
	params url.Values
	err    error
}

func (f *fakeAwaiter) Await(ctx context.Context, route string) (url.Values, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.params, nil
}

func (f *fakeAwaiter) RedirectURL(route string) string {
	return "http://127.0.0.1:43110" + route
}

func TestPaymentService_CheckoutHandshake(t *testing.T) {
	var sessionCreated, paymentCompleted bool
	var confirmedSessionID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/create-checkout-session":
			sessionCreated = true
			var in CheckoutInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "sch-1", in.ScholarshipID)
			json.NewEncoder(w).Encode(map[string]string{"url": "https://pay.example.com/cs_123"})
		case r.Method == http.MethodPatch && r.URL.Path == "/scholarship-payment-success":
			paymentCompleted = true
			confirmedSessionID = r.URL.Query().Get("session_id")
			json.NewEncoder(w).Encode(PaymentResult{Success: true, TransactionID: "tx-9"})
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})
	client, _ := newTestAPI(t, handler)

	var opened string
	awaiter := &fakeAwaiter{params: url.Values{"session_id": []string{"cs_123"}}}
	svc := NewPaymentService(client, awaiter, "/payment/return", func(u string) error {
		opened = u
		return nil
	}, zap.NewNop())

	result, err := svc.Checkout(context.Background(), CheckoutInput{
		ScholarshipID: "sch-1",
		UserEmail:     "jane@example.com",
		UserName:      "Jane Doe",
	})
	require.NoError(t, err)

	assert.True(t, sessionCreated)
	assert.Equal(t, "https://pay.example.com/cs_123", opened, "the browser must be sent to the provider URL")
	assert.True(t, paymentCompleted)
	assert.Equal(t, "cs_123", confirmedSessionID)
	assert.True(t, result.Success)
	assert.Equal(t, "tx-9", result.TransactionID)
}

func TestPaymentService_CheckoutValidatesInput(t *testing.T) {
	client, _ := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be reached for invalid input")
	}))
	svc := NewPaymentService(client, &fakeAwaiter{}, "/payment/return", func(string) error { return nil }, zap.NewNop())

	_, err := svc.Checkout(context.Background(), CheckoutInput{UserEmail: "not-an-email"})
	require.Error(t, err)
}

func TestPaymentService_AbandonedCheckout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"url": "https://pay.example.com/cs_456"})
	})
	client, _ := newTestAPI(t, handler)

	awaiter := &fakeAwaiter{err: context.DeadlineExceeded}
	svc := NewPaymentService(client, awaiter, "/payment/return", func(string) error { return nil }, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := svc.Checkout(ctx, CheckoutInput{
		ScholarshipID: "sch-2",
		UserEmail:     "jane@example.com",
		UserName:      "Jane Doe",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestPaymentService_ReturnWithoutSessionID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"url": "https://pay.example.com/cs_789"})
	})
	client, _ := newTestAPI(t, handler)

	awaiter := &fakeAwaiter{params: url.Values{}}
	svc := NewPaymentService(client, awaiter, "/payment/return", func(string) error { return nil }, zap.NewNop())

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		ScholarshipID: "sch-3",
		UserEmail:     "jane@example.com",
		UserName:      "Jane Doe",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_id")
}
