// File: internal/api/payment.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"scholarhub_client/internal/identity"

	"go.uber.org/zap"
)

// CheckoutInput identifies who is paying which scholarship's application fee.
type CheckoutInput struct {
	ScholarshipID string `json:"scholarshipId" validate:"required"`
	UserEmail     string `json:"userEmail" validate:"required,email"`
	UserName      string `json:"userName" validate:"required"`
}

// PaymentResult is the backend's confirmation after the provider round-trip.
type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
}

// ReturnAwaiter is the loopback server surface the handshake rides on.
type ReturnAwaiter interface {
	Await(ctx context.Context, route string) (url.Values, error)
	RedirectURL(route string) string
}

// PaymentService drives the checkout handshake: create a provider session,
// send the browser there, catch the return redirect, confirm with the backend.
// The provider's internal checkout flow is entirely opaque to this client.
type PaymentService struct {
	client      *Client
	awaiter     ReturnAwaiter
	returnRoute string
	openURL     func(string) error
	logger      *zap.Logger
}

// NewPaymentService creates a PaymentService. openURL may be nil to use the
// system browser.
func NewPaymentService(client *Client, awaiter ReturnAwaiter, returnRoute string, openURL func(string) error, logger *zap.Logger) *PaymentService {
	if openURL == nil {
		openURL = identity.OpenInBrowser
	}
	return &PaymentService{
		client:      client,
		awaiter:     awaiter,
		returnRoute: returnRoute,
		openURL:     openURL,
		logger:      logger.Named("PaymentService"),
	}
}

// CreateCheckoutSession asks the backend for a provider-hosted checkout URL.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, error) {
	if err := validateInput(in); err != nil {
		return "", err
	}
	var out struct {
		URL string `json:"url"`
	}
	if _, err := s.client.do(ctx, http.MethodPost, "/create-checkout-session", nil, in, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("backend returned no checkout URL")
	}
	return out.URL, nil
}

// CompletePayment confirms a finished checkout session with the backend.
func (s *PaymentService) CompletePayment(ctx context.Context, sessionID string) (*PaymentResult, error) {
	query := url.Values{}
	query.Set("session_id", sessionID)
	var out PaymentResult
	if _, err := s.client.do(ctx, http.MethodPatch, "/scholarship-payment-success", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Checkout runs the full handshake. It blocks until the browser returns to
// the loopback server or ctx is done.
func (s *PaymentService) Checkout(ctx context.Context, in CheckoutInput) (*PaymentResult, error) {
	checkoutURL, err := s.CreateCheckoutSession(ctx, in)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Redirecting browser to provider checkout",
		zap.String("scholarship_id", in.ScholarshipID),
	)
	if err := s.openURL(checkoutURL); err != nil {
		return nil, fmt.Errorf("could not open checkout page: %w", err)
	}

	params, err := s.awaiter.Await(ctx, s.returnRoute)
	if err != nil {
		return nil, fmt.Errorf("waiting for checkout return: %w", err)
	}
	sessionID := params.Get("session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("checkout return carried no session_id")
	}

	result, err := s.CompletePayment(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		s.logger.Warn("Backend reported unsuccessful payment", zap.String("session_id", sessionID))
	}
	return result, nil
}
