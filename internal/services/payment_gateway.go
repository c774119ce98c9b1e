package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flydrivego/transit-booking-backend/internal/config"
)

// PaymentIntentStatusSucceeded is the processor's terminal success status
const PaymentIntentStatusSucceeded = "succeeded"

// PaymentGatewayService queries the external payment processor for the
// authoritative status of a payment intent. The processor charges cards on
// its own side; this service only reads results back.
type PaymentGatewayService struct {
	config *config.PaymentConfig
	logger *logrus.Logger
	client *http.Client
}

// paymentIntentResponse is the subset of the processor's payment intent
// object we care about
type paymentIntentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

// paymentErrorResponse wraps the processor's error envelope
type paymentErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewPaymentGatewayService creates a new PaymentGatewayService
func NewPaymentGatewayService(cfg *config.PaymentConfig, logger *logrus.Logger) *PaymentGatewayService {
	return &PaymentGatewayService{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured reports whether processor credentials are present
func (s *PaymentGatewayService) IsConfigured() bool {
	return s.config.SecretKey != ""
}

// RetrievePaymentStatus fetches the current status of a payment intent
// from the processor, e.g. "succeeded", "processing", "canceled".
func (s *PaymentGatewayService) RetrievePaymentStatus(paymentID string) (string, error) {
	if !s.IsConfigured() {
		return "", fmt.Errorf("payment gateway is not configured")
	}
	if paymentID == "" {
		return "", fmt.Errorf("payment id is required")
	}

	url := fmt.Sprintf("%s/v1/payment_intents/%s", s.config.APIBaseURL, paymentID)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.SecretKey)

	s.logger.WithField("payment_id", paymentID).Debug("Checking payment intent status")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment status request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read payment status response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp paymentErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("payment processor error (%d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("payment processor returned status %d", resp.StatusCode)
	}

	var intent paymentIntentResponse
	if err := json.Unmarshal(body, &intent); err != nil {
		return "", fmt.Errorf("failed to decode payment status response: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": paymentID,
		"status":     intent.Status,
	}).Debug("Payment intent status retrieved")

	return intent.Status, nil
}
