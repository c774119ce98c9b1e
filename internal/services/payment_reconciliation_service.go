package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flydrivego/transit-booking-backend/internal/models"
)

// PaymentStatusChecker asks the external processor for the authoritative
// state of a payment
type PaymentStatusChecker interface {
	RetrievePaymentStatus(paymentID string) (string, error)
	IsConfigured() bool
}

// PaymentReconciliationService applies payment outcomes to bookings and
// re-asserts the booked seats so a paid booking can never lose them
type PaymentReconciliationService struct {
	bookings  BookingStore
	inventory InventoryStore
	gateway   PaymentStatusChecker
	logger    *logrus.Logger
}

// NewPaymentReconciliationService creates a new PaymentReconciliationService
func NewPaymentReconciliationService(
	bookings BookingStore,
	inventory InventoryStore,
	gateway PaymentStatusChecker,
	logger *logrus.Logger,
) *PaymentReconciliationService {
	return &PaymentReconciliationService{
		bookings:  bookings,
		inventory: inventory,
		gateway:   gateway,
		logger:    logger,
	}
}

// ApplyPaymentResult records a payment outcome on a booking. With Verify
// set (the recovery path), a reported "paid" is only trusted after the
// processor confirms the intent succeeded; a processor mismatch downgrades
// the result to failed. When the final result is paid, every seat of the
// booking is re-asserted as booked on the seat map.
func (s *PaymentReconciliationService) ApplyPaymentResult(bookingID string, req *models.ApplyPaymentResultRequest) (*models.Booking, error) {
	switch req.PaymentStatus {
	case models.PaymentStatusPaid, models.PaymentStatusFailed:
	default:
		return nil, models.NewValidationError("payment status must be %q or %q, got %q",
			models.PaymentStatusPaid, models.PaymentStatusFailed, req.PaymentStatus)
	}

	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking == nil {
		return nil, models.ErrBookingNotFound
	}

	status := req.PaymentStatus
	if req.Verify && status == models.PaymentStatusPaid {
		status = s.verifyWithProcessor(booking, req, status)
	}

	var paidAt *time.Time
	if status == models.PaymentStatusPaid {
		now := time.Now()
		paidAt = &now
	}

	if err := s.bookings.UpdatePayment(booking.ID, status, req.PaymentID, req.PaymentMethod, paidAt); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	if status == models.PaymentStatusPaid {
		s.reassertBookedSeats(booking)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":     booking.ID,
		"payment_status": status,
		"verified":       req.Verify,
	}).Info("Payment result applied")

	updated, err := s.bookings.GetByID(booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload booking: %w", err)
	}
	return updated, nil
}

// verifyWithProcessor re-confirms a reported success with the processor.
// Processor unreachability falls back to the reported status; a reachable
// processor disagreeing downgrades to failed.
func (s *PaymentReconciliationService) verifyWithProcessor(booking *models.Booking, req *models.ApplyPaymentResultRequest, reported models.PaymentStatus) models.PaymentStatus {
	if !s.gateway.IsConfigured() || req.PaymentID == nil || *req.PaymentID == "" {
		s.logger.WithField("booking_id", booking.ID).Warn("Payment verification requested but not possible, trusting reported status")
		return reported
	}

	processorStatus, err := s.gateway.RetrievePaymentStatus(*req.PaymentID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).
			Warn("Payment processor unreachable, trusting reported status")
		return reported
	}

	if processorStatus != PaymentIntentStatusSucceeded {
		s.logger.WithFields(logrus.Fields{
			"booking_id":       booking.ID,
			"payment_id":       *req.PaymentID,
			"processor_status": processorStatus,
		}).Warn("Processor disagrees with reported payment success, marking failed")
		return models.PaymentStatusFailed
	}
	return reported
}

// reassertBookedSeats forces every seat of a paid booking back to booked.
// Failure here is logged, not returned: payment truth is already recorded
// and the next reconciliation or sweep can repair the map.
func (s *PaymentReconciliationService) reassertBookedSeats(booking *models.Booking) {
	seatMap, err := s.inventory.FindSeatMap(booking.VehicleID, booking.TravelDate)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).
			Error("Failed to load seat map for seat re-assertion")
		return
	}
	if seatMap == nil {
		s.logger.WithField("booking_id", booking.ID).
			Error("Seat map missing during seat re-assertion")
		return
	}

	if err := s.inventory.ForceBookSeats(seatMap.ID, booking.SeatNumbers, booking.ID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"seats":      []int(booking.SeatNumbers),
		}).Error("Failed to re-assert booked seats")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"seats":      []int(booking.SeatNumbers),
	}).Info("Booked seats re-asserted after payment")
}
