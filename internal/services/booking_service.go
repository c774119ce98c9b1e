package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flydrivego/transit-booking-backend/internal/models"
)

// BookingService confirms bookings against held or available seats
type BookingService struct {
	vehicles  VehicleStore
	inventory InventoryStore
	bookings  BookingStore
	logger    *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	vehicles VehicleStore,
	inventory InventoryStore,
	bookings BookingStore,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		vehicles:  vehicles,
		inventory: inventory,
		bookings:  bookings,
		logger:    logger,
	}
}

// ConfirmBooking creates a booking and permanently books its seats in one
// transaction. The seat map must already exist: booking is confirmation of
// a reservation pass, not a way to materialize inventory.
func (s *BookingService) ConfirmBooking(req *models.CreateBookingRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := time.Parse(TravelDateLayout, req.TravelDate); err != nil {
		return nil, models.NewValidationError("invalid travel date %q, expected YYYY-MM-DD", req.TravelDate)
	}

	vehicle, err := s.vehicles.GetByID(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up vehicle: %w", err)
	}
	if vehicle == nil {
		return nil, models.ErrVehicleNotFound
	}

	seatMap, err := s.inventory.FindSeatMap(vehicle.ID, req.TravelDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load seat map: %w", err)
	}
	if seatMap == nil {
		return nil, models.NewValidationError("no seat map exists for vehicle %s on %s; reserve seats first", req.VehicleID, req.TravelDate)
	}

	if missing := missingSeatNumbers(seatMap, req.SeatNumbers); len(missing) > 0 {
		return nil, &models.SeatConflictError{UnavailableSeats: missing}
	}

	totalPrice := req.TotalPrice
	if totalPrice == 0 {
		for _, n := range req.SeatNumbers {
			totalPrice += seatMap.SeatByNumber(n).Price
		}
	}

	reference, err := s.bookings.GenerateBookingReference(vehicle.ReferencePrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	booking := &models.Booking{
		BookingReference: reference,
		VehicleID:        vehicle.ID,
		VehicleSnapshot: models.VehicleSnapshot{
			Name:          vehicle.Name,
			Kind:          vehicle.Kind,
			Origin:        vehicle.Origin,
			Destination:   vehicle.Destination,
			DepartureTime: vehicle.DepartureTime,
			ArrivalTime:   vehicle.ArrivalTime,
		},
		TravelDate:    req.TravelDate,
		SeatNumbers:   models.IntArray(req.SeatNumbers),
		ContactInfo:   req.ContactInfo,
		Traveler:      req.Traveler,
		TotalPrice:    totalPrice,
		Status:        models.BookingStatusConfirmed,
		PaymentStatus: models.PaymentStatusPending,
	}

	unavailable, err := s.bookings.Create(booking, seatMap.ID, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	if len(unavailable) > 0 {
		s.logger.WithFields(logrus.Fields{
			"vehicle_id":  req.VehicleID,
			"travel_date": req.TravelDate,
			"session_id":  req.SessionID,
			"unavailable": unavailable,
		}).Info("Booking rejected, seats taken")
		return nil, &models.SeatConflictError{UnavailableSeats: unavailable}
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":        booking.ID,
		"booking_reference": booking.BookingReference,
		"vehicle_id":        booking.VehicleID,
		"travel_date":       booking.TravelDate,
		"seats":             req.SeatNumbers,
		"total_price":       booking.TotalPrice,
	}).Info("Booking confirmed")

	return booking, nil
}

// GetBooking retrieves a booking by ID
func (s *BookingService) GetBooking(id string) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking == nil {
		return nil, models.ErrBookingNotFound
	}
	return booking, nil
}

// GetBookingByReference retrieves a booking by its booking reference
func (s *BookingService) GetBookingByReference(reference string) (*models.Booking, error) {
	booking, err := s.bookings.GetByReference(reference)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking == nil {
		return nil, models.ErrBookingNotFound
	}
	return booking, nil
}

// ListBookingsByEmail retrieves all bookings for a contact email
func (s *BookingService) ListBookingsByEmail(email string) ([]models.Booking, error) {
	if email == "" {
		return nil, models.NewValidationError("email is required")
	}
	return s.bookings.ListByEmail(email)
}
