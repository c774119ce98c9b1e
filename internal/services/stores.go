package services

import (
	"time"

	"github.com/flydrivego/transit-booking-backend/internal/models"
)

// VehicleStore provides vehicle catalog lookups
type VehicleStore interface {
	GetByID(id string) (*models.Vehicle, error)
	List(kind models.VehicleKind) ([]models.Vehicle, error)
}

// InventoryStore provides seat map persistence and seat state transitions.
// HoldSeats is all-or-nothing: it returns the seat numbers that blocked the
// request, and an empty slice means every seat was held.
type InventoryStore interface {
	FindSeatMap(vehicleID, travelDate string) (*models.SeatMap, error)
	CreateSeatMap(seatMap *models.SeatMap) error
	HoldSeats(seatMapID string, seatNumbers []int, sessionID string, expiresAt time.Time) ([]int, error)
	ForceBookSeats(seatMapID string, seatNumbers []int, bookingID string) error
	ReleaseExpiredHolds() (int, error)
}

// BookingStore provides booking persistence. Create books the seats and
// inserts the booking atomically, reporting blocking seat numbers the same
// way HoldSeats does.
type BookingStore interface {
	GenerateBookingReference(prefix string) (string, error)
	Create(booking *models.Booking, seatMapID, sessionID string) ([]int, error)
	GetByID(id string) (*models.Booking, error)
	GetByReference(reference string) (*models.Booking, error)
	ListByEmail(email string) ([]models.Booking, error)
	UpdatePayment(id string, status models.PaymentStatus, paymentID, paymentMethod *string, paidAt *time.Time) error
}
