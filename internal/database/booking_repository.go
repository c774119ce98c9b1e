package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flydrivego/transit-booking-backend/internal/models"
	"github.com/flydrivego/transit-booking-backend/pkg/refcode"
)

// BookingRepository handles booking database operations
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	id, booking_reference, vehicle_id, vehicle_snapshot, travel_date,
	seat_numbers, contact_info, traveler, total_price, status,
	payment_status, payment_id, payment_method, paid_at, created_at, updated_at`

// GenerateBookingReference generates a unique booking reference for the
// given prefix, regenerating on collision (up to 10 attempts)
func (r *BookingRepository) GenerateBookingReference(prefix string) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		reference, err := refcode.Generate(prefix)
		if err != nil {
			return "", err
		}

		var count int
		err = r.db.Get(&count, `SELECT COUNT(*) FROM bookings WHERE booking_reference = $1`, reference)
		if err != nil {
			return "", fmt.Errorf("failed to check booking reference: %w", err)
		}
		if count == 0 {
			return reference, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique booking reference after 10 attempts")
}

// Create inserts the booking row and books every seat in one transaction.
// A seat is bookable when it is available, held by the booking session, or
// holding an expired foreign hold. Any shortfall rolls the whole booking
// back and returns the seat numbers that blocked it.
func (r *BookingRepository) Create(booking *models.Booking, seatMapID, sessionID string) ([]int, error) {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	err = tx.QueryRowx(`
		INSERT INTO bookings (
			id, booking_reference, vehicle_id, vehicle_snapshot, travel_date,
			seat_numbers, contact_info, traveler, total_price, status,
			payment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at`,
		booking.ID, booking.BookingReference, booking.VehicleID, booking.VehicleSnapshot,
		booking.TravelDate, booking.SeatNumbers, booking.ContactInfo, booking.Traveler,
		booking.TotalPrice, booking.Status, booking.PaymentStatus,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	query, args, err := sqlx.In(`
		UPDATE seats
		SET status = 'booked', booking_id = ?, session_id = NULL, hold_expires_at = NULL, updated_at = NOW()
		WHERE seat_map_id = ?
		  AND seat_number IN (?)
		  AND (
		    status = 'available'
		    OR (status = 'reserved' AND (session_id = ? OR hold_expires_at < NOW()))
		  )`,
		booking.ID, seatMapID, []int(booking.SeatNumbers), sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to build book query: %w", err)
	}

	query = tx.Rebind(query)
	result, err := tx.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to book seats: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if int(rowsAffected) != len(booking.SeatNumbers) {
		tx.Rollback()
		unavailable, err := findUnavailableSeats(r.db, seatMapID, booking.SeatNumbers, sessionID)
		if err != nil {
			return nil, err
		}
		if len(unavailable) == 0 {
			// The blocking hold expired between the update and the
			// re-read. The booking row was rolled back, so the request
			// must not read as a success; report every seat and let the
			// client retry.
			unavailable = append([]int(nil), []int(booking.SeatNumbers)...)
		}
		return unavailable, nil
	}

	_, err = tx.Exec(`UPDATE seat_maps SET updated_at = NOW() WHERE id = $1`, seatMapID)
	if err != nil {
		return nil, fmt.Errorf("failed to touch seat map: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return nil, nil
}

// GetByID retrieves a booking by ID. Returns nil, nil when absent.
func (r *BookingRepository) GetByID(id string) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	err := r.db.Get(&booking, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByReference retrieves a booking by its booking reference
func (r *BookingRepository) GetByReference(reference string) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_reference = $1`
	err := r.db.Get(&booking, query, reference)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListByEmail retrieves all bookings whose contact email matches
func (r *BookingRepository) ListByEmail(email string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE contact_info->>'email' = $1
		ORDER BY created_at DESC`
	if err := r.db.Select(&bookings, query, email); err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdatePayment records the outcome of a payment attempt. paidAt is set
// only when the status is paid.
func (r *BookingRepository) UpdatePayment(id string, status models.PaymentStatus, paymentID, paymentMethod *string, paidAt *time.Time) error {
	query := `
		UPDATE bookings
		SET payment_status = $2,
		    payment_id = COALESCE($3, payment_id),
		    payment_method = COALESCE($4, payment_method),
		    paid_at = COALESCE($5, paid_at),
		    updated_at = NOW()
		WHERE id = $1`
	result, err := r.db.Exec(query, id, status, paymentID, paymentMethod, paidAt)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("booking not found")
	}
	return nil
}
