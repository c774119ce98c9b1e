package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flydrivego/transit-booking-backend/internal/models"
)

// SeatInventoryRepository handles seat map persistence and the conditional
// seat state transitions that make holds and bookings race-safe
type SeatInventoryRepository struct {
	db *sqlx.DB
}

// NewSeatInventoryRepository creates a new SeatInventoryRepository
func NewSeatInventoryRepository(db *sqlx.DB) *SeatInventoryRepository {
	return &SeatInventoryRepository{db: db}
}

const seatColumns = `
	id, seat_map_id, seat_number, seat_label, seat_type, price,
	row_number, col_letter, side, status, session_id, hold_expires_at,
	booking_id, updated_at`

// FindSeatMap retrieves the seat map for a vehicle and travel date,
// including all its seats. Returns nil, nil when no map exists yet.
func (r *SeatInventoryRepository) FindSeatMap(vehicleID, travelDate string) (*models.SeatMap, error) {
	var seatMap models.SeatMap
	query := `
		SELECT id, vehicle_id, travel_date, created_at, updated_at
		FROM seat_maps
		WHERE vehicle_id = $1 AND travel_date = $2`
	err := r.db.Get(&seatMap, query, vehicleID, travelDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	seats := []models.Seat{}
	seatsQuery := `SELECT ` + seatColumns + ` FROM seats WHERE seat_map_id = $1 ORDER BY seat_number`
	if err := r.db.Select(&seats, seatsQuery, seatMap.ID); err != nil {
		return nil, err
	}
	seatMap.Seats = seats

	return &seatMap, nil
}

// CreateSeatMap persists a freshly generated seat map and all its seats in
// one transaction. When a concurrent creator already inserted a map for the
// same vehicle and date, nothing is written and no error is returned; the
// caller re-reads the canonical map.
func (r *SeatInventoryRepository) CreateSeatMap(seatMap *models.SeatMap) error {
	if seatMap.ID == "" {
		seatMap.ID = uuid.New().String()
	}
	seatMap.CreatedAt = time.Now()
	seatMap.UpdatedAt = time.Now()

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO seat_maps (id, vehicle_id, travel_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (vehicle_id, travel_date) DO NOTHING`,
		seatMap.ID, seatMap.VehicleID, seatMap.TravelDate, seatMap.CreatedAt, seatMap.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert seat map: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Lost the creation race; the existing map wins
		return nil
	}

	for i := range seatMap.Seats {
		seat := &seatMap.Seats[i]
		if seat.ID == "" {
			seat.ID = uuid.New().String()
		}
		seat.SeatMapID = seatMap.ID
		_, err := tx.Exec(`
			INSERT INTO seats (
				id, seat_map_id, seat_number, seat_label, seat_type, price,
				row_number, col_letter, side, status, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`,
			seat.ID, seat.SeatMapID, seat.SeatNumber, seat.SeatLabel, seat.SeatType,
			seat.Price, seat.RowNumber, seat.ColLetter, seat.Side, seat.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert seat %d: %w", seat.SeatNumber, err)
		}
	}

	return tx.Commit()
}

// HoldSeats places a time-boxed hold on every requested seat, all or nothing.
// A seat counts as holdable when it is available, already held by the same
// session (the expiry refreshes), or holding an expired foreign hold.
// Returns the seat numbers that blocked the request; empty means success.
func (r *SeatInventoryRepository) HoldSeats(seatMapID string, seatNumbers []int, sessionID string, expiresAt time.Time) ([]int, error) {
	if len(seatNumbers) == 0 {
		return nil, nil
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query, args, err := sqlx.In(`
		UPDATE seats
		SET status = 'reserved', session_id = ?, hold_expires_at = ?, updated_at = NOW()
		WHERE seat_map_id = ?
		  AND seat_number IN (?)
		  AND (
		    status = 'available'
		    OR (status = 'reserved' AND (session_id = ? OR hold_expires_at < NOW()))
		  )`,
		sessionID, expiresAt, seatMapID, seatNumbers, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to build hold query: %w", err)
	}

	query = tx.Rebind(query)
	result, err := tx.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to hold seats: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if int(rowsAffected) != len(seatNumbers) {
		// Shortfall: roll back every hold this request placed and report
		// the seats that blocked it
		tx.Rollback()
		unavailable, err := findUnavailableSeats(r.db, seatMapID, seatNumbers, sessionID)
		if err != nil {
			return nil, err
		}
		if len(unavailable) == 0 {
			// The blocking hold expired between the update and the
			// re-read. Nothing was held, so the request stays a
			// conflict; the client retries against the freed seats.
			unavailable = append([]int(nil), seatNumbers...)
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

// SeatStates retrieves the current state of specific seats on a map
func (r *SeatInventoryRepository) SeatStates(seatMapID string, seatNumbers []int) ([]models.Seat, error) {
	if len(seatNumbers) == 0 {
		return []models.Seat{}, nil
	}

	query, args, err := sqlx.In(
		`SELECT `+seatColumns+` FROM seats WHERE seat_map_id = ? AND seat_number IN (?) ORDER BY seat_number`,
		seatMapID, seatNumbers)
	if err != nil {
		return nil, err
	}

	query = r.db.Rebind(query)
	seats := []models.Seat{}
	if err := r.db.Select(&seats, query, args...); err != nil {
		return nil, err
	}
	return seats, nil
}

// findUnavailableSeats names every requested seat the session could not
// take. Seat numbers absent from the map are counted as unavailable too.
// Shared with the booking repository, which runs the same predicate when a
// booking transaction falls short.
func findUnavailableSeats(db *sqlx.DB, seatMapID string, seatNumbers []int, sessionID string) ([]int, error) {
	query, args, err := sqlx.In(
		`SELECT `+seatColumns+` FROM seats WHERE seat_map_id = ? AND seat_number IN (?) ORDER BY seat_number`,
		seatMapID, seatNumbers)
	if err != nil {
		return nil, err
	}

	query = db.Rebind(query)
	seats := []models.Seat{}
	if err := db.Select(&seats, query, args...); err != nil {
		return nil, err
	}

	now := time.Now()
	found := make(map[int]bool, len(seats))
	unavailable := make([]int, 0)
	for i := range seats {
		found[seats[i].SeatNumber] = true
		if !seats[i].AvailableTo(sessionID, now) {
			unavailable = append(unavailable, seats[i].SeatNumber)
		}
	}
	for _, n := range seatNumbers {
		if !found[n] {
			unavailable = append(unavailable, n)
		}
	}
	return unavailable, nil
}

// ForceBookSeats unconditionally marks seats as booked for a booking.
// Used by payment reconciliation to re-assert paid seats regardless of
// what happened to the original hold.
func (r *SeatInventoryRepository) ForceBookSeats(seatMapID string, seatNumbers []int, bookingID string) error {
	if len(seatNumbers) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`
		UPDATE seats
		SET status = 'booked', booking_id = ?, session_id = NULL, hold_expires_at = NULL, updated_at = NOW()
		WHERE seat_map_id = ? AND seat_number IN (?)`,
		bookingID, seatMapID, seatNumbers)
	if err != nil {
		return fmt.Errorf("failed to build force-book query: %w", err)
	}

	query = r.db.Rebind(query)
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to force-book seats: %w", err)
	}
	return nil
}

// ReleaseExpiredHolds releases every seat hold that has passed its TTL and
// returns the number of seats released. Booked seats and live holds are
// untouched, which makes the sweep safe to run at any frequency.
func (r *SeatInventoryRepository) ReleaseExpiredHolds() (int, error) {
	query := `
		UPDATE seats
		SET status = 'available', session_id = NULL, hold_expires_at = NULL, updated_at = NOW()
		WHERE status = 'reserved' AND hold_expires_at < NOW()`
	result, err := r.db.Exec(query)
	if err != nil {
		return 0, err
	}
	rowsAffected, _ := result.RowsAffected()
	return int(rowsAffected), nil
}
