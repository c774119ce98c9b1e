package models

import (
	"time"
)

// SeatStatus represents the lifecycle state of a seat
type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusReserved  SeatStatus = "reserved"
	SeatStatusBooked    SeatStatus = "booked"
)

// SeatTier represents the fare class of a seat
type SeatTier string

const (
	SeatTierStandard       SeatTier = "standard"
	SeatTierPremium        SeatTier = "premium"
	SeatTierEconomy        SeatTier = "economy"
	SeatTierPremiumEconomy SeatTier = "premium_economy"
	SeatTierBusiness       SeatTier = "business"
	SeatTierFirst          SeatTier = "first"
)

// SeatSide indicates which side of the aisle a seat sits on
type SeatSide string

const (
	SeatSideLeft  SeatSide = "left"
	SeatSideRight SeatSide = "right"
)

// Seat represents a single seat on a seat map
type Seat struct {
	ID            string     `json:"id" db:"id"`
	SeatMapID     string     `json:"seat_map_id" db:"seat_map_id"`
	SeatNumber    int        `json:"seat_number" db:"seat_number"`
	SeatLabel     string     `json:"seat_label" db:"seat_label"` // e.g. "12C"
	SeatType      SeatTier   `json:"seat_type" db:"seat_type"`
	Price         float64    `json:"price" db:"price"`
	RowNumber     int        `json:"row_number" db:"row_number"`
	ColLetter     string     `json:"col_letter" db:"col_letter"`
	Side          SeatSide   `json:"side" db:"side"`
	Status        SeatStatus `json:"status" db:"status"`
	SessionID     *string    `json:"session_id,omitempty" db:"session_id"`
	HoldExpiresAt *time.Time `json:"hold_expires_at,omitempty" db:"hold_expires_at"`
	BookingID     *string    `json:"booking_id,omitempty" db:"booking_id"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// HoldExpired reports whether the seat carries a hold that has passed its TTL
func (s *Seat) HoldExpired(now time.Time) bool {
	return s.Status == SeatStatusReserved && s.HoldExpiresAt != nil && s.HoldExpiresAt.Before(now)
}

// AvailableTo reports whether the seat can be held or booked by the given session.
// A seat is takeable when it is free, already held by the same session, or
// holding an expired foreign hold.
func (s *Seat) AvailableTo(sessionID string, now time.Time) bool {
	switch s.Status {
	case SeatStatusAvailable:
		return true
	case SeatStatusReserved:
		if s.SessionID != nil && *s.SessionID == sessionID {
			return true
		}
		return s.HoldExpired(now)
	default:
		return false
	}
}

// EffectiveStatus returns the status as clients should see it: an expired hold
// is presented as available even before the reaper has released it.
func (s *Seat) EffectiveStatus(now time.Time) SeatStatus {
	if s.HoldExpired(now) {
		return SeatStatusAvailable
	}
	return s.Status
}

// SeatMap represents the full seat inventory for one vehicle on one travel date
type SeatMap struct {
	ID         string    `json:"id" db:"id"`
	VehicleID  string    `json:"vehicle_id" db:"vehicle_id"`
	TravelDate string    `json:"travel_date" db:"travel_date"` // YYYY-MM-DD
	Seats      []Seat    `json:"seats"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// SeatByNumber returns the seat with the given number, or nil
func (m *SeatMap) SeatByNumber(number int) *Seat {
	for i := range m.Seats {
		if m.Seats[i].SeatNumber == number {
			return &m.Seats[i]
		}
	}
	return nil
}

// SeatMapSummary provides a quick availability overview for a seat map
type SeatMapSummary struct {
	TotalSeats     int `json:"total_seats"`
	AvailableSeats int `json:"available_seats"`
	ReservedSeats  int `json:"reserved_seats"`
	BookedSeats    int `json:"booked_seats"`
}

// Summarize counts seats by effective status
func (m *SeatMap) Summarize(now time.Time) SeatMapSummary {
	summary := SeatMapSummary{TotalSeats: len(m.Seats)}
	for i := range m.Seats {
		switch m.Seats[i].EffectiveStatus(now) {
		case SeatStatusAvailable:
			summary.AvailableSeats++
		case SeatStatusReserved:
			summary.ReservedSeats++
		case SeatStatusBooked:
			summary.BookedSeats++
		}
	}
	return summary
}

// HoldResult is returned after a successful reservation
type HoldResult struct {
	VehicleID   string    `json:"vehicle_id"`
	TravelDate  string    `json:"travel_date"`
	SeatNumbers []int     `json:"seat_numbers"`
	SessionID   string    `json:"session_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ReserveSeatsRequest is the payload for holding seats
type ReserveSeatsRequest struct {
	SeatNumbers []int  `json:"seat_numbers" binding:"required,min=1"`
	SessionID   string `json:"session_id" binding:"required"`
}
