package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus represents the reconciliation state of a booking's payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// VehicleSnapshot captures the vehicle details at booking time so later
// catalog edits do not rewrite history
type VehicleSnapshot struct {
	Name          string      `json:"name"`
	Kind          VehicleKind `json:"kind"`
	Origin        string      `json:"origin"`
	Destination   string      `json:"destination"`
	DepartureTime string      `json:"departure_time"`
	ArrivalTime   string      `json:"arrival_time"`
}

// Value implements the driver.Valuer interface
func (v VehicleSnapshot) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan implements the sql.Scanner interface
func (v *VehicleSnapshot) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for VehicleSnapshot: %T", src)
	}
	return json.Unmarshal(b, v)
}

// ContactInfo holds the purchaser's contact details
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

// Value implements the driver.Valuer interface
func (c ContactInfo) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements the sql.Scanner interface
func (c *ContactInfo) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for ContactInfo: %T", src)
	}
	return json.Unmarshal(b, c)
}

// TravelerInfo holds the traveling passenger's details
type TravelerInfo struct {
	Name     string `json:"name"`
	Age      int    `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	IDNumber string `json:"id_number,omitempty"`
}

// Value implements the driver.Valuer interface
func (t TravelerInfo) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements the sql.Scanner interface
func (t *TravelerInfo) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for TravelerInfo: %T", src)
	}
	return json.Unmarshal(b, t)
}

// Booking represents a confirmed seat purchase
type Booking struct {
	ID               string          `json:"id" db:"id"`
	BookingReference string          `json:"booking_reference" db:"booking_reference"`
	VehicleID        string          `json:"vehicle_id" db:"vehicle_id"`
	VehicleSnapshot  VehicleSnapshot `json:"vehicle_snapshot" db:"vehicle_snapshot"`
	TravelDate       string          `json:"travel_date" db:"travel_date"`
	SeatNumbers      IntArray        `json:"seat_numbers" db:"seat_numbers"`
	ContactInfo      ContactInfo     `json:"contact_info" db:"contact_info"`
	Traveler         TravelerInfo    `json:"traveler" db:"traveler"`
	TotalPrice       float64         `json:"total_price" db:"total_price"`
	Status           BookingStatus   `json:"status" db:"status"`
	PaymentStatus    PaymentStatus   `json:"payment_status" db:"payment_status"`
	PaymentID        *string         `json:"payment_id,omitempty" db:"payment_id"`
	PaymentMethod    *string         `json:"payment_method,omitempty" db:"payment_method"`
	PaidAt           *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateBookingRequest is the payload for confirming a booking
type CreateBookingRequest struct {
	VehicleID   string       `json:"vehicle_id" binding:"required"`
	TravelDate  string       `json:"travel_date" binding:"required"`
	SeatNumbers []int        `json:"seat_numbers" binding:"required,min=1"`
	SessionID   string       `json:"session_id" binding:"required"`
	ContactInfo ContactInfo  `json:"contact_info" binding:"required"`
	Traveler    TravelerInfo `json:"traveler"`
	TotalPrice  float64      `json:"total_price" binding:"gte=0"`
}

// Validate checks the parts gin's binding tags cannot express
func (r *CreateBookingRequest) Validate() error {
	if len(r.SeatNumbers) == 0 {
		return NewValidationError("at least one seat number is required")
	}
	seen := make(map[int]bool, len(r.SeatNumbers))
	for _, n := range r.SeatNumbers {
		if n < 1 {
			return NewValidationError("seat numbers must be positive, got %d", n)
		}
		if seen[n] {
			return NewValidationError("duplicate seat number %d", n)
		}
		seen[n] = true
	}
	if r.SessionID == "" {
		return NewValidationError("session id is required")
	}
	if r.ContactInfo.Email == "" {
		return NewValidationError("contact email is required")
	}
	return nil
}

// ApplyPaymentResultRequest is the payload for payment reconciliation
type ApplyPaymentResultRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" binding:"required"`
	PaymentID     *string       `json:"payment_id"`
	PaymentMethod *string       `json:"payment_method"`
	Verify        bool          `json:"verify"`
}
