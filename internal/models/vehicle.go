package models

import (
	"time"
)

// VehicleKind distinguishes the two cabin layouts we generate
type VehicleKind string

const (
	VehicleKindBus    VehicleKind = "bus"
	VehicleKindFlight VehicleKind = "flight"
)

// Vehicle represents a sellable bus or flight in the catalog
type Vehicle struct {
	ID            string      `json:"id" db:"id"`
	LegacyID      *int        `json:"legacy_id,omitempty" db:"legacy_id"`
	Name          string      `json:"name" db:"name"`
	Kind          VehicleKind `json:"kind" db:"kind"`
	Origin        string      `json:"origin" db:"origin"`
	Destination   string      `json:"destination" db:"destination"`
	DepartureTime string      `json:"departure_time" db:"departure_time"`
	ArrivalTime   string      `json:"arrival_time" db:"arrival_time"`
	Capacity      int         `json:"capacity" db:"capacity"`
	BaseFare      float64     `json:"base_fare" db:"base_fare"`
	Category      string      `json:"category" db:"category"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// ReferencePrefix returns the booking reference prefix for this vehicle kind
func (v *Vehicle) ReferencePrefix() string {
	if v.Kind == VehicleKindFlight {
		return "FLT"
	}
	return "BUS"
}
