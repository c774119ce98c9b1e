package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flydrivego/transit-booking-backend/internal/models"
)

// TravelDateLayout is the wire format for travel dates
const TravelDateLayout = "2006-01-02"

// ReservationConfig holds configuration for seat holds
type ReservationConfig struct {
	HoldTTL time.Duration // How long a hold stays valid (default 10 min)
}

// DefaultReservationConfig returns default configuration
func DefaultReservationConfig() ReservationConfig {
	return ReservationConfig{
		HoldTTL: 10 * time.Minute,
	}
}

// ReservationService orchestrates time-boxed seat holds. The first
// reservation against a vehicle and date materializes its seat map.
type ReservationService struct {
	vehicles  VehicleStore
	inventory InventoryStore
	layout    *LayoutService
	config    ReservationConfig
	logger    *logrus.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(
	vehicles VehicleStore,
	inventory InventoryStore,
	layout *LayoutService,
	config ReservationConfig,
	logger *logrus.Logger,
) *ReservationService {
	return &ReservationService{
		vehicles:  vehicles,
		inventory: inventory,
		layout:    layout,
		config:    config,
		logger:    logger,
	}
}

// ReserveSeats places a hold on every requested seat, all or nothing.
// Re-reserving seats already held by the same session refreshes the expiry.
func (s *ReservationService) ReserveSeats(vehicleID, travelDate string, seatNumbers []int, sessionID string) (*models.HoldResult, error) {
	if err := validateSeatRequest(travelDate, seatNumbers, sessionID); err != nil {
		return nil, err
	}

	vehicle, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up vehicle: %w", err)
	}
	if vehicle == nil {
		return nil, models.ErrVehicleNotFound
	}

	seatMap, err := s.ensureSeatMap(vehicle, travelDate)
	if err != nil {
		return nil, err
	}

	// Seat numbers outside the layout are conflicts, not server errors
	if missing := missingSeatNumbers(seatMap, seatNumbers); len(missing) > 0 {
		return nil, &models.SeatConflictError{UnavailableSeats: missing}
	}

	expiresAt := time.Now().Add(s.config.HoldTTL)
	unavailable, err := s.inventory.HoldSeats(seatMap.ID, seatNumbers, sessionID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to hold seats: %w", err)
	}
	if len(unavailable) > 0 {
		s.logger.WithFields(logrus.Fields{
			"vehicle_id":  vehicleID,
			"travel_date": travelDate,
			"session_id":  sessionID,
			"unavailable": unavailable,
		}).Info("Seat hold rejected")
		return nil, &models.SeatConflictError{UnavailableSeats: unavailable}
	}

	s.logger.WithFields(logrus.Fields{
		"vehicle_id":  vehicleID,
		"travel_date": travelDate,
		"session_id":  sessionID,
		"seats":       seatNumbers,
		"expires_at":  expiresAt,
	}).Info("Seats held")

	return &models.HoldResult{
		VehicleID:   vehicle.ID,
		TravelDate:  travelDate,
		SeatNumbers: seatNumbers,
		SessionID:   sessionID,
		ExpiresAt:   expiresAt,
	}, nil
}

// GetSeatMap returns the seat map for a vehicle and travel date. When no map
// has been materialized yet, a transient layout is generated and returned
// without being persisted. Expired holds are presented as available.
func (s *ReservationService) GetSeatMap(vehicleID, travelDate string) (*models.SeatMap, error) {
	if _, err := time.Parse(TravelDateLayout, travelDate); err != nil {
		return nil, models.NewValidationError("invalid travel date %q, expected YYYY-MM-DD", travelDate)
	}

	vehicle, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up vehicle: %w", err)
	}
	if vehicle == nil {
		return nil, models.ErrVehicleNotFound
	}

	seatMap, err := s.inventory.FindSeatMap(vehicle.ID, travelDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load seat map: %w", err)
	}
	if seatMap == nil {
		return s.layout.Generate(vehicle, travelDate)
	}

	now := time.Now()
	for i := range seatMap.Seats {
		if seatMap.Seats[i].HoldExpired(now) {
			seatMap.Seats[i].Status = models.SeatStatusAvailable
			seatMap.Seats[i].SessionID = nil
			seatMap.Seats[i].HoldExpiresAt = nil
		}
	}
	return seatMap, nil
}

// ensureSeatMap loads the persisted map, creating it from a generated
// layout on first contact. Losing the creation race to a concurrent
// request is fine; the canonical map is re-read either way.
func (s *ReservationService) ensureSeatMap(vehicle *models.Vehicle, travelDate string) (*models.SeatMap, error) {
	seatMap, err := s.inventory.FindSeatMap(vehicle.ID, travelDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load seat map: %w", err)
	}
	if seatMap != nil {
		return seatMap, nil
	}

	generated, err := s.layout.Generate(vehicle, travelDate)
	if err != nil {
		return nil, err
	}
	if err := s.inventory.CreateSeatMap(generated); err != nil {
		return nil, fmt.Errorf("failed to create seat map: %w", err)
	}

	seatMap, err = s.inventory.FindSeatMap(vehicle.ID, travelDate)
	if err != nil {
		return nil, fmt.Errorf("failed to reload seat map: %w", err)
	}
	if seatMap == nil {
		return nil, fmt.Errorf("seat map missing after creation for vehicle %s on %s", vehicle.ID, travelDate)
	}
	return seatMap, nil
}

func validateSeatRequest(travelDate string, seatNumbers []int, sessionID string) error {
	if _, err := time.Parse(TravelDateLayout, travelDate); err != nil {
		return models.NewValidationError("invalid travel date %q, expected YYYY-MM-DD", travelDate)
	}
	if sessionID == "" {
		return models.NewValidationError("session id is required")
	}
	if len(seatNumbers) == 0 {
		return models.NewValidationError("at least one seat number is required")
	}
	seen := make(map[int]bool, len(seatNumbers))
	for _, n := range seatNumbers {
		if n < 1 {
			return models.NewValidationError("seat numbers must be positive, got %d", n)
		}
		if seen[n] {
			return models.NewValidationError("duplicate seat number %d", n)
		}
		seen[n] = true
	}
	return nil
}

func missingSeatNumbers(seatMap *models.SeatMap, seatNumbers []int) []int {
	missing := make([]int, 0)
	for _, n := range seatNumbers {
		if seatMap.SeatByNumber(n) == nil {
			missing = append(missing, n)
		}
	}
	return missing
}
