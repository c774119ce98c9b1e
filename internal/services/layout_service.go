package services

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/flydrivego/transit-booking-backend/internal/models"
)

// Default capacities when the catalog does not specify one
const (
	DefaultBusCapacity    = 40
	DefaultFlightCapacity = 180
)

var (
	busColumns    = []string{"A", "B", "C", "D"}
	flightColumns = []string{"A", "B", "C", "D", "E", "F"}
)

// LayoutService generates seat maps for vehicles. Generation is pure and
// deterministic: the same vehicle and date always produce the same map.
type LayoutService struct {
	logger *logrus.Logger
}

// NewLayoutService creates a new LayoutService
func NewLayoutService(logger *logrus.Logger) *LayoutService {
	return &LayoutService{logger: logger}
}

// Generate builds a full seat map for the vehicle on the given travel date.
// All seats start available.
func (s *LayoutService) Generate(vehicle *models.Vehicle, travelDate string) (*models.SeatMap, error) {
	var seats []models.Seat
	switch vehicle.Kind {
	case models.VehicleKindBus:
		seats = s.generateSeats(vehicle, busColumns, DefaultBusCapacity, busTier)
	case models.VehicleKindFlight:
		seats = s.generateSeats(vehicle, flightColumns, DefaultFlightCapacity, flightTier)
	default:
		return nil, fmt.Errorf("unsupported vehicle kind: %s", vehicle.Kind)
	}

	s.logger.WithFields(logrus.Fields{
		"vehicle_id":  vehicle.ID,
		"kind":        vehicle.Kind,
		"travel_date": travelDate,
		"seat_count":  len(seats),
	}).Debug("Generated seat layout")

	return &models.SeatMap{
		VehicleID:  vehicle.ID,
		TravelDate: travelDate,
		Seats:      seats,
	}, nil
}

type tierPolicy func(row, totalRows int) (models.SeatTier, float64)

func (s *LayoutService) generateSeats(vehicle *models.Vehicle, columns []string, defaultCapacity int, tier tierPolicy) []models.Seat {
	capacity := vehicle.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	perRow := len(columns)
	totalRows := (capacity + perRow - 1) / perRow

	seats := make([]models.Seat, 0, capacity)
	for row := 1; row <= totalRows; row++ {
		seatType, multiplier := tier(row, totalRows)
		for col, letter := range columns {
			seatNumber := (row-1)*perRow + col + 1
			if seatNumber > capacity {
				break
			}

			side := models.SeatSideLeft
			if col >= perRow/2 {
				side = models.SeatSideRight
			}

			seats = append(seats, models.Seat{
				SeatNumber: seatNumber,
				SeatLabel:  fmt.Sprintf("%d%s", row, letter),
				SeatType:   seatType,
				Price:      roundPrice(vehicle.BaseFare * multiplier),
				RowNumber:  row,
				ColLetter:  letter,
				Side:       side,
				Status:     models.SeatStatusAvailable,
			})
		}
	}
	return seats
}

// busTier marks the first two rows and the last row premium. The policy is
// positional so regenerating a layout can never reshuffle tiers.
func busTier(row, totalRows int) (models.SeatTier, float64) {
	if row <= 2 || row == totalRows {
		return models.SeatTierPremium, 1.3
	}
	return models.SeatTierStandard, 1.0
}

// flightTier maps cabin rows to fare classes: rows 1-2 first, 3-7 business,
// 8-12 premium economy, everything behind is economy.
func flightTier(row, totalRows int) (models.SeatTier, float64) {
	switch {
	case row <= 2:
		return models.SeatTierFirst, 2.5
	case row <= 7:
		return models.SeatTierBusiness, 1.5
	case row <= 12:
		return models.SeatTierPremiumEconomy, 1.2
	default:
		return models.SeatTierEconomy, 1.0
	}
}

func roundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}
