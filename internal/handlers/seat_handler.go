package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flydrivego/transit-booking-backend/internal/models"
	"github.com/flydrivego/transit-booking-backend/internal/services"
)

// SeatHandler handles seat map and reservation API endpoints
type SeatHandler struct {
	reservationService *services.ReservationService
}

// NewSeatHandler creates a new SeatHandler
func NewSeatHandler(reservationService *services.ReservationService) *SeatHandler {
	return &SeatHandler{reservationService: reservationService}
}

// GetSeatMap returns the seat map for a vehicle and travel date
// GET /api/v1/vehicles/:id/seat-maps/:date
func (h *SeatHandler) GetSeatMap(c *gin.Context) {
	vehicleID := c.Param("id")
	travelDate := c.Param("date")
	if vehicleID == "" || travelDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vehicle ID and travel date are required"})
		return
	}

	seatMap, err := h.reservationService.GetSeatMap(vehicleID, travelDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"seat_map": seatMap,
		"summary":  seatMap.Summarize(time.Now()),
	})
}

// ReserveSeats places a time-boxed hold on seats
// POST /api/v1/vehicles/:id/seat-maps/:date/reserve
func (h *SeatHandler) ReserveSeats(c *gin.Context) {
	vehicleID := c.Param("id")
	travelDate := c.Param("date")
	if vehicleID == "" || travelDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vehicle ID and travel date are required"})
		return
	}

	var req models.ReserveSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hold, err := h.reservationService.ReserveSeats(vehicleID, travelDate, req.SeatNumbers, req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Seats reserved successfully",
		"hold":    hold,
	})
}
