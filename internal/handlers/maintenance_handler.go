package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flydrivego/transit-booking-backend/internal/services"
)

// MaintenanceHandler exposes operational endpoints
type MaintenanceHandler struct {
	cronService *services.CronService
}

// NewMaintenanceHandler creates a new MaintenanceHandler
func NewMaintenanceHandler(cronService *services.CronService) *MaintenanceHandler {
	return &MaintenanceHandler{cronService: cronService}
}

// SweepReservations releases all expired seat holds immediately
// POST /api/v1/maintenance/sweep-reservations
func (h *MaintenanceHandler) SweepReservations(c *gin.Context) {
	released, err := h.cronService.RunSweepNow()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sweep reservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Expired reservations released",
		"released_seats": released,
	})
}

// GetJobStatus reports the state of scheduled jobs
// GET /api/v1/maintenance/jobs
func (h *MaintenanceHandler) GetJobStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.cronService.GetJobStatus())
}
