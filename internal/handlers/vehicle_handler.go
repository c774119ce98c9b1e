package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flydrivego/transit-booking-backend/internal/models"
	"github.com/flydrivego/transit-booking-backend/internal/services"
)

// VehicleHandler handles vehicle catalog API endpoints
type VehicleHandler struct {
	vehicles services.VehicleStore
}

// NewVehicleHandler creates a new VehicleHandler
func NewVehicleHandler(vehicles services.VehicleStore) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

// ListVehicles returns the vehicle catalog, optionally filtered by kind
// GET /api/v1/vehicles?kind=bus|flight
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	kind := models.VehicleKind(c.Query("kind"))
	if kind != "" && kind != models.VehicleKindBus && kind != models.VehicleKindFlight {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Kind must be 'bus' or 'flight'"})
		return
	}

	vehicles, err := h.vehicles.List(kind)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

// GetVehicle returns a single vehicle by ID
// GET /api/v1/vehicles/:id
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vehicle ID is required"})
		return
	}

	vehicle, err := h.vehicles.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if vehicle == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	c.JSON(http.StatusOK, vehicle)
}
