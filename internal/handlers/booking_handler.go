package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flydrivego/transit-booking-backend/internal/models"
	"github.com/flydrivego/transit-booking-backend/internal/services"
)

// BookingHandler handles booking and payment reconciliation API endpoints
type BookingHandler struct {
	bookingService        *services.BookingService
	reconciliationService *services.PaymentReconciliationService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(
	bookingService *services.BookingService,
	reconciliationService *services.PaymentReconciliationService,
) *BookingHandler {
	return &BookingHandler{
		bookingService:        bookingService,
		reconciliationService: reconciliationService,
	}
}

// CreateBooking confirms a booking for held seats
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookingService.ConfirmBooking(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Booking confirmed successfully",
		"booking": booking,
	})
}

// GetBooking returns a booking by ID
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Booking ID is required"})
		return
	}

	booking, err := h.bookingService.GetBooking(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetBookingByReference returns a booking by its booking reference
// GET /api/v1/bookings/reference/:ref
func (h *BookingHandler) GetBookingByReference(c *gin.Context) {
	reference := c.Param("ref")
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Booking reference is required"})
		return
	}

	booking, err := h.bookingService.GetBookingByReference(reference)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListBookings returns all bookings for a contact email
// GET /api/v1/bookings?email=
func (h *BookingHandler) ListBookings(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email query parameter is required"})
		return
	}

	bookings, err := h.bookingService.ListBookingsByEmail(email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// ApplyPaymentResult records a payment outcome on a booking
// PATCH /api/v1/bookings/:id/payment
func (h *BookingHandler) ApplyPaymentResult(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Booking ID is required"})
		return
	}

	var req models.ApplyPaymentResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.reconciliationService.ApplyPaymentResult(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment result applied",
		"booking": booking,
	})
}
