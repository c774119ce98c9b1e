package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flydrivego/transit-booking-backend/internal/models"
)

func setupReconciliationTest(t *testing.T) (*PaymentReconciliationService, *stubStatusChecker, *models.Booking, *memInventoryStore, *models.Vehicle) {
	t.Helper()
	bookingService, reservations, inventory, bookings, vehicle := setupBookingTest(t)

	_, err := reservations.ReserveSeats(vehicle.ID, testDate, []int{1, 2}, "session-a")
	require.NoError(t, err)
	booking, err := bookingService.ConfirmBooking(bookingRequest(vehicle.ID, []int{1, 2}, "session-a"))
	require.NoError(t, err)

	gateway := &stubStatusChecker{configured: true, status: PaymentIntentStatusSucceeded}
	service := NewPaymentReconciliationService(bookings, inventory, gateway, testLogger())
	return service, gateway, booking, inventory, vehicle
}

func strPtr(s string) *string { return &s }

func TestApplyPaymentResult_Paid(t *testing.T) {
	service, _, booking, inventory, vehicle := setupReconciliationTest(t)

	updated, err := service.ApplyPaymentResult(booking.ID, &models.ApplyPaymentResultRequest{
		PaymentStatus: models.PaymentStatusPaid,
		PaymentID:     strPtr("pi_12345"),
		PaymentMethod: strPtr("card"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	require.NotNil(t, updated.PaymentID)
	assert.Equal(t, "pi_12345", *updated.PaymentID)
	require.NotNil(t, updated.PaidAt)
	assert.WithinDuration(t, time.Now(), *updated.PaidAt, 5*time.Second)

	// Seats re-asserted as booked
	seatMap, _ := inventory.FindSeatMap(vehicle.ID, testDate)
	for _, n := range []int{1, 2} {
		seat := seatMap.SeatByNumber(n)
		assert.Equal(t, models.SeatStatusBooked, seat.Status)
		require.NotNil(t, seat.BookingID)
		assert.Equal(t, booking.ID, *seat.BookingID)
	}
}

func TestApplyPaymentResult_PaidReassertsReapedSeats(t *testing.T) {
	service, _, booking, inventory, vehicle := setupReconciliationTest(t)

	// Simulate the seats having been lost after booking
	seatMap, _ := inventory.FindSeatMap(vehicle.ID, testDate)
	canonical := inventory.byID[seatMap.ID]
	for _, n := range []int{1, 2} {
		seat := canonical.SeatByNumber(n)
		seat.Status = models.SeatStatusAvailable
		seat.BookingID = nil
	}

	_, err := service.ApplyPaymentResult(booking.ID, &models.ApplyPaymentResultRequest{
		PaymentStatus: models.PaymentStatusPaid,
		PaymentID:     strPtr("pi_12345"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.SeatStatusBooked, inventory.seatState(seatMap.ID, 1).Status)
	assert.Equal(t, models.SeatStatusBooked, inventory.seatState(seatMap.ID, 2).Status)
}

func TestApplyPaymentResult_Failed(t *testing.T) {
	service, gateway, booking, _, _ := setupReconciliationTest(t)

	updated, err := service.ApplyPaymentResult(booking.ID, &models.ApplyPaymentResultRequest{
		PaymentStatus: models.PaymentStatusFailed,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusFailed, updated.PaymentStatus)
	assert.Nil(t, updated.PaidAt)
	assert.Equal(t, 0, gateway.calls, "failed results are never verified")
}

func TestApplyPaymentResult_VerifyConfirmsWithProcessor(t *testing.T) {
	service, gateway, booking, _, _ := setupReconciliationTest(t)

	updated, err := service.ApplyPaymentResult(booking.ID, &models.ApplyPaymentResultRequest{
		PaymentStatus: models.PaymentStatusPaid,
		PaymentID:     strPtr("pi_12345"),
		Verify:        true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gateway.calls)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
}

func TestApplyPaymentResult_VerifyDowngradesOnMismatch(t *testing.T) {
	service, gateway, booking, inventory, vehicle := setupReconciliationTest(t)
	gateway.status = "canceled"

	updated, err := service.ApplyPaymentResult(booking.ID, &models.ApplyPaymentResultRequest{
		PaymentStatus: models.PaymentStatusPaid,
		PaymentID:     strPtr("pi_12345"),
		Verify:        true,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusFailed, updated.PaymentStatus)
	assert.Nil(t, updated.PaidAt)

	// No seat re-assertion happened for a failed payment; seats keep
	// their booked state from the original booking only
	seatMap, _ := inventory.FindSeatMap(vehicle.ID, testDate)
	assert.Equal(t, models.SeatStatusBooked, seatMap.SeatByNumber(1).Status)
}

func TestApplyPaymentResult_VerifyFallsBackWhenProcessorUnreachable(t *testing.T) {
	service, gateway, booking, _, _ := setupReconciliationTest(t)
	gateway.err = assert.AnError

	updated, err := service.ApplyPaymentResult(booking.ID, &models.ApplyPaymentResultRequest{
		PaymentStatus: models.PaymentStatusPaid,
		PaymentID:     strPtr("pi_12345"),
		Verify:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
}

func TestApplyPaymentResult_VerifySkippedWhenUnconfigured(t *testing.T) {
	service, gateway, booking, _, _ := setupReconciliationTest(t)
	gateway.configured = false

	updated, err := service.ApplyPaymentResult(booking.ID, &models.ApplyPaymentResultRequest{
		PaymentStatus: models.PaymentStatusPaid,
		PaymentID:     strPtr("pi_12345"),
		Verify:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, gateway.calls)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
}

func TestApplyPaymentResult_BookingNotFound(t *testing.T) {
	service, _, _, _, _ := setupReconciliationTest(t)

	_, err := service.ApplyPaymentResult("9a8b7c6d-0000-4000-8000-000000000000", &models.ApplyPaymentResultRequest{
		PaymentStatus: models.PaymentStatusPaid,
	})
	assert.ErrorIs(t, err, models.ErrBookingNotFound)
}

func TestApplyPaymentResult_RejectsPendingStatus(t *testing.T) {
	service, _, booking, _, _ := setupReconciliationTest(t)

	_, err := service.ApplyPaymentResult(booking.ID, &models.ApplyPaymentResultRequest{
		PaymentStatus: models.PaymentStatusPending,
	})
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
