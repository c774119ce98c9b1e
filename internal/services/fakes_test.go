package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flydrivego/transit-booking-backend/internal/models"
)

// In-memory store fakes. The inventory fake applies the same availability
// predicate as the SQL conditional updates, under a mutex, so service tests
// including the concurrency ones exercise real all-or-nothing semantics.

type memVehicleStore struct {
	mu       sync.Mutex
	vehicles map[string]*models.Vehicle
}

func newMemVehicleStore(vehicles ...*models.Vehicle) *memVehicleStore {
	s := &memVehicleStore{vehicles: make(map[string]*models.Vehicle)}
	for _, v := range vehicles {
		s.vehicles[v.ID] = v
	}
	return s
}

func (s *memVehicleStore) GetByID(id string) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return nil, nil
	}
	clone := *v
	return &clone, nil
}

func (s *memVehicleStore) List(kind models.VehicleKind) ([]models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Vehicle{}
	for _, v := range s.vehicles {
		if kind == "" || v.Kind == kind {
			out = append(out, *v)
		}
	}
	return out, nil
}

type memInventoryStore struct {
	mu     sync.Mutex
	byKey  map[string]*models.SeatMap // vehicleID|travelDate
	byID   map[string]*models.SeatMap
	failOn error // when set, every call fails with this error
}

func newMemInventoryStore() *memInventoryStore {
	return &memInventoryStore{
		byKey: make(map[string]*models.SeatMap),
		byID:  make(map[string]*models.SeatMap),
	}
}

func mapKey(vehicleID, travelDate string) string {
	return vehicleID + "|" + travelDate
}

func cloneSeatMap(m *models.SeatMap) *models.SeatMap {
	clone := *m
	clone.Seats = make([]models.Seat, len(m.Seats))
	for i := range m.Seats {
		seat := m.Seats[i]
		if seat.SessionID != nil {
			sid := *seat.SessionID
			seat.SessionID = &sid
		}
		if seat.HoldExpiresAt != nil {
			exp := *seat.HoldExpiresAt
			seat.HoldExpiresAt = &exp
		}
		if seat.BookingID != nil {
			bid := *seat.BookingID
			seat.BookingID = &bid
		}
		clone.Seats[i] = seat
	}
	return &clone
}

func (s *memInventoryStore) FindSeatMap(vehicleID, travelDate string) (*models.SeatMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		return nil, s.failOn
	}
	m, ok := s.byKey[mapKey(vehicleID, travelDate)]
	if !ok {
		return nil, nil
	}
	return cloneSeatMap(m), nil
}

func (s *memInventoryStore) CreateSeatMap(seatMap *models.SeatMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		return s.failOn
	}
	key := mapKey(seatMap.VehicleID, seatMap.TravelDate)
	if _, exists := s.byKey[key]; exists {
		// Concurrent creator won; existing map stays canonical
		return nil
	}
	stored := cloneSeatMap(seatMap)
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = time.Now()
	for i := range stored.Seats {
		stored.Seats[i].ID = uuid.New().String()
		stored.Seats[i].SeatMapID = stored.ID
	}
	s.byKey[key] = stored
	s.byID[stored.ID] = stored
	return nil
}

func (s *memInventoryStore) HoldSeats(seatMapID string, seatNumbers []int, sessionID string, expiresAt time.Time) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		return nil, s.failOn
	}
	m, ok := s.byID[seatMapID]
	if !ok {
		return nil, fmt.Errorf("seat map %s not found", seatMapID)
	}

	now := time.Now()
	unavailable := []int{}
	for _, n := range seatNumbers {
		seat := m.SeatByNumber(n)
		if seat == nil || !seat.AvailableTo(sessionID, now) {
			unavailable = append(unavailable, n)
		}
	}
	if len(unavailable) > 0 {
		return unavailable, nil
	}

	for _, n := range seatNumbers {
		seat := m.SeatByNumber(n)
		sid := sessionID
		exp := expiresAt
		seat.Status = models.SeatStatusReserved
		seat.SessionID = &sid
		seat.HoldExpiresAt = &exp
		seat.BookingID = nil
	}
	m.UpdatedAt = now
	return nil, nil
}

func (s *memInventoryStore) ForceBookSeats(seatMapID string, seatNumbers []int, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		return s.failOn
	}
	m, ok := s.byID[seatMapID]
	if !ok {
		return fmt.Errorf("seat map %s not found", seatMapID)
	}
	for _, n := range seatNumbers {
		seat := m.SeatByNumber(n)
		if seat == nil {
			continue
		}
		bid := bookingID
		seat.Status = models.SeatStatusBooked
		seat.BookingID = &bid
		seat.SessionID = nil
		seat.HoldExpiresAt = nil
	}
	return nil
}

func (s *memInventoryStore) ReleaseExpiredHolds() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		return 0, s.failOn
	}
	now := time.Now()
	released := 0
	for _, m := range s.byID {
		for i := range m.Seats {
			seat := &m.Seats[i]
			if seat.Status == models.SeatStatusReserved && seat.HoldExpiresAt != nil && seat.HoldExpiresAt.Before(now) {
				seat.Status = models.SeatStatusAvailable
				seat.SessionID = nil
				seat.HoldExpiresAt = nil
				released++
			}
		}
	}
	return released, nil
}

// setHold rewrites a seat's hold directly, for expiry scenarios
func (s *memInventoryStore) setHold(seatMapID string, seatNumber int, sessionID string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat := s.byID[seatMapID].SeatByNumber(seatNumber)
	sid := sessionID
	exp := expiresAt
	seat.Status = models.SeatStatusReserved
	seat.SessionID = &sid
	seat.HoldExpiresAt = &exp
}

// seatState reads a seat's canonical state
func (s *memInventoryStore) seatState(seatMapID string, seatNumber int) models.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.byID[seatMapID].SeatByNumber(seatNumber)
}

type memBookingStore struct {
	mu        sync.Mutex
	inventory *memInventoryStore
	bookings  map[string]*models.Booking
	refSeq    int
}

func newMemBookingStore(inventory *memInventoryStore) *memBookingStore {
	return &memBookingStore{
		inventory: inventory,
		bookings:  make(map[string]*models.Booking),
	}
}

func (s *memBookingStore) GenerateBookingReference(prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refSeq++
	return fmt.Sprintf("%s-TST%03d", prefix, s.refSeq), nil
}

func (s *memBookingStore) Create(booking *models.Booking, seatMapID, sessionID string) ([]int, error) {
	s.inventory.mu.Lock()
	defer s.inventory.mu.Unlock()

	m, ok := s.inventory.byID[seatMapID]
	if !ok {
		return nil, fmt.Errorf("seat map %s not found", seatMapID)
	}

	now := time.Now()
	unavailable := []int{}
	for _, n := range booking.SeatNumbers {
		seat := m.SeatByNumber(n)
		if seat == nil || !seat.AvailableTo(sessionID, now) {
			unavailable = append(unavailable, n)
		}
	}
	if len(unavailable) > 0 {
		return unavailable, nil
	}

	booking.ID = uuid.New().String()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	for _, n := range booking.SeatNumbers {
		seat := m.SeatByNumber(n)
		bid := booking.ID
		seat.Status = models.SeatStatusBooked
		seat.BookingID = &bid
		seat.SessionID = nil
		seat.HoldExpiresAt = nil
	}
	m.UpdatedAt = now

	s.mu.Lock()
	clone := *booking
	s.bookings[booking.ID] = &clone
	s.mu.Unlock()
	return nil, nil
}

func (s *memBookingStore) GetByID(id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	clone := *b
	return &clone, nil
}

func (s *memBookingStore) GetByReference(reference string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.BookingReference == reference {
			clone := *b
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memBookingStore) ListByEmail(email string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Booking{}
	for _, b := range s.bookings {
		if b.ContactInfo.Email == email {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *memBookingStore) UpdatePayment(id string, status models.PaymentStatus, paymentID, paymentMethod *string, paidAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return fmt.Errorf("booking not found")
	}
	b.PaymentStatus = status
	if paymentID != nil {
		b.PaymentID = paymentID
	}
	if paymentMethod != nil {
		b.PaymentMethod = paymentMethod
	}
	if paidAt != nil {
		b.PaidAt = paidAt
	}
	b.UpdatedAt = time.Now()
	return nil
}

// stubStatusChecker is a canned payment processor
type stubStatusChecker struct {
	configured bool
	status     string
	err        error
	calls      int
}

func (s *stubStatusChecker) RetrievePaymentStatus(paymentID string) (string, error) {
	s.calls++
	return s.status, s.err
}

func (s *stubStatusChecker) IsConfigured() bool {
	return s.configured
}
