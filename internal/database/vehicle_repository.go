package database

import (
	"database/sql"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flydrivego/transit-booking-backend/internal/models"
)

// VehicleRepository handles vehicle catalog database operations
type VehicleRepository struct {
	db *sqlx.DB
}

// NewVehicleRepository creates a new VehicleRepository
func NewVehicleRepository(db *sqlx.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

const vehicleColumns = `
	id, legacy_id, name, kind, origin, destination,
	departure_time, arrival_time, capacity, base_fare, category,
	created_at, updated_at`

// GetByID retrieves a vehicle by its canonical UUID.
// An all-digits id is resolved through legacy_id instead; older clients
// still carry the integer identifiers from before the catalog migration.
func (r *VehicleRepository) GetByID(id string) (*models.Vehicle, error) {
	if _, err := uuid.Parse(id); err != nil {
		if legacyID, convErr := strconv.Atoi(id); convErr == nil {
			return r.getByLegacyID(legacyID)
		}
		return nil, nil
	}

	var vehicle models.Vehicle
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	err := r.db.Get(&vehicle, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) getByLegacyID(legacyID int) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE legacy_id = $1`
	err := r.db.Get(&vehicle, query, legacyID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// List retrieves vehicles, optionally filtered by kind
func (r *VehicleRepository) List(kind models.VehicleKind) ([]models.Vehicle, error) {
	vehicles := []models.Vehicle{}
	if kind != "" {
		query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE kind = $1 ORDER BY departure_time, name`
		if err := r.db.Select(&vehicles, query, kind); err != nil {
			return nil, err
		}
		return vehicles, nil
	}

	query := `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY departure_time, name`
	if err := r.db.Select(&vehicles, query); err != nil {
		return nil, err
	}
	return vehicles, nil
}
