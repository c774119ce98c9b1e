package services

import (
	"github.com/sirupsen/logrus"
)

// ReaperService releases expired seat holds. Holds are already treated as
// available by the conditional updates once past their TTL; the sweep just
// writes that truth back so seat maps stay readable.
type ReaperService struct {
	inventory InventoryStore
	logger    *logrus.Logger
}

// NewReaperService creates a new ReaperService
func NewReaperService(inventory InventoryStore, logger *logrus.Logger) *ReaperService {
	return &ReaperService{
		inventory: inventory,
		logger:    logger,
	}
}

// Sweep releases every expired hold and returns the number of seats freed.
// Running it twice back to back frees nothing the second time.
func (s *ReaperService) Sweep() (int, error) {
	released, err := s.inventory.ReleaseExpiredHolds()
	if err != nil {
		s.logger.WithError(err).Error("Expired hold sweep failed")
		return 0, err
	}

	if released > 0 {
		s.logger.WithField("released_seats", released).Info("Released expired seat holds")
	} else {
		s.logger.Debug("No expired seat holds to release")
	}
	return released, nil
}
