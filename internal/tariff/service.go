package tariff

import (
	"log/slog"
	"time"

	errors "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
	tariffDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/tariff"
)

// Repository defines data access for tariffs.
type Repository interface {
	GetByID(id int64) (*tariffDatamodel.Tariff, error)
	GetActive() ([]*tariffDatamodel.Tariff, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CalculateFee computes the amount owed for a stay from entry to exit under
// the given tariff: a free-minutes grace period, then entrance fee plus the
// hourly rate for every started hour, optionally capped per day.
func CalculateFee(entry, exit time.Time, t *tariffDatamodel.Tariff) int64 {
	if exit.Before(entry) {
		return 0
	}

	elapsed := exit.Sub(entry)
	if elapsed <= time.Duration(t.FreeMinutes)*time.Minute {
		return 0
	}

	hours := int64(elapsed / time.Hour)
	if elapsed%time.Hour > 0 {
		hours++
	}

	amount := t.EntranceFee + hours*t.HourlyRate

	if t.DailyCap > 0 {
		days := int64(elapsed/(24*time.Hour)) + 1
		if cap := days * t.DailyCap; amount > cap {
			amount = cap
		}
	}

	return amount
}

// QuoteStay resolves the tariff and prices an ongoing stay up to now.
func (s *Service) QuoteStay(tariffID int64, entry time.Time) (int64, error) {
	t, err := s.repo.GetByID(tariffID)
	if err != nil {
		s.logger.Error("tariff lookup failed", "error", err, "tariff_id", tariffID)
		return 0, errors.ErrTariffNotFound
	}

	amount := CalculateFee(entry, time.Now(), t)

	s.logger.Debug("stay quoted",
		"tariff_id", tariffID,
		"entry_time", entry,
		"amount", amount)

	return amount, nil
}

// ListActive returns tariffs available for new reservations.
func (s *Service) ListActive() ([]*tariffDatamodel.Tariff, error) {
	tariffs, err := s.repo.GetActive()
	if err != nil {
		s.logger.Error("failed to list active tariffs", "error", err)
		return nil, err
	}
	return tariffs, nil
}
