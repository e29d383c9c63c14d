package services

import (
	"context"

	"github.com/savingsjars/backend/internal/models"
	"github.com/shopspring/decimal"
)

func (s *LedgerStore) GetSettings(ctx context.Context) models.AppSettings {
	unlock := s.locks.acquire(colSettings)
	defer unlock()
	settings, _ := s.loadSettings(ctx)
	return settings
}

// SaveSettings overwrites the stored settings as a whole.
func (s *LedgerStore) SaveSettings(ctx context.Context, settings models.AppSettings) (err error) {
	defer func() { observe("save_settings", err) }()

	if settings.AverageDailyEarning.IsNegative() {
		return ErrInvalidAmount
	}

	unlock := s.locks.acquire(colSettings)
	defer unlock()

	s.write(ctx, colSettings, settings)
	return nil
}

// UpdateAverageDailyEarning sets a manual override. It is replaced the next
// time a session is completed.
func (s *LedgerStore) UpdateAverageDailyEarning(ctx context.Context, value decimal.Decimal) (settings models.AppSettings, err error) {
	defer func() { observe("update_average_daily_earning", err) }()

	if value.IsNegative() {
		return models.AppSettings{}, ErrInvalidAmount
	}

	unlock := s.locks.acquire(colSettings)
	defer unlock()

	if settings, err = s.loadSettings(ctx); err != nil {
		return models.AppSettings{}, err
	}
	settings.AverageDailyEarning = value
	s.write(ctx, colSettings, settings)
	return settings, nil
}
