package services

import (
	"context"

	"github.com/savingsjars/backend/internal/models"
	"github.com/shopspring/decimal"
)

// The load* helpers return an empty collection alongside any read error.
// Read-only callers may drop the error and serve the empty value; mutations
// must return it instead of writing.

func loadList[T any](ctx context.Context, s *LedgerStore, collection string) ([]T, error) {
	var items []T
	if err := s.read(ctx, collection, &items); err != nil {
		return []T{}, err
	}
	if items == nil {
		return []T{}, nil
	}
	return items, nil
}

func (s *LedgerStore) loadGoals(ctx context.Context) ([]models.Goal, error) {
	return loadList[models.Goal](ctx, s, colGoals)
}

func (s *LedgerStore) loadContributions(ctx context.Context) ([]models.Contribution, error) {
	return loadList[models.Contribution](ctx, s, colContributions)
}

func (s *LedgerStore) loadSessions(ctx context.Context) ([]models.WorkSession, error) {
	return loadList[models.WorkSession](ctx, s, colWorkSessions)
}

func (s *LedgerStore) loadSafeTransactions(ctx context.Context) ([]models.SafeTransaction, error) {
	return loadList[models.SafeTransaction](ctx, s, colSafeTransactions)
}

// loadSafe returns the stored safe. found is false only when the key does not
// exist; a failed read reports err and never found.
func (s *LedgerStore) loadSafe(ctx context.Context) (safe models.Safe, found bool, err error) {
	var stored *models.Safe
	if err := s.read(ctx, colSafe, &stored); err != nil {
		return models.Safe{Balance: decimal.Zero}, false, err
	}
	if stored == nil {
		return models.Safe{Balance: decimal.Zero}, false, nil
	}
	return *stored, true, nil
}

// loadSettings merges whatever is stored over the defaults.
func (s *LedgerStore) loadSettings(ctx context.Context) (models.AppSettings, error) {
	settings := models.DefaultSettings()
	if err := s.read(ctx, colSettings, &settings); err != nil {
		return models.DefaultSettings(), err
	}
	return settings, nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func findGoal(goals []models.Goal, id string) int {
	for i := range goals {
		if goals[i].ID == id {
			return i
		}
	}
	return -1
}

func findContribution(contributions []models.Contribution, id string) int {
	for i := range contributions {
		if contributions[i].ID == id {
			return i
		}
	}
	return -1
}

func findSession(sessions []models.WorkSession, id string) int {
	for i := range sessions {
		if sessions[i].ID == id {
			return i
		}
	}
	return -1
}
