package services

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/savingsjars/backend/internal/audit"
	"github.com/savingsjars/backend/internal/models"
	"github.com/shopspring/decimal"
)

// NewContribution is a deposit toward a goal. A zero Date means now.
type NewContribution struct {
	GoalID string          `json:"goalId" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Note   string          `json:"note,omitempty" validate:"max=500"`
	Date   time.Time       `json:"date"`
}

// ContributionUpdate holds the contribution fields to change.
type ContributionUpdate struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Note   *string          `json:"note,omitempty"`
	Date   *time.Time       `json:"date,omitempty"`
}

// adjustGoal moves a goal's current amount by delta, never below zero.
func adjustGoal(goals []models.Goal, goalID string, delta decimal.Decimal, now time.Time) bool {
	ix := findGoal(goals, goalID)
	if ix < 0 {
		return false
	}
	g := &goals[ix]
	g.CurrentAmount = g.CurrentAmount.Add(delta)
	if g.CurrentAmount.IsNegative() {
		g.CurrentAmount = decimal.Zero
	}
	g.UpdatedAt = now
	return true
}

// appendContribution records c and credits its goal in the given slices.
// The caller holds the goals and contributions locks and writes both back.
func (s *LedgerStore) appendContribution(goals []models.Goal, contributions []models.Contribution, input NewContribution) ([]models.Contribution, models.Contribution) {
	now := s.clock()
	date := input.Date
	if date.IsZero() {
		date = now
	}
	c := models.Contribution{
		ID:        s.newID(),
		GoalID:    input.GoalID,
		Amount:    input.Amount,
		Note:      input.Note,
		Date:      date,
		CreatedAt: now,
	}
	adjustGoal(goals, c.GoalID, c.Amount, now)
	s.audit.LogAmount(audit.ContributionAdded, c.ID, c.GoalID, c.Amount)
	return append(contributions, c), c
}

// AddContribution records a deposit and increments the goal's current amount.
// Contributions to unknown goals are rejected.
func (s *LedgerStore) AddContribution(ctx context.Context, input NewContribution) (contribution *models.Contribution, err error) {
	defer func() { observe("add_contribution", err) }()

	if err := s.validator.Check(&input); err != nil {
		return nil, err
	}

	unlock := s.locks.acquire(colGoals, colContributions)
	defer unlock()

	goals, err := s.loadGoals(ctx)
	if err != nil {
		return nil, err
	}
	if findGoal(goals, input.GoalID) < 0 {
		log.Printf("[LedgerStore] AddContribution - unknown goal: %s", input.GoalID)
		return nil, ErrGoalNotFound
	}
	contributions, err := s.loadContributions(ctx)
	if err != nil {
		return nil, err
	}

	contributions, created := s.appendContribution(goals, contributions, input)
	s.write(ctx, colContributions, contributions)
	s.write(ctx, colGoals, goals)
	return &created, nil
}

// UpdateContribution applies the changes; an amount change moves the goal by new-old.
func (s *LedgerStore) UpdateContribution(ctx context.Context, id string, update ContributionUpdate) (contribution *models.Contribution, err error) {
	defer func() { observe("update_contribution", err) }()

	if update.Amount != nil && !update.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	unlock := s.locks.acquire(colGoals, colContributions)
	defer unlock()

	contributions, err := s.loadContributions(ctx)
	if err != nil {
		return nil, err
	}
	ix := findContribution(contributions, id)
	if ix < 0 {
		return nil, ErrContributionNotFound
	}
	c := &contributions[ix]

	var goals []models.Goal
	if update.Amount != nil && !update.Amount.Equal(c.Amount) {
		if goals, err = s.loadGoals(ctx); err != nil {
			return nil, err
		}
		delta := update.Amount.Sub(c.Amount)
		if !adjustGoal(goals, c.GoalID, delta, s.clock()) {
			log.Printf("[LedgerStore] UpdateContribution - goal %s no longer exists", c.GoalID)
			goals = nil
		}
		c.Amount = *update.Amount
	}
	if update.Note != nil {
		c.Note = *update.Note
	}
	if update.Date != nil {
		c.Date = *update.Date
	}

	s.write(ctx, colContributions, contributions)
	if goals != nil {
		s.write(ctx, colGoals, goals)
	}

	updated := *c
	s.audit.LogAmount(audit.ContributionUpdated, updated.ID, updated.GoalID, updated.Amount)
	return &updated, nil
}

// DeleteContribution removes the contribution and reverses it on the goal.
func (s *LedgerStore) DeleteContribution(ctx context.Context, id string) (err error) {
	defer func() { observe("delete_contribution", err) }()

	unlock := s.locks.acquire(colGoals, colContributions)
	defer unlock()

	contributions, err := s.loadContributions(ctx)
	if err != nil {
		return err
	}
	ix := findContribution(contributions, id)
	if ix < 0 {
		return ErrContributionNotFound
	}
	removed := contributions[ix]

	goals, err := s.loadGoals(ctx)
	if err != nil {
		return err
	}
	goalFound := adjustGoal(goals, removed.GoalID, removed.Amount.Neg(), s.clock())

	contributions = append(contributions[:ix], contributions[ix+1:]...)
	s.write(ctx, colContributions, contributions)
	if goalFound {
		s.write(ctx, colGoals, goals)
	}

	s.audit.LogAmount(audit.ContributionDeleted, removed.ID, removed.GoalID, removed.Amount)
	return nil
}

func (s *LedgerStore) ListContributions(ctx context.Context) []models.Contribution {
	unlock := s.locks.acquire(colContributions)
	defer unlock()
	contributions, _ := s.loadContributions(ctx)
	return contributions
}

// ListContributionsByGoal returns the goal's contributions, newest date first.
func (s *LedgerStore) ListContributionsByGoal(ctx context.Context, goalID string) []models.Contribution {
	return contributionsForGoal(s.ListContributions(ctx), goalID)
}

func contributionsForGoal(all []models.Contribution, goalID string) []models.Contribution {
	out := make([]models.Contribution, 0)
	for _, c := range all {
		if c.GoalID == goalID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Date.After(out[j].Date)
	})
	return out
}
