package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/savingsjars/backend/internal/audit"
	"github.com/savingsjars/backend/internal/models"
	"github.com/shopspring/decimal"
)

// CreateGoalInput is the data needed to open a new goal.
type CreateGoalInput struct {
	Name         string          `json:"name" validate:"required,max=100"`
	TargetAmount decimal.Decimal `json:"targetAmount" validate:"gt=0"`
	Icon         string          `json:"icon,omitempty" validate:"max=64"`
}

// GoalUpdate holds the goal fields to change; nil fields are left alone.
type GoalUpdate struct {
	Name         *string          `json:"name,omitempty"`
	TargetAmount *decimal.Decimal `json:"targetAmount,omitempty"`
	Icon         *string          `json:"icon,omitempty"`
}

func (s *LedgerStore) ListGoals(ctx context.Context) []models.Goal {
	unlock := s.locks.acquire(colGoals)
	defer unlock()
	goals, _ := s.loadGoals(ctx)
	return goals
}

func (s *LedgerStore) ListActiveGoals(ctx context.Context) []models.Goal {
	return filterGoals(s.ListGoals(ctx), false)
}

func (s *LedgerStore) ListArchivedGoals(ctx context.Context) []models.Goal {
	return filterGoals(s.ListGoals(ctx), true)
}

func filterGoals(goals []models.Goal, archived bool) []models.Goal {
	out := make([]models.Goal, 0, len(goals))
	for _, g := range goals {
		if g.IsArchived == archived {
			out = append(out, g)
		}
	}
	return out
}

func (s *LedgerStore) GetGoal(ctx context.Context, id string) (*models.Goal, error) {
	goals := s.ListGoals(ctx)
	ix := findGoal(goals, id)
	if ix < 0 {
		return nil, ErrGoalNotFound
	}
	return &goals[ix], nil
}

// nameTaken reports whether an active goal other than exceptID uses name.
func nameTaken(goals []models.Goal, name, exceptID string) bool {
	normalized := models.NormalizeGoalName(name)
	for _, g := range goals {
		if g.IsArchived || g.ID == exceptID {
			continue
		}
		if models.NormalizeGoalName(g.Name) == normalized {
			return true
		}
	}
	return false
}

func (s *LedgerStore) CreateGoal(ctx context.Context, input CreateGoalInput) (goal *models.Goal, err error) {
	defer func() { observe("create_goal", err) }()

	input.Name = strings.TrimSpace(input.Name)
	if err := s.validator.Check(&input); err != nil {
		return nil, err
	}

	unlock := s.locks.acquire(colGoals)
	defer unlock()

	goals, err := s.loadGoals(ctx)
	if err != nil {
		return nil, err
	}
	if nameTaken(goals, input.Name, "") {
		log.Printf("[LedgerStore] CreateGoal - duplicate name: %q", input.Name)
		return nil, ErrDuplicateGoalName
	}

	now := s.clock()
	created := models.Goal{
		ID:            s.newID(),
		Name:          input.Name,
		TargetAmount:  input.TargetAmount,
		CurrentAmount: decimal.Zero,
		Icon:          input.Icon,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	goals = append(goals, created)
	s.write(ctx, colGoals, goals)

	s.audit.LogAmount(audit.GoalCreated, created.ID, created.ID, created.TargetAmount)
	return &created, nil
}

func (s *LedgerStore) UpdateGoal(ctx context.Context, id string, update GoalUpdate) (goal *models.Goal, err error) {
	defer func() { observe("update_goal", err) }()

	if update.TargetAmount != nil && !update.TargetAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, fmt.Errorf("%w: goal name must not be empty", ErrValidation)
	}

	unlock := s.locks.acquire(colGoals)
	defer unlock()

	goals, err := s.loadGoals(ctx)
	if err != nil {
		return nil, err
	}
	ix := findGoal(goals, id)
	if ix < 0 {
		return nil, ErrGoalNotFound
	}
	g := &goals[ix]

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if !g.IsArchived && nameTaken(goals, name, g.ID) {
			return nil, ErrDuplicateGoalName
		}
		g.Name = name
	}
	if update.TargetAmount != nil {
		g.TargetAmount = *update.TargetAmount
	}
	if update.Icon != nil {
		g.Icon = *update.Icon
	}
	g.UpdatedAt = s.clock()

	s.write(ctx, colGoals, goals)
	updated := *g
	return &updated, nil
}

func (s *LedgerStore) ArchiveGoal(ctx context.Context, id string) (*models.Goal, error) {
	return s.setArchived(ctx, id, true)
}

// UnarchiveGoal fails with ErrDuplicateGoalName when an active goal took the name meanwhile.
func (s *LedgerStore) UnarchiveGoal(ctx context.Context, id string) (*models.Goal, error) {
	return s.setArchived(ctx, id, false)
}

func (s *LedgerStore) setArchived(ctx context.Context, id string, archived bool) (goal *models.Goal, err error) {
	operation := "archive_goal"
	if !archived {
		operation = "unarchive_goal"
	}
	defer func() { observe(operation, err) }()

	unlock := s.locks.acquire(colGoals)
	defer unlock()

	goals, err := s.loadGoals(ctx)
	if err != nil {
		return nil, err
	}
	ix := findGoal(goals, id)
	if ix < 0 {
		return nil, ErrGoalNotFound
	}
	g := &goals[ix]
	if g.IsArchived == archived {
		current := *g
		return &current, nil
	}
	if !archived && nameTaken(goals, g.Name, g.ID) {
		return nil, ErrDuplicateGoalName
	}

	now := s.clock()
	g.IsArchived = archived
	g.UpdatedAt = now
	if archived {
		g.ArchivedAt = &now
		s.audit.LogOperation(audit.GoalArchived, g.ID, g.Name)
	} else {
		g.ArchivedAt = nil
		s.audit.LogOperation(audit.GoalUnarchived, g.ID, g.Name)
	}

	s.write(ctx, colGoals, goals)
	updated := *g
	return &updated, nil
}

// DeleteGoal removes the goal together with all of its contributions.
func (s *LedgerStore) DeleteGoal(ctx context.Context, id string) (err error) {
	defer func() { observe("delete_goal", err) }()

	unlock := s.locks.acquire(colGoals, colContributions)
	defer unlock()

	goals, err := s.loadGoals(ctx)
	if err != nil {
		return err
	}
	ix := findGoal(goals, id)
	if ix < 0 {
		return ErrGoalNotFound
	}
	goals = append(goals[:ix], goals[ix+1:]...)

	contributions, err := s.loadContributions(ctx)
	if err != nil {
		return err
	}
	kept := contributions[:0]
	removed := 0
	for _, c := range contributions {
		if c.GoalID == id {
			removed++
			continue
		}
		kept = append(kept, c)
	}

	s.write(ctx, colContributions, kept)
	s.write(ctx, colGoals, goals)

	log.Printf("[LedgerStore] DeleteGoal - goal: %s, contributions removed: %d", id, removed)
	s.audit.LogOperation(audit.GoalDeleted, id, fmt.Sprintf("contributions removed: %d", removed))
	return nil
}
