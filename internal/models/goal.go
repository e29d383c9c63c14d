package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a named savings target. CurrentAmount is kept in step with the
// goal's contributions by the ledger store.
type Goal struct {
	ID            string          `json:"id" toml:"id"`
	Name          string          `json:"name" toml:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount" toml:"target_amount"`
	CurrentAmount decimal.Decimal `json:"currentAmount" toml:"current_amount"`
	Icon          string          `json:"icon,omitempty" toml:"icon,omitempty"`
	CreatedAt     time.Time       `json:"createdAt" toml:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" toml:"updated_at"`
	IsArchived    bool            `json:"isArchived" toml:"is_archived"`
	ArchivedAt    *time.Time      `json:"archivedAt,omitempty" toml:"archived_at,omitempty"`
}

// Remaining returns how much is still missing to reach the target, never negative.
func (g *Goal) Remaining() decimal.Decimal {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// NormalizeGoalName is the form used for duplicate-name checks.
func NormalizeGoalName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// GoalProgress summarises how far a goal is from completion.
type GoalProgress struct {
	GoalID             string          `json:"goalId"`
	Percentage         decimal.Decimal `json:"percentage"`
	Remaining          decimal.Decimal `json:"remaining"`
	DaysToGoal         *int64          `json:"daysToGoal"`
	ContributionsCount int             `json:"contributionsCount"`
	LastContribution   *Contribution   `json:"lastContribution,omitempty"`
}
