package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Safe holds money that has not been assigned to any goal yet.
type Safe struct {
	Balance   decimal.Decimal `json:"balance" toml:"balance"`
	UpdatedAt time.Time       `json:"updatedAt" toml:"updated_at"`
}

// SafeTransactionType is the direction of a safe balance change.
type SafeTransactionType string

const (
	SafeDeposit    SafeTransactionType = "deposit"
	SafeWithdrawal SafeTransactionType = "withdrawal"
)

// SafeTransaction is an immutable record of a safe balance change.
type SafeTransaction struct {
	ID        string              `json:"id" toml:"id"`
	Amount    decimal.Decimal     `json:"amount" toml:"amount"`
	Type      SafeTransactionType `json:"type" toml:"type"`
	Note      string              `json:"note,omitempty" toml:"note,omitempty"`
	GoalID    string              `json:"goalId,omitempty" toml:"goal_id,omitempty"`
	Date      time.Time           `json:"date" toml:"date"`
	CreatedAt time.Time           `json:"createdAt" toml:"created_at"`
}

// Distribution assigns part of the safe balance to a goal.
type Distribution struct {
	GoalID string          `json:"goalId" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}
