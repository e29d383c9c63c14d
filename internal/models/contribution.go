package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contribution is a single deposit toward a goal.
type Contribution struct {
	ID        string          `json:"id" toml:"id"`
	GoalID    string          `json:"goalId" toml:"goal_id"`
	Amount    decimal.Decimal `json:"amount" toml:"amount"`
	Note      string          `json:"note,omitempty" toml:"note,omitempty"`
	Date      time.Time       `json:"date" toml:"date"`
	CreatedAt time.Time       `json:"createdAt" toml:"created_at"`
}
