package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShiftType selects the fixed window a work session covers.
type ShiftType string

const (
	ShiftDay   ShiftType = "day"
	ShiftNight ShiftType = "night"
)

// SessionStatus is the lifecycle state of a work session.
type SessionStatus string

const (
	SessionPlanned   SessionStatus = "planned"
	SessionCompleted SessionStatus = "completed"
	SessionSkipped   SessionStatus = "skipped"
)

// WorkSession is a planned or finished shift that produces earnings.
type WorkSession struct {
	ID                  string           `json:"id" toml:"id"`
	Date                time.Time        `json:"date" toml:"date"`
	OperationType       string           `json:"operationType" toml:"operation_type"`
	ShiftType           ShiftType        `json:"shiftType" toml:"shift_type"`
	PlannedEarning      decimal.Decimal  `json:"plannedEarning" toml:"planned_earning"`
	PlannedContribution decimal.Decimal  `json:"plannedContribution" toml:"planned_contribution"`
	GoalID              string           `json:"goalId,omitempty" toml:"goal_id,omitempty"`
	CreatedAt           time.Time        `json:"createdAt" toml:"created_at"`
	IsCompleted         bool             `json:"isCompleted" toml:"is_completed"`
	Status              SessionStatus    `json:"status" toml:"status"`
	ActualEarning       *decimal.Decimal `json:"actualEarning,omitempty" toml:"actual_earning,omitempty"`
	ActualContribution  *decimal.Decimal `json:"actualContribution,omitempty" toml:"actual_contribution,omitempty"`
	CompletedAt         *time.Time       `json:"completedAt,omitempty" toml:"completed_at,omitempty"`
}

// IsOpen reports whether the session can still be completed or skipped.
func (s *WorkSession) IsOpen() bool {
	return !s.IsCompleted && s.Status != SessionCompleted && s.Status != SessionSkipped
}

// Earned returns the actual earning of a completed session, zero otherwise.
func (s *WorkSession) Earned() decimal.Decimal {
	if s.Status != SessionCompleted || s.ActualEarning == nil {
		return decimal.Zero
	}
	return *s.ActualEarning
}

// EarningsStats are actual earnings summed over calendar periods.
type EarningsStats struct {
	Today     decimal.Decimal `json:"today"`
	ThisWeek  decimal.Decimal `json:"thisWeek"`
	ThisMonth decimal.Decimal `json:"thisMonth"`
	AllTime   decimal.Decimal `json:"allTime"`
}
