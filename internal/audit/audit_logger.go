package audit

import (
	"encoding/json"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

// Event types written by the ledger.
const (
	GoalCreated         = "GOAL_CREATED"
	GoalArchived        = "GOAL_ARCHIVED"
	GoalUnarchived      = "GOAL_UNARCHIVED"
	GoalDeleted         = "GOAL_DELETED"
	ContributionAdded   = "CONTRIBUTION_ADDED"
	ContributionUpdated = "CONTRIBUTION_UPDATED"
	ContributionDeleted = "CONTRIBUTION_DELETED"
	SafeDeposit         = "SAFE_DEPOSIT"
	SafeWithdrawal      = "SAFE_WITHDRAWAL"
	SafeDistribution    = "SAFE_DISTRIBUTION"
	SessionCompleted    = "SESSION_COMPLETED"
	SessionSkipped      = "SESSION_SKIPPED"
	AverageRecalculated = "AVERAGE_RECALCULATED"
	LedgerCleared       = "LEDGER_CLEARED"
	LedgerImported      = "LEDGER_IMPORTED"
	StorageWriteFailed  = "STORAGE_WRITE_FAILED"
)

type Event struct {
	Timestamp time.Time        `json:"timestamp"`
	EventType string           `json:"event_type"`
	EntityID  string           `json:"entity_id,omitempty"`
	GoalID    string           `json:"goal_id,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Status    string           `json:"status"`
	Details   any              `json:"details,omitempty"`
}

// Logger writes one AUDIT line per ledger mutation.
type Logger struct {
	sink func(string)
}

func NewLogger() *Logger {
	return &Logger{sink: func(line string) { log.Print(line) }}
}

// NewLoggerWithSink lets tests capture audit lines.
func NewLoggerWithSink(sink func(string)) *Logger {
	return &Logger{sink: sink}
}

func (a *Logger) LogAmount(eventType, entityID, goalID string, amount decimal.Decimal) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: eventType,
		EntityID:  entityID,
		GoalID:    goalID,
		Amount:    &amount,
		Status:    "SUCCESS",
	})
}

func (a *Logger) LogOperation(eventType, entityID, details string) {
	event := Event{
		Timestamp: time.Now(),
		EventType: eventType,
		EntityID:  entityID,
		Status:    "SUCCESS",
	}
	if details != "" {
		event.Details = map[string]string{"details": details}
	}
	a.log(event)
}

func (a *Logger) LogError(eventType, entityID string, err error) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: eventType,
		EntityID:  entityID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	data, _ := json.Marshal(event)
	a.sink("AUDIT: " + string(data))
}
