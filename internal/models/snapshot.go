package models

import "time"

// Snapshot is a full copy of every ledger collection, used for export and import.
type Snapshot struct {
	Version          int               `json:"version" toml:"version"`
	ExportedAt       time.Time         `json:"exportedAt" toml:"exported_at"`
	Settings         AppSettings       `json:"settings" toml:"settings"`
	Safe             Safe              `json:"safe" toml:"safe"`
	Goals            []Goal            `json:"goals" toml:"goals"`
	Contributions    []Contribution    `json:"contributions" toml:"contributions"`
	WorkSessions     []WorkSession     `json:"workSessions" toml:"work_sessions"`
	SafeTransactions []SafeTransaction `json:"safeTransactions" toml:"safe_transactions"`
}
