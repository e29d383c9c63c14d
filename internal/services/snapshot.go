package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/savingsjars/backend/internal/audit"
	"github.com/savingsjars/backend/internal/models"
	"github.com/shopspring/decimal"
)

const snapshotVersion = 1

// Export copies every collection into a snapshot.
func (s *LedgerStore) Export(ctx context.Context) models.Snapshot {
	unlock := s.locks.acquire(lockOrder...)
	defer unlock()

	safe, _, _ := s.loadSafe(ctx)
	settings, _ := s.loadSettings(ctx)
	goals, _ := s.loadGoals(ctx)
	contributions, _ := s.loadContributions(ctx)
	sessions, _ := s.loadSessions(ctx)
	txs, _ := s.loadSafeTransactions(ctx)
	return models.Snapshot{
		Version:          snapshotVersion,
		ExportedAt:       s.clock(),
		Settings:         settings,
		Safe:             safe,
		Goals:            goals,
		Contributions:    contributions,
		WorkSessions:     sessions,
		SafeTransactions: txs,
	}
}

// Import replaces every collection with the snapshot contents. The snapshot
// must be internally consistent.
func (s *LedgerStore) Import(ctx context.Context, snap models.Snapshot) (err error) {
	defer func() { observe("import", err) }()

	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported snapshot version %d", ErrValidation, snap.Version)
	}
	if issues := checkConsistency(snap); len(issues) > 0 {
		return fmt.Errorf("%w: snapshot is inconsistent: %s", ErrValidation, issues[0])
	}

	unlock := s.locks.acquire(lockOrder...)
	defer unlock()

	s.write(ctx, colGoals, nonNil(snap.Goals))
	s.write(ctx, colContributions, nonNil(snap.Contributions))
	s.write(ctx, colWorkSessions, nonNil(snap.WorkSessions))
	s.write(ctx, colSafeTransactions, nonNil(snap.SafeTransactions))
	s.write(ctx, colSafe, snap.Safe)
	s.write(ctx, colSettings, snap.Settings)

	setSafeGauge(snap.Safe.Balance)
	s.audit.LogOperation(audit.LedgerImported, s.prefix, fmt.Sprintf("goals: %d, contributions: %d", len(snap.Goals), len(snap.Contributions)))
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// VerifyConsistency checks the materialized totals against the records they
// are derived from and returns one line per mismatch.
func (s *LedgerStore) VerifyConsistency(ctx context.Context) []string {
	return checkConsistency(s.Export(ctx))
}

func checkConsistency(snap models.Snapshot) []string {
	issues := checkRecords(snap)

	sums := make(map[string]decimal.Decimal, len(snap.Goals))
	for _, c := range snap.Contributions {
		sums[c.GoalID] = sums[c.GoalID].Add(c.Amount)
	}
	known := make(map[string]bool, len(snap.Goals))
	for _, g := range snap.Goals {
		known[g.ID] = true
		if !g.CurrentAmount.Equal(sums[g.ID]) {
			issues = append(issues, fmt.Sprintf("goal %s: current amount %s, contributions sum %s", g.ID, g.CurrentAmount, sums[g.ID]))
		}
	}
	for _, c := range snap.Contributions {
		if !known[c.GoalID] {
			issues = append(issues, fmt.Sprintf("contribution %s: unknown goal %s", c.ID, c.GoalID))
		}
	}

	balance := decimal.Zero
	for _, tx := range snap.SafeTransactions {
		switch tx.Type {
		case models.SafeDeposit:
			balance = balance.Add(tx.Amount)
		case models.SafeWithdrawal:
			balance = balance.Sub(tx.Amount)
		}
	}
	if !snap.Safe.Balance.Equal(balance) {
		issues = append(issues, fmt.Sprintf("safe: balance %s, transactions sum %s", snap.Safe.Balance, balance))
	}
	if snap.Safe.Balance.IsNegative() {
		issues = append(issues, fmt.Sprintf("safe: negative balance %s", snap.Safe.Balance))
	}
	return issues
}

// checkRecords validates each record on its own: amounts, enums, status flags
// and ID uniqueness.
func checkRecords(snap models.Snapshot) []string {
	var issues []string
	report := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}
	seen := make(map[string]map[string]bool)
	unique := func(kind, id string) {
		if id == "" {
			report("%s: missing id", kind)
			return
		}
		if seen[kind] == nil {
			seen[kind] = make(map[string]bool)
		}
		if seen[kind][id] {
			report("%s %s: duplicate id", kind, id)
		}
		seen[kind][id] = true
	}

	activeNames := make(map[string]string)
	for _, g := range snap.Goals {
		unique("goal", g.ID)
		if strings.TrimSpace(g.Name) == "" {
			report("goal %s: empty name", g.ID)
		}
		if !g.TargetAmount.IsPositive() {
			report("goal %s: target amount %s must be positive", g.ID, g.TargetAmount)
		}
		if g.CurrentAmount.IsNegative() {
			report("goal %s: negative current amount %s", g.ID, g.CurrentAmount)
		}
		if !g.IsArchived {
			name := models.NormalizeGoalName(g.Name)
			if other, ok := activeNames[name]; ok {
				report("goal %s: name %q already used by active goal %s", g.ID, g.Name, other)
			}
			activeNames[name] = g.ID
		}
	}

	for _, c := range snap.Contributions {
		unique("contribution", c.ID)
		if !c.Amount.IsPositive() {
			report("contribution %s: amount %s must be positive", c.ID, c.Amount)
		}
	}

	for _, tx := range snap.SafeTransactions {
		unique("safe transaction", tx.ID)
		if !tx.Amount.IsPositive() {
			report("safe transaction %s: amount %s must be positive", tx.ID, tx.Amount)
		}
		if tx.Type != models.SafeDeposit && tx.Type != models.SafeWithdrawal {
			report("safe transaction %s: unknown type %q", tx.ID, tx.Type)
		}
	}

	for _, sess := range snap.WorkSessions {
		unique("session", sess.ID)
		if sess.ShiftType != models.ShiftDay && sess.ShiftType != models.ShiftNight {
			report("session %s: unknown shift %q", sess.ID, sess.ShiftType)
		}
		switch sess.Status {
		case models.SessionPlanned, models.SessionCompleted, models.SessionSkipped:
			if sess.IsCompleted != (sess.Status != models.SessionPlanned) {
				report("session %s: isCompleted %t does not match status %s", sess.ID, sess.IsCompleted, sess.Status)
			}
		default:
			report("session %s: unknown status %q", sess.ID, sess.Status)
		}
		if sess.PlannedEarning.IsNegative() || sess.PlannedContribution.IsNegative() {
			report("session %s: negative planned figures", sess.ID)
		}
		if (sess.ActualEarning != nil && sess.ActualEarning.IsNegative()) ||
			(sess.ActualContribution != nil && sess.ActualContribution.IsNegative()) {
			report("session %s: negative actual figures", sess.ID)
		}
	}

	if snap.Settings.AverageDailyEarning.IsNegative() {
		report("settings: negative average daily earning %s", snap.Settings.AverageDailyEarning)
	}
	return issues
}
