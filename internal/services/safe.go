package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/savingsjars/backend/internal/audit"
	"github.com/savingsjars/backend/internal/metrics"
	"github.com/savingsjars/backend/internal/models"
	"github.com/shopspring/decimal"
)

const safeContributionNote = "From safe"

// GetSafe returns the safe, creating it with a zero balance on first access.
// When the stored safe cannot be read a zero balance is reported and nothing
// is written.
func (s *LedgerStore) GetSafe(ctx context.Context) models.Safe {
	unlock := s.locks.acquire(colSafe)
	defer unlock()

	safe, found, err := s.loadSafe(ctx)
	if err == nil && !found {
		safe.UpdatedAt = s.clock()
		s.write(ctx, colSafe, safe)
	}
	return safe
}

// ListSafeTransactions returns every safe transaction, newest first.
func (s *LedgerStore) ListSafeTransactions(ctx context.Context) []models.SafeTransaction {
	unlock := s.locks.acquire(colSafeTransactions)
	defer unlock()

	txs, _ := s.loadSafeTransactions(ctx)
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })
	return txs
}

func (s *LedgerStore) newSafeTransaction(amount decimal.Decimal, txType models.SafeTransactionType, goalID, note string) models.SafeTransaction {
	now := s.clock()
	return models.SafeTransaction{
		ID:        s.newID(),
		Amount:    amount,
		Type:      txType,
		Note:      note,
		GoalID:    goalID,
		Date:      now,
		CreatedAt: now,
	}
}

func (s *LedgerStore) DepositToSafe(ctx context.Context, amount decimal.Decimal, note string) (safe *models.Safe, err error) {
	defer func() { observe("deposit_to_safe", err) }()

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	unlock := s.locks.acquire(colSafe, colSafeTransactions)
	defer unlock()

	current, _, err := s.loadSafe(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.loadSafeTransactions(ctx)
	if err != nil {
		return nil, err
	}
	tx := s.newSafeTransaction(amount, models.SafeDeposit, "", note)
	txs = append(txs, tx)

	current.Balance = current.Balance.Add(amount)
	current.UpdatedAt = tx.CreatedAt

	s.write(ctx, colSafeTransactions, txs)
	s.write(ctx, colSafe, current)

	s.audit.LogAmount(audit.SafeDeposit, tx.ID, "", amount)
	setSafeGauge(current.Balance)
	return &current, nil
}

// WithdrawFromSafe takes amount out of the safe. With a goalID the money is
// credited to that goal as a contribution.
func (s *LedgerStore) WithdrawFromSafe(ctx context.Context, amount decimal.Decimal, goalID, note string) (tx *models.SafeTransaction, err error) {
	defer func() { observe("withdraw_from_safe", err) }()

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	unlock := s.locks.acquire(colGoals, colContributions, colSafe, colSafeTransactions)
	defer unlock()

	current, _, err := s.loadSafe(ctx)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(current.Balance) {
		log.Printf("[LedgerStore] WithdrawFromSafe - amount %s exceeds balance %s", amount, current.Balance)
		return nil, ErrInsufficientBalance
	}

	var goals []models.Goal
	var contributions []models.Contribution
	if goalID != "" {
		if goals, err = s.loadGoals(ctx); err != nil {
			return nil, err
		}
		if findGoal(goals, goalID) < 0 {
			return nil, ErrGoalNotFound
		}
		if contributions, err = s.loadContributions(ctx); err != nil {
			return nil, err
		}
	}
	txs, err := s.loadSafeTransactions(ctx)
	if err != nil {
		return nil, err
	}

	created := s.newSafeTransaction(amount, models.SafeWithdrawal, goalID, note)
	txs = append(txs, created)
	current.Balance = current.Balance.Sub(amount)
	current.UpdatedAt = created.CreatedAt

	if goalID != "" {
		contributions, _ = s.appendContribution(goals, contributions, NewContribution{
			GoalID: goalID,
			Amount: amount,
			Note:   contributionNote(note),
		})
		s.write(ctx, colContributions, contributions)
		s.write(ctx, colGoals, goals)
	}
	s.write(ctx, colSafeTransactions, txs)
	s.write(ctx, colSafe, current)

	s.audit.LogAmount(audit.SafeWithdrawal, created.ID, goalID, amount)
	setSafeGauge(current.Balance)
	return &created, nil
}

// DistributeFromSafe moves money from the safe into several goals. The batch
// is all-or-nothing: every entry is checked before anything is applied.
func (s *LedgerStore) DistributeFromSafe(ctx context.Context, distributions []models.Distribution) (txs []models.SafeTransaction, err error) {
	defer func() { observe("distribute_from_safe", err) }()

	if len(distributions) == 0 {
		return nil, fmt.Errorf("%w: nothing to distribute", ErrValidation)
	}
	total := decimal.Zero
	for i := range distributions {
		if err := s.validator.Check(&distributions[i]); err != nil {
			return nil, err
		}
		total = total.Add(distributions[i].Amount)
	}

	unlock := s.locks.acquire(colGoals, colContributions, colSafe, colSafeTransactions)
	defer unlock()

	current, _, err := s.loadSafe(ctx)
	if err != nil {
		return nil, err
	}
	if total.GreaterThan(current.Balance) {
		log.Printf("[LedgerStore] DistributeFromSafe - total %s exceeds balance %s", total, current.Balance)
		return nil, ErrInsufficientBalance
	}

	goals, err := s.loadGoals(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range distributions {
		if findGoal(goals, d.GoalID) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrGoalNotFound, d.GoalID)
		}
	}

	contributions, errContrib := s.loadContributions(ctx)
	allTxs, errTxs := s.loadSafeTransactions(ctx)
	if err := firstErr(errContrib, errTxs); err != nil {
		return nil, err
	}
	created := make([]models.SafeTransaction, 0, len(distributions))
	for _, d := range distributions {
		tx := s.newSafeTransaction(d.Amount, models.SafeWithdrawal, d.GoalID, "")
		allTxs = append(allTxs, tx)
		created = append(created, tx)
		contributions, _ = s.appendContribution(goals, contributions, NewContribution{
			GoalID: d.GoalID,
			Amount: d.Amount,
			Note:   safeContributionNote,
		})
	}
	current.Balance = current.Balance.Sub(total)
	current.UpdatedAt = s.clock()

	s.write(ctx, colContributions, contributions)
	s.write(ctx, colGoals, goals)
	s.write(ctx, colSafeTransactions, allTxs)
	s.write(ctx, colSafe, current)

	s.audit.LogAmount(audit.SafeDistribution, "", "", total)
	setSafeGauge(current.Balance)
	return created, nil
}

func contributionNote(note string) string {
	if note == "" {
		return safeContributionNote
	}
	return note
}

func setSafeGauge(balance decimal.Decimal) {
	f, _ := balance.Float64()
	metrics.SafeBalance.Set(f)
}
