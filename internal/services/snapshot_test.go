package services

import (
	"context"
	"testing"

	"github.com/savingsjars/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLedger(t *testing.T, store *LedgerStore) {
	t.Helper()
	ctx := context.Background()

	goal, err := store.CreateGoal(ctx, CreateGoalInput{Name: "Holiday", TargetAmount: amt(8000)})
	require.NoError(t, err)
	_, err = store.AddContribution(ctx, NewContribution{GoalID: goal.ID, Amount: amt(1200)})
	require.NoError(t, err)
	_, err = store.DepositToSafe(ctx, amt(900), "")
	require.NoError(t, err)
	_, err = store.WithdrawFromSafe(ctx, amt(400), goal.ID, "")
	require.NoError(t, err)
	completeOn(t, store, day(2024, 6, 11), models.ShiftDay, 2200)
	require.NoError(t, store.SaveSettings(ctx, models.AppSettings{UserName: "ada", AverageDailyEarning: amt(2200)}))
}

func TestLedgerStore_ExportImport(t *testing.T) {
	ctx := context.Background()
	source, _ := newTestStore(t)
	seedLedger(t, source)

	snap := source.Export(ctx)
	assert.Equal(t, 1, snap.Version)
	assert.Equal(t, testNow, snap.ExportedAt)
	assert.Len(t, snap.Goals, 1)
	assert.Len(t, snap.Contributions, 2)
	assert.Len(t, snap.SafeTransactions, 2)
	assert.Len(t, snap.WorkSessions, 1)

	target, _ := newTestStore(t)
	_, err := target.CreateGoal(ctx, CreateGoalInput{Name: "Overwritten", TargetAmount: amt(1)})
	require.NoError(t, err)

	require.NoError(t, target.Import(ctx, snap))

	goals := target.ListGoals(ctx)
	require.Len(t, goals, 1)
	assert.Equal(t, "Holiday", goals[0].Name)
	assert.True(t, goals[0].CurrentAmount.Equal(amt(1600)))
	assert.True(t, target.GetSafe(ctx).Balance.Equal(amt(500)))
	assert.Equal(t, "ada", target.GetSettings(ctx).UserName)
	assert.Len(t, target.CompletedSessions(ctx), 1)
	assert.Empty(t, target.VerifyConsistency(ctx))
}

func TestLedgerStore_ImportRejectsBadSnapshots(t *testing.T) {
	ctx := context.Background()
	source, _ := newTestStore(t)
	seedLedger(t, source)

	t.Run("unknown version", func(t *testing.T) {
		snap := source.Export(ctx)
		snap.Version = 7
		target, _ := newTestStore(t)
		assert.ErrorIs(t, target.Import(ctx, snap), ErrValidation)
	})

	t.Run("goal total out of step", func(t *testing.T) {
		snap := source.Export(ctx)
		snap.Goals[0].CurrentAmount = amt(1)
		target, _ := newTestStore(t)
		assert.ErrorIs(t, target.Import(ctx, snap), ErrValidation)
		assert.Empty(t, target.ListGoals(ctx))
	})

	t.Run("contribution for unknown goal", func(t *testing.T) {
		snap := source.Export(ctx)
		snap.Contributions[0].GoalID = "missing"
		target, _ := newTestStore(t)
		err := target.Import(ctx, snap)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("negative goal figures with matching contribution", func(t *testing.T) {
		snap := models.Snapshot{
			Version:       1,
			Settings:      models.DefaultSettings(),
			Goals:         []models.Goal{{ID: "g1", Name: "Broken", TargetAmount: amt(-5), CurrentAmount: amt(-10)}},
			Contributions: []models.Contribution{{ID: "c1", GoalID: "g1", Amount: amt(-10)}},
		}
		target, _ := newTestStore(t)
		err := target.Import(ctx, snap)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, target.ListGoals(ctx))
		assert.Empty(t, target.ListContributions(ctx))
	})

	recordCases := map[string]func(snap *models.Snapshot){
		"zero target": func(snap *models.Snapshot) {
			snap.Goals[0].TargetAmount = amt(0)
		},
		"duplicate goal id": func(snap *models.Snapshot) {
			dup := snap.Goals[0]
			dup.Name = "Other"
			dup.CurrentAmount = amt(0)
			snap.Goals = append(snap.Goals, dup)
		},
		"duplicate active goal name": func(snap *models.Snapshot) {
			dup := snap.Goals[0]
			dup.ID = "another"
			dup.CurrentAmount = amt(0)
			snap.Goals = append(snap.Goals, dup)
		},
		"duplicate contribution id": func(snap *models.Snapshot) {
			snap.Contributions[1].ID = snap.Contributions[0].ID
		},
		"unknown transaction type": func(snap *models.Snapshot) {
			snap.SafeTransactions[0].Type = "refund"
		},
		"zero transaction amount": func(snap *models.Snapshot) {
			snap.SafeTransactions[0].Amount = amt(0)
		},
		"unknown session status": func(snap *models.Snapshot) {
			snap.WorkSessions[0].Status = "paused"
		},
		"unknown shift": func(snap *models.Snapshot) {
			snap.WorkSessions[0].ShiftType = "evening"
		},
		"completed flag out of step with status": func(snap *models.Snapshot) {
			snap.WorkSessions[0].IsCompleted = false
		},
		"negative average": func(snap *models.Snapshot) {
			snap.Settings.AverageDailyEarning = amt(-1)
		},
	}
	for name, mutate := range recordCases {
		t.Run(name, func(t *testing.T) {
			snap := source.Export(ctx)
			mutate(&snap)
			target, _ := newTestStore(t)
			assert.ErrorIs(t, target.Import(ctx, snap), ErrValidation)
			assert.Empty(t, target.ListGoals(ctx))
		})
	}

	t.Run("safe balance out of step", func(t *testing.T) {
		snap := source.Export(ctx)
		snap.Safe.Balance = amt(5000)
		target, _ := newTestStore(t)
		assert.ErrorIs(t, target.Import(ctx, snap), ErrValidation)
	})
}

func TestLedgerStore_ImportEmptySnapshot(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	seedLedger(t, store)

	require.NoError(t, store.Import(ctx, models.Snapshot{Version: 1, Settings: models.DefaultSettings()}))

	assert.Empty(t, store.ListGoals(ctx))
	assert.Empty(t, store.ListContributions(ctx))
	assert.Empty(t, store.ListSessions(ctx))
	assert.True(t, store.GetSafe(ctx).Balance.IsZero())
}
