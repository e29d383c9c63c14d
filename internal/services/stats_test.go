package services

import (
	"context"
	"testing"
	"time"

	"github.com/savingsjars/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeOn(t *testing.T, store *LedgerStore, date time.Time, shift models.ShiftType, earning int64) *models.WorkSession {
	t.Helper()
	ctx := context.Background()
	sess, err := store.AddSession(ctx, NewSession{Date: date, ShiftType: shift, PlannedEarning: amt(earning)})
	require.NoError(t, err)
	done, err := store.CompleteSession(ctx, sess.ID, SessionResult{ActualEarning: amt(earning)})
	require.NoError(t, err)
	return done
}

func TestLedgerStore_RecalculateAverageDailyEarning(t *testing.T) {
	ctx := context.Background()

	t.Run("distinct dates in either order", func(t *testing.T) {
		for _, earnings := range [][2]int64{{1000, 3000}, {3000, 1000}} {
			store, _ := newTestStore(t)
			completeOn(t, store, day(2024, 6, 10), models.ShiftDay, earnings[0])
			completeOn(t, store, day(2024, 6, 11), models.ShiftDay, earnings[1])

			assert.True(t, store.RecalculateAverageDailyEarning(ctx).Equal(amt(2000)))
			assert.True(t, store.GetSettings(ctx).AverageDailyEarning.Equal(amt(2000)))
		}
	})

	t.Run("two shifts on one date count as one day", func(t *testing.T) {
		store, _ := newTestStore(t)
		completeOn(t, store, day(2024, 6, 10), models.ShiftDay, 1000)
		completeOn(t, store, day(2024, 6, 10), models.ShiftNight, 3000)

		assert.True(t, store.RecalculateAverageDailyEarning(ctx).Equal(amt(4000)))
	})

	t.Run("sessions outside the window are ignored", func(t *testing.T) {
		store, _ := newTestStore(t)
		completeOn(t, store, day(2024, 5, 1), models.ShiftDay, 9000)
		completeOn(t, store, day(2024, 6, 1), models.ShiftDay, 1500)

		assert.True(t, store.RecalculateAverageDailyEarning(ctx).Equal(amt(1500)))
	})

	t.Run("window covers thirty dates ending today", func(t *testing.T) {
		store, _ := newTestStore(t)
		completeOn(t, store, day(2024, 5, 13), models.ShiftDay, 9000)
		completeOn(t, store, day(2024, 5, 14), models.ShiftDay, 1200)
		completeOn(t, store, day(2024, 6, 12), models.ShiftDay, 1800)

		assert.True(t, store.RecalculateAverageDailyEarning(ctx).Equal(amt(1500)))
	})

	t.Run("result is rounded", func(t *testing.T) {
		store, _ := newTestStore(t)
		completeOn(t, store, day(2024, 6, 9), models.ShiftDay, 100)
		completeOn(t, store, day(2024, 6, 10), models.ShiftDay, 100)
		completeOn(t, store, day(2024, 6, 11), models.ShiftDay, 101)

		assert.True(t, store.RecalculateAverageDailyEarning(ctx).Equal(amt(100)))
	})

	t.Run("empty window keeps the stored value", func(t *testing.T) {
		store, _ := newTestStore(t)
		_, err := store.UpdateAverageDailyEarning(ctx, amt(777))
		require.NoError(t, err)

		assert.True(t, store.RecalculateAverageDailyEarning(ctx).Equal(amt(777)))
	})
}

func TestLedgerStore_EarningsStats(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	completeOn(t, store, day(2024, 6, 12), models.ShiftDay, 1000)
	completeOn(t, store, day(2024, 6, 10), models.ShiftDay, 2000)
	completeOn(t, store, day(2024, 6, 3), models.ShiftDay, 4000)
	completeOn(t, store, day(2024, 5, 31), models.ShiftDay, 8000)

	skipped, err := store.AddSession(ctx, NewSession{Date: day(2024, 6, 12), ShiftType: models.ShiftNight, PlannedEarning: amt(500)})
	require.NoError(t, err)
	_, err = store.SkipSession(ctx, skipped.ID)
	require.NoError(t, err)
	_, err = store.AddSession(ctx, NewSession{Date: day(2024, 6, 13), ShiftType: models.ShiftDay, PlannedEarning: amt(500)})
	require.NoError(t, err)

	stats := store.EarningsStats(ctx)
	assert.True(t, stats.Today.Equal(amt(1000)), "today: %s", stats.Today)
	assert.True(t, stats.ThisWeek.Equal(amt(3000)), "week: %s", stats.ThisWeek)
	assert.True(t, stats.ThisMonth.Equal(amt(7000)), "month: %s", stats.ThisMonth)
	assert.True(t, stats.AllTime.Equal(amt(15000)), "all: %s", stats.AllTime)
}

func TestLedgerStore_EarningsStats_Empty(t *testing.T) {
	store, _ := newTestStore(t)

	stats := store.EarningsStats(context.Background())
	assert.True(t, stats.Today.IsZero())
	assert.True(t, stats.AllTime.IsZero())
}

func TestLedgerStore_DaysToGoal(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	goal, err := store.CreateGoal(ctx, CreateGoalInput{Name: "TV", TargetAmount: amt(10000)})
	require.NoError(t, err)

	t.Run("no average yet", func(t *testing.T) {
		assert.Nil(t, store.DaysToGoal(ctx, goal.ID))
	})

	t.Run("unknown goal", func(t *testing.T) {
		_, err := store.UpdateAverageDailyEarning(ctx, amt(3000))
		require.NoError(t, err)
		assert.Nil(t, store.DaysToGoal(ctx, "ghost"))
	})

	t.Run("rounded up", func(t *testing.T) {
		days := store.DaysToGoal(ctx, goal.ID)
		require.NotNil(t, days)
		assert.Equal(t, int64(4), *days)
	})

	t.Run("reached", func(t *testing.T) {
		_, err := store.AddContribution(ctx, NewContribution{GoalID: goal.ID, Amount: amt(12000)})
		require.NoError(t, err)
		days := store.DaysToGoal(ctx, goal.ID)
		require.NotNil(t, days)
		assert.Equal(t, int64(0), *days)
	})
}

func TestLedgerStore_GoalProgress(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore(t)

	goal, err := store.CreateGoal(ctx, CreateGoalInput{Name: "Watch", TargetAmount: amt(3000)})
	require.NoError(t, err)

	progress, err := store.GoalProgress(ctx, goal.ID)
	require.NoError(t, err)
	assert.True(t, progress.Percentage.IsZero())
	assert.True(t, progress.Remaining.Equal(amt(3000)))
	assert.Nil(t, progress.LastContribution)
	assert.Nil(t, progress.DaysToGoal)

	_, err = store.AddContribution(ctx, NewContribution{GoalID: goal.ID, Amount: amt(500)})
	require.NoError(t, err)
	clock.Advance(time.Hour)
	latest, err := store.AddContribution(ctx, NewContribution{GoalID: goal.ID, Amount: amt(500)})
	require.NoError(t, err)

	progress, err = store.GoalProgress(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "33.33", progress.Percentage.String())
	assert.Equal(t, 2, progress.ContributionsCount)
	require.NotNil(t, progress.LastContribution)
	assert.Equal(t, latest.ID, progress.LastContribution.ID)

	_, err = store.GoalProgress(ctx, "ghost")
	assert.ErrorIs(t, err, ErrGoalNotFound)
}
