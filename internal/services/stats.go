package services

import (
	"context"
	"log"
	"time"

	"github.com/savingsjars/backend/internal/audit"
	"github.com/savingsjars/backend/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// averageDailyEarning sums actual earnings of completed sessions in the
// trailing window and divides by the number of distinct dates worked.
// The window is AverageWindowDays calendar dates ending today, inclusive.
// ok is false when no completed session falls inside the window.
func (s *LedgerStore) averageDailyEarning(sessions []models.WorkSession) (avg decimal.Decimal, ok bool) {
	windowStart := s.startOfDay(s.clock()).AddDate(0, 0, -(s.cfg.AverageWindowDays - 1))

	total := decimal.Zero
	days := make(map[string]struct{})
	for _, sess := range sessions {
		if sess.Status != models.SessionCompleted {
			continue
		}
		if s.startOfDay(sess.Date).Before(windowStart) {
			continue
		}
		total = total.Add(sess.Earned())
		days[s.startOfDay(sess.Date).Format("2006-01-02")] = struct{}{}
	}
	if len(days) == 0 {
		return decimal.Zero, false
	}
	return total.Div(decimal.NewFromInt(int64(len(days)))).Round(0), true
}

// recalculateAverageLocked stores a fresh average in settings. Callers hold
// the sessions and settings locks. Settings that could not be read are left
// alone.
func (s *LedgerStore) recalculateAverageLocked(ctx context.Context, sessions []models.WorkSession) models.AppSettings {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return settings
	}
	avg, ok := s.averageDailyEarning(sessions)
	if !ok {
		return settings
	}
	if !avg.Equal(settings.AverageDailyEarning) {
		settings.AverageDailyEarning = avg
		s.write(ctx, colSettings, settings)
		s.audit.LogAmount(audit.AverageRecalculated, "", "", avg)
	}
	return settings
}

// RecalculateAverageDailyEarning refreshes the average from recent completed
// sessions. The stored value is left as is when the window is empty or the
// sessions cannot be read.
func (s *LedgerStore) RecalculateAverageDailyEarning(ctx context.Context) decimal.Decimal {
	unlock := s.locks.acquire(colWorkSessions, colSettings)
	defer unlock()

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		settings, _ := s.loadSettings(ctx)
		return settings.AverageDailyEarning
	}
	settings := s.recalculateAverageLocked(ctx, sessions)
	return settings.AverageDailyEarning
}

func daysToGoal(goal models.Goal, avg decimal.Decimal) *int64 {
	if !avg.IsPositive() {
		return nil
	}
	var days int64
	remaining := goal.TargetAmount.Sub(goal.CurrentAmount)
	if remaining.IsPositive() {
		days = remaining.Div(avg).Ceil().IntPart()
	}
	return &days
}

// DaysToGoal estimates working days left at the current average daily
// earning. It returns nil when the goal is unknown or there is no average yet.
func (s *LedgerStore) DaysToGoal(ctx context.Context, goalID string) *int64 {
	unlock := s.locks.acquire(colGoals, colSettings)
	defer unlock()

	goals, _ := s.loadGoals(ctx)
	ix := findGoal(goals, goalID)
	if ix < 0 {
		return nil
	}
	settings, _ := s.loadSettings(ctx)
	return daysToGoal(goals[ix], settings.AverageDailyEarning)
}

// GoalProgress reports percentage (clamped to 0-100), remaining amount,
// estimated days and contribution history for a goal.
func (s *LedgerStore) GoalProgress(ctx context.Context, goalID string) (*models.GoalProgress, error) {
	unlock := s.locks.acquire(colGoals, colContributions, colSettings)
	defer unlock()

	goals, _ := s.loadGoals(ctx)
	ix := findGoal(goals, goalID)
	if ix < 0 {
		return nil, ErrGoalNotFound
	}
	goal := goals[ix]

	percentage := decimal.Zero
	if goal.TargetAmount.IsPositive() {
		percentage = goal.CurrentAmount.Mul(hundred).Div(goal.TargetAmount).Round(2)
	}
	if percentage.GreaterThan(hundred) {
		percentage = hundred
	}
	if percentage.IsNegative() {
		percentage = decimal.Zero
	}

	all, _ := s.loadContributions(ctx)
	contributions := contributionsForGoal(all, goalID)
	settings, _ := s.loadSettings(ctx)
	progress := &models.GoalProgress{
		GoalID:             goalID,
		Percentage:         percentage,
		Remaining:          goal.Remaining(),
		DaysToGoal:         daysToGoal(goal, settings.AverageDailyEarning),
		ContributionsCount: len(contributions),
	}
	if len(contributions) > 0 {
		latest := contributions[0]
		progress.LastContribution = &latest
	}
	return progress, nil
}

// EarningsStats sums actual earnings of completed sessions for today, the
// current Monday-based week, the current month and all time.
func (s *LedgerStore) EarningsStats(ctx context.Context) models.EarningsStats {
	now := s.clock()
	today := s.startOfDay(now)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.cfg.Location)

	stats := models.EarningsStats{
		Today:     decimal.Zero,
		ThisWeek:  decimal.Zero,
		ThisMonth: decimal.Zero,
		AllTime:   decimal.Zero,
	}
	for _, sess := range s.ListSessions(ctx) {
		if sess.Status != models.SessionCompleted {
			continue
		}
		earned := sess.Earned()
		day := s.startOfDay(sess.Date)

		stats.AllTime = stats.AllTime.Add(earned)
		if !day.Before(monthStart) {
			stats.ThisMonth = stats.ThisMonth.Add(earned)
		}
		if !day.Before(weekStart) {
			stats.ThisWeek = stats.ThisWeek.Add(earned)
		}
		if day.Equal(today) {
			stats.Today = stats.Today.Add(earned)
		}
	}

	log.Printf("[LedgerStore] EarningsStats - today: %s, week: %s, month: %s, all: %s",
		stats.Today, stats.ThisWeek, stats.ThisMonth, stats.AllTime)
	return stats
}
