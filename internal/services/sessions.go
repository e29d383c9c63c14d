package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/savingsjars/backend/internal/audit"
	"github.com/savingsjars/backend/internal/models"
	"github.com/shopspring/decimal"
)

// NewSession plans a work shift.
type NewSession struct {
	Date                time.Time        `json:"date"`
	ShiftType           models.ShiftType `json:"shiftType" validate:"required,oneof=day night"`
	OperationType       string           `json:"operationType" validate:"max=100"`
	PlannedEarning      decimal.Decimal  `json:"plannedEarning" validate:"gte=0"`
	PlannedContribution decimal.Decimal  `json:"plannedContribution" validate:"gte=0"`
	GoalID              string           `json:"goalId,omitempty"`
}

// SessionResult is what actually happened on a completed shift.
type SessionResult struct {
	ActualEarning      decimal.Decimal `json:"actualEarning" validate:"gte=0"`
	ActualContribution decimal.Decimal `json:"actualContribution" validate:"gte=0"`
	GoalID             string          `json:"goalId,omitempty"`
}

func (s *LedgerStore) startOfDay(t time.Time) time.Time {
	t = t.In(s.cfg.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.cfg.Location)
}

// ParseDate reads a calendar date ("2006-01-02") in the ledger timezone, or
// an RFC 3339 instant which is then bucketed into its ledger-timezone date.
func (s *LedgerStore) ParseDate(value string) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, value, s.cfg.Location); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD or RFC 3339", ErrValidation, value)
	}
	return t, nil
}

func (s *LedgerStore) sameDay(a, b time.Time) bool {
	return s.startOfDay(a).Equal(s.startOfDay(b))
}

// ShiftWindow returns the fixed window a session covers.
func (s *LedgerStore) ShiftWindow(session models.WorkSession) (start, end time.Time) {
	hour := s.cfg.DayShiftStartHour
	if session.ShiftType == models.ShiftNight {
		hour = s.cfg.NightShiftStartHour
	}
	day := s.startOfDay(session.Date)
	start = time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, s.cfg.Location)
	return start, start.Add(s.cfg.ShiftLength)
}

// IsExpired reports whether the shift window has passed while the session is still open.
func (s *LedgerStore) IsExpired(session models.WorkSession) bool {
	if !session.IsOpen() {
		return false
	}
	_, end := s.ShiftWindow(session)
	return s.clock().After(end)
}

// AddSession plans a shift. Only one non-completed session may exist per date and shift.
func (s *LedgerStore) AddSession(ctx context.Context, input NewSession) (session *models.WorkSession, err error) {
	defer func() { observe("add_session", err) }()

	if err := s.validator.Check(&input); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("%w: session date is required", ErrValidation)
	}

	unlock := s.locks.acquire(colGoals, colWorkSessions)
	defer unlock()

	if input.GoalID != "" {
		goals, err := s.loadGoals(ctx)
		if err != nil {
			return nil, err
		}
		if findGoal(goals, input.GoalID) < 0 {
			return nil, ErrGoalNotFound
		}
	}

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range sessions {
		if !existing.IsCompleted && existing.ShiftType == input.ShiftType && s.sameDay(existing.Date, input.Date) {
			log.Printf("[LedgerStore] AddSession - duplicate %s shift on %s", input.ShiftType, input.Date.Format("2006-01-02"))
			return nil, ErrDuplicateShift
		}
	}

	created := models.WorkSession{
		ID:                  s.newID(),
		Date:                s.startOfDay(input.Date),
		OperationType:       input.OperationType,
		ShiftType:           input.ShiftType,
		PlannedEarning:      input.PlannedEarning,
		PlannedContribution: input.PlannedContribution,
		GoalID:              input.GoalID,
		CreatedAt:           s.clock(),
		Status:              models.SessionPlanned,
	}
	sessions = append(sessions, created)
	s.write(ctx, colWorkSessions, sessions)
	return &created, nil
}

func (s *LedgerStore) GetSession(ctx context.Context, id string) (*models.WorkSession, error) {
	sessions := s.ListSessions(ctx)
	ix := findSession(sessions, id)
	if ix < 0 {
		return nil, ErrSessionNotFound
	}
	return &sessions[ix], nil
}

func (s *LedgerStore) ListSessions(ctx context.Context) []models.WorkSession {
	unlock := s.locks.acquire(colWorkSessions)
	defer unlock()
	sessions, _ := s.loadSessions(ctx)
	return sessions
}

// completeLocked closes one session in place and, when money was set aside,
// credits the resolved goal. Callers hold sessions, goals, contributions and settings.
func (s *LedgerStore) completeLocked(session *models.WorkSession, result SessionResult, goals []models.Goal, contributions []models.Contribution) []models.Contribution {
	now := s.clock()
	earning := result.ActualEarning
	contribution := result.ActualContribution

	session.Status = models.SessionCompleted
	session.IsCompleted = true
	session.CompletedAt = &now
	session.ActualEarning = &earning
	session.ActualContribution = &contribution

	goalID := result.GoalID
	if goalID == "" {
		goalID = session.GoalID
	}
	if contribution.IsPositive() && goalID != "" {
		if findGoal(goals, goalID) < 0 {
			log.Printf("[LedgerStore] CompleteSession - goal %s no longer exists, contribution skipped", goalID)
		} else {
			session.GoalID = goalID
			contributions, _ = s.appendContribution(goals, contributions, NewContribution{
				GoalID: goalID,
				Amount: contribution,
				Note:   fmt.Sprintf("Work session %s", session.Date.Format("2006-01-02")),
				Date:   now,
			})
		}
	}

	s.audit.LogAmount(audit.SessionCompleted, session.ID, session.GoalID, earning)
	return contributions
}

// CompleteSession records the actual outcome of a planned session and
// recalculates the average daily earning.
func (s *LedgerStore) CompleteSession(ctx context.Context, id string, result SessionResult) (session *models.WorkSession, err error) {
	defer func() { observe("complete_session", err) }()

	if err := s.validator.Check(&result); err != nil {
		return nil, err
	}

	unlock := s.locks.acquire(colGoals, colContributions, colWorkSessions, colSettings)
	defer unlock()

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return nil, err
	}
	ix := findSession(sessions, id)
	if ix < 0 {
		return nil, ErrSessionNotFound
	}
	if !sessions[ix].IsOpen() {
		return nil, ErrSessionClosed
	}

	goals, errGoals := s.loadGoals(ctx)
	contributions, errContrib := s.loadContributions(ctx)
	if err := firstErr(errGoals, errContrib); err != nil {
		return nil, err
	}
	if result.GoalID != "" && findGoal(goals, result.GoalID) < 0 {
		return nil, ErrGoalNotFound
	}

	before := len(contributions)
	contributions = s.completeLocked(&sessions[ix], result, goals, contributions)

	s.write(ctx, colWorkSessions, sessions)
	if len(contributions) != before {
		s.write(ctx, colContributions, contributions)
		s.write(ctx, colGoals, goals)
	}
	s.recalculateAverageLocked(ctx, sessions)

	completed := sessions[ix]
	return &completed, nil
}

// SkipSession closes a planned session without any financial effect.
func (s *LedgerStore) SkipSession(ctx context.Context, id string) (session *models.WorkSession, err error) {
	defer func() { observe("skip_session", err) }()

	unlock := s.locks.acquire(colWorkSessions)
	defer unlock()

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return nil, err
	}
	ix := findSession(sessions, id)
	if ix < 0 {
		return nil, ErrSessionNotFound
	}
	sess := &sessions[ix]
	if !sess.IsOpen() {
		return nil, ErrSessionClosed
	}

	now := s.clock()
	sess.Status = models.SessionSkipped
	sess.IsCompleted = true
	sess.CompletedAt = &now

	s.write(ctx, colWorkSessions, sessions)
	s.audit.LogOperation(audit.SessionSkipped, sess.ID, "")

	skipped := *sess
	return &skipped, nil
}

// DeleteSession removes a session. Contributions it produced stay in place.
func (s *LedgerStore) DeleteSession(ctx context.Context, id string) (err error) {
	defer func() { observe("delete_session", err) }()

	unlock := s.locks.acquire(colWorkSessions)
	defer unlock()

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return err
	}
	ix := findSession(sessions, id)
	if ix < 0 {
		return ErrSessionNotFound
	}
	sessions = append(sessions[:ix], sessions[ix+1:]...)
	s.write(ctx, colWorkSessions, sessions)
	return nil
}

func shiftRank(t models.ShiftType) int {
	if t == models.ShiftNight {
		return 1
	}
	return 0
}

func sortByDateAsc(sessions []models.WorkSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Date.Equal(sessions[j].Date) {
			return shiftRank(sessions[i].ShiftType) < shiftRank(sessions[j].ShiftType)
		}
		return sessions[i].Date.Before(sessions[j].Date)
	})
}

// PlannedSessions returns sessions still open, earliest first.
func (s *LedgerStore) PlannedSessions(ctx context.Context) []models.WorkSession {
	out := make([]models.WorkSession, 0)
	for _, sess := range s.ListSessions(ctx) {
		if sess.IsOpen() {
			out = append(out, sess)
		}
	}
	sortByDateAsc(out)
	return out
}

// CompletedSessions returns completed sessions, most recently completed first.
func (s *LedgerStore) CompletedSessions(ctx context.Context) []models.WorkSession {
	out := make([]models.WorkSession, 0)
	for _, sess := range s.ListSessions(ctx) {
		if sess.Status == models.SessionCompleted {
			out = append(out, sess)
		}
	}
	completedAt := func(sess models.WorkSession) time.Time {
		if sess.CompletedAt != nil {
			return *sess.CompletedAt
		}
		return sess.Date
	}
	sort.SliceStable(out, func(i, j int) bool { return completedAt(out[i]).After(completedAt(out[j])) })
	return out
}

// ActiveSessions returns uncompleted sessions dated today or later.
func (s *LedgerStore) ActiveSessions(ctx context.Context) []models.WorkSession {
	today := s.startOfDay(s.clock())
	out := make([]models.WorkSession, 0)
	for _, sess := range s.ListSessions(ctx) {
		if !sess.IsCompleted && !s.startOfDay(sess.Date).Before(today) {
			out = append(out, sess)
		}
	}
	sortByDateAsc(out)
	return out
}

// ExpiredUncompletedSessions returns open sessions whose shift window has ended.
func (s *LedgerStore) ExpiredUncompletedSessions(ctx context.Context) []models.WorkSession {
	out := make([]models.WorkSession, 0)
	for _, sess := range s.ListSessions(ctx) {
		if s.IsExpired(sess) {
			out = append(out, sess)
		}
	}
	sortByDateAsc(out)
	return out
}

// AutoCompleteExpiredSessions completes every expired session with its planned
// figures. The store never calls this on its own; it is a no-op when disabled.
func (s *LedgerStore) AutoCompleteExpiredSessions(ctx context.Context) (completed []models.WorkSession) {
	completed = make([]models.WorkSession, 0)
	if !s.cfg.AutoCompleteExpired {
		return completed
	}

	unlock := s.locks.acquire(colGoals, colContributions, colWorkSessions, colSettings)
	defer unlock()

	sessions, errSessions := s.loadSessions(ctx)
	goals, errGoals := s.loadGoals(ctx)
	contributions, errContrib := s.loadContributions(ctx)
	if err := firstErr(errSessions, errGoals, errContrib); err != nil {
		log.Printf("[LedgerStore] AutoCompleteExpiredSessions - skipped: %v", err)
		observe("auto_complete_sessions", err)
		return completed
	}
	before := len(contributions)

	for i := range sessions {
		if !s.IsExpired(sessions[i]) {
			continue
		}
		contributions = s.completeLocked(&sessions[i], SessionResult{
			ActualEarning:      sessions[i].PlannedEarning,
			ActualContribution: sessions[i].PlannedContribution,
		}, goals, contributions)
		completed = append(completed, sessions[i])
	}
	if len(completed) == 0 {
		return completed
	}

	s.write(ctx, colWorkSessions, sessions)
	if len(contributions) != before {
		s.write(ctx, colContributions, contributions)
		s.write(ctx, colGoals, goals)
	}
	s.recalculateAverageLocked(ctx, sessions)

	log.Printf("[LedgerStore] AutoCompleteExpiredSessions - completed: %d", len(completed))
	observe("auto_complete_sessions", nil)
	return completed
}
