package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/savingsjars/backend/internal/models"
	"github.com/savingsjars/backend/internal/services"
	"github.com/shopspring/decimal"
)

type SessionHandler struct {
	store *services.LedgerStore
}

func NewSessionHandler(store *services.LedgerStore) *SessionHandler {
	return &SessionHandler{store: store}
}

// ListSessions lists work sessions
// @Summary List Work Sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param filter query string false "Subset to return" Enums(planned, completed, active, expired)
// @Success 200 {array} models.WorkSession
// @Failure 400 {object} services.ErrorResponse
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var sessions []models.WorkSession
	switch filter := r.URL.Query().Get("filter"); filter {
	case "":
		sessions = h.store.ListSessions(ctx)
	case "planned":
		sessions = h.store.PlannedSessions(ctx)
	case "completed":
		sessions = h.store.CompletedSessions(ctx)
	case "active":
		sessions = h.store.ActiveSessions(ctx)
	case "expired":
		sessions = h.store.ExpiredUncompletedSessions(ctx)
	default:
		services.SendErrorResponse(w, fmt.Sprintf("unknown session filter %q", filter), http.StatusBadRequest, nil)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// addSessionRequest carries the date as text so a plain calendar date is
// read in the ledger timezone rather than as a UTC midnight.
type addSessionRequest struct {
	Date                string           `json:"date" example:"2024-06-01"`
	ShiftType           models.ShiftType `json:"shiftType"`
	OperationType       string           `json:"operationType"`
	PlannedEarning      decimal.Decimal  `json:"plannedEarning"`
	PlannedContribution decimal.Decimal  `json:"plannedContribution"`
	GoalID              string           `json:"goalId,omitempty"`
}

// AddSession plans a work shift
// @Summary Plan Work Session
// @Description One open session per date and shift type. date is YYYY-MM-DD in the
// @Description ledger timezone; an RFC 3339 instant is also accepted and is converted
// @Description into the ledger timezone before its calendar date is taken.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body addSessionRequest true "Session"
// @Success 201 {object} models.WorkSession
// @Failure 400 {object} services.ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) AddSession(w http.ResponseWriter, r *http.Request) {
	var req addSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	date, err := h.store.ParseDate(req.Date)
	if err != nil {
		sendLedgerError(w, "Sessions", err)
		return
	}

	session, err := h.store.AddSession(r.Context(), services.NewSession{
		Date:                date,
		ShiftType:           req.ShiftType,
		OperationType:       req.OperationType,
		PlannedEarning:      req.PlannedEarning,
		PlannedContribution: req.PlannedContribution,
		GoalID:              req.GoalID,
	})
	if err != nil {
		log.Printf("[Sessions] AddSession - %s shift on %s: %v", req.ShiftType, req.Date, err)
		sendLedgerError(w, "Sessions", err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// GetSession returns one session
// @Summary Get Work Session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} models.WorkSession
// @Failure 404 {object} services.ErrorResponse
// @Router /sessions/{sessionId} [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.GetSession(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		sendLedgerError(w, "Sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// CompleteSession records actual earnings
// @Summary Complete Work Session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param request body services.SessionResult true "Actual figures"
// @Success 200 {object} models.WorkSession
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /sessions/{sessionId}/complete [post]
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	var req services.SessionResult
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.store.CompleteSession(r.Context(), chi.URLParam(r, "sessionId"), req)
	if err != nil {
		sendLedgerError(w, "Sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// SkipSession closes a session without earnings
// @Summary Skip Work Session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} models.WorkSession
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /sessions/{sessionId}/skip [post]
func (h *SessionHandler) SkipSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.SkipSession(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		sendLedgerError(w, "Sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// DeleteSession removes a session
// @Summary Delete Work Session
// @Tags Sessions
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 204
// @Failure 404 {object} services.ErrorResponse
// @Router /sessions/{sessionId} [delete]
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteSession(r.Context(), chi.URLParam(r, "sessionId")); err != nil {
		sendLedgerError(w, "Sessions", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AutoComplete completes every expired session with its planned figures
// @Summary Auto-complete Expired Sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.WorkSession
// @Router /sessions/auto-complete [post]
func (h *SessionHandler) AutoComplete(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.AutoCompleteExpiredSessions(r.Context()))
}
