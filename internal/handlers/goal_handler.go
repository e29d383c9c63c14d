package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/savingsjars/backend/internal/models"
	"github.com/savingsjars/backend/internal/services"
	"github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	minQRSize     = 128
	maxQRSize     = 1024
)

type GoalHandler struct {
	store *services.LedgerStore
}

func NewGoalHandler(store *services.LedgerStore) *GoalHandler {
	return &GoalHandler{store: store}
}

// ListGoals lists goals
// @Summary List Goals
// @Description List savings goals, optionally filtered by archive status
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param status query string false "active, archived or all" Enums(active, archived, all)
// @Success 200 {array} models.Goal
// @Failure 400 {object} services.ErrorResponse
// @Router /goals [get]
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	var goals []models.Goal
	switch status := r.URL.Query().Get("status"); status {
	case "", "all":
		goals = h.store.ListGoals(r.Context())
	case "active":
		goals = h.store.ListActiveGoals(r.Context())
	case "archived":
		goals = h.store.ListArchivedGoals(r.Context())
	default:
		services.SendErrorResponse(w, fmt.Sprintf("unknown status filter %q", status), http.StatusBadRequest, nil)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// CreateGoal creates a goal
// @Summary Create Goal
// @Description Create a savings goal. Names are unique among active goals.
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateGoalInput true "Goal"
// @Success 201 {object} models.Goal
// @Failure 400 {object} services.ErrorResponse
// @Router /goals [post]
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req services.CreateGoalInput
	if !decodeJSON(w, r, &req) {
		return
	}

	goal, err := h.store.CreateGoal(r.Context(), req)
	if err != nil {
		log.Printf("[Goals] CreateGoal - error: %v", err)
		sendLedgerError(w, "Goals", err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// GetGoal returns one goal
// @Summary Get Goal
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Success 200 {object} models.Goal
// @Failure 404 {object} services.ErrorResponse
// @Router /goals/{goalId} [get]
func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.store.GetGoal(r.Context(), chi.URLParam(r, "goalId"))
	if err != nil {
		sendLedgerError(w, "Goals", err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// UpdateGoal changes name, target or icon
// @Summary Update Goal
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Param request body services.GoalUpdate true "Fields to change"
// @Success 200 {object} models.Goal
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /goals/{goalId} [put]
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req services.GoalUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	goal, err := h.store.UpdateGoal(r.Context(), chi.URLParam(r, "goalId"), req)
	if err != nil {
		sendLedgerError(w, "Goals", err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// ArchiveGoal archives a goal
// @Summary Archive Goal
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Success 200 {object} models.Goal
// @Failure 404 {object} services.ErrorResponse
// @Router /goals/{goalId}/archive [post]
func (h *GoalHandler) ArchiveGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.store.ArchiveGoal(r.Context(), chi.URLParam(r, "goalId"))
	if err != nil {
		sendLedgerError(w, "Goals", err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// UnarchiveGoal restores an archived goal
// @Summary Unarchive Goal
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Success 200 {object} models.Goal
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /goals/{goalId}/unarchive [post]
func (h *GoalHandler) UnarchiveGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.store.UnarchiveGoal(r.Context(), chi.URLParam(r, "goalId"))
	if err != nil {
		sendLedgerError(w, "Goals", err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// DeleteGoal deletes a goal and its contributions
// @Summary Delete Goal
// @Tags Goals
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Success 204
// @Failure 404 {object} services.ErrorResponse
// @Router /goals/{goalId} [delete]
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteGoal(r.Context(), chi.URLParam(r, "goalId")); err != nil {
		sendLedgerError(w, "Goals", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProgress reports goal progress
// @Summary Goal Progress
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Success 200 {object} models.GoalProgress
// @Failure 404 {object} services.ErrorResponse
// @Router /goals/{goalId}/progress [get]
func (h *GoalHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.store.GoalProgress(r.Context(), chi.URLParam(r, "goalId"))
	if err != nil {
		sendLedgerError(w, "Goals", err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// GetDaysToGoal estimates working days left
// @Summary Days To Goal
// @Description Days left at the current average daily earning; null when there is no average yet
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Success 200 {object} object{goalId=string,daysToGoal=int}
// @Router /goals/{goalId}/days [get]
func (h *GoalHandler) GetDaysToGoal(w http.ResponseWriter, r *http.Request) {
	goalID := chi.URLParam(r, "goalId")
	writeJSON(w, http.StatusOK, map[string]any{
		"goalId":     goalID,
		"daysToGoal": h.store.DaysToGoal(r.Context(), goalID),
	})
}

// ShareQR renders a QR code summarising the goal
// @Summary Goal Share QR
// @Tags Goals
// @Produce png
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Param size query int false "Image size in pixels (128-1024)"
// @Success 200 {file} binary
// @Failure 404 {object} services.ErrorResponse
// @Router /goals/{goalId}/share.png [get]
func (h *GoalHandler) ShareQR(w http.ResponseWriter, r *http.Request) {
	goalID := chi.URLParam(r, "goalId")
	goal, err := h.store.GetGoal(r.Context(), goalID)
	if err != nil {
		sendLedgerError(w, "Goals", err)
		return
	}
	progress, err := h.store.GoalProgress(r.Context(), goalID)
	if err != nil {
		sendLedgerError(w, "Goals", err)
		return
	}

	size := defaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < minQRSize || parsed > maxQRSize {
			services.SendErrorResponse(w, fmt.Sprintf("size must be between %d and %d", minQRSize, maxQRSize), http.StatusBadRequest, nil)
			return
		}
		size = parsed
	}

	png, err := qrcode.Encode(shareText(goal, progress), qrcode.Medium, size)
	if err != nil {
		log.Printf("[Goals] ShareQR - encode error: %v", err)
		services.SendErrorResponse(w, "Failed to render QR code", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func shareText(goal *models.Goal, progress *models.GoalProgress) string {
	return fmt.Sprintf("%s: %s of %s saved (%s%%)",
		goal.Name, goal.CurrentAmount.StringFixed(0), goal.TargetAmount.StringFixed(0), progress.Percentage.StringFixed(2))
}
