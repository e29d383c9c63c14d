package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/savingsjars/backend/internal/services"
)

type ContributionHandler struct {
	store *services.LedgerStore
}

func NewContributionHandler(store *services.LedgerStore) *ContributionHandler {
	return &ContributionHandler{store: store}
}

// AddContribution records a deposit toward a goal
// @Summary Add Contribution
// @Tags Contributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.NewContribution true "Contribution"
// @Success 201 {object} models.Contribution
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /contributions [post]
func (h *ContributionHandler) AddContribution(w http.ResponseWriter, r *http.Request) {
	var req services.NewContribution
	if !decodeJSON(w, r, &req) {
		return
	}

	contribution, err := h.store.AddContribution(r.Context(), req)
	if err != nil {
		log.Printf("[Contributions] AddContribution - goal: %s, error: %v", req.GoalID, err)
		sendLedgerError(w, "Contributions", err)
		return
	}
	writeJSON(w, http.StatusCreated, contribution)
}

// ListContributions lists every contribution
// @Summary List Contributions
// @Tags Contributions
// @Produce json
// @Security BearerAuth
// @Param goalId query string false "Only contributions of this goal, newest first"
// @Success 200 {array} models.Contribution
// @Router /contributions [get]
func (h *ContributionHandler) ListContributions(w http.ResponseWriter, r *http.Request) {
	if goalID := r.URL.Query().Get("goalId"); goalID != "" {
		writeJSON(w, http.StatusOK, h.store.ListContributionsByGoal(r.Context(), goalID))
		return
	}
	writeJSON(w, http.StatusOK, h.store.ListContributions(r.Context()))
}

// ListByGoal lists a goal's contributions
// @Summary List Goal Contributions
// @Tags Contributions
// @Produce json
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Success 200 {array} models.Contribution
// @Router /goals/{goalId}/contributions [get]
func (h *ContributionHandler) ListByGoal(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ListContributionsByGoal(r.Context(), chi.URLParam(r, "goalId")))
}

// UpdateContribution changes amount, note or date
// @Summary Update Contribution
// @Tags Contributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param contributionId path string true "Contribution ID"
// @Param request body services.ContributionUpdate true "Fields to change"
// @Success 200 {object} models.Contribution
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /contributions/{contributionId} [put]
func (h *ContributionHandler) UpdateContribution(w http.ResponseWriter, r *http.Request) {
	var req services.ContributionUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	contribution, err := h.store.UpdateContribution(r.Context(), chi.URLParam(r, "contributionId"), req)
	if err != nil {
		sendLedgerError(w, "Contributions", err)
		return
	}
	writeJSON(w, http.StatusOK, contribution)
}

// DeleteContribution removes a contribution
// @Summary Delete Contribution
// @Tags Contributions
// @Security BearerAuth
// @Param contributionId path string true "Contribution ID"
// @Success 204
// @Failure 404 {object} services.ErrorResponse
// @Router /contributions/{contributionId} [delete]
func (h *ContributionHandler) DeleteContribution(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteContribution(r.Context(), chi.URLParam(r, "contributionId")); err != nil {
		sendLedgerError(w, "Contributions", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
