package handlers

import (
	"net/http"

	"github.com/savingsjars/backend/internal/models"
	"github.com/savingsjars/backend/internal/services"
	"github.com/shopspring/decimal"
)

type StatsHandler struct {
	store *services.LedgerStore
}

func NewStatsHandler(store *services.LedgerStore) *StatsHandler {
	return &StatsHandler{store: store}
}

// GetEarnings sums actual earnings by period
// @Summary Earnings Stats
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.EarningsStats
// @Router /stats/earnings [get]
func (h *StatsHandler) GetEarnings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.EarningsStats(r.Context()))
}

// RecalculateAverage refreshes the average daily earning
// @Summary Recalculate Average Daily Earning
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{averageDailyEarning=number}
// @Router /stats/average/recalculate [post]
func (h *StatsHandler) RecalculateAverage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{
		"averageDailyEarning": h.store.RecalculateAverageDailyEarning(r.Context()),
	})
}

// GetSettings returns the settings
// @Summary Get Settings
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AppSettings
// @Router /settings [get]
func (h *StatsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.GetSettings(r.Context()))
}

// SaveSettings overwrites the settings
// @Summary Save Settings
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AppSettings true "Settings"
// @Success 200 {object} models.AppSettings
// @Failure 400 {object} services.ErrorResponse
// @Router /settings [put]
func (h *StatsHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req models.AppSettings
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.store.SaveSettings(r.Context(), req); err != nil {
		sendLedgerError(w, "Settings", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// SetAverageDailyEarning overrides the average daily earning
// @Summary Override Average Daily Earning
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{value=number} true "New average"
// @Success 200 {object} models.AppSettings
// @Failure 400 {object} services.ErrorResponse
// @Router /settings/average-daily-earning [put]
func (h *StatsHandler) SetAverageDailyEarning(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value decimal.Decimal `json:"value"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	settings, err := h.store.UpdateAverageDailyEarning(r.Context(), req.Value)
	if err != nil {
		sendLedgerError(w, "Settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
