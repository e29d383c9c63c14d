package handlers

import (
	"log"
	"net/http"

	"github.com/savingsjars/backend/internal/models"
	"github.com/savingsjars/backend/internal/services"
	"github.com/shopspring/decimal"
)

type SafeHandler struct {
	store     *services.LedgerStore
	validator *services.ValidationHelper
}

func NewSafeHandler(store *services.LedgerStore) *SafeHandler {
	return &SafeHandler{
		store:     store,
		validator: services.NewValidationHelper(),
	}
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Note   string          `json:"note,omitempty" validate:"max=500"`
}

type withdrawRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	GoalID string          `json:"goalId,omitempty"`
	Note   string          `json:"note,omitempty" validate:"max=500"`
}

type distributeRequest struct {
	Distributions []models.Distribution `json:"distributions" validate:"required,min=1,dive"`
}

// GetSafe returns the safe
// @Summary Get Safe
// @Tags Safe
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Safe
// @Router /safe [get]
func (h *SafeHandler) GetSafe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.GetSafe(r.Context()))
}

// ListTransactions lists safe transactions
// @Summary List Safe Transactions
// @Tags Safe
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.SafeTransaction
// @Router /safe/transactions [get]
func (h *SafeHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ListSafeTransactions(r.Context()))
}

// Deposit puts money in the safe
// @Summary Deposit To Safe
// @Tags Safe
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{amount=number,note=string} true "Deposit"
// @Success 200 {object} models.Safe
// @Failure 400 {object} services.ErrorResponse
// @Router /safe/deposit [post]
func (h *SafeHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	safe, err := h.store.DepositToSafe(r.Context(), req.Amount, req.Note)
	if err != nil {
		sendLedgerError(w, "Safe", err)
		return
	}
	writeJSON(w, http.StatusOK, safe)
}

// Withdraw takes money out of the safe, optionally into a goal
// @Summary Withdraw From Safe
// @Tags Safe
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{amount=number,goalId=string,note=string} true "Withdrawal"
// @Success 200 {object} models.SafeTransaction
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /safe/withdraw [post]
func (h *SafeHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	tx, err := h.store.WithdrawFromSafe(r.Context(), req.Amount, req.GoalID, req.Note)
	if err != nil {
		log.Printf("[Safe] Withdraw - amount: %s, goal: %s, error: %v", req.Amount, req.GoalID, err)
		sendLedgerError(w, "Safe", err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// Distribute spreads safe money across several goals in one step
// @Summary Distribute From Safe
// @Description All-or-nothing: nothing is applied unless every entry is valid and the total fits the balance
// @Tags Safe
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{distributions=[]models.Distribution} true "Distributions"
// @Success 200 {array} models.SafeTransaction
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /safe/distribute [post]
func (h *SafeHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	var req distributeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	txs, err := h.store.DistributeFromSafe(r.Context(), req.Distributions)
	if err != nil {
		sendLedgerError(w, "Safe", err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}
