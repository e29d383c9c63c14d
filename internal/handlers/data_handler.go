package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/savingsjars/backend/internal/services"
	"github.com/savingsjars/backend/internal/snapshot"
)

type DataHandler struct {
	store *services.LedgerStore
}

func NewDataHandler(store *services.LedgerStore) *DataHandler {
	return &DataHandler{store: store}
}

func formatParam(r *http.Request) (snapshot.Format, error) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		return snapshot.FormatJSON, nil
	}
	return snapshot.ParseFormat(raw)
}

// Export downloads every collection as one document
// @Summary Export Ledger
// @Tags Data
// @Produce json
// @Security BearerAuth
// @Param format query string false "json or toml" Enums(json, toml)
// @Success 200 {object} models.Snapshot
// @Failure 400 {object} services.ErrorResponse
// @Router /data/export [get]
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	snap := h.store.Export(r.Context())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"savingsjars_%s.%s\"",
		time.Now().Format("20060102"), format))
	if err := snapshot.Encode(w, snap, format); err != nil {
		log.Printf("[Data] Export - error: %v", err)
	}
}

// Import replaces every collection with the uploaded document
// @Summary Import Ledger
// @Description Overwrites all data. The document must be internally consistent.
// @Tags Data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param format query string false "json or toml" Enums(json, toml)
// @Param request body models.Snapshot true "Snapshot"
// @Success 200 {object} object{success=bool}
// @Failure 400 {object} services.ErrorResponse
// @Router /data/import [post]
func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 16*maxBodyBytes)
	snap, err := snapshot.Decode(r.Body, format)
	if err != nil {
		services.SendErrorResponse(w, "Invalid snapshot: "+err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := h.store.Import(r.Context(), snap); err != nil {
		sendLedgerError(w, "Data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Verify checks goal totals and the safe balance against their records
// @Summary Verify Ledger Consistency
// @Tags Data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{consistent=bool,issues=[]string}
// @Router /data/verify [get]
func (h *DataHandler) Verify(w http.ResponseWriter, r *http.Request) {
	issues := h.store.VerifyConsistency(r.Context())
	if issues == nil {
		issues = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"consistent": len(issues) == 0,
		"issues":     issues,
	})
}

// ClearAll deletes every collection
// @Summary Clear All Data
// @Tags Data
// @Security BearerAuth
// @Success 204
// @Router /data [delete]
func (h *DataHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	h.store.ClearAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
