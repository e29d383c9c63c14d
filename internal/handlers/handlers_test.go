package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/savingsjars/backend/internal/audit"
	"github.com/savingsjars/backend/internal/config"
	"github.com/savingsjars/backend/internal/kv"
	"github.com/savingsjars/backend/internal/models"
	"github.com/savingsjars/backend/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *services.LedgerStore {
	t.Helper()
	cfg := config.DefaultLedgerConfig()
	cfg.Location = time.UTC
	return services.NewLedgerStore(kv.NewMemoryStore(), "test", cfg,
		services.WithAuditLogger(audit.NewLoggerWithSink(func(string) {})))
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGoalHandler(t *testing.T) {
	store := newTestLedger(t)
	h := NewGoalHandler(store)

	r := chi.NewRouter()
	r.Get("/goals", h.ListGoals)
	r.Post("/goals", h.CreateGoal)
	r.Get("/goals/{goalId}", h.GetGoal)
	r.Put("/goals/{goalId}", h.UpdateGoal)
	r.Delete("/goals/{goalId}", h.DeleteGoal)
	r.Post("/goals/{goalId}/archive", h.ArchiveGoal)
	r.Get("/goals/{goalId}/progress", h.GetProgress)
	r.Get("/goals/{goalId}/days", h.GetDaysToGoal)
	r.Get("/goals/{goalId}/share.png", h.ShareQR)

	var created models.Goal

	t.Run("create", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/goals", `{"name":"Phone","targetAmount":10000}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "Phone", created.Name)
	})

	t.Run("duplicate name is a bad request", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/goals", `{"name":"phone","targetAmount":5}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/goals", `{"name":"Bike","targetAmount":5,"colour":"red"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("two objects in the body", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/goals", `{"name":"Bike","targetAmount":5}{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get and missing", func(t *testing.T) {
		w := doJSON(t, r, "GET", "/goals/"+created.ID, "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, r, "GET", "/goals/nope", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update", func(t *testing.T) {
		w := doJSON(t, r, "PUT", "/goals/"+created.ID, `{"targetAmount":"12000"}`)
		require.Equal(t, http.StatusOK, w.Code)
		var g models.Goal
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
		assert.Equal(t, "12000", g.TargetAmount.String())
	})

	t.Run("progress and days", func(t *testing.T) {
		w := doJSON(t, r, "GET", "/goals/"+created.ID+"/progress", "")
		require.Equal(t, http.StatusOK, w.Code)
		var p models.GoalProgress
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		assert.True(t, p.Percentage.IsZero())

		w = doJSON(t, r, "GET", "/goals/"+created.ID+"/days", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"goalId":"`+created.ID+`","daysToGoal":null}`, w.Body.String())
	})

	t.Run("share qr", func(t *testing.T) {
		w := doJSON(t, r, "GET", "/goals/"+created.ID+"/share.png?size=200", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		img, err := png.Decode(w.Body)
		require.NoError(t, err)
		assert.Equal(t, 200, img.Bounds().Dx())

		w = doJSON(t, r, "GET", "/goals/"+created.ID+"/share.png?size=5", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list filters", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/goals/"+created.ID+"/archive", "")
		require.Equal(t, http.StatusOK, w.Code)

		var goals []models.Goal
		w = doJSON(t, r, "GET", "/goals?status=archived", "")
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &goals))
		assert.Len(t, goals, 1)

		w = doJSON(t, r, "GET", "/goals?status=active", "")
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &goals))
		assert.Empty(t, goals)

		w = doJSON(t, r, "GET", "/goals?status=weird", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, r, "DELETE", "/goals/"+created.ID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = doJSON(t, r, "DELETE", "/goals/"+created.ID, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestContributionAndSafeHandlers(t *testing.T) {
	store := newTestLedger(t)
	goal, err := store.CreateGoal(context.Background(), services.CreateGoalInput{Name: "Laptop", TargetAmount: decimal.RequireFromString("50000")})
	require.NoError(t, err)

	ch := NewContributionHandler(store)
	sh := NewSafeHandler(store)
	r := chi.NewRouter()
	r.Post("/contributions", ch.AddContribution)
	r.Get("/contributions", ch.ListContributions)
	r.Put("/contributions/{contributionId}", ch.UpdateContribution)
	r.Delete("/contributions/{contributionId}", ch.DeleteContribution)
	r.Get("/safe", sh.GetSafe)
	r.Get("/safe/transactions", sh.ListTransactions)
	r.Post("/safe/deposit", sh.Deposit)
	r.Post("/safe/withdraw", sh.Withdraw)
	r.Post("/safe/distribute", sh.Distribute)

	t.Run("contribution lifecycle", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/contributions", `{"goalId":"`+goal.ID+`","amount":1500,"note":"pay day"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var c models.Contribution
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))

		w = doJSON(t, r, "PUT", "/contributions/"+c.ID, `{"amount":1000}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, r, "GET", "/contributions?goalId="+goal.ID, "")
		var list []models.Contribution
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "1000", list[0].Amount.String())

		w = doJSON(t, r, "DELETE", "/contributions/"+c.ID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("contribution errors", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/contributions", `{"goalId":"`+goal.ID+`","amount":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, r, "POST", "/contributions", `{"goalId":"ghost","amount":10}`)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(t, r, "DELETE", "/contributions/ghost", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("safe flow", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/safe/deposit", `{"amount":1000,"note":"tips"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, r, "POST", "/safe/withdraw", `{"amount":5000}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, r, "POST", "/safe/distribute", `{"distributions":[{"goalId":"`+goal.ID+`","amount":600}]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, r, "POST", "/safe/withdraw", `{"amount":400,"goalId":"`+goal.ID+`"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, r, "GET", "/safe", "")
		var safe models.Safe
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &safe))
		assert.True(t, safe.Balance.IsZero())

		w = doJSON(t, r, "GET", "/safe/transactions", "")
		var txs []models.SafeTransaction
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txs))
		assert.Len(t, txs, 3)
	})

	t.Run("safe validation details", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/safe/deposit", `{"amount":-5}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp services.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Details, "Amount")

		w = doJSON(t, r, "POST", "/safe/distribute", `{"distributions":[]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionAndStatsHandlers(t *testing.T) {
	store := newTestLedger(t)
	sh := NewSessionHandler(store)
	st := NewStatsHandler(store)

	r := chi.NewRouter()
	r.Get("/sessions", sh.ListSessions)
	r.Post("/sessions", sh.AddSession)
	r.Post("/sessions/auto-complete", sh.AutoComplete)
	r.Get("/sessions/{sessionId}", sh.GetSession)
	r.Delete("/sessions/{sessionId}", sh.DeleteSession)
	r.Post("/sessions/{sessionId}/complete", sh.CompleteSession)
	r.Post("/sessions/{sessionId}/skip", sh.SkipSession)
	r.Get("/stats/earnings", st.GetEarnings)
	r.Post("/stats/average/recalculate", st.RecalculateAverage)
	r.Get("/settings", st.GetSettings)
	r.Put("/settings", st.SaveSettings)
	r.Put("/settings/average-daily-earning", st.SetAverageDailyEarning)

	today := time.Now().UTC().Format(time.RFC3339)

	var sess models.WorkSession
	w := doJSON(t, r, "POST", "/sessions", `{"date":"`+today+`","shiftType":"day","plannedEarning":2000}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))

	t.Run("duplicate shift", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/sessions", `{"date":"`+today+`","shiftType":"day"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad shift type", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/sessions", `{"date":"`+today+`","shiftType":"evening"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("complete then stats", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/sessions/"+sess.ID+"/complete", `{"actualEarning":2400}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, r, "POST", "/sessions/"+sess.ID+"/skip", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, r, "GET", "/stats/earnings", "")
		var stats models.EarningsStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, "2400", stats.AllTime.String())

		w = doJSON(t, r, "GET", "/sessions?filter=completed", "")
		var list []models.WorkSession
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Len(t, list, 1)

		w = doJSON(t, r, "GET", "/sessions?filter=bogus", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("settings", func(t *testing.T) {
		w := doJSON(t, r, "GET", "/settings", "")
		var settings models.AppSettings
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
		assert.Equal(t, "2400", settings.AverageDailyEarning.String())

		w = doJSON(t, r, "PUT", "/settings/average-daily-earning", `{"value":3000}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, r, "PUT", "/settings/average-daily-earning", `{"value":-1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, r, "POST", "/stats/average/recalculate", "")
		assert.JSONEq(t, `{"averageDailyEarning":"2400"}`, w.Body.String())

		w = doJSON(t, r, "PUT", "/settings", `{"userName":"ada","notificationsEnabled":false,"averageDailyEarning":"100"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ada", store.GetSettings(context.Background()).UserName)
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, r, "DELETE", "/sessions/"+sess.ID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = doJSON(t, r, "GET", "/sessions/"+sess.ID, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("auto complete returns a list", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/sessions/auto-complete", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestDataHandler(t *testing.T) {
	store := newTestLedger(t)
	_, err := store.DepositToSafe(context.Background(), decimal.RequireFromString("250"), "")
	require.NoError(t, err)

	h := NewDataHandler(store)
	r := chi.NewRouter()
	r.Get("/data/export", h.Export)
	r.Post("/data/import", h.Import)
	r.Get("/data/verify", h.Verify)
	r.Delete("/data", h.ClearAll)

	w := doJSON(t, r, "GET", "/data/export?format=toml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/toml", w.Header().Get("Content-Type"))
	exported := w.Body.String()
	assert.Contains(t, exported, "version = 1")

	w = doJSON(t, r, "DELETE", "/data", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, store.GetSafe(context.Background()).Balance.IsZero())

	req := httptest.NewRequest("POST", "/data/import?format=toml", strings.NewReader(exported))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "250", store.GetSafe(context.Background()).Balance.String())

	w = doJSON(t, r, "GET", "/data/verify", "")
	assert.JSONEq(t, `{"consistent":true,"issues":[]}`, w.Body.String())

	w = doJSON(t, r, "GET", "/data/export?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "POST", "/data/import", `{"version":9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddSession_CalendarDate(t *testing.T) {
	cfg := config.DefaultLedgerConfig()
	cfg.Location = time.FixedZone("UTC-4", -4*60*60)
	store := services.NewLedgerStore(kv.NewMemoryStore(), "test", cfg,
		services.WithAuditLogger(audit.NewLoggerWithSink(func(string) {})))

	r := chi.NewRouter()
	r.Post("/sessions", NewSessionHandler(store).AddSession)

	t.Run("plain date stays on that day", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/sessions", `{"date":"2024-06-01","shiftType":"day"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var sess models.WorkSession
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
		assert.Equal(t, "2024-06-01", sess.Date.In(cfg.Location).Format(time.DateOnly))
	})

	t.Run("instant is bucketed in the ledger zone", func(t *testing.T) {
		// 02:00 UTC on the 3rd is still the 2nd at UTC-4.
		w := doJSON(t, r, "POST", "/sessions", `{"date":"2024-06-03T02:00:00Z","shiftType":"night"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var sess models.WorkSession
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
		assert.Equal(t, "2024-06-02", sess.Date.In(cfg.Location).Format(time.DateOnly))
	})

	t.Run("unparseable date", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/sessions", `{"date":"06/01/2024","shiftType":"day"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSendLedgerError_StorageUnavailable(t *testing.T) {
	w := httptest.NewRecorder()
	sendLedgerError(w, "Safe", fmt.Errorf("%w: read test:safe: connection refused", services.ErrStorageUnavailable))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Storage temporarily unavailable")
}
