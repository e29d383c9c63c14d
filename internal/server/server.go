// Package server wires the ledger handlers into an HTTP router and runs it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/savingsjars/backend/docs"
	"github.com/savingsjars/backend/internal/config"
	"github.com/savingsjars/backend/internal/handlers"
	mW "github.com/savingsjars/backend/internal/middleware"
	"github.com/savingsjars/backend/internal/services"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Savings Jars API
// @version 1.0
// @description Ledger API for savings goals, contributions, work sessions and the safe
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// NewRouter builds the full route tree. Everything under /api/v1 requires a
// bearer token signed with jwtSecret.
func NewRouter(store *services.LedgerStore, cfg config.ServerConfig, jwtSecret []byte) http.Handler {
	goals := handlers.NewGoalHandler(store)
	contributions := handlers.NewContributionHandler(store)
	safe := handlers.NewSafeHandler(store)
	sessions := handlers.NewSessionHandler(store)
	stats := handlers.NewStatsHandler(store)
	data := handlers.NewDataHandler(store)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(mW.Instrument)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mW.Auth(jwtSecret))

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", goals.ListGoals)
			r.Post("/", goals.CreateGoal)
			r.Get("/{goalId}", goals.GetGoal)
			r.Put("/{goalId}", goals.UpdateGoal)
			r.Delete("/{goalId}", goals.DeleteGoal)
			r.Post("/{goalId}/archive", goals.ArchiveGoal)
			r.Post("/{goalId}/unarchive", goals.UnarchiveGoal)
			r.Get("/{goalId}/progress", goals.GetProgress)
			r.Get("/{goalId}/days", goals.GetDaysToGoal)
			r.Get("/{goalId}/share.png", goals.ShareQR)
			r.Get("/{goalId}/contributions", contributions.ListByGoal)
		})

		r.Get("/contributions", contributions.ListContributions)
		r.Post("/contributions", contributions.AddContribution)
		r.Put("/contributions/{contributionId}", contributions.UpdateContribution)
		r.Delete("/contributions/{contributionId}", contributions.DeleteContribution)

		r.Get("/safe", safe.GetSafe)
		r.Get("/safe/transactions", safe.ListTransactions)
		r.Post("/safe/deposit", safe.Deposit)
		r.Post("/safe/withdraw", safe.Withdraw)
		r.Post("/safe/distribute", safe.Distribute)

		r.Get("/sessions", sessions.ListSessions)
		r.Post("/sessions", sessions.AddSession)
		r.Post("/sessions/auto-complete", sessions.AutoComplete)
		r.Get("/sessions/{sessionId}", sessions.GetSession)
		r.Delete("/sessions/{sessionId}", sessions.DeleteSession)
		r.Post("/sessions/{sessionId}/complete", sessions.CompleteSession)
		r.Post("/sessions/{sessionId}/skip", sessions.SkipSession)

		r.Get("/stats/earnings", stats.GetEarnings)
		r.Post("/stats/average/recalculate", stats.RecalculateAverage)
		r.Get("/settings", stats.GetSettings)
		r.Put("/settings", stats.SaveSettings)
		r.Put("/settings/average-daily-earning", stats.SetAverageDailyEarning)

		r.Get("/data/export", data.Export)
		r.Post("/data/import", data.Import)
		r.Get("/data/verify", data.Verify)
		r.Delete("/data", data.ClearAll)
	})

	return r
}

// New returns an http.Server for the ledger.
func New(cfg *config.Config, store *services.LedgerStore) *http.Server {
	docs.SwaggerInfo.Host = ""
	docs.SwaggerInfo.BasePath = "/api/v1"

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewRouter(store, cfg.Server, []byte(cfg.JWT.SecretKey)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("Server stopped")
	return nil
}
