// Package api provides the local admin HTTP server for taxbox. It mirrors
// the ledger read model and the settlement operation so operators can run
// the books without going through chat commands.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evanesaias-afk/taxbox/internal/ledger"
)

// Server is the taxbox admin API server.
type Server struct {
	svc            *ledger.Service
	metricsEnabled bool
}

// NewServer creates a new admin API server.
func NewServer(svc *ledger.Service) *Server {
	return &Server{svc: svc}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/accounts/{id}", s.handleAccount)
		r.Get("/outstanding", s.handleOutstanding)
		r.Post("/settle/{id}", s.handleSettle)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleAccount returns the ledger view of one user. Unknown users are a
// zero account, not a 404.
func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	acct, err := s.svc.AccountOf(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	tiers, err := s.svc.TiersEarnedBy(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":               id,
		"total_spent":      acct.TotalSpent,
		"total_earned":     acct.TotalEarned,
		"tax_owed":         acct.TaxOwed,
		"seller_suspended": acct.SellerSuspended,
		"tiers":            tiers,
	})
}

func (s *Server) handleOutstanding(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Outstanding(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var total int64
	for _, row := range rows {
		total += row.TaxOwed
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sellers": rows,
		"total":   total,
	})
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	settled, err := s.svc.SettleTax(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !settled {
		writeError(w, http.StatusConflict, "no outstanding tax for "+id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":      id,
		"settled": true,
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}
