// Package v1 wires the HTTP surface of the bookkeeping engine. Handlers stay
// thin and delegate every business rule to the engine facade.
package v1

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/bookkeep/internal/engine"
)

// Server wires handlers and middleware using Chi.
type Server struct {
	eng *engine.Engine
	log *slog.Logger
	rt  *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(eng *engine.Engine, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{eng: eng, log: logger, rt: r}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

func (s *Server) routes() {
	// Accounts
	s.rt.Post("/v1/accounts", s.postAccount)
	s.rt.Get("/v1/accounts", s.listAccounts)
	s.rt.Get("/v1/accounts/{id}", s.getAccount)
	s.rt.Delete("/v1/accounts/{id}", s.deleteAccount)
	s.rt.Get("/v1/accounts/{id}/balance", s.getAccountBalance)
	s.rt.Get("/v1/accounts/{id}/path", s.getAccountPath)
	s.rt.Put("/v1/accounts/{id}/attributes/{key}", s.putAccountAttribute)
	s.rt.Get("/v1/accounts/{id}/attributes/{key}", s.getAccountAttribute)
	// Transactions
	s.rt.Post("/v1/transactions", s.postTransaction)
	s.rt.Get("/v1/transactions", s.listTransactions)
	s.rt.Get("/v1/transactions/{id}", s.getTransaction)
	s.rt.Delete("/v1/transactions/{id}", s.deleteTransaction)
	// Currencies and exchange rates
	s.rt.Post("/v1/currencies", s.postCurrency)
	s.rt.Get("/v1/currencies", s.listCurrencies)
	s.rt.Get("/v1/currencies/active", s.listActiveCurrencies)
	s.rt.Put("/v1/currencies/default", s.putDefaultCurrency)
	s.rt.Post("/v1/rates", s.postExchangeRate)
	s.rt.Get("/v1/rates/{from}/{to}", s.getExchangeRate)
	// Securities
	s.rt.Post("/v1/securities", s.postSecurity)
	s.rt.Get("/v1/securities", s.listSecurities)
	s.rt.Get("/v1/securities/{symbol}", s.getSecurity)
	s.rt.Post("/v1/securities/{id}/history", s.postSecurityHistory)
	s.rt.Post("/v1/securities/{id}/events", s.postSecurityEvent)
	s.rt.Delete("/v1/securities/{id}/events/{eventID}", s.deleteSecurityEvent)
	// Budgets
	s.rt.Post("/v1/budgets", s.postBudget)
	s.rt.Get("/v1/budgets", s.listBudgets)
	s.rt.Get("/v1/budgets/{id}", s.getBudget)
	s.rt.Delete("/v1/budgets/{id}", s.deleteBudget)
	// Reminders
	s.rt.Post("/v1/reminders", s.postReminder)
	s.rt.Get("/v1/reminders", s.listReminders)
	s.rt.Get("/v1/reminders/pending", s.listPendingReminders)
	s.rt.Delete("/v1/reminders/{id}", s.deleteReminder)
	// Trash
	s.rt.Get("/v1/trash", s.listTrash)
	s.rt.Delete("/v1/trash/{id}", s.purgeTrash)
	// Preferences
	s.rt.Put("/v1/preferences/{key}", s.putPreference)
	s.rt.Get("/v1/preferences/{key}", s.getPreference)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Handle("/metrics", metricsHandler())
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
