package v1

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) postBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	b, err := toBudgetDomain(req)
	if err != nil {
		domainErr(w, err)
		return
	}
	if err := s.eng.AddBudget(&b); err != nil {
		domainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toBudgetResponse(b))
}

func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
	budgets := s.eng.BudgetList()
	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getBudget(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid budget id")
		return
	}
	b, err := s.eng.Budget(id)
	if err != nil {
		domainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toBudgetResponse(b))
}

func (s *Server) deleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid budget id")
		return
	}
	if err := s.eng.RemoveBudget(id); err != nil {
		domainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
