package v1

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	t, err := toTransactionDomain(req)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.eng.AddTransaction(&t); err != nil {
		domainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	var txns = s.eng.Transactions()
	if r.URL.Query().Get("attachments") == "true" {
		txns = s.eng.TransactionsWithAttachments()
	}
	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid transaction id")
		return
	}
	t, err := s.eng.Transaction(id)
	if err != nil {
		domainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid transaction id")
		return
	}
	if err := s.eng.RemoveTransaction(id); err != nil {
		domainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
