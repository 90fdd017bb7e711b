package v1

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/bookkeep/internal/ledger"
)

func (s *Server) postSecurity(w http.ResponseWriter, r *http.Request) {
	var req securityRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	sec := ledger.SecurityNode{
		Symbol:      req.Symbol,
		Description: req.Description,
		Scale:       req.Scale,
		Currency:    req.Currency,
	}
	if err := s.eng.AddSecurity(&sec); err != nil {
		domainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toSecurityResponse(sec))
}

func (s *Server) listSecurities(w http.ResponseWriter, r *http.Request) {
	securities := s.eng.Securities()
	out := make([]securityResponse, 0, len(securities))
	for _, sec := range securities {
		out = append(out, toSecurityResponse(sec))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getSecurity(w http.ResponseWriter, r *http.Request) {
	sec, err := s.eng.Security(chi.URLParam(r, "symbol"))
	if err != nil {
		domainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toSecurityResponse(sec))
}

func (s *Server) postSecurityHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid security id")
		return
	}
	var req securityHistoryRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(w, "date: want YYYY-MM-DD")
		return
	}
	n := ledger.SecurityHistoryNode{Date: date, Volume: req.Volume}
	if n.Price, err = decimal.Parse(req.Price); err != nil {
		badRequest(w, "price: "+err.Error())
		return
	}
	// High and low default to the closing price when omitted.
	n.High, n.Low = n.Price, n.Price
	if req.High != "" {
		if n.High, err = decimal.Parse(req.High); err != nil {
			badRequest(w, "high: "+err.Error())
			return
		}
	}
	if req.Low != "" {
		if n.Low, err = decimal.Parse(req.Low); err != nil {
			badRequest(w, "low: "+err.Error())
			return
		}
	}
	if err := s.eng.AddSecurityHistory(id, n); err != nil {
		domainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postSecurityEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid security id")
		return
	}
	var req securityEventRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(w, "date: want YYYY-MM-DD")
		return
	}
	value, err := decimal.Parse(req.Value)
	if err != nil {
		badRequest(w, "value: "+err.Error())
		return
	}
	ev := ledger.SecurityHistoryEvent{
		Type:  ledger.SecurityHistoryEventType(req.Type),
		Date:  date,
		Value: value,
	}
	if err := s.eng.AddSecurityHistoryEvent(id, ev); err != nil {
		domainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteSecurityEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid security id")
		return
	}
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		badRequest(w, "invalid event id")
		return
	}
	if err := s.eng.RemoveSecurityHistoryEvent(id, eventID); err != nil {
		domainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
