package v1

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/govalues/decimal"

	"github.com/tinoosan/bookkeep/internal/ledger"
)

func (s *Server) postCurrency(w http.ResponseWriter, r *http.Request) {
	var req currencyRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	c := ledger.CurrencyNode{
		Symbol: req.Symbol,
		Scale:  req.Scale,
		Prefix: req.Prefix,
		Suffix: req.Suffix,
	}
	if err := s.eng.AddCurrency(&c); err != nil {
		domainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toCurrencyResponse(c))
}

func (s *Server) listCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies := s.eng.Currencies()
	out := make([]currencyResponse, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, toCurrencyResponse(c))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) listActiveCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies := s.eng.ActiveCurrencies()
	out := make([]currencyResponse, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, toCurrencyResponse(c))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) putDefaultCurrency(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := s.eng.SetDefaultCurrency(body.Symbol); err != nil {
		domainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postExchangeRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	rate, err := decimal.Parse(req.Rate)
	if err != nil {
		badRequest(w, "rate: "+err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(w, "date: want YYYY-MM-DD")
		return
	}
	if err := s.eng.SetExchangeRate(req.From, req.To, rate, date); err != nil {
		domainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getExchangeRate(w http.ResponseWriter, r *http.Request) {
	from, to := chi.URLParam(r, "from"), chi.URLParam(r, "to")
	date, err := queryDate(r, "date")
	if err != nil {
		badRequest(w, "date: want YYYY-MM-DD")
		return
	}
	series, err := s.eng.ExchangeRate(from, to)
	if err != nil {
		domainErr(w, err)
		return
	}
	rate, err := series.RateBetween(from, to, date)
	if err != nil {
		domainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, rateResponse{
		From: from, To: to, Rate: rate.String(), Date: fmtDate(ledger.Day(date)),
	})
}
