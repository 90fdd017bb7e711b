package v1

import (
	"encoding/json"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tinoosan/bookkeep/internal/ledger"
)

func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	parentID := uuid.Nil
	if req.ParentID != "" {
		var err error
		parentID, err = uuid.Parse(req.ParentID)
		if err != nil {
			badRequest(w, "invalid parent_id")
			return
		}
	}
	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}
	a := ledger.Account{
		Name:        req.Name,
		Number:      req.Number,
		Type:        ledger.AccountType(req.Type),
		Currency:    req.Currency,
		Placeholder: req.Placeholder,
		Visible:     visible,
	}
	if err := s.eng.AddAccount(parentID, &a); err != nil {
		domainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toAccountResponse(a))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("name"); name != "" {
		a, err := s.eng.AccountByName(name)
		if err != nil {
			domainErr(w, err)
			return
		}
		toJSON(w, http.StatusOK, []accountResponse{toAccountResponse(a)})
		return
	}
	var out []accountResponse
	for _, a := range s.eng.Accounts() {
		if t := r.URL.Query().Get("type"); t != "" && string(a.Type) != t {
			continue
		}
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	a, err := s.eng.Account(id)
	if err != nil {
		domainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(a))
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	if err := s.eng.RemoveAccount(id); err != nil {
		domainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getAccountBalance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	q := r.URL.Query()
	start, err := parseDate(q.Get("start"))
	if err != nil {
		badRequest(w, "start: want YYYY-MM-DD")
		return
	}
	end, err := parseDate(q.Get("end"))
	if err != nil {
		badRequest(w, "end: want YYYY-MM-DD")
		return
	}
	currency := q.Get("currency")
	if currency == "" {
		currency = s.eng.DefaultCurrency()
	}
	balance, err := s.eng.Balance(id, start, end, currency)
	if err != nil {
		domainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, balanceResponse{
		AccountID: id.String(),
		Start:     fmtDate(start),
		End:       fmtDate(end),
		Currency:  currency,
		Balance:   balance.String(),
	})
}

func (s *Server) getAccountPath(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	path, err := s.eng.PathName(id)
	if err != nil {
		domainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (s *Server) putAccountAttribute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	var body preferenceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := s.eng.SetAccountAttribute(id, chi.URLParam(r, "key"), body.Value); err != nil {
		domainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getAccountAttribute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	v, ok := s.eng.AccountAttribute(id, chi.URLParam(r, "key"))
	if !ok {
		writeErr(w, http.StatusNotFound, "attribute not set", "not_found")
		return
	}
	toJSON(w, http.StatusOK, preferenceBody{Value: v})
}

// queryDate parses an optional query date, defaulting to today.
func queryDate(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return parseDate(raw)
}
