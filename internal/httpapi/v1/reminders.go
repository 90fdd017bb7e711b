package v1

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tinoosan/bookkeep/internal/ledger"
)

func (s *Server) postReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		badRequest(w, "start_date: want YYYY-MM-DD")
		return
	}
	rem := ledger.Reminder{
		Type:        ledger.ReminderType(req.Type),
		Description: req.Description,
		StartDate:   start,
		Increment:   req.Increment,
		Enabled:     req.Enabled,
	}
	if req.EndDate != "" {
		if rem.EndDate, err = parseDate(req.EndDate); err != nil {
			badRequest(w, "end_date: want YYYY-MM-DD")
			return
		}
	}
	if req.AccountID != "" {
		if rem.AccountID, err = uuid.Parse(req.AccountID); err != nil {
			badRequest(w, "invalid account_id")
			return
		}
	}
	if err := s.eng.AddReminder(&rem); err != nil {
		domainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toReminderResponse(rem))
}

func (s *Server) listReminders(w http.ResponseWriter, r *http.Request) {
	reminders := s.eng.Reminders()
	out := make([]reminderResponse, 0, len(reminders))
	for _, rem := range reminders {
		out = append(out, toReminderResponse(rem))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) listPendingReminders(w http.ResponseWriter, r *http.Request) {
	ref, err := queryDate(r, "ref")
	if err != nil {
		badRequest(w, "ref: want YYYY-MM-DD")
		return
	}
	pending := s.eng.PendingReminders(ref)
	out := make([]reminderResponse, 0, len(pending))
	for _, rem := range pending {
		out = append(out, toReminderResponse(rem))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) deleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid reminder id")
		return
	}
	if err := s.eng.RemoveReminder(id); err != nil {
		domainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
