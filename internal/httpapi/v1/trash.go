package v1

import (
	"encoding/json"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) listTrash(w http.ResponseWriter, r *http.Request) {
	entries := s.eng.TrashEntries()
	out := make([]trashResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, trashResponse{
			ID:        e.ID.String(),
			ObjectID:  e.ObjectID.String(),
			Kind:      string(e.Kind),
			TrashedAt: e.TrashedAt.Format(time.RFC3339),
		})
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) purgeTrash(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid trash entry id")
		return
	}
	if err := s.eng.Purge(id); err != nil {
		domainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putPreference(w http.ResponseWriter, r *http.Request) {
	var body preferenceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := s.eng.SetPreference(chi.URLParam(r, "key"), body.Value); err != nil {
		domainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getPreference(w http.ResponseWriter, r *http.Request) {
	toJSON(w, http.StatusOK, preferenceBody{Value: s.eng.Preference(chi.URLParam(r, "key"))})
}
