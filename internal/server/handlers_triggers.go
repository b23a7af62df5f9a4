package server

import (
	"net/http"
)

// handleTriggers handles /api/triggers — named trigger word lists with
// per-emotion correlation stats over recent entries.
func (s *Server) handleTriggers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := s.app.TriggersService.List(r.Context(), userID)
		if err != nil {
			s.logger.Error().Err(err).Str("user", userID).Msg("Failed to list triggers")
			WriteError(w, http.StatusInternalServerError, "failed to list triggers")
			return
		}
		WriteJSON(w, http.StatusOK, list)

	case http.MethodPost:
		var req struct {
			Name  string   `json:"name"`
			Words []string `json:"words"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		trigger, err := s.app.TriggersService.Upsert(r.Context(), userID, req.Name, req.Words)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, trigger)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleTriggerByName handles DELETE /api/triggers/{name}.
func (s *Server) handleTriggerByName(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	name := PathParam(r, "/api/triggers/", "")
	if name == "" {
		WriteError(w, http.StatusBadRequest, "trigger name is required")
		return
	}

	removed, err := s.app.TriggersService.Delete(r.Context(), userID, name)
	if err != nil {
		s.logger.Error().Err(err).Str("user", userID).Msg("Failed to delete trigger")
		WriteError(w, http.StatusInternalServerError, "failed to delete trigger")
		return
	}
	if !removed {
		WriteError(w, http.StatusNotFound, "trigger not found")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
