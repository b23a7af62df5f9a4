package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/models"
	"github.com/echo-journal/echo/internal/services/digest"
)

const maxFullNameLength = 120

// handleProfile handles /api/profile — display name stored as user KV.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	store := s.app.Storage.InternalStore()

	switch r.Method {
	case http.MethodGet:
		fullName := ""
		if kv, err := store.GetUserKV(r.Context(), userID, models.KVProfileFullName); err == nil {
			fullName = kv.Value
		}
		WriteJSON(w, http.StatusOK, map[string]string{"full_name": fullName})

	case http.MethodPost:
		var req struct {
			FullName string `json:"full_name"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		req.FullName = strings.TrimSpace(req.FullName)
		if req.FullName == "" {
			WriteError(w, http.StatusBadRequest, "full_name is required")
			return
		}
		if len([]rune(req.FullName)) > maxFullNameLength {
			WriteError(w, http.StatusBadRequest, "full_name exceeds 120 characters")
			return
		}
		if err := store.SetUserKV(r.Context(), userID, models.KVProfileFullName, req.FullName); err != nil {
			s.logger.Error().Err(err).Str("user", userID).Msg("Failed to save profile")
			WriteError(w, http.StatusInternalServerError, "failed to save profile")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"full_name": req.FullName})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleDigestPref handles /api/digest/pref — weekly digest opt-in.
func (s *Server) handleDigestPref(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		enabled, err := s.app.DigestService.GetPref(r.Context(), userID)
		if err != nil {
			s.logger.Error().Err(err).Str("user", userID).Msg("Failed to read digest pref")
			WriteError(w, http.StatusInternalServerError, "failed to read preference")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]bool{"enabled": enabled})

	case http.MethodPost:
		var req struct {
			Enabled bool `json:"enabled"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		enabled, err := s.app.DigestService.SetPref(r.Context(), userID, req.Enabled)
		if err != nil {
			s.logger.Error().Err(err).Str("user", userID).Msg("Failed to save digest pref")
			WriteError(w, http.StatusInternalServerError, "failed to save preference")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]bool{"enabled": enabled})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleDigestSendNow handles POST /api/digest/send-now.
func (s *Server) handleDigestSendNow(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	email := ""
	if uc := common.UserContextFromContext(r.Context()); uc != nil {
		email = uc.Email
	}
	if email == "" {
		if user, err := s.app.Storage.InternalStore().GetUser(r.Context(), userID); err == nil {
			email = user.Email
		}
	}

	err := s.app.DigestService.SendNow(r.Context(), userID, email)
	if errors.Is(err, digest.ErrDisabled) {
		WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": false, "reason": "Digest disabled"})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user", userID).Msg("Failed to send digest")
		WriteError(w, http.StatusInternalServerError, "failed to send digest")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleCopingKit handles /api/coping/kit — pinned coping actions.
func (s *Server) handleCopingKit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		actions, err := s.app.CopingService.GetKit(r.Context(), userID)
		if err != nil {
			s.logger.Error().Err(err).Str("user", userID).Msg("Failed to read coping kit")
			WriteError(w, http.StatusInternalServerError, "failed to read kit")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"actions": actions})

	case http.MethodPost, http.MethodPut:
		var req struct {
			Actions []string `json:"actions"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		actions, err := s.app.CopingService.SaveKit(r.Context(), userID, req.Actions)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"actions": actions})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost, http.MethodPut)
	}
}
