package server

import (
	"net/http"
	"strconv"

	"github.com/echo-journal/echo/internal/interfaces"
	"github.com/echo-journal/echo/internal/services/journal"
)

// handleEntries handles /api/entries — create (POST) and list (GET).
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleEntryCreate(w, r)
	case http.MethodGet:
		s.handleEntryList(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleEntryCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Text   string   `json:"text"`
		Source string   `json:"source"`
		Tags   []string `json:"tags"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	input := interfaces.EntryInput{Text: req.Text, Source: req.Source, Tags: req.Tags}
	if err := journal.ValidateInput(&input); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, oneLiner, err := s.app.JournalService.CreateEntry(r.Context(), userID, input)
	if err != nil {
		s.logger.Error().Err(err).Str("user", userID).Msg("Failed to create entry")
		WriteError(w, http.StatusInternalServerError, "failed to create entry")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"entry":     entry,
		"one_liner": oneLiner,
	})
}

func (s *Server) handleEntryList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := s.app.JournalService.ListEntries(r.Context(), userID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("user", userID).Msg("Failed to list entries")
		WriteError(w, http.StatusInternalServerError, "failed to list entries")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleEntryByID handles GET /api/entries/{id}.
func (s *Server) handleEntryByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	entryID := PathParam(r, "/api/entries/", "")
	if entryID == "" {
		WriteError(w, http.StatusBadRequest, "entry ID is required in path")
		return
	}

	entry, err := s.app.JournalService.GetEntry(r.Context(), userID, entryID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "entry not found")
		return
	}

	WriteJSON(w, http.StatusOK, entry)
}

// handleAnalyze handles POST /api/analyze — emotion analysis without storing.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	emotions, top, sentiment, err := s.app.JournalService.Analyze(r.Context(), req.Text)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"emotions":        emotions,
		"top_emotion":     top,
		"sentiment_score": sentiment,
	})
}
