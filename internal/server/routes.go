package server

import (
	"net/http"
	"time"
)

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/readyz", s.handleReadyz)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Auth — local accounts and token validation
	mux.HandleFunc("/api/auth/register", s.handleAuthRegister)
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/auth/validate", s.handleAuthValidate)
	mux.HandleFunc("/api/auth/dev-token", s.handleAuthDevToken)

	// Auth — session/CSRF cookie bridge for the web client
	mux.HandleFunc("/api/auth/set-cookie", s.handleSetCookie)
	mux.HandleFunc("/api/auth/csrf", s.handleCSRF)
	mux.HandleFunc("/api/auth/logout", s.handleLogout)

	// Entries
	mux.HandleFunc("/api/entries/", s.handleEntryByID)
	mux.HandleFunc("/api/entries", s.handleEntries)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)

	// Insights
	mux.HandleFunc("/api/insights/summary", s.handleInsightsSummary)
	mux.HandleFunc("/api/insights/trend.png", s.handleTrendChart)
	mux.HandleFunc("/api/summary/weekly/latest", s.handleWeeklyLatest)
	mux.HandleFunc("/api/summary", s.handlePeriodSummary)

	// Analytics
	mux.HandleFunc("/api/analytics/daily", s.handleAnalyticsDaily)
	mux.HandleFunc("/api/analytics/weekly", s.handleAnalyticsWeekly)

	// Digest + coping
	mux.HandleFunc("/api/triggers/", s.handleTriggerByName)
	mux.HandleFunc("/api/triggers", s.handleTriggers)

	mux.HandleFunc("/api/digest/pref", s.handleDigestPref)
	mux.HandleFunc("/api/digest/send-now", s.handleDigestSendNow)
	mux.HandleFunc("/api/coping/kit", s.handleCopingKit)

	// Profile
	mux.HandleFunc("/api/profile", s.handleProfile)

	// Calendar OAuth
	mux.HandleFunc("/api/calendar/oauth/start", s.handleCalendarOAuthStart)
	mux.HandleFunc("/api/calendar/oauth/callback", s.handleCalendarOAuthCallback)
	mux.HandleFunc("/api/calendar/status", s.handleCalendarStatus)
	mux.HandleFunc("/api/calendar/disconnect", s.handleCalendarDisconnect)
}
