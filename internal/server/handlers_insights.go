package server

import (
	"net/http"
	"strconv"
	"time"
)

// handleInsightsSummary handles GET /api/insights/summary?days=N.
func (s *Server) handleInsightsSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	summary, err := s.app.InsightsService.Summarize(r.Context(), userID, days)
	if err != nil {
		s.logger.Error().Err(err).Str("user", userID).Msg("Failed to build insights summary")
		WriteError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

// handleTrendChart handles GET /api/insights/trend.png?days=N.
func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	png, err := s.app.InsightsService.TrendChart(r.Context(), userID, days)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handlePeriodSummary handles GET /api/summary?period=day|week|month.
func (s *Server) handlePeriodSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "week"
	}

	summary, err := s.app.InsightsService.PeriodSummary(r.Context(), userID, period)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

// handleWeeklyLatest handles GET /api/summary/weekly/latest — the most
// recently persisted weekly recap, if any.
func (s *Server) handleWeeklyLatest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := s.app.InsightsService.LatestWeeklySummary(r.Context(), userID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "no weekly summary yet")
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

// parseDateRange reads start/end query params (YYYY-MM-DD or RFC3339),
// defaulting to the trailing 30 days.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -30)
	end := now

	parse := func(value string) (time.Time, error) {
		if t, err := time.Parse("2006-01-02", value); err == nil {
			return t.UTC(), nil
		}
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}

	if v := r.URL.Query().Get("start"); v != "" {
		t, err := parse(v)
		if err != nil {
			return start, end, err
		}
		start = t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := parse(v)
		if err != nil {
			return start, end, err
		}
		end = t
	}
	return start, end, nil
}

// handleAnalyticsDaily handles GET /api/analytics/daily?start&end.
func (s *Server) handleAnalyticsDaily(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	start, end, err := parseDateRange(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid date range: "+err.Error())
		return
	}

	metrics, err := s.app.AnalyticsService.DailyMetrics(r.Context(), userID, start, end)
	if err != nil {
		s.logger.Error().Err(err).Str("user", userID).Msg("Failed to compute daily metrics")
		WriteError(w, http.StatusInternalServerError, "failed to compute metrics")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"daily": metrics})
}

// handleAnalyticsWeekly handles GET /api/analytics/weekly?start&end.
func (s *Server) handleAnalyticsWeekly(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	start, end, err := parseDateRange(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid date range: "+err.Error())
		return
	}

	metrics, err := s.app.AnalyticsService.WeeklyMetrics(r.Context(), userID, start, end)
	if err != nil {
		s.logger.Error().Err(err).Str("user", userID).Msg("Failed to compute weekly metrics")
		WriteError(w, http.StatusInternalServerError, "failed to compute metrics")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"weekly": metrics})
}
