// Package insights aggregates journal entries for the dashboard: emotion
// shares, trends, keyword counts, and generated period recaps.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/emotion"
	"github.com/echo-journal/echo/internal/interfaces"
	"github.com/echo-journal/echo/internal/models"
)

// Compile-time interface check
var _ interfaces.InsightsService = (*Service)(nil)

// weeklySummaryKey is the per-user KV key prefix for stored weekly recaps.
const weeklySummaryKey = "weekly_summary"

// Service implements InsightsService
type Service struct {
	storage interfaces.StorageManager
	writer  interfaces.SummaryWriter
	logger  *common.Logger
}

// NewService creates a new insights service. writer may be nil, in which
// case the deterministic summarizer handles all recaps.
func NewService(storage interfaces.StorageManager, writer interfaces.SummaryWriter, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		writer:  writer,
		logger:  logger,
	}
}

// Summarize aggregates the last N days of entries into dashboard shares.
func (s *Service) Summarize(ctx context.Context, userID string, days int) (*models.InsightsSummary, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	entries, err := s.storage.EntryStore().ListEntriesSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	return SummarizeEntries(entries), nil
}

// SummarizeEntries computes the dashboard aggregates for a set of entries.
func SummarizeEntries(entries []*models.Entry) *models.InsightsSummary {
	summary := &models.InsightsSummary{
		TopEmotions: []models.EmotionShare{},
		Trend:       []models.TrendPoint{},
		Heatmap:     []models.HeatmapCell{},
		Keywords:    []models.KeywordCount{},
	}
	if len(entries) == 0 {
		return summary
	}

	emotionTotals := make(map[string]int)
	var emotionOrder []string
	dailyEmotions := make(map[string]map[string]int)
	keywordCounts := make(map[string]float64)
	var keywordOrder []string

	countKeyword := func(word string, weight float64) {
		if _, ok := keywordCounts[word]; !ok {
			keywordOrder = append(keywordOrder, word)
		}
		keywordCounts[word] += weight
	}

	for _, entry := range entries {
		day := entry.CreatedAt.UTC().Format("2006-01-02")

		label := "neutral"
		if top := entry.DeriveTopEmotion(); top != nil && top.Label != "" {
			label = strings.ToLower(top.Label)
		}
		if _, ok := emotionTotals[label]; !ok {
			emotionOrder = append(emotionOrder, label)
		}
		emotionTotals[label]++
		if dailyEmotions[day] == nil {
			dailyEmotions[day] = make(map[string]int)
		}
		dailyEmotions[day][label]++

		for _, word := range emotion.Tokenize(entry.Text) {
			countKeyword(word, 1)
		}
		// Tags count at half weight so free text keeps the lead.
		for _, tag := range entry.Tags {
			countKeyword(strings.ToLower(tag), 0.5)
		}
	}

	total := 0
	for _, count := range emotionTotals {
		total += count
	}
	if total == 0 {
		total = 1
	}
	sort.SliceStable(emotionOrder, func(i, j int) bool {
		return emotionTotals[emotionOrder[i]] > emotionTotals[emotionOrder[j]]
	})
	for _, label := range emotionOrder {
		pct := float64(emotionTotals[label]) / float64(total) * 100
		summary.TopEmotions = append(summary.TopEmotions, models.EmotionShare{
			Label: label,
			Pct:   math.Round(pct*10) / 10,
		})
	}

	days := make([]string, 0, len(dailyEmotions))
	for day := range dailyEmotions {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		counts := dailyEmotions[day]
		dayTotal := 0
		for _, count := range counts {
			dayTotal += count
		}
		if dayTotal == 0 {
			dayTotal = 1
		}

		shares := make(map[string]float64, len(counts))
		dominant, dominantCount := "", -1
		for label, count := range counts {
			shares[label] = math.Round(float64(count)/float64(dayTotal)*1000) / 1000
			if count > dominantCount || (count == dominantCount && label < dominant) {
				dominant, dominantCount = label, count
			}
		}
		summary.Trend = append(summary.Trend, models.TrendPoint{Date: day, Shares: shares})
		summary.Heatmap = append(summary.Heatmap, models.HeatmapCell{Date: day, DominantLabel: dominant})
	}

	sort.SliceStable(keywordOrder, func(i, j int) bool {
		return keywordCounts[keywordOrder[i]] > keywordCounts[keywordOrder[j]]
	})
	if len(keywordOrder) > 20 {
		keywordOrder = keywordOrder[:20]
	}
	for _, word := range keywordOrder {
		summary.Keywords = append(summary.Keywords, models.KeywordCount{
			Word:  word,
			Count: int(keywordCounts[word]),
		})
	}

	return summary
}

// PeriodSummary generates recap prose for "day", "week", or "month". Weekly
// recaps are persisted per Monday week start so the dashboard can show the
// previous week alongside the current one.
func (s *Service) PeriodSummary(ctx context.Context, userID, period string) (*models.PeriodSummary, error) {
	if period == "" {
		period = "week"
	}
	if period != "day" && period != "week" && period != "month" {
		return nil, fmt.Errorf("period must be day, week, or month")
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var windowStart, since time.Time
	switch period {
	case "day":
		windowStart = today
		since = today
	case "week":
		windowStart = today.AddDate(0, 0, -emotion.WeekdayIndex(now))
		since = now.AddDate(0, 0, -7)
	case "month":
		windowStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		since = windowStart
	}

	entries, err := s.storage.EntryStore().ListEntriesSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	text := s.writeSummary(ctx, entries, period)
	result := &models.PeriodSummary{
		SummaryText: text,
		WeekStart:   windowStart.Format("2006-01-02"),
	}

	if period == "week" {
		if err := s.saveWeeklySummary(ctx, userID, result); err != nil {
			s.logger.Warn().Err(err).Str("user", userID).Msg("Failed to persist weekly summary")
		}
	}
	return result, nil
}

// LatestWeeklySummary returns the most recently stored weekly recap.
func (s *Service) LatestWeeklySummary(ctx context.Context, userID string) (*models.PeriodSummary, error) {
	kv, err := s.storage.InternalStore().GetUserKV(ctx, userID, weeklySummaryKey)
	if err != nil {
		return nil, fmt.Errorf("no weekly summary found")
	}
	var summary models.PeriodSummary
	if err := json.Unmarshal([]byte(kv.Value), &summary); err != nil {
		return nil, fmt.Errorf("failed to decode weekly summary: %w", err)
	}
	return &summary, nil
}

func (s *Service) saveWeeklySummary(ctx context.Context, userID string, summary *models.PeriodSummary) error {
	encoded, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return s.storage.InternalStore().SetUserKV(ctx, userID, weeklySummaryKey, string(encoded))
}

// writeSummary prefers the configured summary writer and falls back to the
// deterministic summarizer when it fails or is absent.
func (s *Service) writeSummary(ctx context.Context, entries []*models.Entry, period string) string {
	if s.writer != nil {
		text, err := s.writer.WriteSummary(ctx, entries, period)
		if err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("Summary writer failed, using deterministic summarizer")
		}
	}
	return emotion.Summarize(entries, period)
}
