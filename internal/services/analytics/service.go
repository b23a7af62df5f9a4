// Package analytics computes daily and weekly behavioral metrics over
// journal entries.
package analytics

import (
	"context"
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
var _ interfaces.AnalyticsService = (*Service)(nil)

// Service implements AnalyticsService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new analytics service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// DailyMetrics aggregates the user's entries per calendar day in [start, end).
func (s *Service) DailyMetrics(ctx context.Context, userID string, start, end time.Time) ([]*models.DailyMetric, error) {
	entries, err := s.entriesInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return ComputeDailyMetrics(entries), nil
}

// WeeklyMetrics aggregates the user's entries per Monday-start week in
// [start, end).
func (s *Service) WeeklyMetrics(ctx context.Context, userID string, start, end time.Time) ([]*models.WeeklyMetric, error) {
	entries, err := s.entriesInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	daily := ComputeDailyMetrics(entries)
	return ComputeWeeklyMetrics(entries, daily), nil
}

func (s *Service) entriesInRange(ctx context.Context, userID string, start, end time.Time) ([]*models.Entry, error) {
	entries, err := s.storage.EntryStore().ListEntriesSince(ctx, userID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	if end.IsZero() {
		return entries, nil
	}
	filtered := entries[:0]
	for _, entry := range entries {
		if entry.CreatedAt.Before(end) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

type dailyAggregate struct {
	sentiments          []float64
	lengths             []float64
	emotionCounts       map[string]int
	timeBucketCounts    map[string]int
	timeBucketSentiment map[string][]float64
	messageCount        int
}

// ComputeDailyMetrics groups entries by calendar day (UTC) and aggregates
// sentiment, entry length, emotion counts, and time-of-day buckets.
func ComputeDailyMetrics(entries []*models.Entry) []*models.DailyMetric {
	aggregates := make(map[string]*dailyAggregate)
	userIDs := make(map[string]string)

	for _, entry := range entries {
		if entry.UserID == "" {
			continue
		}
		day := entry.CreatedAt.UTC().Format("2006-01-02")
		key := entry.UserID + "\x00" + day
		group, ok := aggregates[key]
		if !ok {
			group = &dailyAggregate{
				emotionCounts:       make(map[string]int),
				timeBucketCounts:    make(map[string]int),
				timeBucketSentiment: make(map[string][]float64),
			}
			aggregates[key] = group
			userIDs[key] = entry.UserID
		}

		sentiment := entrySentiment(entry)
		length := float64(entryLength(entry))
		bucket := entryTimeBucket(entry)

		group.messageCount++
		group.emotionCounts[topEmotionLabel(entry)]++
		group.timeBucketCounts[bucket]++
		group.lengths = append(group.lengths, length)
		group.sentiments = append(group.sentiments, sentiment)
		group.timeBucketSentiment[bucket] = append(group.timeBucketSentiment[bucket], sentiment)
	}

	keys := make([]string, 0, len(aggregates))
	for key := range aggregates {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return dayOf(keys[i]) < dayOf(keys[j]) || (dayOf(keys[i]) == dayOf(keys[j]) && keys[i] < keys[j])
	})

	results := make([]*models.DailyMetric, 0, len(keys))
	for _, key := range keys {
		group := aggregates[key]

		timeBuckets := make(map[string]models.TimeBucketStat, len(group.timeBucketCounts))
		for bucket, count := range group.timeBucketCounts {
			timeBuckets[bucket] = models.TimeBucketStat{
				MessageCount: count,
				AvgSentiment: mean(group.timeBucketSentiment[bucket]),
			}
		}

		results = append(results, &models.DailyMetric{
			UserID:         userIDs[key],
			Date:           dayOf(key),
			AvgSentiment:   mean(group.sentiments),
			TopEmotion:     dominantEmotion(group.emotionCounts),
			EmotionCounts:  group.emotionCounts,
			MessageCount:   group.messageCount,
			AvgEntryLength: mean(group.lengths),
			TimeBuckets:    timeBuckets,
		})
	}
	return results
}

type weeklyAggregate struct {
	weekEnd             string
	sentiments          []float64
	lengths             []float64
	timeBucketSentiment map[string][]float64
	weekdaySentiment    map[int][]float64
	emotionCounts       map[string]int
	messageCount        int
}

// ComputeWeeklyMetrics groups entries by Monday-start week and derives
// volatility and behavioral correlations. dailyMetrics feeds the volatility
// calculation (population stddev of the week's daily average sentiments).
func ComputeWeeklyMetrics(entries []*models.Entry, dailyMetrics []*models.DailyMetric) []*models.WeeklyMetric {
	dailyLookup := make(map[string]*models.DailyMetric, len(dailyMetrics))
	for _, record := range dailyMetrics {
		if record.UserID == "" || record.Date == "" {
			continue
		}
		dailyLookup[record.UserID+"\x00"+record.Date] = record
	}

	aggregates := make(map[string]*weeklyAggregate)
	userIDs := make(map[string]string)

	for _, entry := range entries {
		if entry.UserID == "" {
			continue
		}
		weekStart, weekEnd := emotion.WeekBounds(entry.CreatedAt)
		key := entry.UserID + "\x00" + weekStart.Format("2006-01-02")
		group, ok := aggregates[key]
		if !ok {
			group = &weeklyAggregate{
				weekEnd:             weekEnd.Format("2006-01-02"),
				timeBucketSentiment: make(map[string][]float64),
				weekdaySentiment:    make(map[int][]float64),
				emotionCounts:       make(map[string]int),
			}
			aggregates[key] = group
			userIDs[key] = entry.UserID
		}

		sentiment := entrySentiment(entry)
		bucket := entryTimeBucket(entry)
		weekday := entry.Weekday
		if weekday < 0 || weekday > 6 {
			weekday = emotion.WeekdayIndex(entry.CreatedAt)
		}

		group.messageCount++
		group.emotionCounts[topEmotionLabel(entry)]++
		group.sentiments = append(group.sentiments, sentiment)
		group.lengths = append(group.lengths, float64(entryLength(entry)))
		group.timeBucketSentiment[bucket] = append(group.timeBucketSentiment[bucket], sentiment)
		group.weekdaySentiment[weekday] = append(group.weekdaySentiment[weekday], sentiment)
	}

	keys := make([]string, 0, len(aggregates))
	for key := range aggregates {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return dayOf(keys[i]) < dayOf(keys[j]) || (dayOf(keys[i]) == dayOf(keys[j]) && keys[i] < keys[j])
	})

	results := make([]*models.WeeklyMetric, 0, len(keys))
	for _, key := range keys {
		group := aggregates[key]
		userID := userIDs[key]
		weekStart := dayOf(key)

		// Volatility from daily averages within the week.
		start, _ := time.Parse("2006-01-02", weekStart)
		var dailySentiments []float64
		for offset := 0; offset < 7; offset++ {
			day := start.AddDate(0, 0, offset).Format("2006-01-02")
			if record, ok := dailyLookup[userID+"\x00"+day]; ok && record.AvgSentiment != nil {
				dailySentiments = append(dailySentiments, *record.AvgSentiment)
			}
		}
		volatility := 0.0
		if len(dailySentiments) > 1 {
			volatility = pstdev(dailySentiments)
		}

		corr := models.CorrelationSummary{
			EntryLengthVsSentimentPearson: pearson(group.lengths, group.sentiments),
			EntryLengthSampleSize:         len(group.lengths),
			TimeOfDayMeanSentiment:        make(map[string]*float64, len(group.timeBucketSentiment)),
			WeekdayMeanSentiment:          make(map[string]*float64, len(group.weekdaySentiment)),
		}
		for bucket, values := range group.timeBucketSentiment {
			corr.TimeOfDayMeanSentiment[bucket] = mean(values)
		}
		for weekday, values := range group.weekdaySentiment {
			corr.WeekdayMeanSentiment[emotion.WeekdayLabels[weekday]] = mean(values)
		}

		results = append(results, &models.WeeklyMetric{
			UserID:        userID,
			WeekStart:     weekStart,
			WeekEnd:       group.weekEnd,
			AvgSentiment:  mean(group.sentiments),
			EmotionCounts: group.emotionCounts,
			MessageCount:  group.messageCount,
			Volatility:    volatility,
			CorrSummary:   corr,
		})
	}
	return results
}

func entrySentiment(entry *models.Entry) float64 {
	if entry.SentimentScore != 0 || len(entry.Emotions) == 0 {
		return entry.SentimentScore
	}
	return emotion.SentimentFromEmotions(entry.Emotions)
}

func entryLength(entry *models.Entry) int {
	if entry.EntryLength > 0 {
		return entry.EntryLength
	}
	return emotion.EntryLength(entry.Text)
}

func entryTimeBucket(entry *models.Entry) string {
	if entry.TimeOfDay != "" {
		return entry.TimeOfDay
	}
	return emotion.BucketTimeOfDay(entry.CreatedAt)
}

func topEmotionLabel(entry *models.Entry) string {
	if top := entry.DeriveTopEmotion(); top != nil && top.Label != "" {
		return strings.ToLower(top.Label)
	}
	return "neutral"
}

func dominantEmotion(counts map[string]int) string {
	dominant, best := "", -1
	for label, count := range counts {
		if count > best || (count == best && label < dominant) {
			dominant, best = label, count
		}
	}
	return dominant
}

func dayOf(key string) string {
	if idx := strings.IndexByte(key, '\x00'); idx >= 0 {
		return key[idx+1:]
	}
	return key
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &avg
}

// pstdev is the population standard deviation.
func pstdev(values []float64) float64 {
	m := *mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}

// pearson returns the Pearson correlation coefficient of the two samples,
// or nil when fewer than two pairs exist or either sample has no variance.
func pearson(xs, ys []float64) *float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return nil
	}
	meanX := *mean(xs)
	meanY := *mean(ys)

	var num, denX, denY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		num += dx * dy
		denX += dx * dx
		denY += dy * dy
	}
	if denX <= 0 || denY <= 0 {
		return nil
	}
	r := num / math.Sqrt(denX*denY)
	return &r
}
