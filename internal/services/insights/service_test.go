package insights

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/interfaces"
	"github.com/echo-journal/echo/internal/models"
	"github.com/echo-journal/echo/internal/storage"
)

func newTestStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Entries.Path = t.TempDir()
	cfg.Storage.Internal.Path = t.TempDir()
	mgr, err := storage.NewManager(common.NewSilentLogger(), cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func entryAt(id, userID, label string, day time.Time, text string, tags ...string) *models.Entry {
	return &models.Entry{
		ID:        id,
		UserID:    userID,
		Text:      text,
		Source:    models.SourceWeb,
		Tags:      tags,
		Emotions:  []models.EmotionScore{{Label: label, Score: 1.0}},
		CreatedAt: day,
	}
}

func TestSummarizeEntriesEmpty(t *testing.T) {
	summary := SummarizeEntries(nil)
	if len(summary.TopEmotions) != 0 || len(summary.Trend) != 0 || len(summary.Heatmap) != 0 || len(summary.Keywords) != 0 {
		t.Errorf("empty input should yield empty summary: %+v", summary)
	}
}

func TestSummarizeEntriesShares(t *testing.T) {
	day1 := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	entries := []*models.Entry{
		entryAt("e1", "alice", "joy", day1, "celebrated the launch"),
		entryAt("e2", "alice", "joy", day1, "another celebration today"),
		entryAt("e3", "alice", "sadness", day2, "missing home"),
	}

	summary := SummarizeEntries(entries)

	if len(summary.TopEmotions) != 2 {
		t.Fatalf("expected 2 emotion shares, got %d", len(summary.TopEmotions))
	}
	if summary.TopEmotions[0].Label != "joy" || summary.TopEmotions[0].Pct != 66.7 {
		t.Errorf("unexpected top share: %+v", summary.TopEmotions[0])
	}
	if summary.TopEmotions[1].Label != "sadness" || summary.TopEmotions[1].Pct != 33.3 {
		t.Errorf("unexpected second share: %+v", summary.TopEmotions[1])
	}

	if len(summary.Trend) != 2 {
		t.Fatalf("expected 2 trend points, got %d", len(summary.Trend))
	}
	if summary.Trend[0].Date != "2026-03-09" || summary.Trend[0].Shares["joy"] != 1.0 {
		t.Errorf("unexpected trend point: %+v", summary.Trend[0])
	}

	if len(summary.Heatmap) != 2 {
		t.Fatalf("expected 2 heatmap cells, got %d", len(summary.Heatmap))
	}
	if summary.Heatmap[0].DominantLabel != "joy" || summary.Heatmap[1].DominantLabel != "sadness" {
		t.Errorf("unexpected heatmap: %+v", summary.Heatmap)
	}
}

func TestSummarizeEntriesKeywordsTagWeight(t *testing.T) {
	day := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	entries := []*models.Entry{
		entryAt("e1", "alice", "neutral", day, "project meeting notes", "Project"),
		entryAt("e2", "alice", "neutral", day, "project review", "Project"),
	}

	summary := SummarizeEntries(entries)
	counts := make(map[string]int)
	for _, kw := range summary.Keywords {
		counts[kw.Word] = kw.Count
	}
	// "project" appears twice in text plus two tags at half weight: int(3.0)
	if counts["project"] != 3 {
		t.Errorf("expected project count 3, got %d (%+v)", counts["project"], summary.Keywords)
	}
}

func TestPeriodSummaryValidation(t *testing.T) {
	svc := NewService(newTestStorage(t), nil, common.NewSilentLogger())

	if _, err := svc.PeriodSummary(context.Background(), "alice", "year"); err == nil {
		t.Error("expected error for invalid period")
	}
}

func TestPeriodSummaryWeekPersists(t *testing.T) {
	store := newTestStorage(t)
	svc := NewService(store, nil, common.NewSilentLogger())
	ctx := context.Background()

	entry := entryAt("e1", "alice", "joy", time.Now().UTC().Add(-time.Hour), "a great day shipping")
	if err := store.EntryStore().CreateEntry(ctx, entry); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	summary, err := svc.PeriodSummary(ctx, "alice", "week")
	if err != nil {
		t.Fatalf("PeriodSummary: %v", err)
	}
	if summary.SummaryText == "" {
		t.Error("summary text should not be empty")
	}
	if !strings.HasPrefix(summary.SummaryText, "Overview") {
		t.Errorf("deterministic summary should start with Overview: %q", summary.SummaryText)
	}

	// Week start is a Monday
	weekStart, err := time.Parse("2006-01-02", summary.WeekStart)
	if err != nil {
		t.Fatalf("parse week start: %v", err)
	}
	if weekStart.Weekday() != time.Monday {
		t.Errorf("week start should be Monday, got %s", weekStart.Weekday())
	}

	// Persisted and retrievable
	latest, err := svc.LatestWeeklySummary(ctx, "alice")
	if err != nil {
		t.Fatalf("LatestWeeklySummary: %v", err)
	}
	if latest.SummaryText != summary.SummaryText || latest.WeekStart != summary.WeekStart {
		t.Errorf("stored summary mismatch: %+v vs %+v", latest, summary)
	}
}

func TestPeriodSummaryNoEntries(t *testing.T) {
	svc := NewService(newTestStorage(t), nil, common.NewSilentLogger())

	summary, err := svc.PeriodSummary(context.Background(), "alice", "day")
	if err != nil {
		t.Fatalf("PeriodSummary: %v", err)
	}
	if !strings.Contains(summary.SummaryText, "No reflections logged yet") {
		t.Errorf("unexpected empty-window summary: %q", summary.SummaryText)
	}
}

func TestRenderSentimentChart(t *testing.T) {
	day1 := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	entries := []*models.Entry{
		{ID: "e1", UserID: "alice", CreatedAt: day1, SentimentScore: 0.5},
		{ID: "e2", UserID: "alice", CreatedAt: day2, SentimentScore: -0.2},
	}

	png, err := RenderSentimentChart(entries)
	if err != nil {
		t.Fatalf("RenderSentimentChart: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("chart should not be empty")
	}
	// PNG magic bytes
	if png[0] != 0x89 || string(png[1:4]) != "PNG" {
		t.Error("output is not a PNG")
	}
}

func TestRenderSentimentChartNeedsTwoDays(t *testing.T) {
	entries := []*models.Entry{
		{ID: "e1", UserID: "alice", CreatedAt: time.Now().UTC(), SentimentScore: 0.5},
	}
	if _, err := RenderSentimentChart(entries); err == nil {
		t.Error("expected error for a single day of data")
	}
}
