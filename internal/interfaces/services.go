package interfaces

import (
	"context"
	"time"

	"github.com/echo-journal/echo/internal/models"
)

// EntryInput is a validated request to create or analyze an entry.
type EntryInput struct {
	Text   string
	Source string
	Tags   []string
}

// JournalService creates and reads journal entries.
type JournalService interface {
	// CreateEntry analyzes, enriches, and stores a new entry. Returns the
	// stored entry and the generated one-liner reply.
	CreateEntry(ctx context.Context, userID string, input EntryInput) (*models.Entry, string, error)

	// Analyze runs emotion analysis without storing anything.
	Analyze(ctx context.Context, text string) ([]models.EmotionScore, *models.EmotionScore, float64, error)

	GetEntry(ctx context.Context, userID, entryID string) (*models.Entry, error)
	ListEntries(ctx context.Context, userID string, limit, offset int) ([]*models.Entry, error)
}

// InsightsService aggregates entries for the dashboard.
type InsightsService interface {
	Summarize(ctx context.Context, userID string, days int) (*models.InsightsSummary, error)

	// TrendChart renders the sentiment trend for the window as a PNG.
	TrendChart(ctx context.Context, userID string, days int) ([]byte, error)

	// PeriodSummary generates recap prose for "day", "week", or "month".
	PeriodSummary(ctx context.Context, userID, period string) (*models.PeriodSummary, error)
}

// AnalyticsService computes behavioral metrics over entries.
type AnalyticsService interface {
	DailyMetrics(ctx context.Context, userID string, start, end time.Time) ([]*models.DailyMetric, error)
	WeeklyMetrics(ctx context.Context, userID string, start, end time.Time) ([]*models.WeeklyMetric, error)
}

// DigestService manages the weekly digest preference and delivery.
type DigestService interface {
	GetPref(ctx context.Context, userID string) (bool, error)
	SetPref(ctx context.Context, userID string, enabled bool) (bool, error)
	SendNow(ctx context.Context, userID, email string) error
}

// CopingService manages each user's pinned coping actions.
type CopingService interface {
	GetKit(ctx context.Context, userID string) ([]string, error)
	SaveKit(ctx context.Context, userID string, actions []string) ([]string, error)
}

// TriggersService manages named trigger word lists and their emotion stats.
type TriggersService interface {
	// List returns the user's triggers with match counts and correlation
	// stats computed over recent entries.
	List(ctx context.Context, userID string) ([]models.TriggerWithStats, error)

	// Upsert validates and stores a trigger, replacing any existing one
	// with the same name.
	Upsert(ctx context.Context, userID, name string, words []string) (*models.Trigger, error)

	// Delete removes the named trigger, reporting whether it existed.
	Delete(ctx context.Context, userID, name string) (bool, error)
}
