package models

// EmotionShare is one emotion's share of entries, as a percentage.
type EmotionShare struct {
	Label string  `json:"label"`
	Pct   float64 `json:"pct"`
}

// TrendPoint holds the per-emotion share of one day's entries.
type TrendPoint struct {
	Date   string             `json:"date"`
	Shares map[string]float64 `json:"shares"`
}

// HeatmapCell marks the dominant emotion for a calendar day.
type HeatmapCell struct {
	Date          string `json:"date"`
	DominantLabel string `json:"dominant_label"`
}

// KeywordCount is one recurring word and how often it appeared.
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// InsightsSummary aggregates a window of entries for the dashboard.
type InsightsSummary struct {
	TopEmotions []EmotionShare `json:"top_emotions"`
	Trend       []TrendPoint   `json:"trend"`
	Heatmap     []HeatmapCell  `json:"heatmap"`
	Keywords    []KeywordCount `json:"keywords"`
}

// PeriodSummary is a generated recap of a day, week, or month.
type PeriodSummary struct {
	SummaryText string `json:"summary_text"`
	WeekStart   string `json:"week_start"`
}
