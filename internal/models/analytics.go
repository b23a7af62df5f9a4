package models

// TimeBucketStat aggregates entries within one time-of-day bucket.
type TimeBucketStat struct {
	MessageCount int      `json:"message_count"`
	AvgSentiment *float64 `json:"avg_sentiment"`
}

// DailyMetric aggregates one user's entries for one calendar day.
type DailyMetric struct {
	UserID         string                    `json:"user_id"`
	Date           string                    `json:"date"`
	AvgSentiment   *float64                  `json:"avg_sentiment"`
	TopEmotion     string                    `json:"top_emotion,omitempty"`
	EmotionCounts  map[string]int            `json:"emotion_counts"`
	MessageCount   int                       `json:"message_count"`
	AvgEntryLength *float64                  `json:"avg_entry_length"`
	TimeBuckets    map[string]TimeBucketStat `json:"time_buckets"`
}

// CorrelationSummary holds behavioral correlations for one week.
type CorrelationSummary struct {
	EntryLengthVsSentimentPearson *float64            `json:"entry_length_vs_sentiment_pearson"`
	EntryLengthSampleSize         int                 `json:"entry_length_sample_size"`
	TimeOfDayMeanSentiment        map[string]*float64 `json:"time_of_day_mean_sentiment"`
	WeekdayMeanSentiment          map[string]*float64 `json:"weekday_mean_sentiment"`
}

// WeeklyMetric aggregates one user's entries for one Monday-start week.
// Volatility is the population standard deviation of the week's daily
// average sentiments.
type WeeklyMetric struct {
	UserID        string             `json:"user_id"`
	WeekStart     string             `json:"week_start"`
	WeekEnd       string             `json:"week_end"`
	AvgSentiment  *float64           `json:"avg_sentiment"`
	EmotionCounts map[string]int     `json:"emotion_counts"`
	MessageCount  int                `json:"message_count"`
	Volatility    float64            `json:"volatility"`
	CorrSummary   CorrelationSummary `json:"corr_summary"`
}
