// Package emotion provides deterministic emotion analysis and the derived
// behavioral metrics attached to journal entries.
package emotion

import (
	"strings"
	"time"

	"github.com/echo-journal/echo/internal/models"
)

// sentimentWeights maps emotion labels to their sentiment contribution.
var sentimentWeights = map[string]float64{
	"joy":         0.9,
	"love":        0.85,
	"calm":        0.6,
	"proud":       0.7,
	"grateful":    0.75,
	"surprise":    0.2,
	"hopeful":     0.55,
	"neutral":     0.0,
	"content":     0.45,
	"sadness":     -0.6,
	"anger":       -0.7,
	"fear":        -0.65,
	"anxiety":     -0.7,
	"frustrated":  -0.55,
	"disgust":     -0.5,
	"tired":       -0.4,
	"overwhelmed": -0.6,
	"stress":      -0.6,
}

// SentimentWeight returns the sentiment weight for a label, 0 for unknown.
func SentimentWeight(label string) float64 {
	return sentimentWeights[strings.ToLower(label)]
}

// SentimentFromEmotions computes a sentiment score in [-1, 1] from a set of
// emotion scores. Scores act as weights over the per-label sentiment table.
func SentimentFromEmotions(emotions []models.EmotionScore) float64 {
	var weightedTotal, scoreTotal float64
	for _, e := range emotions {
		weightedTotal += sentimentWeights[strings.ToLower(e.Label)] * e.Score
		scoreTotal += e.Score
	}
	if scoreTotal <= 0 {
		return 0
	}
	sentiment := weightedTotal / scoreTotal
	// Clamp to [-1, 1] to keep floating point noise in range.
	if sentiment > 1 {
		return 1
	}
	if sentiment < -1 {
		return -1
	}
	return sentiment
}

// EntryLength returns the character length of the text, ignoring
// surrounding whitespace.
func EntryLength(text string) int {
	return len([]rune(strings.TrimSpace(text)))
}

// BucketTimeOfDay returns the label for the time-of-day bucket the
// timestamp falls into (UTC hours).
func BucketTimeOfDay(t time.Time) string {
	hour := t.UTC().Hour()
	switch {
	case hour < 5:
		return "Night"
	case hour < 12:
		return "Morning"
	case hour < 17:
		return "Afternoon"
	case hour < 21:
		return "Evening"
	default:
		return "Night"
	}
}

// WeekdayIndex returns the Monday-based weekday index (Mon=0..Sun=6).
func WeekdayIndex(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}

// WeekdayLabels are short names indexed by WeekdayIndex.
var WeekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekBounds returns the Monday-start week containing t, as inclusive
// start and end dates (UTC).
func WeekBounds(t time.Time) (time.Time, time.Time) {
	day := t.UTC().Truncate(24 * time.Hour)
	start := day.AddDate(0, 0, -WeekdayIndex(t))
	return start, start.AddDate(0, 0, 6)
}
