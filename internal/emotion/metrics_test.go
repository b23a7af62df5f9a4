package emotion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/echo-journal/echo/internal/models"
)

func TestSentimentFromEmotions(t *testing.T) {
	t.Run("empty yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, SentimentFromEmotions(nil))
	})

	t.Run("pure joy is strongly positive", func(t *testing.T) {
		sentiment := SentimentFromEmotions([]models.EmotionScore{
			{Label: "joy", Score: 1.0},
		})
		assert.InDelta(t, 0.9, sentiment, 1e-9)
	})

	t.Run("weights normalize over scores", func(t *testing.T) {
		sentiment := SentimentFromEmotions([]models.EmotionScore{
			{Label: "joy", Score: 0.5},
			{Label: "sadness", Score: 0.5},
		})
		// (0.9*0.5 + -0.6*0.5) / 1.0
		assert.InDelta(t, 0.15, sentiment, 1e-9)
	})

	t.Run("unknown labels contribute zero weight", func(t *testing.T) {
		sentiment := SentimentFromEmotions([]models.EmotionScore{
			{Label: "mystery", Score: 1.0},
		})
		assert.Equal(t, 0.0, sentiment)
	})

	t.Run("result stays within range", func(t *testing.T) {
		sentiment := SentimentFromEmotions([]models.EmotionScore{
			{Label: "anger", Score: 0.9},
			{Label: "anxiety", Score: 0.1},
		})
		assert.GreaterOrEqual(t, sentiment, -1.0)
		assert.LessOrEqual(t, sentiment, 1.0)
	})
}

func TestEntryLength(t *testing.T) {
	assert.Equal(t, 0, EntryLength("   "))
	assert.Equal(t, 5, EntryLength("  hello  "))
}

func TestBucketTimeOfDay(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{0, "Night"},
		{4, "Night"},
		{5, "Morning"},
		{11, "Morning"},
		{12, "Afternoon"},
		{16, "Afternoon"},
		{17, "Evening"},
		{20, "Evening"},
		{21, "Night"},
		{23, "Night"},
	}
	for _, tc := range cases {
		ts := time.Date(2026, 3, 10, tc.hour, 30, 0, 0, time.UTC)
		assert.Equal(t, tc.want, BucketTimeOfDay(ts), "hour %d", tc.hour)
	}
}

func TestWeekdayIndex(t *testing.T) {
	monday := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, WeekdayIndex(monday))
	assert.Equal(t, 6, WeekdayIndex(sunday))
}

func TestWeekBounds(t *testing.T) {
	wednesday := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	start, end := WeekBounds(wednesday)
	assert.Equal(t, "2026-03-09", start.Format("2006-01-02"))
	assert.Equal(t, "2026-03-15", end.Format("2006-01-02"))
}
