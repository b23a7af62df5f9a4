package models

import "time"

// Entry source constants.
const (
	SourceMobile = "mobile"
	SourceWeb    = "web"
)

// Entry validation limits.
const (
	MaxEntryTextLength = 4000
	MaxTags            = 10
	MaxTagLength       = 32
)

// EmotionScore is one labeled emotion with its confidence score.
type EmotionScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Entry represents one journal entry with its derived metrics.
type Entry struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Text           string         `json:"text"`
	Source         string         `json:"source"`
	Tags           []string       `json:"tags"`
	Emotions       []EmotionScore `json:"emotion_json"`
	TopEmotion     *EmotionScore  `json:"top_emotion,omitempty"`
	Suggestion     string         `json:"suggestion,omitempty"`
	EntryLength    int            `json:"entry_length"`
	TimeOfDay      string         `json:"time_of_day"`
	Weekday        int            `json:"weekday"`
	SentimentScore float64        `json:"sentiment_score"`
	CreatedAt      time.Time      `json:"created_at"`
}

// DeriveTopEmotion returns the highest-scoring emotion, or nil when the
// entry has no scores.
func (e *Entry) DeriveTopEmotion() *EmotionScore {
	if len(e.Emotions) == 0 {
		return nil
	}
	top := e.Emotions[0]
	for _, score := range e.Emotions[1:] {
		if score.Score > top.Score {
			top = score
		}
	}
	return &top
}
