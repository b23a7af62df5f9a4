package interfaces

import (
	"context"

	"github.com/echo-journal/echo/internal/models"
)

// EmotionClassifier scores a piece of journal text against the emotion
// label set. Implementations must return scores sorted descending and a
// single neutral score for blank text.
type EmotionClassifier interface {
	Classify(ctx context.Context, text string) ([]models.EmotionScore, error)
}

// SummaryWriter generates recap prose for a window of entries.
// timeframe is "day", "week", or "month".
type SummaryWriter interface {
	WriteSummary(ctx context.Context, entries []*models.Entry, timeframe string) (string, error)
}

// Mailer delivers digest email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
