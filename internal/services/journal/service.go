// Package journal provides journal entry creation, analysis, and reads.
package journal

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/emotion"
	"github.com/echo-journal/echo/internal/interfaces"
	"github.com/echo-journal/echo/internal/models"
)

// Compile-time interface check
var _ interfaces.JournalService = (*Service)(nil)

var sourcePattern = regexp.MustCompile(`^(mobile|web)$`)

// Service implements JournalService
type Service struct {
	storage    interfaces.StorageManager
	classifier interfaces.EmotionClassifier
	fallback   *emotion.Analyzer
	logger     *common.Logger
}

// NewService creates a new journal service. classifier may be nil, in which
// case the built-in lexicon analyzer handles all classification.
func NewService(storage interfaces.StorageManager, classifier interfaces.EmotionClassifier, logger *common.Logger) *Service {
	return &Service{
		storage:    storage,
		classifier: classifier,
		fallback:   emotion.NewAnalyzer(),
		logger:     logger,
	}
}

// ValidateInput normalizes and validates an entry input in place.
func ValidateInput(input *interfaces.EntryInput) error {
	input.Text = strings.TrimSpace(input.Text)
	if input.Text == "" {
		return fmt.Errorf("text is required")
	}
	if len([]rune(input.Text)) > models.MaxEntryTextLength {
		return fmt.Errorf("text exceeds %d characters", models.MaxEntryTextLength)
	}

	if input.Source == "" {
		input.Source = models.SourceWeb
	}
	if !sourcePattern.MatchString(input.Source) {
		return fmt.Errorf("source must be mobile or web")
	}

	var tags []string
	for _, tag := range input.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len([]rune(tag)) > models.MaxTagLength {
			return fmt.Errorf("tag exceeds %d characters", models.MaxTagLength)
		}
		tags = append(tags, tag)
	}
	if len(tags) > models.MaxTags {
		return fmt.Errorf("at most %d tags allowed", models.MaxTags)
	}
	input.Tags = tags
	return nil
}

// CreateEntry analyzes, enriches, and stores a new entry, returning the
// stored entry and the empathetic one-liner reply.
func (s *Service) CreateEntry(ctx context.Context, userID string, input interfaces.EntryInput) (*models.Entry, string, error) {
	if userID == "" {
		return nil, "", fmt.Errorf("user ID is required")
	}
	if err := ValidateInput(&input); err != nil {
		return nil, "", err
	}

	emotions := s.classify(ctx, input.Text)

	now := time.Now().UTC()
	entry := &models.Entry{
		ID:             uuid.NewString(),
		UserID:         userID,
		Text:           input.Text,
		Source:         input.Source,
		Tags:           input.Tags,
		Emotions:       emotions,
		EntryLength:    emotion.EntryLength(input.Text),
		TimeOfDay:      emotion.BucketTimeOfDay(now),
		Weekday:        emotion.WeekdayIndex(now),
		SentimentScore: emotion.SentimentFromEmotions(emotions),
		CreatedAt:      now,
	}
	entry.TopEmotion = entry.DeriveTopEmotion()

	topLabel := ""
	if entry.TopEmotion != nil {
		topLabel = entry.TopEmotion.Label
	}
	entry.Suggestion = emotion.SuggestionFor(topLabel)

	if err := s.storage.EntryStore().CreateEntry(ctx, entry); err != nil {
		return nil, "", fmt.Errorf("failed to store entry: %w", err)
	}

	s.logger.Info().
		Str("user", userID).
		Str("entry", entry.ID).
		Str("top_emotion", topLabel).
		Float64("sentiment", entry.SentimentScore).
		Msg("Entry created")

	return entry, emotion.FallbackReply(topLabel), nil
}

// Analyze runs emotion analysis without storing anything.
func (s *Service) Analyze(ctx context.Context, text string) ([]models.EmotionScore, *models.EmotionScore, float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, 0, fmt.Errorf("text is required")
	}
	if len([]rune(text)) > models.MaxEntryTextLength {
		return nil, nil, 0, fmt.Errorf("text exceeds %d characters", models.MaxEntryTextLength)
	}

	emotions := s.classify(ctx, text)
	entry := models.Entry{Emotions: emotions}
	return emotions, entry.DeriveTopEmotion(), emotion.SentimentFromEmotions(emotions), nil
}

func (s *Service) GetEntry(ctx context.Context, userID, entryID string) (*models.Entry, error) {
	return s.storage.EntryStore().GetEntry(ctx, userID, entryID)
}

func (s *Service) ListEntries(ctx context.Context, userID string, limit, offset int) ([]*models.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return s.storage.EntryStore().ListEntries(ctx, userID, limit, offset)
}

// classify prefers the configured model classifier and falls back to the
// lexicon analyzer when it fails or is absent.
func (s *Service) classify(ctx context.Context, text string) []models.EmotionScore {
	if s.classifier != nil {
		scores, err := s.classifier.Classify(ctx, text)
		if err == nil && len(scores) > 0 {
			return scores
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("Classifier failed, using lexicon analyzer")
		}
	}
	scores, _ := s.fallback.Classify(ctx, text)
	return scores
}
