// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/emotion"
	"github.com/echo-journal/echo/internal/models"
)

const DefaultModel = "gemini-2.0-flash"

// Client wraps the genai SDK for emotion classification and summary prose.
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Close closes the client
func (c *Client) Close() error {
	// The genai client doesn't have a Close method
	return nil
}

// GenerateContent generates AI content from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// Classify scores journal text against the emotion label set. The model is
// constrained to the lexicon's labels; anything else in the response is an
// error so callers can fall back to the deterministic analyzer.
func (c *Client) Classify(ctx context.Context, text string) ([]models.EmotionScore, error) {
	if strings.TrimSpace(text) == "" {
		return []models.EmotionScore{{Label: "neutral", Score: 1.0}}, nil
	}

	prompt := buildClassifyPrompt(text)
	raw, err := c.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	scores, err := parseEmotionScores(raw)
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// buildClassifyPrompt creates the emotion classification prompt.
func buildClassifyPrompt(text string) string {
	return fmt.Sprintf(`Classify the emotional content of the journal entry below.

Respond with ONLY a JSON array of objects {"label": string, "score": number},
sorted by score descending. Scores must sum to 1.0. Use only these labels:
%s

Journal entry:
%s`, strings.Join(emotion.Labels(), ", "), text)
}

// parseEmotionScores decodes the model output, tolerating code fences.
func parseEmotionScores(raw string) ([]models.EmotionScore, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var scores []models.EmotionScore
	if err := json.Unmarshal([]byte(cleaned), &scores); err != nil {
		return nil, fmt.Errorf("failed to parse emotion scores: %w", err)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("empty emotion scores")
	}

	allowed := make(map[string]bool)
	for _, label := range emotion.Labels() {
		allowed[label] = true
	}
	for i := range scores {
		scores[i].Label = strings.ToLower(scores[i].Label)
		if !allowed[scores[i].Label] {
			return nil, fmt.Errorf("unexpected emotion label: %s", scores[i].Label)
		}
	}
	return scores, nil
}

// WriteSummary generates recap prose for a window of entries.
func (c *Client) WriteSummary(ctx context.Context, entries []*models.Entry, timeframe string) (string, error) {
	prompt := buildSummaryPrompt(entries, timeframe)
	text, err := c.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// buildSummaryPrompt creates the period summary prompt.
func buildSummaryPrompt(entries []*models.Entry, timeframe string) string {
	var sb strings.Builder
	sb.WriteString("You are Echo, a warm journaling companion. Write a short, ")
	sb.WriteString("supportive recap (2-4 sentences) of the user's ")
	sb.WriteString(timeframe)
	sb.WriteString(". Mention the dominant feelings and one gentle observation. ")
	sb.WriteString("Do not give medical advice.\n\nEntries:\n")
	for _, entry := range entries {
		label := "neutral"
		if top := entry.DeriveTopEmotion(); top != nil {
			label = top.Label
		}
		fmt.Fprintf(&sb, "- [%s] (%s) %s\n",
			entry.CreatedAt.Format("2006-01-02"), label, entry.Text)
	}
	if len(entries) == 0 {
		sb.WriteString("(no entries recorded)\n")
	}
	return sb.String()
}
