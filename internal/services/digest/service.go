// Package digest manages the weekly digest preference and delivery.
package digest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/interfaces"
	"github.com/echo-journal/echo/internal/models"
	"github.com/echo-journal/echo/internal/services/insights"
)

// Compile-time interface check
var _ interfaces.DigestService = (*Service)(nil)

// ErrDisabled is returned by SendNow when the user has opted out.
var ErrDisabled = errors.New("digest disabled")

// Service implements DigestService
type Service struct {
	storage  interfaces.StorageManager
	insights *insights.Service
	coping   interfaces.CopingService
	mailer   interfaces.Mailer
	logger   *common.Logger
}

// NewService creates a new digest service
func NewService(storage interfaces.StorageManager, insightsSvc *insights.Service, coping interfaces.CopingService, mailer interfaces.Mailer, logger *common.Logger) *Service {
	return &Service{
		storage:  storage,
		insights: insightsSvc,
		coping:   coping,
		mailer:   mailer,
		logger:   logger,
	}
}

// GetPref returns the digest opt-in, defaulting to enabled when unset.
func (s *Service) GetPref(ctx context.Context, userID string) (bool, error) {
	kv, err := s.storage.InternalStore().GetUserKV(ctx, userID, models.KVDigestEnabled)
	if err != nil {
		return true, nil
	}
	enabled, err := strconv.ParseBool(kv.Value)
	if err != nil {
		return true, nil
	}
	return enabled, nil
}

// SetPref stores the digest opt-in and returns the stored value.
func (s *Service) SetPref(ctx context.Context, userID string, enabled bool) (bool, error) {
	if err := s.storage.InternalStore().SetUserKV(ctx, userID, models.KVDigestEnabled, strconv.FormatBool(enabled)); err != nil {
		return false, fmt.Errorf("failed to save digest preference: %w", err)
	}
	return enabled, nil
}

// SendNow composes and delivers the weekly digest to the given address.
func (s *Service) SendNow(ctx context.Context, userID, email string) error {
	if email == "" {
		return fmt.Errorf("user email unavailable for digest")
	}

	enabled, err := s.GetPref(ctx, userID)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrDisabled
	}

	since := time.Now().UTC().AddDate(0, 0, -7)
	entries, err := s.storage.EntryStore().ListEntriesSince(ctx, userID, since)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}

	summary := insights.SummarizeEntries(entries)
	recap, err := s.insights.PeriodSummary(ctx, userID, "week")
	if err != nil {
		return fmt.Errorf("failed to build weekly summary: %w", err)
	}

	actions, err := s.coping.GetKit(ctx, userID)
	if err != nil {
		actions = nil
	}

	body := FormatBody(email, recap.SummaryText, summary, actions)
	if err := s.mailer.Send(ctx, email, "Your Echo weekly digest", body); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}

	s.logger.Info().Str("user", userID).Str("email", email).Msg("Digest sent")
	return nil
}

// FormatBody renders the plain-text digest email.
func FormatBody(email, summary string, insightsSummary *models.InsightsSummary, copingActions []string) string {
	top := insightsSummary.TopEmotions
	if len(top) > 3 {
		top = top[:3]
	}
	emotionParts := make([]string, 0, len(top))
	for _, item := range top {
		emotionParts = append(emotionParts, fmt.Sprintf("%s %.1f%%", item.Label, item.Pct))
	}
	emotionLine := strings.Join(emotionParts, ", ")
	if emotionLine == "" {
		emotionLine = "No data"
	}

	copingLine := "Pick a coping action to pin this week."
	if len(copingActions) > 0 {
		copingLine = copingActions[0]
	}

	return fmt.Sprintf(
		"Hi %s,\n\n"+
			"Here's your Echo weekly check-in:\n\n"+
			"Highlights: %s\n"+
			"Coping spotlight: %s\n\n"+
			"Weekly summary:\n%s\n\n"+
			"Open your dashboard for charts and context: https://echo.app/dashboard\n\n"+
			"Stay gentle,\nEcho",
		email, emotionLine, copingLine, summary,
	)
}
