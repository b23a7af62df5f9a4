package journal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/interfaces"
	"github.com/echo-journal/echo/internal/models"
	"github.com/echo-journal/echo/internal/storage"
)

// --- Mocks ---

type mockClassifier struct {
	scores []models.EmotionScore
	err    error
	called bool
}

func (m *mockClassifier) Classify(_ context.Context, _ string) ([]models.EmotionScore, error) {
	m.called = true
	return m.scores, m.err
}

func newTestStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Entries.Path = t.TempDir()
	cfg.Storage.Internal.Path = t.TempDir()
	mgr, err := storage.NewManager(common.NewSilentLogger(), cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

// --- Tests ---

func TestCreateEntryLexiconFallback(t *testing.T) {
	svc := NewService(newTestStorage(t), nil, common.NewSilentLogger())
	ctx := context.Background()

	entry, reply, err := svc.CreateEntry(ctx, "alice", interfaces.EntryInput{
		Text: "I felt so anxious and worried about the deadline",
		Tags: []string{"Work"},
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	if entry.ID == "" {
		t.Error("entry ID should be generated")
	}
	if entry.Source != models.SourceWeb {
		t.Errorf("source should default to web, got %q", entry.Source)
	}
	if entry.TopEmotion == nil || entry.TopEmotion.Label != "anxiety" {
		t.Errorf("unexpected top emotion: %+v", entry.TopEmotion)
	}
	if entry.SentimentScore >= 0 {
		t.Errorf("anxious text should score negative, got %f", entry.SentimentScore)
	}
	if entry.EntryLength != 48 {
		t.Errorf("unexpected entry length: %d", entry.EntryLength)
	}
	if entry.Suggestion == "" {
		t.Error("suggestion should be set")
	}
	if reply == "" || !strings.HasSuffix(reply, ".") {
		t.Errorf("unexpected reply: %q", reply)
	}

	// Stored and readable back
	got, err := svc.GetEntry(ctx, "alice", entry.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.Text != entry.Text {
		t.Errorf("stored text mismatch: %q", got.Text)
	}
}

func TestCreateEntryPrefersClassifier(t *testing.T) {
	classifier := &mockClassifier{
		scores: []models.EmotionScore{{Label: "joy", Score: 0.8}, {Label: "calm", Score: 0.2}},
	}
	svc := NewService(newTestStorage(t), classifier, common.NewSilentLogger())

	entry, _, err := svc.CreateEntry(context.Background(), "alice", interfaces.EntryInput{Text: "a day"})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if !classifier.called {
		t.Error("classifier should be consulted")
	}
	if entry.TopEmotion.Label != "joy" {
		t.Errorf("unexpected top emotion: %+v", entry.TopEmotion)
	}
}

func TestCreateEntryClassifierErrorFallsBack(t *testing.T) {
	classifier := &mockClassifier{err: errors.New("model offline")}
	svc := NewService(newTestStorage(t), classifier, common.NewSilentLogger())

	entry, _, err := svc.CreateEntry(context.Background(), "alice", interfaces.EntryInput{
		Text: "I am so happy and excited today",
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if entry.TopEmotion == nil || entry.TopEmotion.Label != "joy" {
		t.Errorf("lexicon fallback should classify joy, got %+v", entry.TopEmotion)
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		input   interfaces.EntryInput
		wantErr bool
	}{
		{"valid", interfaces.EntryInput{Text: "hello", Source: "mobile"}, false},
		{"empty text", interfaces.EntryInput{Text: "   "}, true},
		{"text too long", interfaces.EntryInput{Text: strings.Repeat("a", models.MaxEntryTextLength+1)}, true},
		{"text at limit", interfaces.EntryInput{Text: strings.Repeat("a", models.MaxEntryTextLength)}, false},
		{"bad source", interfaces.EntryInput{Text: "hello", Source: "desktop"}, true},
		{"too many tags", interfaces.EntryInput{Text: "hello", Tags: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}}, true},
		{"tag too long", interfaces.EntryInput{Text: "hello", Tags: []string{strings.Repeat("x", models.MaxTagLength+1)}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(&tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInput: err=%v wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateInputNormalizesTags(t *testing.T) {
	input := interfaces.EntryInput{Text: "hello", Tags: []string{" work ", "", "  "}}
	if err := ValidateInput(&input); err != nil {
		t.Fatalf("ValidateInput: %v", err)
	}
	if len(input.Tags) != 1 || input.Tags[0] != "work" {
		t.Errorf("tags not normalized: %v", input.Tags)
	}
}

func TestAnalyzeDoesNotStore(t *testing.T) {
	store := newTestStorage(t)
	svc := NewService(store, nil, common.NewSilentLogger())
	ctx := context.Background()

	emotions, top, sentiment, err := svc.Analyze(ctx, "I am so happy today")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(emotions) == 0 || top == nil || top.Label != "joy" {
		t.Errorf("unexpected analysis: %v %v", emotions, top)
	}
	if sentiment <= 0 {
		t.Errorf("happy text should score positive, got %f", sentiment)
	}

	count, err := store.EntryStore().CountEntries(ctx, "")
	if err != nil {
		t.Fatalf("CountEntries: %v", err)
	}
	if count != 0 {
		t.Errorf("Analyze should not persist entries, found %d", count)
	}
}

func TestListEntriesClampsLimit(t *testing.T) {
	svc := NewService(newTestStorage(t), nil, common.NewSilentLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := svc.CreateEntry(ctx, "alice", interfaces.EntryInput{Text: "note"}); err != nil {
			t.Fatalf("CreateEntry: %v", err)
		}
	}

	entries, err := svc.ListEntries(ctx, "alice", -5, -1)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(entries))
	}
}
