package emotion

import (
	"context"
	"sort"

	"github.com/echo-journal/echo/internal/models"
)

// lexicon maps emotion labels to the keywords that signal them. The label
// set matches the sentiment weight table; classification is a normalized
// keyword count over this table.
var lexicon = map[string][]string{
	"joy": {
		"happy", "joy", "joyful", "glad", "delighted", "excited", "wonderful",
		"great", "amazing", "fun", "laughed", "smile", "smiling", "celebrate",
		"celebrated", "cheerful", "thrilled",
	},
	"love": {
		"love", "loved", "loving", "adore", "cherish", "warmth", "caring",
		"affection", "close", "connected", "hug", "hugged",
	},
	"grateful": {
		"grateful", "gratitude", "thankful", "appreciate", "appreciated",
		"blessed", "lucky",
	},
	"calm": {
		"calm", "peaceful", "relaxed", "rested", "serene", "settled", "quiet",
		"still", "breathing",
	},
	"proud": {
		"proud", "accomplished", "achieved", "finished", "succeeded", "nailed",
	},
	"hopeful": {
		"hope", "hopeful", "hoping", "optimistic", "forward", "better",
		"improving", "progress",
	},
	"content": {
		"content", "satisfied", "okay", "fine", "comfortable", "steady",
	},
	"sadness": {
		"sad", "sadness", "down", "blue", "crying", "cried", "tears", "lonely",
		"alone", "miss", "missed", "grief", "heartbroken", "hurt", "empty",
		"hopeless",
	},
	"anger": {
		"angry", "anger", "mad", "furious", "rage", "annoyed", "irritated",
		"unfair", "yelled", "shouted", "hate",
	},
	"fear": {
		"afraid", "scared", "fear", "terrified", "frightened", "dread",
		"dreading", "unsafe",
	},
	"anxiety": {
		"anxious", "anxiety", "worried", "worry", "nervous", "panic",
		"panicking", "restless", "uneasy", "tense",
	},
	"frustrated": {
		"frustrated", "frustrating", "stuck", "blocked", "pointless",
	},
	"disgust": {
		"disgusted", "disgust", "gross", "awful", "horrible", "repulsed",
		"sickened",
	},
	"tired": {
		"tired", "exhausted", "drained", "sleepy", "fatigued", "weary",
		"burnout", "burned",
	},
	"overwhelmed": {
		"overwhelmed", "overwhelming", "swamped", "buried", "overloaded",
		"juggling",
	},
	"stress": {
		"stress", "stressed", "stressful", "pressure", "deadline", "deadlines",
		"rushed", "hectic",
	},
	"surprise": {
		"surprised", "surprise", "unexpected", "shocked", "sudden", "suddenly",
		"wow",
	},
}

// keywordIndex inverts the lexicon for single-pass lookup.
var keywordIndex = func() map[string]string {
	index := make(map[string]string)
	for label, words := range lexicon {
		for _, word := range words {
			index[word] = label
		}
	}
	return index
}()

// Labels returns the full emotion label set, sorted.
func Labels() []string {
	labels := make([]string, 0, len(lexicon)+1)
	for label := range lexicon {
		labels = append(labels, label)
	}
	labels = append(labels, "neutral")
	sort.Strings(labels)
	return labels
}

// Analyzer classifies text against the keyword lexicon. It is the
// deterministic fallback used when no model-backed classifier is
// configured, and the reference label set for classifiers that are.
type Analyzer struct{}

// NewAnalyzer returns a lexicon-backed Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Classify scores the text. Blank text yields a single neutral score of
// 1.0. Text with no lexicon hits also resolves to neutral.
func (a *Analyzer) Classify(_ context.Context, text string) ([]models.EmotionScore, error) {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return []models.EmotionScore{{Label: "neutral", Score: 1.0}}, nil
	}

	counts := make(map[string]int)
	total := 0
	for _, token := range tokens {
		if label, ok := keywordIndex[token]; ok {
			counts[label]++
			total++
		}
	}
	if total == 0 {
		return []models.EmotionScore{{Label: "neutral", Score: 1.0}}, nil
	}

	scores := make([]models.EmotionScore, 0, len(counts))
	for label, count := range counts {
		scores = append(scores, models.EmotionScore{
			Label: label,
			Score: float64(count) / float64(total),
		})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Label < scores[j].Label
	})
	return scores, nil
}

// Top returns the highest-scoring emotion, defaulting to neutral.
func Top(scores []models.EmotionScore) models.EmotionScore {
	if len(scores) == 0 {
		return models.EmotionScore{Label: "neutral", Score: 1.0}
	}
	top := scores[0]
	for _, s := range scores[1:] {
		if s.Score > top.Score {
			top = s
		}
	}
	return top
}
