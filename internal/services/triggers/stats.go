package triggers

import (
	"math"
	"strings"

	"github.com/echo-journal/echo/internal/emotion"
	"github.com/echo-journal/echo/internal/models"
)

// computeStats attaches match counts and correlation deltas to each trigger.
// An entry matches when its token set intersects the trigger's words. The
// correlation for an emotion is the difference between its share among
// matched entries and its baseline share over all entries, in percentage
// points rounded to one decimal.
func computeStats(entries []*models.Entry, list []models.Trigger) []models.TriggerWithStats {
	if len(entries) == 0 || len(list) == 0 {
		return []models.TriggerWithStats{}
	}

	tokenSets := make([]map[string]bool, len(entries))
	topEmotions := make([]string, len(entries))
	baselineCounts := make(map[string]int)
	total := 0
	for i, entry := range entries {
		set := make(map[string]bool)
		for _, token := range emotion.Tokenize(entry.Text) {
			set[token] = true
		}
		tokenSets[i] = set

		if top := entry.DeriveTopEmotion(); top != nil {
			label := strings.ToLower(top.Label)
			topEmotions[i] = label
			baselineCounts[label]++
			total++
		}
	}
	if total == 0 {
		total = 1
	}

	results := make([]models.TriggerWithStats, 0, len(list))
	for _, trigger := range list {
		matched := 0
		matchCounts := make(map[string]int)
		for i := range entries {
			if !containsAny(tokenSets[i], trigger.Words) {
				continue
			}
			matched++
			if topEmotions[i] != "" {
				matchCounts[topEmotions[i]]++
			}
		}

		correlation := make(map[string]float64)
		if matched > 0 {
			for label, count := range matchCounts {
				baseline := float64(baselineCounts[label]) / float64(total)
				delta := float64(count)/float64(matched) - baseline
				correlation[label] = math.Round(delta*1000) / 10
			}
		}

		results = append(results, models.TriggerWithStats{
			Trigger: trigger,
			Stats:   models.TriggerStats{Count: matched, Correlation: correlation},
		})
	}

	return results
}

func containsAny(tokens map[string]bool, words []string) bool {
	for _, word := range words {
		if tokens[strings.ToLower(word)] {
			return true
		}
	}
	return false
}
