package emotion

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/echo-journal/echo/internal/models"
)

// Emotion buckets used by the recap summarizer.
var (
	positiveLabels = map[string]bool{
		"joy": true, "love": true, "surprise": true, "calm": true,
		"proud": true, "grateful": true, "gratitude": true,
		"content": true, "hopeful": true,
	}
	challengingLabels = map[string]bool{
		"sadness": true, "anger": true, "fear": true, "anxiety": true,
		"frustrated": true, "tired": true, "overwhelmed": true,
		"stress": true, "disgust": true,
	}
)

const defaultNudge = "Take a steady breath, jot one grounding intention, and remind yourself that showing up to reflect is care."

var summaryNudges = map[string]string{
	"joy":        "Savor the bright spots by sharing one with someone who will celebrate alongside you.",
	"love":       "Let that warmth travel further with a quick note of gratitude to someone who helped.",
	"surprise":   "Capture what this curveball taught you so it can guide a future decision.",
	"sadness":    "Offer a quiet pause tonight and name one gentle step for tomorrow.",
	"anger":      "Channel the spark into motion—write a draft response or take a reset walk first.",
	"fear":       "List one thing you can influence and let it be your anchor.",
	"anxiety":    "Pair an exhale with a reminder that you can move in half-steps and still make progress.",
	"disgust":    "Protect your energy by drawing a boundary that keeps you grounded.",
	"calm":       "Keep the steady cadence by scheduling a small ritual you enjoy.",
	"proud":      "Celebrate the progress by sharing it with someone who roots for you.",
	"grateful":   "Note the people or moments lighting you up and plan how to nourish them.",
	"frustrated": "List what is in your control vs. what is noise, and give energy to the first column.",
}

var timeframeLabels = map[string]string{"day": "today", "week": "this week", "month": "this month"}
var timeframeActions = map[string]string{"day": "today", "week": "this week", "month": "over the month"}

// Summarize generates a deterministic recap of the given entries. It is the
// fallback when no generated summary is available, and the reference for what
// a recap should cover. timeframe is "day", "week", or "month".
func Summarize(entries []*models.Entry, timeframe string) string {
	if len(entries) == 0 {
		return "No reflections logged yet. Capture a note so Echo can spot your patterns."
	}
	if _, ok := timeframeLabels[timeframe]; !ok {
		timeframe = "week"
	}

	emotionCounts := newCounter()
	positiveTags := newCounter()
	challengingTags := newCounter()
	positiveEmotions := newCounter()
	challengingEmotions := newCounter()
	daysActive := make(map[string]bool)
	var normalized, positiveTotal, challengingTotal int

	for _, entry := range entries {
		if entry == nil || strings.TrimSpace(entry.Text) == "" {
			continue
		}
		normalized++

		if !entry.CreatedAt.IsZero() {
			daysActive[entry.CreatedAt.UTC().Format("2006-01-02")] = true
		}

		top := entry.DeriveTopEmotion()
		if top == nil || top.Label == "" {
			continue
		}
		label := strings.ToLower(top.Label)
		emotionCounts.add(label, 1)

		tags := make([]string, 0, len(entry.Tags))
		for _, tag := range entry.Tags {
			tags = append(tags, strings.ToLower(tag))
		}

		switch {
		case positiveLabels[label]:
			positiveTotal++
			positiveEmotions.add(label, 1)
			for _, tag := range tags {
				positiveTags.add(tag, 1)
			}
		case challengingLabels[label]:
			challengingTotal++
			challengingEmotions.add(label, 1)
			for _, tag := range tags {
				challengingTags.add(tag, 1)
			}
		}
	}

	if normalized == 0 {
		return "Echo needs a few more reflections with emotion insights to surface guidance."
	}

	total := emotionCounts.total()
	if total == 0 {
		total = normalized
	}
	dominantLabel, dominantCount := "neutral", 0
	if top := emotionCounts.mostCommon(1); len(top) > 0 {
		dominantLabel, dominantCount = top[0].key, top[0].count
	}
	dominantPct := roundPct(dominantCount, total)
	activeDays := len(daysActive)
	if activeDays == 0 {
		activeDays = 1
	}

	var lines []string
	lines = append(lines, fmt.Sprintf(
		"Overview • %s, you captured %d reflection%s across %d day%s. %s led %d%% of the tone.",
		capitalize(timeframeLabels[timeframe]),
		normalized, plural(normalized),
		activeDays, plural(activeDays),
		title(dominantLabel), dominantPct,
	))

	if positiveTotal > 0 || challengingTotal > 0 {
		posPct := roundPct(positiveTotal, total)
		challPct := roundPct(challengingTotal, total)
		neutralPct := 100 - posPct - challPct
		if neutralPct < 0 {
			neutralPct = 0
		}
		lines = append(lines, fmt.Sprintf(
			"Energy mix • %d%% restorative, %d%% taxing, %d%% steady moments logged.",
			posPct, challPct, neutralPct,
		))
	}

	if top := emotionCounts.mostCommon(3); len(top) > 0 {
		parts := make([]string, 0, len(top))
		for _, item := range top {
			parts = append(parts, fmt.Sprintf("%s %d%%", title(item.key), roundPct(item.count, total)))
		}
		lines = append(lines, fmt.Sprintf("Focus • Top emotions: %s.", strings.Join(parts, ", ")))
	}

	if line := buildHighlight("positive", positiveTags, positiveEmotions, timeframe); line != "" {
		lines = append(lines, "Celebrate • "+line)
	}
	if line := buildHighlight("challenging", challengingTags, challengingEmotions, timeframe); line != "" {
		lines = append(lines, "Support • "+line)
	}

	switch {
	case challengingTotal > 0 && positiveTotal > 0:
		if challengingTotal-positiveTotal > 1 {
			lines = append(lines, "Rebalance • Taxing themes edged ahead—schedule a buffer or recharge ritual before the next busy stretch.")
		} else if positiveTotal > challengingTotal {
			lines = append(lines, "Momentum • Restorative moments are winning—double down on routines that invite them.")
		}
	case challengingTotal > 0:
		lines = append(lines, "Recovery • This period leaned heavy. Add one gentle checkpoint—stretch, journal, or step outside—before lights-out.")
	}

	nudge, ok := summaryNudges[dominantLabel]
	if !ok {
		nudge = defaultNudge
	}
	lines = append(lines, "Next step • "+adaptNudge(nudge, timeframe))

	return strings.Join(lines, "\n")
}

func buildHighlight(bucket string, tags, emotions *counter, timeframe string) string {
	if tags.total() > 0 {
		var parts []string
		for _, item := range tags.mostCommon(2) {
			parts = append(parts, "#"+item.key)
		}
		readable := strings.Join(parts, ", ")
		if bucket == "positive" {
			return fmt.Sprintf("%s moments lifted you—protect space for them %s.", readable, timeframeActions[timeframe])
		}
		return fmt.Sprintf("%s situations drained energy—plan one boundary or recovery step before they repeat.", readable)
	}
	if top := emotions.mostCommon(1); len(top) > 0 {
		if bucket == "positive" {
			return fmt.Sprintf("%s spikes were grounding—repeat whatever set them in motion.", title(top[0].key))
		}
		return fmt.Sprintf("%s showed up often—prep a micro-support when it surfaces.", title(top[0].key))
	}
	return ""
}

func adaptNudge(nudge, timeframe string) string {
	switch timeframe {
	case "day":
		nudge = strings.ReplaceAll(nudge, "this week", "today")
		return strings.ReplaceAll(nudge, "over the month", "today")
	case "month":
		nudge = strings.ReplaceAll(nudge, "tonight", "this week")
		nudge = strings.ReplaceAll(nudge, "today", "this week")
		return strings.ReplaceAll(nudge, "this week", "this month")
	default:
		return nudge
	}
}

func roundPct(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func title(s string) string {
	return capitalize(strings.ToLower(s))
}

// counter is a small ordered counter: ties resolve by first insertion, like
// the dashboards expect.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string, n int) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key] += n
}

func (c *counter) total() int {
	var sum int
	for _, n := range c.counts {
		sum += n
	}
	return sum
}

type countedItem struct {
	key   string
	count int
}

// mostCommon returns the top n items by count, ties in insertion order.
// n <= 0 returns all items.
func (c *counter) mostCommon(n int) []countedItem {
	rank := make(map[string]int, len(c.order))
	for i, key := range c.order {
		rank[key] = i
	}
	items := make([]countedItem, 0, len(c.order))
	for _, key := range c.order {
		items = append(items, countedItem{key: key, count: c.counts[key]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].count != items[j].count {
			return items[i].count > items[j].count
		}
		return rank[items[i].key] < rank[items[j].key]
	})
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	return items
}
