package emotion

import "strings"

// FallbackMessage is returned when no emotion is available at all.
const FallbackMessage = "I’m here for you. Let’s take a breath and try again soon."

// suggestionPresets are the short coping nudges attached to stored entries.
var suggestionPresets = map[string]string{
	"joy":      "Savor the bright spot by sharing it with someone who will celebrate alongside you.",
	"love":     "Let that warmth travel further with a quick note of gratitude to someone you trust.",
	"surprise": "Jot down the insight this surprise offered so it does not slip away.",
	"sadness":  "Offer yourself a quiet pause and name one gentle step for tomorrow.",
	"anger":    "Release some of the charge with a walk or a page of thoughts before responding.",
	"fear":     "Pick one small action you can influence today and let it be your anchor.",
	"anxiety":  "Pair a slow inhale with the reminder that you can take things one beat at a time.",
	"disgust":  "Protect your energy by sketching the boundary that would feel safest right now.",
	"neutral":  "Notice one tiny detail you appreciate about this moment to tuck into memory.",
	"default":  "Take a breath and acknowledge how showing up to reflect is caring for yourself.",
}

// acknowledgements open the empathetic one-liner reply.
var acknowledgements = map[string]string{
	"joy":      "That spark of joy is a gift you earned through showing up for yourself.",
	"happy":    "That spark of joy is a gift you earned through showing up for yourself.",
	"love":     "It is beautiful that love is circling back to you after all the care you give out.",
	"sadness":  "It makes perfect sense to feel heavy right now; your heart has been working so hard.",
	"anger":    "Anyone in your shoes would feel that flare of frustration after being overlooked.",
	"fear":     "Feeling unsettled is a natural response when so much is uncertain.",
	"anxiety":  "That buzz of anxiety is your body asking for a moment of softness.",
	"neutral":  "Noticing this moment is already a win because it means you are paying attention to yourself.",
	"surprise": "That twist caught you off guard and it is okay to take a second to absorb it.",
	"disgust":  "Your reaction is a sign that your boundaries deserve a little more protection.",
}

// supportiveSuggestions close the one-liner reply.
var supportiveSuggestions = map[string]string{
	"joy":      "Savor the moment by sharing the story with someone who will smile with you.",
	"happy":    "Savor the moment by sharing the story with someone who will smile with you.",
	"love":     "Pass that warmth along with a quick note of gratitude while the feeling is fresh.",
	"sadness":  "Give yourself a quiet pause and jot one gentle thought you want to bring into tomorrow.",
	"anger":    "Step outside for a breath of air before you decide how you want to respond.",
	"fear":     "List one tiny thing you can influence today and let that be your anchor.",
	"anxiety":  "Pair a slow inhale with a supportive phrase such as 'You can take this one step at a time.'",
	"neutral":  "Name a single detail you appreciate about this moment to tuck it into memory.",
	"surprise": "Write one sentence about what this moment just taught you so you can revisit it later.",
	"disgust":  "Sketch a quick boundary you want to reinforce so you feel safer moving forward.",
	"default":  "Take a steady breath, place a hand over your heart, and thank yourself for noticing how you feel.",
}

// SuggestionFor returns the coping nudge for the top emotion label.
func SuggestionFor(label string) string {
	if preset, ok := suggestionPresets[strings.ToLower(label)]; ok {
		return preset
	}
	return suggestionPresets["default"]
}

// FallbackReply builds the empathetic one-liner used when no generated
// reply is available: an acknowledgement followed by a supportive nudge.
func FallbackReply(label string) string {
	if label == "" {
		return FallbackMessage
	}

	key := strings.ToLower(label)
	ack := acknowledgements[key]
	suggestion := supportiveSuggestions[key]
	if suggestion == "" {
		suggestion = supportiveSuggestions["default"]
	}

	if ack != "" && suggestion != "" {
		reply := strings.TrimSpace(ack + " " + suggestion)
		if !strings.HasSuffix(reply, ".") {
			reply += "."
		}
		return reply
	}
	if ack != "" {
		return ack
	}
	if suggestion != "" {
		if !strings.HasSuffix(suggestion, ".") {
			suggestion += "."
		}
		return suggestion
	}
	return FallbackMessage
}
