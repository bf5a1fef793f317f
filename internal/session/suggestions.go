package session

import (
	"fmt"
	"strings"
)

// maxSuggestions caps the improvement-suggestion list.
const maxSuggestions = 5

// Suggestion is one prioritized improvement hint.
type Suggestion struct {
	Area     string
	Priority string
	Message  string
}

// Suggestions derives ordered improvement hints from the current metrics.
// Rules apply in a fixed order and the result is capped at five entries.
func (t *Tracker) Suggestions() []Suggestion {
	var out []Suggestion
	rhythm := t.AnalyzeRhythm()

	if t.totalChars > 0 && t.accuracy < 85 {
		out = append(out, Suggestion{
			Area:     "accuracy",
			Priority: "high",
			Message:  fmt.Sprintf("accuracy is %.0f%%; slow down until you stay above 85%%", t.accuracy),
		})
	}
	if t.wpm > 0 && t.wpm < 20 && t.accuracy > 90 {
		out = append(out, Suggestion{
			Area:     "speed",
			Priority: "medium",
			Message:  "accuracy is solid; push the pace a little",
		})
	}
	if rhythm.Samples > 0 && rhythm.Consistency < 50 && !rhythm.Burst {
		out = append(out, Suggestion{
			Area:     "rhythm",
			Priority: "medium",
			Message:  "aim for an even beat between keys instead of varying speed",
		})
	}
	if rhythm.Burst {
		out = append(out, Suggestion{
			Area:     "flow",
			Priority: "medium",
			Message:  "typing comes in bursts; keep a steady flow instead of sprint-and-stall",
		})
	}
	if len(t.challenging) > 5 {
		out = append(out, Suggestion{
			Area:     "problem-keys",
			Priority: "high",
			Message:  "several keys need work: " + strings.Join(t.challenging, " "),
		})
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
