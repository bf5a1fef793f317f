// Package session tracks per-keystroke telemetry for one typing session and
// derives speed, accuracy, rhythm, and per-key statistics from it.
package session

import (
	"math"
	"sort"
	"time"

	"github.com/lcestou/feed-n-type-sub000/internal/model"
)

const (
	// challengingWindow is how many trailing keystrokes feed the
	// challenging-key recomputation.
	challengingWindow = 100
	// challengingMinAttempts is the minimum attempts before a key can be
	// flagged as challenging.
	challengingMinAttempts = 5
	// challengingErrorRate is the error-rate threshold for challenging keys.
	challengingErrorRate = 0.20
	// maxChallengingKeys caps the challenging-key set.
	maxChallengingKeys = 10

	// defaultRealtimeWindowMs is the sliding window for realtime WPM.
	defaultRealtimeWindowMs = 60_000
	// pauseThresholdMs separates typing pauses from inter-key intervals.
	pauseThresholdMs = 2000
	// rhythmMinSamples is the minimum history length for rhythm analysis.
	rhythmMinSamples = 10
)

// Keystroke is one recorded key event.
type Keystroke struct {
	Char        string
	Correct     bool
	TimestampMs int64
}

// Tracker accumulates keystrokes for a single in-flight session.
// It is exclusively owned by one execution context; no locking.
type Tracker struct {
	id        string
	source    string
	startedAt time.Time

	history      []Keystroke
	totalChars   int
	correctChars int
	errors       int

	wpm        float64
	accuracy   float64
	durationMs int64

	challenging []string
	milestones  map[string]Milestone
}

// New creates a tracker for a session drawing from the given content source.
func New(id, source string, startedAt time.Time) *Tracker {
	return &Tracker{
		id:         id,
		source:     source,
		startedAt:  startedAt,
		milestones: map[string]Milestone{},
	}
}

// RecordKeystroke appends one key event and refreshes the derived metrics.
// Events must arrive in non-decreasing timestamp order; the tracker does not
// reorder or deduplicate.
func (t *Tracker) RecordKeystroke(char string, correct bool, timestampMs int64) {
	t.history = append(t.history, Keystroke{Char: char, Correct: correct, TimestampMs: timestampMs})
	t.totalChars++
	if correct {
		t.correctChars++
	} else {
		t.errors++
	}

	t.accuracy = 0
	if t.totalChars > 0 {
		t.accuracy = float64(t.correctChars) / float64(t.totalChars) * 100
	}

	t.durationMs = timestampMs - t.history[0].TimestampMs
	t.wpm = 0
	if minutes := float64(t.durationMs) / 60_000.0; minutes > 0 {
		t.wpm = (float64(t.totalChars) / 5.0) / minutes
	}

	t.challenging = t.computeChallengingKeys()
}

// computeChallengingKeys scans the trailing window for high-error keys.
func (t *Tracker) computeChallengingKeys() []string {
	window := t.history
	if len(window) > challengingWindow {
		window = window[len(window)-challengingWindow:]
	}

	type keyCount struct {
		attempts int
		errors   int
	}
	counts := map[string]*keyCount{}
	for _, ks := range window {
		kc, ok := counts[ks.Char]
		if !ok {
			kc = &keyCount{}
			counts[ks.Char] = kc
		}
		kc.attempts++
		if !ks.Correct {
			kc.errors++
		}
	}

	type candidate struct {
		char string
		rate float64
	}
	var candidates []candidate
	for char, kc := range counts {
		if kc.attempts < challengingMinAttempts {
			continue
		}
		rate := float64(kc.errors) / float64(kc.attempts)
		if rate > challengingErrorRate {
			candidates = append(candidates, candidate{char: char, rate: rate})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].rate == candidates[j].rate {
			return candidates[i].char < candidates[j].char
		}
		return candidates[i].rate > candidates[j].rate
	})
	if len(candidates) > maxChallengingKeys {
		candidates = candidates[:maxChallengingKeys]
	}

	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = c.char
	}
	return keys
}

// ID returns the session id.
func (t *Tracker) ID() string { return t.id }

// Source returns the content source the session draws from.
func (t *Tracker) Source() string { return t.source }

// WPM returns the whole-session words-per-minute.
func (t *Tracker) WPM() float64 { return t.wpm }

// Accuracy returns the session accuracy percentage.
func (t *Tracker) Accuracy() float64 { return t.accuracy }

// TotalChars returns the number of recorded keystrokes.
func (t *Tracker) TotalChars() int { return t.totalChars }

// CorrectChars returns the number of correct keystrokes.
func (t *Tracker) CorrectChars() int { return t.correctChars }

// Errors returns the number of incorrect keystrokes.
func (t *Tracker) Errors() int { return t.errors }

// DurationMs returns the elapsed time since the first keystroke.
func (t *Tracker) DurationMs() int64 { return t.durationMs }

// ChallengingKeys returns the current challenging-key set, worst first.
func (t *Tracker) ChallengingKeys() []string {
	out := make([]string, len(t.challenging))
	copy(out, t.challenging)
	return out
}

// RealtimeWPM computes WPM over the trailing window ending at nowMs.
// The window duration never shrinks below windowMs so short bursts do not
// inflate the reading. A windowMs <= 0 selects the default 60s window.
func (t *Tracker) RealtimeWPM(nowMs, windowMs int64) float64 {
	if windowMs <= 0 {
		windowMs = defaultRealtimeWindowMs
	}
	cutoff := nowMs - windowMs

	chars := 0
	var firstTs int64 = -1
	for _, ks := range t.history {
		if ks.TimestampMs < cutoff || ks.TimestampMs > nowMs {
			continue
		}
		if firstTs < 0 {
			firstTs = ks.TimestampMs
		}
		chars++
	}
	if chars == 0 {
		return 0
	}

	duration := nowMs - firstTs
	if duration < windowMs {
		duration = windowMs
	}
	minutes := float64(duration) / 60_000.0
	return (float64(chars) / 5.0) / minutes
}

// Rhythm summarizes typing cadence.
type Rhythm struct {
	// Consistency is 0-100; higher means steadier inter-key intervals.
	Consistency float64
	// MeanIntervalMs is the mean inter-key interval, pauses excluded.
	MeanIntervalMs float64
	// Burst reports whether typing comes in fast clusters.
	Burst bool
	// Samples is the number of intervals analyzed.
	Samples int
}

// AnalyzeRhythm measures cadence consistency over the session so far.
// It needs at least 10 keystrokes; intervals of 2s or longer count as
// pauses and are excluded.
func (t *Tracker) AnalyzeRhythm() Rhythm {
	if len(t.history) < rhythmMinSamples {
		return Rhythm{}
	}

	var intervals []float64
	for i := 1; i < len(t.history); i++ {
		gap := t.history[i].TimestampMs - t.history[i-1].TimestampMs
		if gap >= pauseThresholdMs || gap < 0 {
			continue
		}
		intervals = append(intervals, float64(gap))
	}
	if len(intervals) == 0 {
		return Rhythm{}
	}

	var sum float64
	for _, v := range intervals {
		sum += v
	}
	mean := sum / float64(len(intervals))

	var variance float64
	for _, v := range intervals {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(intervals))
	stddev := math.Sqrt(variance)

	consistency := 100.0
	if mean > 0 {
		cv := stddev / mean
		consistency = math.Max(0, 100-cv*100)
	}

	fast := 0
	for _, v := range intervals {
		if v < mean*0.5 {
			fast++
		}
	}
	burst := float64(fast)/float64(len(intervals)) > 0.3

	return Rhythm{
		Consistency:    consistency,
		MeanIntervalMs: mean,
		Burst:          burst,
		Samples:        len(intervals),
	}
}

// Finalize freezes the session into a persistable record.
// An abandoned session is simply never finalized.
func (t *Tracker) Finalize(endedAt time.Time) model.SessionRecord {
	milestones := make([]string, 0, len(t.milestones))
	for key := range t.milestones {
		milestones = append(milestones, key)
	}
	sort.Strings(milestones)

	return model.SessionRecord{
		ID:              t.id,
		Source:          t.source,
		StartedAt:       t.startedAt,
		EndedAt:         endedAt,
		TotalChars:      t.totalChars,
		CorrectChars:    t.correctChars,
		Errors:          t.errors,
		WPM:             t.wpm,
		Accuracy:        t.accuracy,
		DurationMs:      t.durationMs,
		ChallengingKeys: t.ChallengingKeys(),
		Milestones:      milestones,
	}
}
