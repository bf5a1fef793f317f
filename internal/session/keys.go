package session

import (
	"fmt"
	"sort"
)

const (
	// keyAnalysisMinAttempts is the minimum attempts before a key is analyzed.
	keyAnalysisMinAttempts = 3
	// keyTrendWindow is how many recent attempts feed the trend comparison.
	keyTrendWindow = 50
	// keyTrendDelta is the relative error-rate change that flips a trend.
	keyTrendDelta = 0.20
	// slowIntervalMs marks a key as slow to reach.
	slowIntervalMs = 400
)

// Trend classifies how a key's error rate is moving.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// KeyStats is the per-key analysis for one character.
type KeyStats struct {
	Char           string
	Attempts       int
	Errors         int
	ErrorRate      float64
	MeanIntervalMs float64
	Trend          Trend
	Recommendation string
}

// AnalyzeKeys builds per-key statistics for every key with at least three
// attempts, sorted worst error rate first.
func (t *Tracker) AnalyzeKeys() []KeyStats {
	type keyData struct {
		attempts  int
		errors    int
		intervals []float64
		correct   []bool // attempt outcomes in order
	}
	data := map[string]*keyData{}

	var prevTs int64
	for i, ks := range t.history {
		kd, ok := data[ks.Char]
		if !ok {
			kd = &keyData{}
			data[ks.Char] = kd
		}
		kd.attempts++
		if !ks.Correct {
			kd.errors++
		}
		kd.correct = append(kd.correct, ks.Correct)
		if i > 0 {
			gap := ks.TimestampMs - prevTs
			if gap >= 0 && gap < pauseThresholdMs {
				kd.intervals = append(kd.intervals, float64(gap))
			}
		}
		prevTs = ks.TimestampMs
	}

	var out []KeyStats
	for char, kd := range data {
		if kd.attempts < keyAnalysisMinAttempts {
			continue
		}

		rate := float64(kd.errors) / float64(kd.attempts)

		var meanInterval float64
		if len(kd.intervals) > 0 {
			var sum float64
			for _, v := range kd.intervals {
				sum += v
			}
			meanInterval = sum / float64(len(kd.intervals))
		}

		out = append(out, KeyStats{
			Char:           char,
			Attempts:       kd.attempts,
			Errors:         kd.errors,
			ErrorRate:      rate,
			MeanIntervalMs: meanInterval,
			Trend:          keyTrend(kd.correct, rate),
			Recommendation: keyRecommendation(char, rate, meanInterval),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ErrorRate == out[j].ErrorRate {
			return out[i].Char < out[j].Char
		}
		return out[i].ErrorRate > out[j].ErrorRate
	})
	return out
}

// keyTrend compares the error rate over the most recent attempts against the
// all-time rate. A relative change above 20% flips the trend.
func keyTrend(correct []bool, allTimeRate float64) Trend {
	recent := correct
	if len(recent) > keyTrendWindow {
		recent = recent[len(recent)-keyTrendWindow:]
	}
	errs := 0
	for _, ok := range recent {
		if !ok {
			errs++
		}
	}
	recentRate := float64(errs) / float64(len(recent))

	if allTimeRate == 0 {
		if recentRate > 0 {
			return TrendDeclining
		}
		return TrendStable
	}

	change := (recentRate - allTimeRate) / allTimeRate
	switch {
	case change < -keyTrendDelta:
		return TrendImproving
	case change > keyTrendDelta:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func keyRecommendation(char string, errorRate, meanIntervalMs float64) string {
	switch {
	case errorRate > 0.3 && meanIntervalMs > slowIntervalMs:
		return fmt.Sprintf("slow down and hit %q deliberately until it is clean", char)
	case errorRate > 0.3:
		return fmt.Sprintf("drill %q in isolation; accuracy before speed", char)
	case meanIntervalMs > slowIntervalMs:
		return fmt.Sprintf("work on reaching %q without looking down", char)
	default:
		return fmt.Sprintf("keep practicing %q", char)
	}
}
